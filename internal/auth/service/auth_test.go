package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	autherrors "hirfa/internal/auth/errors"
	"hirfa/internal/auth/validator"
	"hirfa/pkg/config"
	mongotx "hirfa/pkg/db/mongo"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/logger"
	"hirfa/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserRepository struct {
	users       map[string]*model.User
	createFunc  func(ctx context.Context, user *model.User) error
	txCallCount int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: map[string]*model.User{}}
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return fmt.Errorf("%w: %s", autherrors.ErrEmailTaken, user.Email)
		}
	}
	user.ID = fmt.Sprintf("%024d", len(m.users)+1)
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("%w: %s", autherrors.ErrNotFound, id)
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", autherrors.ErrNotFound, email)
}

func (m *mockUserRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.User, error) {
	out := []*model.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockUserRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *mockUserRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.txCallCount++
	return fn(nil)
}

type mockCraftsmanWriter struct {
	created []*model.Craftsman
	err     error
}

func (m *mockCraftsmanWriter) Create(ctx context.Context, c *model.Craftsman) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, c)
	return nil
}

func newTestService(repo *mockUserRepository, craftsmen *mockCraftsmanWriter) *authService {
	cfg := &config.Config{
		Log:                    logger.Discard(),
		DefaultPaginationLimit: 10,
		MaxPaginationLimit:     100,
	}
	return &authService{
		repo:       repo,
		craftsmen:  craftsmen,
		tokens:     NewTokenManager("test-secret-which-is-long-enough", time.Hour),
		validator:  validator.NewAuthValidator(),
		cfg:        cfg,
		bcryptCost: bcrypt.MinCost,
	}
}

func craftsmanRegistration() *model.RegisterRequest {
	return &model.RegisterRequest{
		Name:     "  youssef   el amrani ",
		Email:    " Youssef@Example.MA ",
		Password: "secret123",
		Phone:    "0612345678",
		Role:     model.RoleCraftsman,
		Craftsman: &model.CraftsmanRegistration{
			Specialty:  model.SpecialtyPlumber,
			Bio:        "Plumber in Casablanca for fifteen years",
			Experience: 15,
			HourlyRate: 150,
			Location:   model.Location{City: "casablanca", Address: "12 Rue Abdelmoumen"},
		},
	}
}

func TestRegister_CraftsmanCreatesProfileInTransaction(t *testing.T) {
	repo := newMockUserRepository()
	craftsmen := &mockCraftsmanWriter{}
	svc := newTestService(repo, craftsmen)

	result, err := svc.Register(context.Background(), craftsmanRegistration())
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "youssef@example.ma", result.User.Email)
	assert.Equal(t, "+212612345678", result.User.Phone)
	assert.NotEqual(t, "secret123", result.User.PasswordHash)
	assert.Equal(t, 1, repo.txCallCount)

	require.Len(t, craftsmen.created, 1)
	profile := craftsmen.created[0]
	assert.Equal(t, result.User.ID, profile.UserID)
	assert.False(t, profile.Verified)
	assert.Zero(t, profile.Rating)
	assert.Equal(t, "Casablanca", profile.Location.City)
}

func TestRegister_ProfileFailureFailsRegistration(t *testing.T) {
	repo := newMockUserRepository()
	svc := newTestService(repo, &mockCraftsmanWriter{err: fmt.Errorf("write conflict")})

	_, err := svc.Register(context.Background(), craftsmanRegistration())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.AsAppError(err).StatusCode())
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(req *model.RegisterRequest)
		wantStatus int
	}{
		{"short password", func(req *model.RegisterRequest) { req.Password = "abc" }, http.StatusUnprocessableEntity},
		{"bad email", func(req *model.RegisterRequest) { req.Email = "nope" }, http.StatusUnprocessableEntity},
		{"admin self-registration", func(req *model.RegisterRequest) { req.Role = model.RoleAdmin }, http.StatusUnprocessableEntity},
		{"craftsman without profile", func(req *model.RegisterRequest) { req.Craftsman = nil }, http.StatusUnprocessableEntity},
		{"customer with profile", func(req *model.RegisterRequest) { req.Role = model.RoleCustomer }, http.StatusUnprocessableEntity},
		{"unparseable phone", func(req *model.RegisterRequest) { req.Phone = "12" }, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMockUserRepository(), &mockCraftsmanWriter{})
			req := craftsmanRegistration()
			tt.mutate(req)

			_, err := svc.Register(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, apperrors.AsAppError(err).StatusCode())
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newMockUserRepository()
	svc := newTestService(repo, &mockCraftsmanWriter{})

	_, err := svc.Register(context.Background(), craftsmanRegistration())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), craftsmanRegistration())
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.AsAppError(err).StatusCode())
}

func TestLogin(t *testing.T) {
	repo := newMockUserRepository()
	svc := newTestService(repo, &mockCraftsmanWriter{})

	_, err := svc.Register(context.Background(), craftsmanRegistration())
	require.NoError(t, err)

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
	}{
		{"valid", "YOUSSEF@example.ma", "secret123", http.StatusOK},
		{"wrong password", "youssef@example.ma", "wrong-pass", http.StatusUnauthorized},
		{"unknown email", "ghost@example.ma", "secret123", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Login(context.Background(), &model.LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantStatus == http.StatusOK {
				require.NoError(t, err)
				principal, err := svc.tokens.VerifyToken(result.Token)
				require.NoError(t, err)
				assert.Equal(t, result.User.ID, principal.UserID)
				assert.Equal(t, model.RoleCraftsman, principal.Role)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, apperrors.AsAppError(err).StatusCode())
		})
	}
}

func TestCreateUser_DefaultsToCustomer(t *testing.T) {
	svc := newTestService(newMockUserRepository(), &mockCraftsmanWriter{})

	user, err := svc.CreateUser(context.Background(), &model.CreateUserRequest{
		Name:     "Admin Created",
		Email:    "created@example.ma",
		Password: "secret123",
		Phone:    "+212612345679",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, user.Role)

	admin, err := svc.CreateUser(context.Background(), &model.CreateUserRequest{
		Name:     "Second Admin",
		Email:    "admin2@example.ma",
		Password: "secret123",
		Phone:    "+212612345670",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, admin.Role)
}

func TestMe_NotFound(t *testing.T) {
	svc := newTestService(newMockUserRepository(), &mockCraftsmanWriter{})

	_, err := svc.Me(context.Background(), "6553f1c2a4b5c6d7e8f90123")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.AsAppError(err).StatusCode())
}
