package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	autherrors "hirfa/internal/auth/errors"
	"hirfa/internal/auth/repository"
	"hirfa/internal/auth/validator"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/model"
	"hirfa/pkg/sanitizer"
	"hirfa/pkg/validation"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// CraftsmanWriter creates the profile of a user registering as a craftsman.
type CraftsmanWriter interface {
	Create(ctx context.Context, c *model.Craftsman) error
}

type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error)
	Me(ctx context.Context, userID string) (*model.User, error)

	CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	ListUsers(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error)
}

type authService struct {
	repo       repository.UserRepository
	craftsmen  CraftsmanWriter
	tokens     *TokenManager
	validator  *validator.AuthValidator
	cfg        *config.Config
	bcryptCost int
}

func NewAuthService(
	repo repository.UserRepository,
	craftsmen CraftsmanWriter,
	tokens *TokenManager,
	validator *validator.AuthValidator,
	cfg *config.Config,
) AuthService {
	return &authService{
		repo:       repo,
		craftsmen:  craftsmen,
		tokens:     tokens,
		validator:  validator,
		cfg:        cfg,
		bcryptCost: bcrypt.DefaultCost,
	}
}

func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
	sanitizeRegister(req)

	if err := s.validator.ValidateRegister(req); err != nil {
		return nil, validation.Failed("Registration validation failed", err)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         req.Role,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, user); err != nil {
			return err
		}
		if req.Role != model.RoleCraftsman {
			return nil
		}
		profile := &model.Craftsman{
			UserID:         user.ID,
			Specialty:      req.Craftsman.Specialty,
			Bio:            req.Craftsman.Bio,
			Experience:     req.Craftsman.Experience,
			HourlyRate:     req.Craftsman.HourlyRate,
			Location:       req.Craftsman.Location,
			Availability:   []model.Availability{},
			Portfolio:      []model.PortfolioItem{},
			Certifications: []string{},
		}
		if err := s.craftsmen.Create(sessCtx, profile); err != nil {
			return fmt.Errorf("failed to create craftsman profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError("Register", err)
	}

	s.cfg.Log.Info("User registered", "user_id", user.ID, "role", user.Role)
	return s.session(user)
}

func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.ValidateLogin(req); err != nil {
		return nil, validation.Failed("Login validation failed", err)
	}

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, autherrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, s.mapError("Login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Warn("Login rejected", "user_id", user.ID)
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	return s.session(user)
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, s.mapError("Me", err)
	}
	return user, nil
}

func (s *authService) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = sanitizer.NormalizePhone(req.Phone)
	if req.Role == "" {
		req.Role = model.RoleCustomer
	}

	if err := s.validator.ValidateCreateUser(req); err != nil {
		return nil, validation.Failed("User validation failed", err)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         req.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, s.mapError("CreateUser", err)
	}

	s.cfg.Log.Info("User created by admin", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error) {
	limit = s.cfg.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	users, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, s.mapError("ListUsers", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, s.mapError("ListUsers", err)
	}
	return users, total, nil
}

func (s *authService) session(user *model.User) (*model.AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue session", err)
	}
	return &model.AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", apperrors.Internal("Failed to hash password", err)
	}
	return string(hash), nil
}

func (s *authService) mapError(op string, err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, autherrors.ErrEmailTaken):
		return apperrors.BadRequest("Email already registered")
	case errors.Is(err, autherrors.ErrNotFound), errors.Is(err, autherrors.ErrInvalidID):
		return apperrors.NotFound("User")
	}
	s.cfg.Log.Error("Auth operation failed", "operation", op, "error", err)
	return apperrors.Internal("Failed to process request", err)
}

func sanitizeRegister(req *model.RegisterRequest) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = sanitizer.NormalizePhone(req.Phone)
	if req.Craftsman != nil {
		req.Craftsman.Specialty = sanitizer.NormalizeLabel(req.Craftsman.Specialty)
		req.Craftsman.Bio = sanitizer.NormalizeText(req.Craftsman.Bio)
		req.Craftsman.Location.City = sanitizer.NormalizeCity(req.Craftsman.Location.City)
		req.Craftsman.Location.Address = sanitizer.TrimAndNormalize(req.Craftsman.Location.Address)
	}
}
