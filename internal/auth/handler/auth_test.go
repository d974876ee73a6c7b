package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/logger"
	"hirfa/pkg/middleware"
	"hirfa/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockAuthService struct {
	registerFunc func(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error)
	loginFunc    func(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error)
	meFunc       func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
	return m.registerFunc(ctx, req)
}

func (m *mockAuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
	return m.loginFunc(ctx, req)
}

func (m *mockAuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	return m.meFunc(ctx, userID)
}

func (m *mockAuthService) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	return nil, nil
}

func (m *mockAuthService) ListUsers(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error) {
	return nil, 0, nil
}

type staticVerifier struct {
	principal model.Principal
}

func (v staticVerifier) VerifyToken(token string) (model.Principal, error) {
	if token != "good" {
		return model.Principal{}, apperrors.Unauthorized("bad token")
	}
	return v.principal, nil
}

func newRouter(svc *mockAuthService) *httprouter.Router {
	auth := middleware.NewAuthenticator(staticVerifier{principal: model.Principal{UserID: "u1", Role: model.RoleCustomer}})
	router := httprouter.New()
	NewAuthHandler(svc, auth, logger.Discard()).RegisterRoutes(router)
	return router
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
	}{
		{"created", `{"name":"Amina","email":"a@x.ma","password":"secret1","phone":"+212612345678","role":"customer"}`, nil, http.StatusCreated},
		{"malformed body", `{"name":`, nil, http.StatusBadRequest},
		{"duplicate email", `{"email":"a@x.ma"}`, apperrors.BadRequest("Email already registered"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{
				registerFunc: func(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
					if tt.serviceErr != nil {
						return nil, tt.serviceErr
					}
					return &model.AuthResult{Token: "tok", User: &model.User{ID: "u1", Email: req.Email}}, nil
				},
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			newRouter(svc).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestLogin_DoesNotLeakPasswordHash(t *testing.T) {
	svc := &mockAuthService{
		loginFunc: func(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
			return &model.AuthResult{
				Token: "tok",
				User:  &model.User{ID: "u1", Email: req.Email, PasswordHash: "$2a$10$secret"},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@x.ma","password":"secret1"}`))
	w := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "$2a$10$secret") {
		t.Error("password hash serialized in login response")
	}

	var resp struct {
		Data model.AuthResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Token != "tok" {
		t.Errorf("token = %q", resp.Data.Token)
	}
}

func TestMe(t *testing.T) {
	var gotUserID string
	svc := &mockAuthService{
		meFunc: func(ctx context.Context, userID string) (*model.User, error) {
			gotUserID = userID
			return &model.User{ID: userID}, nil
		},
	}
	router := newRouter(svc)

	t.Run("without token", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("with token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if gotUserID != "u1" {
			t.Errorf("service got user %q, want u1", gotUserID)
		}
	})
}
