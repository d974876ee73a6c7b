package middleware

import (
	"errors"
	"hirfa/pkg/model"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
)

type stubVerifier struct {
	principals map[string]model.Principal
}

func (s stubVerifier) VerifyToken(token string) (model.Principal, error) {
	if p, ok := s.principals[token]; ok {
		return p, nil
	}
	return model.Principal{}, errors.New("bad token")
}

func TestAuthenticator_Require(t *testing.T) {
	auth := NewAuthenticator(stubVerifier{principals: map[string]model.Principal{
		"customer-token": {UserID: "u1", Role: model.RoleCustomer},
		"admin-token":    {UserID: "a1", Role: model.RoleAdmin},
	}})

	var seen model.Principal
	handle := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seen, _ = PrincipalFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	tests := []struct {
		name       string
		header     string
		roles      []model.Role
		wantStatus int
		wantUser   string
	}{
		{"no header", "", nil, http.StatusUnauthorized, ""},
		{"not bearer", "Basic abc", nil, http.StatusUnauthorized, ""},
		{"unknown token", "Bearer nope", nil, http.StatusUnauthorized, ""},
		{"any role", "Bearer customer-token", nil, http.StatusOK, "u1"},
		{"wrong role", "Bearer customer-token", []model.Role{model.RoleAdmin}, http.StatusForbidden, ""},
		{"admin role", "Bearer admin-token", []model.Role{model.RoleAdmin}, http.StatusOK, "a1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = model.Principal{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			auth.Require(handle, tt.roles...)(w, req, nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if seen.UserID != tt.wantUser {
				t.Errorf("principal = %q, want %q", seen.UserID, tt.wantUser)
			}
		})
	}
}

func TestBearerToken_QueryFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/ws?token=abc", nil)
	if got := BearerToken(req); got != "abc" {
		t.Errorf("BearerToken = %q, want abc", got)
	}
}
