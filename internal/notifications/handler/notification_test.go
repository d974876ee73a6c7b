package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/logger"
	"hirfa/pkg/middleware"
	"hirfa/pkg/model"
	"hirfa/pkg/realtime"

	"github.com/julienschmidt/httprouter"
)

type mockNotificationService struct {
	listFunc     func(ctx context.Context, userID string, unreadOnly bool, limit int) (*model.NotificationList, error)
	createFunc   func(ctx context.Context, n *model.Notification) (*model.Notification, error)
	markReadFunc func(ctx context.Context, id, userID string) error
}

func (m *mockNotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) (*model.NotificationList, error) {
	return m.listFunc(ctx, userID, unreadOnly, limit)
}

func (m *mockNotificationService) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	return m.createFunc(ctx, n)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return m.markReadFunc(ctx, id, userID)
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return 4, nil
}

type roleVerifier struct{}

func (roleVerifier) VerifyToken(token string) (model.Principal, error) {
	role, user, _ := strings.Cut(token, "-")
	return model.Principal{UserID: user, Role: model.Role(role)}, nil
}

func newRouter(svc *mockNotificationService, secret string) *httprouter.Router {
	cfg := &config.Config{
		Log:                    logger.Discard(),
		DefaultPaginationLimit: 10,
		MaxPaginationLimit:     100,
		InternalAPISecret:      secret,
	}
	router := httprouter.New()
	hub := realtime.NewHub(cfg.Log)
	NewNotificationHandler(svc, hub, middleware.NewAuthenticator(roleVerifier{}), cfg).RegisterRoutes(router)
	return router
}

func TestGetAll_PassesQuery(t *testing.T) {
	var gotUser string
	var gotUnread bool
	var gotLimit int
	svc := &mockNotificationService{
		listFunc: func(ctx context.Context, userID string, unreadOnly bool, limit int) (*model.NotificationList, error) {
			gotUser, gotUnread, gotLimit = userID, unreadOnly, limit
			return &model.NotificationList{Notifications: []model.Notification{}, UnreadCount: 7}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?unread_only=true&limit=5", nil)
	req.Header.Set("Authorization", "Bearer customer-u1")
	w := httptest.NewRecorder()
	newRouter(svc, "").ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if gotUser != "u1" || !gotUnread || gotLimit != 5 {
		t.Errorf("got user=%s unread=%v limit=%d", gotUser, gotUnread, gotLimit)
	}

	var resp struct {
		Data model.NotificationList `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.UnreadCount != 7 {
		t.Errorf("unread_count = %d, want 7", resp.Data.UnreadCount)
	}
}

func TestGetAll_RequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	w := httptest.NewRecorder()
	newRouter(&mockNotificationService{}, "").ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestMarkRead_ForbiddenPassesThrough(t *testing.T) {
	svc := &mockNotificationService{
		markReadFunc: func(ctx context.Context, id, userID string) error {
			return apperrors.Forbidden("You do not have access to this notification")
		},
	}

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/id/n1/read", nil)
	req.Header.Set("Authorization", "Bearer customer-u2")
	w := httptest.NewRecorder()
	newRouter(svc, "").ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestInternalCreate(t *testing.T) {
	const secret = "internal-secret"
	body := `{"user_id":"6553f1c2a4b5c6d7e8f90001","type":"system","title":"Hi","message":"Hello"}`
	created := 0
	svc := &mockNotificationService{
		createFunc: func(ctx context.Context, n *model.Notification) (*model.Notification, error) {
			created++
			n.ID = "n1"
			return n, nil
		},
	}

	tests := []struct {
		name      string
		secret    string
		signature string
		status    int
	}{
		{"disabled without secret", "", "sha256=" + middleware.Sign([]byte(body), secret), http.StatusNotFound},
		{"missing signature", secret, "", http.StatusUnauthorized},
		{"wrong signature", secret, "sha256=" + middleware.Sign([]byte(body), "other"), http.StatusUnauthorized},
		{"valid signature", secret, "sha256=" + middleware.Sign([]byte(body), secret), http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications", strings.NewReader(body))
			if tt.signature != "" {
				req.Header.Set(middleware.InternalSignatureHeader, tt.signature)
			}
			w := httptest.NewRecorder()
			newRouter(svc, tt.secret).ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.status, w.Body.String())
			}
		})
	}
	if created != 1 {
		t.Errorf("created = %d, want 1", created)
	}
}
