package service

import (
	"context"
	"net/http"
	"testing"

	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/logger"
	"hirfa/pkg/model"
)

type stubAuth struct {
	created *model.CreateUserRequest
}

func (s *stubAuth) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResult, error) {
	return nil, nil
}

func (s *stubAuth) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResult, error) {
	return nil, nil
}

func (s *stubAuth) Me(ctx context.Context, userID string) (*model.User, error) {
	return nil, nil
}

func (s *stubAuth) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	s.created = req
	return &model.User{ID: "u1", Email: req.Email, Role: req.Role}, nil
}

func (s *stubAuth) ListUsers(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error) {
	return []*model.User{{ID: "u1"}}, 1, nil
}

type stubCraftsmen struct {
	verified map[string]bool
}

func (s *stubCraftsmen) List(ctx context.Context, filter model.CraftsmanFilter) (*model.CraftsmanSearchResult, error) {
	return nil, nil
}

func (s *stubCraftsmen) Search(ctx context.Context, filter model.CraftsmanFilter) (*model.CraftsmanSearchResult, error) {
	return nil, nil
}

func (s *stubCraftsmen) GetDetail(ctx context.Context, id string) (*model.CraftsmanDetail, error) {
	return nil, nil
}

func (s *stubCraftsmen) UpdateMine(ctx context.Context, userID string, update *model.CraftsmanUpdate) (*model.Craftsman, error) {
	return nil, nil
}

func (s *stubCraftsmen) ListPending(ctx context.Context, limit int, offset int64) ([]model.CraftsmanProfile, int64, error) {
	return []model.CraftsmanProfile{}, 0, nil
}

func (s *stubCraftsmen) SetVerified(ctx context.Context, id string, verified bool) (*model.Craftsman, error) {
	if id != "c1" {
		return nil, apperrors.NotFound("Craftsman")
	}
	s.verified[id] = verified
	return &model.Craftsman{ID: id, UserID: "craftsman-user", Verified: verified}, nil
}

type recordingNotifier struct {
	sent []*model.Notification
}

func (r *recordingNotifier) Emit(ctx context.Context, n *model.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

func newTestService() (AdminService, *stubCraftsmen, *recordingNotifier) {
	craftsmen := &stubCraftsmen{verified: map[string]bool{}}
	notifier := &recordingNotifier{}
	cfg := &config.Config{Log: logger.Discard()}
	return NewAdminService(&stubAuth{}, craftsmen, notifier, cfg), craftsmen, notifier
}

func TestVerify_NotifiesCraftsman(t *testing.T) {
	svc, craftsmen, notifier := newTestService()
	verified := true

	c, err := svc.Verify(context.Background(), "c1", &model.VerifyRequest{Verified: &verified})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !c.Verified || !craftsmen.verified["c1"] {
		t.Errorf("craftsman not verified")
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(notifier.sent))
	}
	n := notifier.sent[0]
	if n.UserID != "craftsman-user" || n.Type != model.NotificationVerification {
		t.Errorf("notification = %+v", n)
	}
}

func TestVerify_Errors(t *testing.T) {
	verified := true

	tests := []struct {
		name   string
		id     string
		req    *model.VerifyRequest
		status int
	}{
		{"missing flag", "c1", &model.VerifyRequest{}, http.StatusUnprocessableEntity},
		{"unknown craftsman", "c2", &model.VerifyRequest{Verified: &verified}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, notifier := newTestService()
			_, err := svc.Verify(context.Background(), tt.id, tt.req)
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.StatusCode() != tt.status {
				t.Errorf("err = %v, want status %d", err, tt.status)
			}
			if len(notifier.sent) != 0 {
				t.Errorf("no notification expected on failure")
			}
		})
	}
}

func TestVerify_Unverify(t *testing.T) {
	svc, _, notifier := newTestService()
	verified := false

	if _, err := svc.Verify(context.Background(), "c1", &model.VerifyRequest{Verified: &verified}); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if notifier.sent[0].Title != "Verification removed" {
		t.Errorf("title = %q", notifier.sent[0].Title)
	}
}
