package service

import (
	"context"

	authservice "hirfa/internal/auth/service"
	craftsmenservice "hirfa/internal/craftsmen/service"
	"hirfa/pkg/config"
	"hirfa/pkg/model"
	"hirfa/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type Notifier interface {
	Emit(ctx context.Context, n *model.Notification) error
}

// AdminService is the back office: user management and the craftsman
// verification queue.
type AdminService interface {
	ListUsers(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error)
	CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	PendingCraftsmen(ctx context.Context, limit int, offset int64) ([]model.CraftsmanProfile, int64, error)
	Verify(ctx context.Context, craftsmanID string, req *model.VerifyRequest) (*model.Craftsman, error)
}

type adminService struct {
	users     authservice.AuthService
	craftsmen craftsmenservice.CraftsmanService
	notifier  Notifier
	validate  *validator.Validate
	cfg       *config.Config
}

func NewAdminService(users authservice.AuthService, craftsmen craftsmenservice.CraftsmanService, notifier Notifier, cfg *config.Config) AdminService {
	return &adminService{
		users:     users,
		craftsmen: craftsmen,
		notifier:  notifier,
		validate:  validation.New(),
		cfg:       cfg,
	}
}

func (s *adminService) ListUsers(ctx context.Context, limit int, offset int64) ([]*model.User, int64, error) {
	return s.users.ListUsers(ctx, limit, offset)
}

func (s *adminService) CreateUser(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	user, err := s.users.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	s.cfg.Log.Info("User created by admin", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *adminService) PendingCraftsmen(ctx context.Context, limit int, offset int64) ([]model.CraftsmanProfile, int64, error) {
	return s.craftsmen.ListPending(ctx, limit, offset)
}

func (s *adminService) Verify(ctx context.Context, craftsmanID string, req *model.VerifyRequest) (*model.Craftsman, error) {
	if err := validation.Translate(s.validate.Struct(req)); err != nil {
		return nil, validation.Failed("Verification validation failed", err)
	}

	c, err := s.craftsmen.SetVerified(ctx, craftsmanID, *req.Verified)
	if err != nil {
		return nil, err
	}

	n := &model.Notification{
		UserID:  c.UserID,
		Type:    model.NotificationVerification,
		Title:   "Profile verified",
		Message: "Your craftsman profile is now verified and visible in search",
		Link:    "/profile",
		Data:    map[string]any{"craftsman_id": c.ID, "verified": c.Verified},
	}
	if !c.Verified {
		n.Title = "Verification removed"
		n.Message = "Your craftsman profile is no longer verified"
	}
	if err := s.notifier.Emit(ctx, n); err != nil {
		s.cfg.Log.Error("Failed to emit verification notification", "craftsman_id", c.ID, "error", err)
	}
	return c, nil
}
