package service

import (
	"context"
	"errors"

	notificationserrors "hirfa/internal/notifications/errors"
	"hirfa/internal/notifications/repository"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/model"
	"hirfa/pkg/sanitizer"
	"hirfa/pkg/validation"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

const DefaultListLimit = 50

type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool, limit int) (*model.NotificationList, error)
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type notificationService struct {
	repo     repository.NotificationRepository
	emitter  *Emitter
	validate *validator.Validate
	cfg      *config.Config
}

func NewNotificationService(repo repository.NotificationRepository, emitter *Emitter, cfg *config.Config) NotificationService {
	return &notificationService{
		repo:     repo,
		emitter:  emitter,
		validate: validation.New(),
		cfg:      cfg,
	}
}

func (s *notificationService) List(ctx context.Context, userID string, unreadOnly bool, limit int) (*model.NotificationList, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, s.cfg.MaxPaginationLimit)

	list := &model.NotificationList{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		list.Notifications, err = s.repo.FindByUser(gctx, userID, unreadOnly, limit)
		return err
	})
	g.Go(func() (err error) {
		list.UnreadCount, err = s.repo.CountUnread(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.mapError("List", err)
	}
	return list, nil
}

// Create is used by other backend services through the signed internal
// endpoint.
func (s *notificationService) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	n.ID = ""
	n.Title = sanitizer.TrimAndNormalize(n.Title)
	n.Message = sanitizer.NormalizeText(n.Message)
	n.Link = sanitizer.TrimAndNormalize(n.Link)
	if n.Type == "" {
		n.Type = model.NotificationSystem
	}

	if err := validation.Translate(s.validate.Struct(n)); err != nil {
		return nil, validation.Failed("Notification validation failed", err)
	}

	if err := s.emitter.Emit(ctx, n); err != nil {
		return nil, s.mapError("Create", err)
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		return s.mapError("MarkRead", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, s.mapError("MarkAllRead", err)
	}
	return n, nil
}

func (s *notificationService) mapError(op string, err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, notificationserrors.ErrNotFound), errors.Is(err, notificationserrors.ErrInvalidID):
		return apperrors.NotFound("Notification")
	case errors.Is(err, notificationserrors.ErrNotOwner):
		return apperrors.Forbidden("You do not have access to this notification")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Notification request timed out")
	}
	s.cfg.Log.Error("Notification operation failed", "operation", op, "error", err)
	return apperrors.Internal("Failed to process notification", err)
}
