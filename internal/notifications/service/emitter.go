package service

import (
	"context"

	"hirfa/internal/notifications/repository"
	"hirfa/pkg/logger"
	"hirfa/pkg/model"
	"hirfa/pkg/realtime"
)

// Emitter stores a notification and then pushes it to the user's live
// connections. The stored document is what counts; a failed push is only
// logged and the client catches up through the list endpoint.
type Emitter struct {
	repo      repository.NotificationRepository
	publisher realtime.Publisher
	log       *logger.Logger
}

func NewEmitter(repo repository.NotificationRepository, publisher realtime.Publisher, log *logger.Logger) *Emitter {
	return &Emitter{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

func (e *Emitter) Emit(ctx context.Context, n *model.Notification) error {
	if err := e.repo.Create(ctx, n); err != nil {
		return err
	}

	if err := e.publisher.Publish(ctx, n.UserID, realtime.TypeNotification, n); err != nil {
		e.log.Warn("Realtime push failed",
			"notification_id", n.ID,
			"user_id", n.UserID,
			"error", err,
		)
	}
	return nil
}
