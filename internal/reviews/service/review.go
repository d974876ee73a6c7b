package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hirfa/internal/bookings/errors"
	craftsmenerrors "hirfa/internal/craftsmen/errors"
	reviewserrors "hirfa/internal/reviews/errors"
	"hirfa/internal/reviews/repository"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/kafka"
	"hirfa/pkg/model"
	"hirfa/pkg/sanitizer"
	"hirfa/pkg/validation"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

const DefaultListLimit = 50

type BookingReader interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
}

// CraftsmanRatings keeps the craftsman's aggregate rating in step with the
// reviews collection.
type CraftsmanRatings interface {
	FindByID(ctx context.Context, id string) (*model.Craftsman, error)
	ApplyReviewDelta(ctx context.Context, id string, ratingDelta, countDelta int) (*model.Craftsman, error)
}

type ReviewService interface {
	List(ctx context.Context, filter model.ReviewFilter) ([]model.ReviewView, error)
	Create(ctx context.Context, caller model.Principal, req *model.ReviewRequest) (*model.Review, error)
	Respond(ctx context.Context, caller model.Principal, id string, req *model.ReviewResponseRequest) (*model.Review, error)
	Delete(ctx context.Context, caller model.Principal, id string) error
}

type reviewService struct {
	repo      repository.ReviewRepository
	bookings  BookingReader
	craftsmen CraftsmanRatings
	events    kafka.EventPublisher
	validate  *validator.Validate
	cfg       *config.Config
}

func NewReviewService(
	repo repository.ReviewRepository,
	bookings BookingReader,
	craftsmen CraftsmanRatings,
	events kafka.EventPublisher,
	cfg *config.Config,
) ReviewService {
	return &reviewService{
		repo:      repo,
		bookings:  bookings,
		craftsmen: craftsmen,
		events:    events,
		validate:  validation.New(),
		cfg:       cfg,
	}
}

func (s *reviewService) List(ctx context.Context, filter model.ReviewFilter) ([]model.ReviewView, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	filter.Limit = min(filter.Limit, s.cfg.MaxPaginationLimit)

	reviews, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.mapError("List", err)
	}
	return reviews, nil
}

// Create stores the review and folds its rating into the craftsman's
// average in the same transaction.
func (s *reviewService) Create(ctx context.Context, caller model.Principal, req *model.ReviewRequest) (*model.Review, error) {
	req.Comment = sanitizer.NormalizeText(req.Comment)
	if err := validation.Translate(s.validate.Struct(req)); err != nil {
		return nil, validation.Failed("Review validation failed", err)
	}

	booking, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, s.mapError("Create", err)
	}
	if booking.CustomerID != caller.UserID {
		return nil, apperrors.Forbidden("You can only review your own bookings")
	}
	if booking.State != model.StateCompleted {
		return nil, apperrors.BadRequest("You can only review completed bookings")
	}

	review := &model.Review{
		BookingID:   booking.ID,
		CraftsmanID: booking.CraftsmanID,
		CustomerID:  caller.UserID,
		Rating:      req.Rating,
		Comment:     req.Comment,
	}

	var craftsman *model.Craftsman
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		exists, err := s.repo.ExistsForBooking(sessCtx, booking.ID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: booking %s", reviewserrors.ErrDuplicateReview, booking.ID)
		}
		if err := s.repo.Create(sessCtx, review); err != nil {
			return err
		}
		craftsman, err = s.craftsmen.ApplyReviewDelta(sessCtx, review.CraftsmanID, review.Rating, 1)
		return err
	})
	if err != nil {
		return nil, s.mapError("Create", err)
	}

	s.cfg.Log.Info("Review created",
		"review_id", review.ID,
		"craftsman_id", review.CraftsmanID,
		"rating", review.Rating,
		"craftsman_rating", craftsman.Rating,
	)
	s.publish(ctx, model.EventTypeReviewCreated, review, craftsman.UserID)
	return review, nil
}

func (s *reviewService) Respond(ctx context.Context, caller model.Principal, id string, req *model.ReviewResponseRequest) (*model.Review, error) {
	req.Response = sanitizer.NormalizeText(req.Response)
	if err := validation.Translate(s.validate.Struct(req)); err != nil {
		return nil, validation.Failed("Review response validation failed", err)
	}

	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError("Respond", err)
	}

	craftsman, err := s.craftsmen.FindByID(ctx, review.CraftsmanID)
	if err != nil {
		return nil, s.mapError("Respond", err)
	}
	if craftsman.UserID != caller.UserID {
		return nil, apperrors.Forbidden("Only the reviewed craftsman can respond")
	}

	updated, err := s.repo.UpdateResponse(ctx, id, req.Response)
	if err != nil {
		return nil, s.mapError("Respond", err)
	}
	return updated, nil
}

func (s *reviewService) Delete(ctx context.Context, caller model.Principal, id string) error {
	review, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.mapError("Delete", err)
	}
	if review.CustomerID != caller.UserID && !caller.Is(model.RoleAdmin) {
		return apperrors.Forbidden("You can only delete your own reviews")
	}

	var craftsman *model.Craftsman
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, review.ID); err != nil {
			return err
		}
		var err error
		craftsman, err = s.craftsmen.ApplyReviewDelta(sessCtx, review.CraftsmanID, -review.Rating, -1)
		return err
	})
	if err != nil {
		return s.mapError("Delete", err)
	}

	s.cfg.Log.Info("Review deleted", "review_id", review.ID, "by", caller.UserID, "craftsman_rating", craftsman.Rating)
	s.publish(ctx, model.EventTypeReviewDeleted, review, craftsman.UserID)
	return nil
}

func (s *reviewService) publish(ctx context.Context, eventType string, r *model.Review, craftsmanUserID string) {
	payload := model.ReviewEventPayload{
		ReviewID:        r.ID,
		BookingID:       r.BookingID,
		CraftsmanID:     r.CraftsmanID,
		CraftsmanUserID: craftsmanUserID,
		CustomerID:      r.CustomerID,
		Rating:          r.Rating,
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.events.PublishEvent(ctx, eventType, r.CraftsmanID, payload); err != nil {
		s.cfg.Log.Error("Failed to publish review event", "event_type", eventType, "review_id", r.ID, "error", err)
	}
}

func (s *reviewService) mapError(op string, err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, reviewserrors.ErrNotFound), errors.Is(err, reviewserrors.ErrInvalidID):
		return apperrors.NotFound("Review")
	case errors.Is(err, reviewserrors.ErrDuplicateReview):
		return apperrors.BadRequest("You have already reviewed this booking")
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.NotFound("Booking")
	case errors.Is(err, craftsmenerrors.ErrNotFound), errors.Is(err, craftsmenerrors.ErrInvalidID):
		return apperrors.NotFound("Craftsman")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Review request timed out")
	}
	s.cfg.Log.Error("Review operation failed", "operation", op, "error", err)
	return apperrors.Internal("Failed to process review", err)
}
