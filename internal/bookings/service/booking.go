package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "hirfa/internal/bookings/errors"
	"hirfa/internal/bookings/repository"
	"hirfa/internal/bookings/validator"
	craftsmenerrors "hirfa/internal/craftsmen/errors"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/kafka"
	"hirfa/pkg/model"
	"hirfa/pkg/sanitizer"
	"hirfa/pkg/validation"

	"golang.org/x/sync/errgroup"
)

// CraftsmanReader resolves the craftsman side of a booking.
type CraftsmanReader interface {
	FindByID(ctx context.Context, id string) (*model.Craftsman, error)
	FindByUserID(ctx context.Context, userID string) (*model.Craftsman, error)
}

type BookingService interface {
	Create(ctx context.Context, caller model.Principal, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, caller model.Principal, id string) (*model.Booking, error)
	List(ctx context.Context, caller model.Principal, status string, limit int, offset int64) ([]*model.Booking, int64, error)
	ChangeStatus(ctx context.Context, caller model.Principal, id string, action *model.BookingAction) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	craftsmen CraftsmanReader
	events    kafka.EventPublisher
	validator *validator.BookingValidator
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	craftsmen CraftsmanReader,
	events kafka.EventPublisher,
	validator *validator.BookingValidator,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		craftsmen: craftsmen,
		events:    events,
		validator: validator,
		cfg:       cfg,
	}
}

// Create books a craftsman. The price is always derived from the
// craftsman's current hourly rate.
func (s *bookingService) Create(ctx context.Context, caller model.Principal, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)

	scheduledAt, err := s.validator.ValidateRequest(req)
	if err != nil {
		s.cfg.Log.Warn("Booking validation failed", "customer_id", caller.UserID, "error", err)
		return nil, validation.Failed("Booking validation failed", err)
	}

	craftsman, err := s.craftsmen.FindByID(ctx, req.CraftsmanID)
	if err != nil {
		return nil, s.mapError("Create", err)
	}
	if craftsman.UserID == caller.UserID {
		return nil, apperrors.BadRequest("You cannot book yourself")
	}

	booking := &model.Booking{
		CustomerID:    caller.UserID,
		CraftsmanID:   craftsman.ID,
		Service:       req.Service,
		Description:   req.Description,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
		ScheduledAt:   scheduledAt.UTC(),
		Duration:      req.Duration,
		Location:      req.Location,
		State:         model.StateCreated,
		Price:         model.PriceFor(req.Duration, craftsman.HourlyRate),
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, s.mapError("Create", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"booking_id", booking.ID,
		"customer_id", booking.CustomerID,
		"craftsman_id", booking.CraftsmanID,
		"price", booking.Price,
	)
	s.publish(ctx, model.EventTypeBookingCreated, booking, craftsman.UserID, "", caller.UserID)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, caller model.Principal, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError("GetByID", err)
	}

	if caller.Is(model.RoleAdmin) || booking.CustomerID == caller.UserID {
		return booking, nil
	}

	craftsman, err := s.craftsmen.FindByID(ctx, booking.CraftsmanID)
	if err != nil {
		return nil, s.mapError("GetByID", err)
	}
	if craftsman.UserID != caller.UserID {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	return booking, nil
}

// List shows customers their own bookings, craftsmen the bookings made
// with them and admins everything.
func (s *bookingService) List(ctx context.Context, caller model.Principal, status string, limit int, offset int64) ([]*model.Booking, int64, error) {
	filter := model.BookingFilter{
		Limit:  s.cfg.NormalizePaginationLimit(limit),
		Offset: config.NormalizeOffset(offset),
	}

	if status != "" && status != "all" {
		filter.States = model.StatesForStatus(status)
		if filter.States == nil {
			return nil, 0, apperrors.InvalidInput("invalid status parameter: " + status)
		}
	}

	switch caller.Role {
	case model.RoleAdmin:
	case model.RoleCraftsman:
		craftsman, err := s.craftsmen.FindByUserID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, craftsmenerrors.ErrNotFound) {
				return []*model.Booking{}, 0, nil
			}
			return nil, 0, s.mapError("List", err)
		}
		filter.CraftsmanID = craftsman.ID
	default:
		filter.CustomerID = caller.UserID
	}

	var (
		bookings []*model.Booking
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bookings, err = s.repo.FindAll(gctx, filter)
		return err
	})
	g.Go(func() (err error) {
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, 0, s.mapError("List", err)
	}

	return bookings, total, nil
}

// ChangeStatus applies a participant's action. Starting and completing
// belong to the craftsman; either side may cancel an unpaid booking.
func (s *bookingService) ChangeStatus(ctx context.Context, caller model.Principal, id string, action *model.BookingAction) (*model.Booking, error) {
	if err := s.validator.ValidateAction(action); err != nil {
		return nil, validation.Failed("Invalid booking action", err)
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError("ChangeStatus", err)
	}
	craftsman, err := s.craftsmen.FindByID(ctx, booking.CraftsmanID)
	if err != nil {
		return nil, s.mapError("ChangeStatus", err)
	}

	isCraftsman := craftsman.UserID == caller.UserID
	isCustomer := booking.CustomerID == caller.UserID
	event := action.Event()

	switch event {
	case model.EventStart, model.EventComplete:
		if !isCraftsman {
			return nil, apperrors.Forbidden("Only the booked craftsman can " + action.Action + " this booking")
		}
	case model.EventCancel:
		if !isCraftsman && !isCustomer {
			return nil, apperrors.Forbidden("You do not have access to this booking")
		}
	}

	next, err := model.Transition(booking.State, event)
	if err != nil {
		return nil, s.mapError("ChangeStatus", err)
	}

	updated, err := s.repo.UpdateState(ctx, booking.ID, booking.State, next)
	if err != nil {
		return nil, s.mapError("ChangeStatus", err)
	}

	s.cfg.Log.Info("Booking status changed",
		"booking_id", updated.ID,
		"from", booking.State,
		"to", updated.State,
		"actor_id", caller.UserID,
	)
	s.publish(ctx, model.EventTypeBookingStatusChanged, updated, craftsman.UserID, booking.State, caller.UserID)
	return updated, nil
}

// publish emits a booking event. The booking document is already stored,
// so a broker failure is logged rather than returned.
func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking, craftsmanUserID string, previous model.BookingState, actorID string) {
	payload := model.BookingEventPayload{
		BookingID:       b.ID,
		CustomerID:      b.CustomerID,
		CraftsmanID:     b.CraftsmanID,
		CraftsmanUserID: craftsmanUserID,
		Service:         b.Service,
		State:           b.State,
		PreviousState:   previous,
		ActorID:         actorID,
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.events.PublishEvent(ctx, eventType, b.ID, payload); err != nil {
		s.cfg.Log.Error("Failed to publish booking event", "event_type", eventType, "booking_id", b.ID, "error", err)
	}
}

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.Service = sanitizer.TrimAndNormalize(req.Service)
	req.Description = sanitizer.NormalizeText(req.Description)
	req.Notes = sanitizer.NormalizeText(req.Notes)
	req.ScheduledDate = sanitizer.TrimAndNormalize(req.ScheduledDate)
	req.ScheduledTime = sanitizer.TrimAndNormalize(req.ScheduledTime)
	req.Location.City = sanitizer.NormalizeCity(req.Location.City)
	req.Location.Address = sanitizer.TrimAndNormalize(req.Location.Address)
}

func (s *bookingService) mapError(op string, err error) error {
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.NotFound("Booking")
	case errors.Is(err, craftsmenerrors.ErrNotFound), errors.Is(err, craftsmenerrors.ErrInvalidID):
		return apperrors.NotFound("Craftsman")
	case errors.Is(err, model.ErrIllegalTransition):
		return apperrors.Conflict("Booking cannot change status: " + err.Error())
	case errors.Is(err, bookingserrors.ErrStateChanged):
		return apperrors.Conflict("Booking was modified concurrently, please retry")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Booking request timed out")
	}
	s.cfg.Log.Error("Booking operation failed", "operation", op, "error", err)
	return apperrors.Internal("Failed to process booking", err)
}
