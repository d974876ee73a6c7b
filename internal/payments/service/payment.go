package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hirfa/internal/bookings/errors"
	craftsmenerrors "hirfa/internal/craftsmen/errors"
	paymentserrors "hirfa/internal/payments/errors"
	"hirfa/internal/payments/repository"
	"hirfa/pkg/config"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/kafka"
	"hirfa/pkg/model"
	"hirfa/pkg/payment"
	"hirfa/pkg/validation"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingStore is the slice of the bookings repository payments needs.
type BookingStore interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByPaymentIntent(ctx context.Context, intentID string) (*model.Booking, error)
	UpdateState(ctx context.Context, id string, from, to model.BookingState) (*model.Booking, error)
	SetPaymentIntent(ctx context.Context, id, intentID string, from, to model.BookingState) (*model.Booking, error)
}

type CraftsmanReader interface {
	FindByID(ctx context.Context, id string) (*model.Craftsman, error)
}

type Notifier interface {
	Emit(ctx context.Context, n *model.Notification) error
}

type PaymentService interface {
	CreateIntent(ctx context.Context, caller model.Principal, req *model.CreateIntentRequest) (*model.PaymentIntentResult, error)
	Confirm(ctx context.Context, caller model.Principal, req *model.ConfirmPaymentRequest) (*model.Booking, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type paymentService struct {
	bookings  BookingStore
	events    repository.PaymentEventRepository
	craftsmen CraftsmanReader
	provider  payment.Provider
	notifier  Notifier
	publisher kafka.EventPublisher
	validate  *validator.Validate
	cfg       *config.Config
}

func NewPaymentService(
	bookings BookingStore,
	events repository.PaymentEventRepository,
	craftsmen CraftsmanReader,
	provider payment.Provider,
	notifier Notifier,
	publisher kafka.EventPublisher,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		bookings:  bookings,
		events:    events,
		craftsmen: craftsmen,
		provider:  provider,
		notifier:  notifier,
		publisher: publisher,
		validate:  validation.New(),
		cfg:       cfg,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, caller model.Principal, req *model.CreateIntentRequest) (*model.PaymentIntentResult, error) {
	if err := validation.Translate(s.validate.Struct(req)); err != nil {
		return nil, validation.Failed("Payment validation failed", err)
	}

	booking, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, s.mapError("CreateIntent", err)
	}
	if booking.CustomerID != caller.UserID {
		return nil, apperrors.Forbidden("You can only pay for your own bookings")
	}
	if booking.State.IsPaid() {
		return nil, apperrors.BadRequest("Booking already paid")
	}

	next, err := model.Transition(booking.State, model.EventIntentCreated)
	if err != nil {
		return nil, s.mapError("CreateIntent", err)
	}

	intent, err := s.provider.CreateIntent(ctx, payment.IntentRequest{
		Amount:      booking.AmountMinor(),
		Currency:    s.cfg.PaymentCurrency,
		Description: "Payment for " + booking.Service,
		Metadata: map[string]string{
			payment.MetadataBookingID:  booking.ID,
			payment.MetadataCustomerID: booking.CustomerID,
		},
		IdempotencyKey: intentIdempotencyKey(booking),
	})
	if err != nil {
		return nil, s.mapError("CreateIntent", err)
	}

	if _, err := s.bookings.SetPaymentIntent(ctx, booking.ID, intent.ID, booking.State, next); err != nil {
		if !errors.Is(err, bookingserrors.ErrStateChanged) {
			return nil, s.mapError("CreateIntent", err)
		}
		// A twin request with the same key may have stored the same intent.
		current, findErr := s.bookings.FindByID(ctx, booking.ID)
		if findErr != nil || current.PaymentIntent != intent.ID {
			return nil, s.mapError("CreateIntent", err)
		}
	}

	s.cfg.Log.Info("Payment intent created",
		"booking_id", booking.ID,
		"payment_intent", intent.ID,
		"amount", intent.Amount,
	)
	return &model.PaymentIntentResult{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

// intentIdempotencyKey is stable for repeated requests against the same
// booking state, so the provider hands back the intent it already created.
// Storing an intent changes the key for the next attempt.
func intentIdempotencyKey(b *model.Booking) string {
	return "intent:" + b.ID + ":" + string(b.State) + ":" + b.PaymentIntent
}

// Confirm is the client-side path: after the payment sheet completes the
// customer asks us to verify the intent with the provider.
func (s *paymentService) Confirm(ctx context.Context, caller model.Principal, req *model.ConfirmPaymentRequest) (*model.Booking, error) {
	if err := validation.Translate(s.validate.Struct(req)); err != nil {
		return nil, validation.Failed("Payment validation failed", err)
	}

	intent, err := s.provider.RetrieveIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, s.mapError("Confirm", err)
	}
	if !intent.Succeeded() {
		return nil, apperrors.BadRequest("Payment not completed")
	}

	booking, err := s.bookings.FindByPaymentIntent(ctx, intent.ID)
	if err != nil {
		return nil, s.mapError("Confirm", err)
	}
	if booking.CustomerID != caller.UserID {
		return nil, apperrors.Forbidden("You can only confirm your own payments")
	}

	confirmed, applied, err := s.applySucceeded(ctx, booking.ID, intent.ID, model.PaymentSourceConfirm)
	if err != nil {
		return nil, s.mapError("Confirm", err)
	}
	if applied {
		s.afterConfirmed(ctx, confirmed, true)
	}
	return confirmed, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		return s.mapError("HandleWebhook", err)
	}

	log := s.cfg.Log.With("event_id", event.ID, "event_type", event.Type)

	switch event.Type {
	case payment.EventPaymentSucceeded:
		err = s.webhookSucceeded(ctx, event)
	case payment.EventPaymentFailed:
		err = s.webhookFailed(ctx, event)
	case payment.EventChargeRefunded:
		err = s.webhookRefunded(ctx, event)
	default:
		log.Debug("Ignoring webhook event")
		return nil
	}

	// Outcomes the provider cannot fix by redelivering are acknowledged.
	switch {
	case err == nil:
		return nil
	case errors.Is(err, paymentserrors.ErrMissingBooking),
		errors.Is(err, bookingserrors.ErrNotFound),
		errors.Is(err, bookingserrors.ErrInvalidID),
		errors.Is(err, model.ErrIllegalTransition):
		log.Warn("Webhook event not applied", "error", err)
		return nil
	}
	return s.mapError("HandleWebhook", err)
}

func (s *paymentService) webhookSucceeded(ctx context.Context, event *payment.Event) error {
	bookingID := event.Metadata[payment.MetadataBookingID]
	if bookingID == "" {
		return fmt.Errorf("%w: %s", paymentserrors.ErrMissingBooking, event.ID)
	}

	confirmed, applied, err := s.applySucceeded(ctx, bookingID, event.PaymentIntentID, model.PaymentSourceWebhook)
	if err != nil {
		return err
	}
	if applied {
		s.afterConfirmed(ctx, confirmed, false)
	}
	return nil
}

func (s *paymentService) webhookFailed(ctx context.Context, event *payment.Event) error {
	booking, err := s.bookingForEvent(ctx, event)
	if err != nil {
		return err
	}

	err = s.events.Record(ctx, &model.PaymentEvent{
		ID:            event.ID,
		PaymentIntent: event.PaymentIntentID,
		BookingID:     booking.ID,
		Kind:          model.PaymentKindFailed,
		Source:        model.PaymentSourceWebhook,
	})
	if errors.Is(err, paymentserrors.ErrAlreadyApplied) {
		return nil
	}
	if err != nil {
		return err
	}

	message := "Your payment for " + booking.Service + " failed"
	if event.FailureMessage != "" {
		message += ": " + event.FailureMessage
	}
	s.notify(ctx, &model.Notification{
		UserID:  booking.CustomerID,
		Type:    model.NotificationPayment,
		Title:   "Payment failed",
		Message: message,
		Link:    "/bookings/" + booking.ID,
		Data:    map[string]any{"booking_id": booking.ID, "payment_intent": event.PaymentIntentID},
	})
	s.publish(ctx, model.EventTypePaymentFailed, booking, "")
	return nil
}

func (s *paymentService) webhookRefunded(ctx context.Context, event *payment.Event) error {
	if event.PaymentIntentID == "" {
		return fmt.Errorf("%w: %s", paymentserrors.ErrMissingBooking, event.ID)
	}

	var refunded *model.Booking
	err := s.events.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.bookings.FindByPaymentIntent(sessCtx, event.PaymentIntentID)
		if err != nil {
			return err
		}
		if err := s.events.Record(sessCtx, &model.PaymentEvent{
			ID:            model.PaymentEventKey(event.PaymentIntentID, model.PaymentKindRefunded),
			PaymentIntent: event.PaymentIntentID,
			BookingID:     booking.ID,
			Kind:          model.PaymentKindRefunded,
			Source:        model.PaymentSourceWebhook,
		}); err != nil {
			return err
		}
		next, err := model.Transition(booking.State, model.EventRefund)
		if err != nil {
			return err
		}
		refunded, err = s.bookings.UpdateState(sessCtx, booking.ID, booking.State, next)
		return err
	})
	if errors.Is(err, paymentserrors.ErrAlreadyApplied) {
		return nil
	}
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Booking refunded", "booking_id", refunded.ID, "payment_intent", event.PaymentIntentID)
	s.notify(ctx, &model.Notification{
		UserID:  refunded.CustomerID,
		Type:    model.NotificationPayment,
		Title:   "Payment refunded",
		Message: "Your payment for " + refunded.Service + " was refunded",
		Link:    "/bookings/" + refunded.ID,
		Data:    map[string]any{"booking_id": refunded.ID},
	})
	s.publish(ctx, model.EventTypeBookingRefunded, refunded, "")
	return nil
}

// applySucceeded records the success key and confirms the booking in one
// transaction. applied is false when the success was recorded before, in
// which case the current booking is returned unchanged.
func (s *paymentService) applySucceeded(ctx context.Context, bookingID, intentID, source string) (*model.Booking, bool, error) {
	var confirmed *model.Booking
	err := s.events.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		booking, err := s.bookings.FindByID(sessCtx, bookingID)
		if err != nil {
			return err
		}
		if err := s.events.Record(sessCtx, &model.PaymentEvent{
			ID:            model.PaymentEventKey(intentID, model.PaymentKindSucceeded),
			PaymentIntent: intentID,
			BookingID:     booking.ID,
			Kind:          model.PaymentKindSucceeded,
			Source:        source,
		}); err != nil {
			return err
		}
		next, err := model.Transition(booking.State, model.EventPaymentSucceeded)
		if err != nil {
			return err
		}
		confirmed, err = s.bookings.UpdateState(sessCtx, booking.ID, booking.State, next)
		return err
	})
	if errors.Is(err, paymentserrors.ErrAlreadyApplied) {
		current, findErr := s.bookings.FindByID(ctx, bookingID)
		if findErr != nil {
			return nil, false, findErr
		}
		s.cfg.Log.Debug("Payment success already applied", "booking_id", bookingID, "payment_intent", intentID, "source", source)
		return current, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	s.cfg.Log.Info("Booking confirmed", "booking_id", confirmed.ID, "payment_intent", intentID, "source", source)
	return confirmed, true, nil
}

func (s *paymentService) afterConfirmed(ctx context.Context, booking *model.Booking, notifyCustomer bool) {
	craftsmanUserID := ""
	if craftsman, err := s.craftsmen.FindByID(ctx, booking.CraftsmanID); err != nil {
		s.cfg.Log.Warn("Failed to resolve craftsman for notification", "booking_id", booking.ID, "error", err)
	} else {
		craftsmanUserID = craftsman.UserID
		s.notify(ctx, &model.Notification{
			UserID:  craftsmanUserID,
			Type:    model.NotificationBooking,
			Title:   "New confirmed booking",
			Message: "A booking for " + booking.Service + " has been paid and confirmed",
			Link:    "/bookings/" + booking.ID,
			Data:    map[string]any{"booking_id": booking.ID},
		})
	}

	if notifyCustomer {
		s.notify(ctx, &model.Notification{
			UserID:  booking.CustomerID,
			Type:    model.NotificationPayment,
			Title:   "Payment successful",
			Message: "Your payment for " + booking.Service + " was received",
			Link:    "/bookings/" + booking.ID,
			Data:    map[string]any{"booking_id": booking.ID},
		})
	}

	s.publish(ctx, model.EventTypeBookingConfirmed, booking, craftsmanUserID)
}

func (s *paymentService) bookingForEvent(ctx context.Context, event *payment.Event) (*model.Booking, error) {
	if id := event.Metadata[payment.MetadataBookingID]; id != "" {
		return s.bookings.FindByID(ctx, id)
	}
	if event.PaymentIntentID != "" {
		return s.bookings.FindByPaymentIntent(ctx, event.PaymentIntentID)
	}
	return nil, fmt.Errorf("%w: %s", paymentserrors.ErrMissingBooking, event.ID)
}

func (s *paymentService) notify(ctx context.Context, n *model.Notification) {
	if err := s.notifier.Emit(ctx, n); err != nil {
		s.cfg.Log.Error("Failed to emit notification", "user_id", n.UserID, "title", n.Title, "error", err)
	}
}

func (s *paymentService) publish(ctx context.Context, eventType string, b *model.Booking, craftsmanUserID string) {
	payload := model.BookingEventPayload{
		BookingID:       b.ID,
		CustomerID:      b.CustomerID,
		CraftsmanID:     b.CraftsmanID,
		CraftsmanUserID: craftsmanUserID,
		Service:         b.Service,
		State:           b.State,
		OccurredAt:      time.Now().UTC(),
	}
	if err := s.publisher.PublishEvent(ctx, eventType, b.ID, payload); err != nil {
		s.cfg.Log.Error("Failed to publish payment event", "event_type", eventType, "booking_id", b.ID, "error", err)
	}
}

func (s *paymentService) mapError(op string, err error) error {
	var providerErr *payment.ProviderError
	switch {
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, payment.ErrMissingSignature):
		return apperrors.BadRequest("Missing Stripe-Signature header")
	case errors.Is(err, payment.ErrInvalidSignature):
		return apperrors.BadRequest("Invalid webhook signature")
	case errors.As(err, &providerErr):
		return apperrors.Upstream(providerErr.Message, err)
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.NotFound("Booking")
	case errors.Is(err, craftsmenerrors.ErrNotFound):
		return apperrors.NotFound("Craftsman")
	case errors.Is(err, model.ErrIllegalTransition):
		return apperrors.Conflict("Booking cannot accept payment: " + err.Error())
	case errors.Is(err, bookingserrors.ErrStateChanged):
		return apperrors.Conflict("Booking was modified concurrently, please retry")
	case errors.Is(err, bookingserrors.ErrIntentInUse):
		return apperrors.Conflict("Payment intent is already attached to another booking")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Payment request timed out")
	}
	s.cfg.Log.Error("Payment operation failed", "operation", op, "error", err)
	return apperrors.Internal("Failed to process payment", err)
}
