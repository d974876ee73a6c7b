package consumer

import (
	"context"
	"fmt"

	"hirfa/pkg/kafka"
	"hirfa/pkg/logger"
	"hirfa/pkg/model"
)

// Emitter is the notification sink the worker writes to.
type Emitter interface {
	Emit(ctx context.Context, n *model.Notification) error
}

// EventHandler turns domain events into user notifications.
type EventHandler struct {
	emitter Emitter
	log     *logger.Logger
}

func NewEventHandler(emitter Emitter, log *logger.Logger) *EventHandler {
	return &EventHandler{emitter: emitter, log: log}
}

// Handle is a kafka.MessageHandler. Event types without a notification are
// committed without side effects. The craftsman hears about a new booking
// from the payment flow once it is paid, not on booking.created.
func (h *EventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.GetEventType() {
	case model.EventTypeBookingStatusChanged:
		var p model.BookingEventPayload
		if err := msg.DecodeValue(&p); err != nil {
			return err
		}
		return h.emit(ctx, statusChanged(p))

	case model.EventTypeReviewCreated:
		var p model.ReviewEventPayload
		if err := msg.DecodeValue(&p); err != nil {
			return err
		}
		return h.emit(ctx, reviewCreated(p))
	}

	h.log.Debug("Skipping event", "event_type", msg.GetEventType(), "event_id", msg.GetEventID())
	return nil
}

func (h *EventHandler) emit(ctx context.Context, n *model.Notification) error {
	if n == nil || n.UserID == "" {
		return nil
	}
	if err := h.emitter.Emit(ctx, n); err != nil {
		return kafka.NewTransientError("emit notification", err)
	}
	return nil
}

// statusChanged notifies whoever did not make the change. Changes without
// an actor come from the payment flow and go to the customer.
func statusChanged(p model.BookingEventPayload) *model.Notification {
	recipient := p.CustomerID
	if p.ActorID != "" && p.ActorID == p.CustomerID {
		recipient = p.CraftsmanUserID
	}

	var message string
	switch p.State {
	case model.StateInProgress:
		message = fmt.Sprintf("Work on %s has started", p.Service)
	case model.StateCompleted:
		message = fmt.Sprintf("Your booking for %s is completed", p.Service)
	case model.StateCancelled:
		message = fmt.Sprintf("The booking for %s was cancelled", p.Service)
	case model.StateConfirmed:
		message = fmt.Sprintf("Your booking for %s is confirmed", p.Service)
	default:
		message = fmt.Sprintf("Booking for %s is now %s", p.Service, p.State.Status())
	}

	return &model.Notification{
		UserID:  recipient,
		Type:    model.NotificationBooking,
		Title:   "Booking updated",
		Message: message,
		Link:    bookingLink(p.BookingID),
		Data: map[string]any{
			"booking_id": p.BookingID,
			"status":     p.State.Status(),
		},
	}
}

func reviewCreated(p model.ReviewEventPayload) *model.Notification {
	return &model.Notification{
		UserID:  p.CraftsmanUserID,
		Type:    model.NotificationReview,
		Title:   "New review",
		Message: fmt.Sprintf("You received a %d-star review", p.Rating),
		Link:    "/reviews",
		Data: map[string]any{
			"review_id":  p.ReviewID,
			"booking_id": p.BookingID,
			"rating":     p.Rating,
		},
	}
}

func bookingLink(id string) string {
	return "/bookings/" + id
}
