package model

import "time"

const (
	EventTypeBookingCreated       = "booking.created"
	EventTypeBookingStatusChanged = "booking.status_changed"
	EventTypeBookingConfirmed     = "booking.confirmed"
	EventTypeBookingRefunded      = "booking.refunded"
	EventTypePaymentFailed        = "payment.failed"
	EventTypeReviewCreated        = "review.created"
	EventTypeReviewDeleted        = "review.deleted"
)

type BookingEventPayload struct {
	BookingID       string       `json:"booking_id"`
	CustomerID      string       `json:"customer_id"`
	CraftsmanID     string       `json:"craftsman_id"`
	CraftsmanUserID string       `json:"craftsman_user_id"`
	Service         string       `json:"service"`
	State           BookingState `json:"state"`
	PreviousState   BookingState `json:"previous_state,omitempty"`
	ActorID         string       `json:"actor_id,omitempty"`
	OccurredAt      time.Time    `json:"occurred_at"`
}

type ReviewEventPayload struct {
	ReviewID        string    `json:"review_id"`
	BookingID       string    `json:"booking_id"`
	CraftsmanID     string    `json:"craftsman_id"`
	CraftsmanUserID string    `json:"craftsman_user_id"`
	CustomerID      string    `json:"customer_id"`
	Rating          int       `json:"rating"`
	OccurredAt      time.Time `json:"occurred_at"`
}
