package model

import (
	"encoding/json"
	"math"
	"time"
)

type Booking struct {
	ID            string       `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerID    string       `json:"customer_id" bson:"customer_id"`
	CraftsmanID   string       `json:"craftsman_id" bson:"craftsman_id"`
	Service       string       `json:"service" bson:"service"`
	Description   string       `json:"description" bson:"description"`
	ScheduledDate string       `json:"scheduled_date" bson:"scheduled_date"`
	ScheduledTime string       `json:"scheduled_time" bson:"scheduled_time"`
	ScheduledAt   time.Time    `json:"scheduled_at" bson:"scheduled_at"`
	Duration      int          `json:"duration" bson:"duration"`
	Location      Location     `json:"location" bson:"location"`
	State         BookingState `json:"state" bson:"state"`
	Price         float64      `json:"price" bson:"price"`
	PaymentIntent string       `json:"payment_intent,omitempty" bson:"payment_intent,omitempty"`
	Notes         string       `json:"notes,omitempty" bson:"notes"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

// MarshalJSON adds the derived status and payment_status views.
func (b Booking) MarshalJSON() ([]byte, error) {
	type plain Booking
	return json.Marshal(struct {
		plain
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}{
		plain:         plain(b),
		Status:        b.State.Status(),
		PaymentStatus: b.State.PaymentStatus(),
	})
}

// AmountMinor is the price in the currency's minor unit.
func (b *Booking) AmountMinor() int64 {
	return int64(math.Round(b.Price * 100))
}

// BookingRequest is what a customer submits. Price is not accepted from the
// client; it is computed from the craftsman's hourly rate.
type BookingRequest struct {
	CraftsmanID   string   `json:"craftsman_id" validate:"required,mongodb"`
	Service       string   `json:"service" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"required,min=10,max=2000"`
	ScheduledDate string   `json:"scheduled_date" validate:"required,datetime=2006-01-02"`
	ScheduledTime string   `json:"scheduled_time" validate:"required,clock"`
	Duration      int      `json:"duration" validate:"required,min=1,max=24"`
	Location      Location `json:"location" validate:"required"`
	Notes         string   `json:"notes,omitempty" validate:"max=1000"`
}

type BookingAction struct {
	Action string `json:"action" validate:"required,oneof=start complete cancel"`
}

func (a BookingAction) Event() BookingEvent {
	switch a.Action {
	case "start":
		return EventStart
	case "complete":
		return EventComplete
	default:
		return EventCancel
	}
}

type BookingFilter struct {
	CustomerID  string
	CraftsmanID string
	States      []BookingState
	Limit       int
	Offset      int64
}

// PriceFor is duration hours at the given hourly rate, rounded to cents.
func PriceFor(durationHours int, hourlyRate float64) float64 {
	return math.Round(float64(durationHours)*hourlyRate*100) / 100
}
