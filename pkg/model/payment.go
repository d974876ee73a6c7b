package model

import "time"

const (
	PaymentSourceConfirm = "confirm"
	PaymentSourceWebhook = "webhook"

	PaymentKindSucceeded = "succeeded"
	PaymentKindFailed    = "failed"
	PaymentKindRefunded  = "refunded"
)

// PaymentEvent records that a payment outcome has been applied. Its ID is
// the idempotency key, so a second insert for the same outcome fails.
type PaymentEvent struct {
	ID            string    `json:"id" bson:"_id"`
	PaymentIntent string    `json:"payment_intent" bson:"payment_intent"`
	BookingID     string    `json:"booking_id" bson:"booking_id"`
	Kind          string    `json:"kind" bson:"kind"`
	Source        string    `json:"source" bson:"source"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

func PaymentEventKey(paymentIntent, kind string) string {
	return paymentIntent + ":" + kind
}

type CreateIntentRequest struct {
	BookingID string `json:"booking_id" validate:"required,mongodb"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required,min=3"`
}

type PaymentIntentResult struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}
