package payment

import (
	"context"
	"errors"
)

const (
	IntentStatusSucceeded = "succeeded"

	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded   = "charge.refunded"

	MetadataBookingID  = "booking_id"
	MetadataCustomerID = "customer_id"
)

var (
	ErrMissingSignature = errors.New("missing webhook signature")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

type IntentRequest struct {
	Amount         int64
	Currency       string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

func (i *Intent) Succeeded() bool {
	return i.Status == IntentStatusSucceeded
}

// Event is a verified provider notification reduced to what the
// marketplace acts on. For charge events PaymentIntentID is the charge's
// parent intent.
type Event struct {
	ID              string
	Type            string
	PaymentIntentID string
	Metadata        map[string]string
	FailureMessage  string
}

// Provider is the payment gateway. Errors carrying the gateway's own
// message are *ProviderError.
type Provider interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

type ProviderError struct {
	Code    string
	Message string
	Status  int
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
