package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	bookingserrors "hirfa/internal/bookings/errors"
	"hirfa/internal/notifications/consumer"
	paymentserrors "hirfa/internal/payments/errors"
	"hirfa/pkg/config"
	mongotx "hirfa/pkg/db/mongo"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/kafka"
	"hirfa/pkg/logger"
	"hirfa/pkg/model"
	"hirfa/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bookingID       = "6553f1c2a4b5c6d7e8f90010"
	craftsmanID     = "6553f1c2a4b5c6d7e8f90001"
	craftsmanUserID = "6553f1c2a4b5c6d7e8f90002"
	customerID      = "6553f1c2a4b5c6d7e8f90003"
	strangerID      = "6553f1c2a4b5c6d7e8f90004"
	intentID        = "pi_123"
)

var customer = model.Principal{UserID: customerID, Role: model.RoleCustomer}

type fakeBookings struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	// beforeSet runs ahead of SetPaymentIntent, standing in for a
	// concurrent request that gets there first.
	beforeSet func(b *model.Booking)
}

func (f *fakeBookings) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
}

func (f *fakeBookings) FindByPaymentIntent(ctx context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.PaymentIntent == id {
			cp := *b
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: intent %s", bookingserrors.ErrNotFound, id)
}

func (f *fakeBookings) UpdateState(ctx context.Context, id string, from, to model.BookingState) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if b.State != from {
		return nil, bookingserrors.ErrStateChanged
	}
	b.State = to
	cp := *b
	return &cp, nil
}

func (f *fakeBookings) SetPaymentIntent(ctx context.Context, id, intent string, from, to model.BookingState) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if f.beforeSet != nil {
		f.beforeSet(b)
	}
	if b.State != from {
		return nil, bookingserrors.ErrStateChanged
	}
	b.State = to
	b.PaymentIntent = intent
	cp := *b
	return &cp, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events map[string]*model.PaymentEvent
}

func (f *fakeEvents) Record(ctx context.Context, e *model.PaymentEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; ok {
		return fmt.Errorf("%w: %s", paymentserrors.ErrAlreadyApplied, e.ID)
	}
	f.events[e.ID] = e
	return nil
}

func (f *fakeEvents) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type fakeCraftsmen struct{}

func (fakeCraftsmen) FindByID(ctx context.Context, id string) (*model.Craftsman, error) {
	return &model.Craftsman{ID: id, UserID: craftsmanUserID}, nil
}

type fakeProvider struct {
	created   []payment.IntentRequest
	intent    *payment.Intent
	createErr error
	event     *payment.Event
}

func (p *fakeProvider) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	p.created = append(p.created, req)
	return &payment.Intent{ID: intentID, ClientSecret: "pi_123_secret", Amount: req.Amount}, nil
}

func (p *fakeProvider) RetrieveIntent(ctx context.Context, id string) (*payment.Intent, error) {
	return p.intent, nil
}

func (p *fakeProvider) ParseWebhook(payload []byte, signature string) (*payment.Event, error) {
	if signature == "" {
		return nil, payment.ErrMissingSignature
	}
	if signature != "valid" {
		return nil, payment.ErrInvalidSignature
	}
	return p.event, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (r *recordingNotifier) Emit(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

type recordingPublisher struct {
	mu       sync.Mutex
	events   []string
	messages []kafka.Message
}

func (r *recordingPublisher) PublishEvent(ctx context.Context, eventType, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
	r.messages = append(r.messages, eventMessage(eventType, value))
	return nil
}

func eventMessage(eventType string, value []byte) kafka.Message {
	return kafka.Message{
		Key:     bookingID,
		Value:   value,
		Headers: map[string]string{kafka.HeaderEventType: eventType},
	}
}

type fixture struct {
	svc       PaymentService
	bookings  *fakeBookings
	events    *fakeEvents
	provider  *fakeProvider
	notifier  *recordingNotifier
	publisher *recordingPublisher
}

func newFixture(state model.BookingState) *fixture {
	f := &fixture{
		bookings: &fakeBookings{bookings: map[string]*model.Booking{
			bookingID: {
				ID:            bookingID,
				CustomerID:    customerID,
				CraftsmanID:   craftsmanID,
				Service:       "Zellige repair",
				Price:         300,
				State:         state,
				PaymentIntent: intentID,
			},
		}},
		events:    &fakeEvents{events: map[string]*model.PaymentEvent{}},
		provider:  &fakeProvider{intent: &payment.Intent{ID: intentID, Status: payment.IntentStatusSucceeded}},
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}
	if state == model.StateCreated {
		f.bookings.bookings[bookingID].PaymentIntent = ""
	}
	cfg := &config.Config{Log: logger.Discard(), PaymentCurrency: "mad"}
	f.svc = NewPaymentService(f.bookings, f.events, fakeCraftsmen{}, f.provider, f.notifier, f.publisher, cfg)
	return f
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr, "expected AppError, got %v", err)
	return appErr.StatusCode()
}

func succeededEvent(id string) *payment.Event {
	return &payment.Event{
		ID:              id,
		Type:            payment.EventPaymentSucceeded,
		PaymentIntentID: intentID,
		Metadata:        map[string]string{payment.MetadataBookingID: bookingID},
	}
}

func TestCreateIntent(t *testing.T) {
	f := newFixture(model.StateCreated)

	result, err := f.svc.CreateIntent(context.Background(), customer, &model.CreateIntentRequest{BookingID: bookingID})
	require.NoError(t, err)
	assert.Equal(t, intentID, result.PaymentIntentID)
	assert.Equal(t, "pi_123_secret", result.ClientSecret)

	require.Len(t, f.provider.created, 1)
	req := f.provider.created[0]
	assert.Equal(t, int64(30000), req.Amount)
	assert.Equal(t, "mad", req.Currency)
	assert.Equal(t, "Payment for Zellige repair", req.Description)
	assert.Equal(t, bookingID, req.Metadata[payment.MetadataBookingID])
	assert.Equal(t, customerID, req.Metadata[payment.MetadataCustomerID])

	stored, _ := f.bookings.FindByID(context.Background(), bookingID)
	assert.Equal(t, model.StateAwaitingPayment, stored.State)
	assert.Equal(t, intentID, stored.PaymentIntent)
}

func TestCreateIntent_IdempotencyKey(t *testing.T) {
	f := newFixture(model.StateCreated)
	ctx := context.Background()

	_, err := f.svc.CreateIntent(ctx, customer, &model.CreateIntentRequest{BookingID: bookingID})
	require.NoError(t, err)
	_, err = f.svc.CreateIntent(ctx, customer, &model.CreateIntentRequest{BookingID: bookingID})
	require.NoError(t, err)

	require.Len(t, f.provider.created, 2)
	assert.Equal(t, "intent:"+bookingID+":created:", f.provider.created[0].IdempotencyKey)
	assert.Equal(t, "intent:"+bookingID+":awaiting_payment:"+intentID, f.provider.created[1].IdempotencyKey)
}

func TestCreateIntent_TwinRequestStoredSameIntent(t *testing.T) {
	f := newFixture(model.StateCreated)
	f.bookings.beforeSet = func(b *model.Booking) {
		b.State = model.StateAwaitingPayment
		b.PaymentIntent = intentID
	}

	result, err := f.svc.CreateIntent(context.Background(), customer, &model.CreateIntentRequest{BookingID: bookingID})
	require.NoError(t, err)
	assert.Equal(t, intentID, result.PaymentIntentID)
}

func TestCreateIntent_LosesToDifferentIntent(t *testing.T) {
	f := newFixture(model.StateCreated)
	f.bookings.beforeSet = func(b *model.Booking) {
		b.State = model.StateAwaitingPayment
		b.PaymentIntent = "pi_other"
	}

	_, err := f.svc.CreateIntent(context.Background(), customer, &model.CreateIntentRequest{BookingID: bookingID})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestCreateIntent_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		state  model.BookingState
		caller model.Principal
		req    model.CreateIntentRequest
		status int
	}{
		{"invalid id", model.StateCreated, customer, model.CreateIntentRequest{BookingID: "nope"}, http.StatusUnprocessableEntity},
		{"missing booking", model.StateCreated, customer, model.CreateIntentRequest{BookingID: "6553f1c2a4b5c6d7e8f9ffff"}, http.StatusNotFound},
		{"not owner", model.StateCreated, model.Principal{UserID: strangerID, Role: model.RoleCustomer}, model.CreateIntentRequest{BookingID: bookingID}, http.StatusForbidden},
		{"already paid", model.StateConfirmed, customer, model.CreateIntentRequest{BookingID: bookingID}, http.StatusBadRequest},
		{"cancelled", model.StateCancelled, customer, model.CreateIntentRequest{BookingID: bookingID}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.state)
			_, err := f.svc.CreateIntent(context.Background(), tt.caller, &tt.req)
			assert.Equal(t, tt.status, statusOf(t, err))
			assert.Empty(t, f.provider.created)
		})
	}
}

func TestCreateIntent_ProviderFailure(t *testing.T) {
	f := newFixture(model.StateCreated)
	f.provider.createErr = &payment.ProviderError{Code: "amount_too_small", Message: "Amount must be at least 5.00 mad"}

	_, err := f.svc.CreateIntent(context.Background(), customer, &model.CreateIntentRequest{BookingID: bookingID})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
	assert.Equal(t, "Amount must be at least 5.00 mad", apperrors.AsAppError(err).Message)
}

func TestConfirm(t *testing.T) {
	f := newFixture(model.StateAwaitingPayment)

	booking, err := f.svc.Confirm(context.Background(), customer, &model.ConfirmPaymentRequest{PaymentIntentID: intentID})
	require.NoError(t, err)
	assert.Equal(t, model.StateConfirmed, booking.State)
	assert.Equal(t, model.PaymentPaid, booking.State.PaymentStatus())

	require.Len(t, f.notifier.sent, 2)
	assert.Equal(t, craftsmanUserID, f.notifier.sent[0].UserID)
	assert.Equal(t, "New confirmed booking", f.notifier.sent[0].Title)
	assert.Equal(t, customerID, f.notifier.sent[1].UserID)
	assert.Equal(t, model.NotificationPayment, f.notifier.sent[1].Type)
	assert.Equal(t, []string{model.EventTypeBookingConfirmed}, f.publisher.events)
	assert.Contains(t, f.events.events, model.PaymentEventKey(intentID, model.PaymentKindSucceeded))
}

func TestConfirm_Rejections(t *testing.T) {
	t.Run("not succeeded", func(t *testing.T) {
		f := newFixture(model.StateAwaitingPayment)
		f.provider.intent = &payment.Intent{ID: intentID, Status: "requires_payment_method"}
		_, err := f.svc.Confirm(context.Background(), customer, &model.ConfirmPaymentRequest{PaymentIntentID: intentID})
		assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		assert.Contains(t, err.Error(), "Payment not completed")
	})

	t.Run("unknown intent", func(t *testing.T) {
		f := newFixture(model.StateAwaitingPayment)
		f.provider.intent = &payment.Intent{ID: "pi_other", Status: payment.IntentStatusSucceeded}
		_, err := f.svc.Confirm(context.Background(), customer, &model.ConfirmPaymentRequest{PaymentIntentID: "pi_other"})
		assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	})

	t.Run("other customer", func(t *testing.T) {
		f := newFixture(model.StateAwaitingPayment)
		_, err := f.svc.Confirm(context.Background(), model.Principal{UserID: strangerID, Role: model.RoleCustomer}, &model.ConfirmPaymentRequest{PaymentIntentID: intentID})
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
		assert.Empty(t, f.events.events)
	})
}

func TestPaymentSucceeded_AppliedOnce(t *testing.T) {
	t.Run("confirm then webhook", func(t *testing.T) {
		f := newFixture(model.StateAwaitingPayment)
		f.provider.event = succeededEvent("evt_1")

		_, err := f.svc.Confirm(context.Background(), customer, &model.ConfirmPaymentRequest{PaymentIntentID: intentID})
		require.NoError(t, err)
		require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))

		assert.Len(t, f.notifier.sent, 2)
		assert.Len(t, f.publisher.events, 1)
		assert.Len(t, f.events.events, 1)
	})

	t.Run("webhook then confirm", func(t *testing.T) {
		f := newFixture(model.StateAwaitingPayment)
		f.provider.event = succeededEvent("evt_1")

		require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))
		require.Len(t, f.notifier.sent, 1, "webhook path only notifies the craftsman")

		booking, err := f.svc.Confirm(context.Background(), customer, &model.ConfirmPaymentRequest{PaymentIntentID: intentID})
		require.NoError(t, err)
		assert.Equal(t, model.StateConfirmed, booking.State)
		assert.Len(t, f.notifier.sent, 1)
		assert.Len(t, f.publisher.events, 1)
	})

	t.Run("webhook redelivered", func(t *testing.T) {
		f := newFixture(model.StateAwaitingPayment)
		f.provider.event = succeededEvent("evt_1")

		require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))
		f.provider.event = succeededEvent("evt_2")
		require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))

		assert.Len(t, f.notifier.sent, 1)
	})
}

// A paid booking reaches the craftsman once, whether the notice comes from
// the payment flow or from the notifier worker reading the event stream.
func TestPaidBooking_OneBookingNoticeForCraftsman(t *testing.T) {
	f := newFixture(model.StateCreated)
	ctx := context.Background()

	created, err := json.Marshal(model.BookingEventPayload{
		BookingID:       bookingID,
		CustomerID:      customerID,
		CraftsmanID:     craftsmanID,
		CraftsmanUserID: craftsmanUserID,
		Service:         "Zellige repair",
		State:           model.StateCreated,
		ActorID:         customerID,
	})
	require.NoError(t, err)
	stream := []kafka.Message{eventMessage(model.EventTypeBookingCreated, created)}

	_, err = f.svc.CreateIntent(ctx, customer, &model.CreateIntentRequest{BookingID: bookingID})
	require.NoError(t, err)
	f.provider.event = succeededEvent("evt_1")
	require.NoError(t, f.svc.HandleWebhook(ctx, []byte("{}"), "valid"))

	worker := consumer.NewEventHandler(f.notifier, logger.Discard())
	for _, msg := range append(stream, f.publisher.messages...) {
		require.NoError(t, worker.Handle(ctx, msg))
	}

	var craftsmanNotices int
	for _, n := range f.notifier.sent {
		if n.UserID == craftsmanUserID && n.Type == model.NotificationBooking {
			craftsmanNotices++
		}
	}
	assert.Equal(t, 1, craftsmanNotices)
}

func TestWebhook_Signature(t *testing.T) {
	f := newFixture(model.StateAwaitingPayment)

	err := f.svc.HandleWebhook(context.Background(), []byte("{}"), "")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	err = f.svc.HandleWebhook(context.Background(), []byte("{}"), "forged")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestWebhook_PaymentFailedDedupedByEventID(t *testing.T) {
	f := newFixture(model.StateAwaitingPayment)
	f.provider.event = &payment.Event{
		ID:              "evt_failed",
		Type:            payment.EventPaymentFailed,
		PaymentIntentID: intentID,
		Metadata:        map[string]string{payment.MetadataBookingID: bookingID},
		FailureMessage:  "Your card was declined.",
	}

	require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))
	require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))

	require.Len(t, f.notifier.sent, 1)
	n := f.notifier.sent[0]
	assert.Equal(t, customerID, n.UserID)
	assert.Equal(t, model.NotificationPayment, n.Type)
	assert.Contains(t, n.Message, "Your card was declined.")

	stored, _ := f.bookings.FindByID(context.Background(), bookingID)
	assert.Equal(t, model.StateAwaitingPayment, stored.State)
}

func TestWebhook_Refund(t *testing.T) {
	f := newFixture(model.StateConfirmed)
	f.provider.event = &payment.Event{ID: "evt_refund", Type: payment.EventChargeRefunded, PaymentIntentID: intentID}

	require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))
	require.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))

	stored, _ := f.bookings.FindByID(context.Background(), bookingID)
	assert.Equal(t, model.StateRefunded, stored.State)
	assert.Equal(t, model.PaymentRefunded, stored.State.PaymentStatus())
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Payment refunded", f.notifier.sent[0].Title)
	assert.Equal(t, []string{model.EventTypeBookingRefunded}, f.publisher.events)
}

func TestWebhook_AcknowledgesWhatCannotBeApplied(t *testing.T) {
	tests := []struct {
		name  string
		state model.BookingState
		event *payment.Event
	}{
		{"unknown type", model.StateAwaitingPayment, &payment.Event{ID: "evt_x", Type: "customer.created"}},
		{"no booking reference", model.StateAwaitingPayment, &payment.Event{ID: "evt_x", Type: payment.EventPaymentSucceeded}},
		{"unknown booking", model.StateAwaitingPayment, &payment.Event{
			ID: "evt_x", Type: payment.EventPaymentSucceeded, PaymentIntentID: "pi_x",
			Metadata: map[string]string{payment.MetadataBookingID: "6553f1c2a4b5c6d7e8f9ffff"},
		}},
		{"cancelled booking", model.StateCancelled, succeededEvent("evt_x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.state)
			f.provider.event = tt.event
			assert.NoError(t, f.svc.HandleWebhook(context.Background(), []byte("{}"), "valid"))
			assert.Empty(t, f.notifier.sent)
		})
	}
}
