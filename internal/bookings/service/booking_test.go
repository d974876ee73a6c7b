package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	bookingserrors "hirfa/internal/bookings/errors"
	"hirfa/internal/bookings/validator"
	craftsmenerrors "hirfa/internal/craftsmen/errors"
	"hirfa/pkg/config"
	mongotx "hirfa/pkg/db/mongo"
	apperrors "hirfa/pkg/errors"
	"hirfa/pkg/logger"
	"hirfa/pkg/model"
)

const (
	craftsmanID     = "6553f1c2a4b5c6d7e8f90001"
	craftsmanUserID = "6553f1c2a4b5c6d7e8f90002"
	customerID      = "6553f1c2a4b5c6d7e8f90003"
	strangerID      = "6553f1c2a4b5c6d7e8f90004"
)

type fakeBookingRepository struct {
	mu         sync.Mutex
	bookings   map[string]*model.Booking
	lastFilter model.BookingFilter
	// staleWrites makes the next compare-and-set lose the race.
	staleWrites bool
}

func newFakeBookingRepository() *fakeBookingRepository {
	return &fakeBookingRepository{bookings: map[string]*model.Booking{}}
}

func (f *fakeBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = fmt.Sprintf("%024x", len(f.bookings)+1)
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, fmt.Errorf("%w: %s", bookingserrors.ErrNotFound, id)
}

func (f *fakeBookingRepository) FindByPaymentIntent(ctx context.Context, intentID string) (*model.Booking, error) {
	return nil, bookingserrors.ErrNotFound
}

func (f *fakeBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	return []*model.Booking{}, nil
}

func (f *fakeBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	return 0, nil
}

func (f *fakeBookingRepository) UpdateState(ctx context.Context, id string, from, to model.BookingState) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if f.staleWrites || b.State != from {
		return nil, bookingserrors.ErrStateChanged
	}
	b.State = to
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepository) SetPaymentIntent(ctx context.Context, id, intentID string, from, to model.BookingState) (*model.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type fakeCraftsmen struct{}

func (fakeCraftsmen) FindByID(ctx context.Context, id string) (*model.Craftsman, error) {
	if id == craftsmanID {
		return &model.Craftsman{ID: craftsmanID, UserID: craftsmanUserID, HourlyRate: 150}, nil
	}
	return nil, fmt.Errorf("%w: %s", craftsmenerrors.ErrNotFound, id)
}

func (fakeCraftsmen) FindByUserID(ctx context.Context, userID string) (*model.Craftsman, error) {
	if userID == craftsmanUserID {
		return &model.Craftsman{ID: craftsmanID, UserID: craftsmanUserID, HourlyRate: 150}, nil
	}
	return nil, fmt.Errorf("%w: user %s", craftsmenerrors.ErrNotFound, userID)
}

type publishedEvent struct {
	eventType string
	key       string
	payload   any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(ctx context.Context, eventType, key string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType, key, payload})
	return p.err
}

func newTestService(repo *fakeBookingRepository, events *recordingPublisher) BookingService {
	cfg := &config.Config{Log: logger.Discard(), DefaultPaginationLimit: 10, MaxPaginationLimit: 100}
	return NewBookingService(repo, fakeCraftsmen{}, events, validator.NewBookingValidator(), cfg)
}

func futureRequest() *model.BookingRequest {
	return &model.BookingRequest{
		CraftsmanID:   craftsmanID,
		Service:       "Replace water heater",
		Description:   "Old water heater stopped working yesterday",
		ScheduledDate: time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		ScheduledTime: "10:00",
		Duration:      2,
		Location:      model.Location{City: " fes ", Address: "Derb Lamdami 4"},
	}
}

var customer = model.Principal{UserID: customerID, Role: model.RoleCustomer}
var craftsmanCaller = model.Principal{UserID: craftsmanUserID, Role: model.RoleCraftsman}

func TestCreate_ComputesPriceServerSide(t *testing.T) {
	repo := newFakeBookingRepository()
	events := &recordingPublisher{}
	svc := newTestService(repo, events)

	booking, err := svc.Create(context.Background(), customer, futureRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Price != 300 {
		t.Errorf("price = %v, want 300", booking.Price)
	}
	if booking.State != model.StateCreated {
		t.Errorf("state = %s", booking.State)
	}
	if booking.State.Status() != model.StatusPending || booking.State.PaymentStatus() != model.PaymentPending {
		t.Errorf("views = %s/%s", booking.State.Status(), booking.State.PaymentStatus())
	}
	if booking.Location.City != "Fes" {
		t.Errorf("city = %q", booking.Location.City)
	}

	if len(events.events) != 1 || events.events[0].eventType != model.EventTypeBookingCreated {
		t.Fatalf("events = %+v", events.events)
	}
	payload := events.events[0].payload.(model.BookingEventPayload)
	if payload.CraftsmanUserID != craftsmanUserID || payload.BookingID != booking.ID {
		t.Errorf("payload = %+v", payload)
	}
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	svc := newTestService(newFakeBookingRepository(), &recordingPublisher{err: fmt.Errorf("broker down")})

	if _, err := svc.Create(context.Background(), customer, futureRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		caller     model.Principal
		mutate     func(r *model.BookingRequest)
		wantStatus int
	}{
		{"unknown craftsman", customer, func(r *model.BookingRequest) { r.CraftsmanID = "6553f1c2a4b5c6d7e8f9ffff" }, http.StatusNotFound},
		{"booking yourself", model.Principal{UserID: craftsmanUserID, Role: model.RoleCustomer}, func(r *model.BookingRequest) {}, http.StatusBadRequest},
		{"invalid request", customer, func(r *model.BookingRequest) { r.Duration = 0 }, http.StatusUnprocessableEntity},
		{"past date", customer, func(r *model.BookingRequest) { r.ScheduledDate = "2001-01-01" }, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeBookingRepository(), &recordingPublisher{})
			req := futureRequest()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), tt.caller, req)
			if got := apperrors.AsAppError(err).StatusCode(); got != tt.wantStatus {
				t.Errorf("status = %d, want %d (err %v)", got, tt.wantStatus, err)
			}
		})
	}
}

func TestList_ScopesByRole(t *testing.T) {
	tests := []struct {
		name          string
		caller        model.Principal
		status        string
		wantCustomer  string
		wantCraftsman string
		wantStates    []model.BookingState
	}{
		{"customer", customer, "", customerID, "", nil},
		{"craftsman", craftsmanCaller, "", "", craftsmanID, nil},
		{"admin", model.Principal{UserID: strangerID, Role: model.RoleAdmin}, "", "", "", nil},
		{"upcoming", customer, "upcoming", customerID, "", []model.BookingState{model.StateConfirmed, model.StateInProgress}},
		{"cancelled includes refunded", customer, "cancelled", customerID, "", []model.BookingState{model.StateCancelled, model.StateRefunded}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeBookingRepository()
			svc := newTestService(repo, &recordingPublisher{})

			if _, _, err := svc.List(context.Background(), tt.caller, tt.status, 0, 0); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			f := repo.lastFilter
			if f.CustomerID != tt.wantCustomer || f.CraftsmanID != tt.wantCraftsman {
				t.Errorf("filter = %+v", f)
			}
			if fmt.Sprint(f.States) != fmt.Sprint(tt.wantStates) {
				t.Errorf("states = %v, want %v", f.States, tt.wantStates)
			}
		})
	}
}

func TestList_CraftsmanWithoutProfileSeesNothing(t *testing.T) {
	repo := newFakeBookingRepository()
	svc := newTestService(repo, &recordingPublisher{})

	bookings, total, err := svc.List(context.Background(), model.Principal{UserID: strangerID, Role: model.RoleCraftsman}, "", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 0 || total != 0 {
		t.Errorf("got %d bookings, total %d", len(bookings), total)
	}
}

func TestList_InvalidStatus(t *testing.T) {
	svc := newTestService(newFakeBookingRepository(), &recordingPublisher{})

	_, _, err := svc.List(context.Background(), customer, "paid", 0, 0)
	if got := apperrors.AsAppError(err).StatusCode(); got != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", got)
	}
}

func TestGetByID_Access(t *testing.T) {
	repo := newFakeBookingRepository()
	svc := newTestService(repo, &recordingPublisher{})
	booking, err := svc.Create(context.Background(), customer, futureRequest())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		caller     model.Principal
		wantStatus int
	}{
		{"customer", customer, http.StatusOK},
		{"craftsman", craftsmanCaller, http.StatusOK},
		{"admin", model.Principal{UserID: strangerID, Role: model.RoleAdmin}, http.StatusOK},
		{"stranger", model.Principal{UserID: strangerID, Role: model.RoleCustomer}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetByID(context.Background(), tt.caller, booking.ID)
			got := http.StatusOK
			if err != nil {
				got = apperrors.AsAppError(err).StatusCode()
			}
			if got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
		})
	}
}

func seedBooking(t *testing.T, repo *fakeBookingRepository, state model.BookingState) string {
	t.Helper()
	b := &model.Booking{CustomerID: customerID, CraftsmanID: craftsmanID, State: state, Service: "Paint living room"}
	if err := repo.Create(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	return b.ID
}

func TestChangeStatus(t *testing.T) {
	tests := []struct {
		name       string
		state      model.BookingState
		caller     model.Principal
		action     string
		wantState  model.BookingState
		wantStatus int
	}{
		{"craftsman starts paid booking", model.StateConfirmed, craftsmanCaller, "start", model.StateInProgress, http.StatusOK},
		{"craftsman completes", model.StateInProgress, craftsmanCaller, "complete", model.StateCompleted, http.StatusOK},
		{"customer cancels unpaid", model.StateAwaitingPayment, customer, "cancel", model.StateCancelled, http.StatusOK},
		{"craftsman cancels unpaid", model.StateCreated, craftsmanCaller, "cancel", model.StateCancelled, http.StatusOK},
		{"customer cannot start", model.StateConfirmed, customer, "start", model.StateConfirmed, http.StatusForbidden},
		{"stranger cannot cancel", model.StateCreated, model.Principal{UserID: strangerID, Role: model.RoleCustomer}, "cancel", model.StateCreated, http.StatusForbidden},
		{"start before payment", model.StateCreated, craftsmanCaller, "start", model.StateCreated, http.StatusConflict},
		{"cancel paid booking", model.StateConfirmed, customer, "cancel", model.StateConfirmed, http.StatusConflict},
		{"unknown action", model.StateCreated, customer, "teleport", model.StateCreated, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeBookingRepository()
			events := &recordingPublisher{}
			svc := newTestService(repo, events)
			id := seedBooking(t, repo, tt.state)

			_, err := svc.ChangeStatus(context.Background(), tt.caller, id, &model.BookingAction{Action: tt.action})
			got := http.StatusOK
			if err != nil {
				got = apperrors.AsAppError(err).StatusCode()
			}
			if got != tt.wantStatus {
				t.Fatalf("status = %d, want %d (err %v)", got, tt.wantStatus, err)
			}

			stored, _ := repo.FindByID(context.Background(), id)
			if stored.State != tt.wantState {
				t.Errorf("state = %s, want %s", stored.State, tt.wantState)
			}

			if tt.wantStatus == http.StatusOK {
				if len(events.events) != 1 || events.events[0].eventType != model.EventTypeBookingStatusChanged {
					t.Fatalf("events = %+v", events.events)
				}
				payload := events.events[0].payload.(model.BookingEventPayload)
				if payload.PreviousState != tt.state || payload.ActorID != tt.caller.UserID {
					t.Errorf("payload = %+v", payload)
				}
			} else if len(events.events) != 0 {
				t.Errorf("unexpected events %+v", events.events)
			}
		})
	}
}

func TestChangeStatus_LostRaceIsConflict(t *testing.T) {
	repo := newFakeBookingRepository()
	svc := newTestService(repo, &recordingPublisher{})
	id := seedBooking(t, repo, model.StateConfirmed)
	repo.staleWrites = true

	_, err := svc.ChangeStatus(context.Background(), craftsmanCaller, id, &model.BookingAction{Action: "start"})
	if got := apperrors.AsAppError(err).StatusCode(); got != http.StatusConflict {
		t.Errorf("status = %d, want 409", got)
	}
}
