package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"hirfa/pkg/client"
	"hirfa/pkg/logger"
	"hirfa/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFlow struct {
	steps []Step
}

func (stubFlow) Name() string    { return "stub" }
func (f stubFlow) Steps() []Step { return f.steps }

func TestEngine_RunsStepsInOrder(t *testing.T) {
	var order []string
	record := func(name string) Step {
		return Step{Name: name, Execute: func(ctx context.Context, sc *Context) error {
			order = append(order, name)
			return nil
		}}
	}

	engine := NewEngine(stubFlow{steps: []Step{record("a"), record("b"), record("c")}})
	require.NoError(t, engine.Run(context.Background(), "stub", NewContext(nil, nil, logger.Discard())))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestEngine_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var ran bool
	engine := NewEngine(stubFlow{steps: []Step{
		{Name: "fails", Execute: func(context.Context, *Context) error { return boom }},
		{Name: "never", Execute: func(context.Context, *Context) error { ran = true; return nil }},
	}})

	err := engine.Run(context.Background(), "stub", NewContext(nil, nil, logger.Discard()))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fails step failed")
	assert.False(t, ran)
}

func TestEngine_UnknownFlow(t *testing.T) {
	err := NewEngine().Run(context.Background(), "missing", NewContext(nil, nil, logger.Discard()))
	assert.EqualError(t, err, "unsupported flow: missing")
}

// fakeMarketplace answers the three endpoints the demo flow calls.
type fakeMarketplace struct {
	mu        sync.Mutex
	users     int
	craftsmen []model.CraftsmanProfile
	bookings  []model.BookingRequest
}

func (f *fakeMarketplace) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/auth/register":
		var req model.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.users++
		userID := fmt.Sprintf("user-%d", f.users)
		if req.Role == model.RoleCraftsman {
			var p model.CraftsmanProfile
			p.ID = "craftsman-" + userID
			p.UserID = userID
			f.craftsmen = append(f.craftsmen, p)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": model.AuthResult{
			Token: "token-" + userID,
			User:  &model.User{ID: userID, Role: req.Role},
		}})
	case r.Method == http.MethodGet && r.URL.Path == "/api/v1/craftsmen":
		_ = json.NewEncoder(w).Encode(map[string]any{"data": f.craftsmen, "total_count": len(f.craftsmen)})
	case r.Method == http.MethodPost && r.URL.Path == "/api/v1/bookings":
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer token-") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req model.BookingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.bookings = append(f.bookings, req)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": model.Booking{ID: fmt.Sprintf("b%d", len(f.bookings)), CraftsmanID: req.CraftsmanID}})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func TestDemoFlow(t *testing.T) {
	fake := &fakeMarketplace{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	sc := NewContext(map[string]any{InputCraftsmen: 3, InputCustomers: 5}, client.NewMarketplaceClient(srv.URL), logger.Discard())
	require.NoError(t, NewEngine(DemoFlow{}).Run(context.Background(), DemoFlowName, sc))

	craftsmen := sc.Process[ProcessCraftsmen].([]Account)
	require.Len(t, craftsmen, 3)
	for _, c := range craftsmen {
		assert.Equal(t, "craftsman-"+c.UserID, c.CraftsmanID)
	}
	assert.Len(t, sc.Process[ProcessCustomers].([]Account), 5)
	assert.Len(t, sc.Process[ProcessBookings].([]*model.Booking), 5)
	assert.Len(t, fake.bookings, 5)
}
