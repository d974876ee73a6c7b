package seed

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"hirfa/pkg/model"

	"golang.org/x/sync/errgroup"
)

const (
	DemoFlowName = "demo"

	InputCraftsmen = "craftsmen"
	InputCustomers = "customers"
	InputPassword  = "password"

	ProcessCraftsmen = "craftsmen"
	ProcessCustomers = "customers"
	ProcessBookings  = "bookings"

	maxConcurrentCalls = 8
	defaultPassword    = "demo-password"
)

var (
	demoCities = []string{"Casablanca", "Rabat", "Marrakech", "Fes", "Tangier", "Agadir"}
	demoNames  = []string{"Youssef", "Fatima", "Hamza", "Khadija", "Omar", "Salma", "Mehdi", "Nadia"}
)

// Account is a registered demo user and the token to act as them.
type Account struct {
	UserID      string
	CraftsmanID string
	Email       string
	Token       string
}

// DemoFlow registers craftsmen across cities and customers, then books each
// customer with one craftsman.
type DemoFlow struct{}

func (DemoFlow) Name() string { return DemoFlowName }

func (DemoFlow) Steps() []Step {
	return []Step{
		{Name: "register-craftsmen", Execute: registerCraftsmen},
		{Name: "register-customers", Execute: registerCustomers},
		{Name: "create-bookings", Execute: createBookings},
	}
}

func password(sc *Context) string {
	if p, ok := sc.Input[InputPassword].(string); ok && p != "" {
		return p
	}
	return defaultPassword
}

func registerCraftsmen(ctx context.Context, sc *Context) error {
	n := sc.Int(InputCraftsmen, len(demoCities))
	reqs := make([]*model.RegisterRequest, n)
	for i := range reqs {
		reqs[i] = &model.RegisterRequest{
			Name:     demoNames[i%len(demoNames)] + " Craftsman",
			Email:    fmt.Sprintf("craftsman%d@demo.hirfa.ma", i+1),
			Password: password(sc),
			Phone:    fmt.Sprintf("+2126%08d", 10000000+i),
			Role:     model.RoleCraftsman,
			Craftsman: &model.CraftsmanRegistration{
				Specialty:  model.Specialties[i%len(model.Specialties)],
				Experience: 2 + i%15,
				HourlyRate: float64(80 + 10*(i%8)),
				Location: model.Location{
					City:    demoCities[i%len(demoCities)],
					Address: fmt.Sprintf("%d Avenue Mohammed V", i+1),
				},
			},
		}
	}

	accounts, err := registerAll(ctx, sc, reqs)
	if err != nil {
		return err
	}

	profiles, _, err := sc.API.ListCraftsmen(ctx, url.Values{"limit": {strconv.Itoa(n)}})
	if err != nil {
		return err
	}
	byUser := make(map[string]string, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p.ID
	}
	for i := range accounts {
		accounts[i].CraftsmanID = byUser[accounts[i].UserID]
	}

	sc.Process[ProcessCraftsmen] = accounts
	return nil
}

func registerCustomers(ctx context.Context, sc *Context) error {
	n := sc.Int(InputCustomers, len(demoNames))
	reqs := make([]*model.RegisterRequest, n)
	for i := range reqs {
		reqs[i] = &model.RegisterRequest{
			Name:     demoNames[(i+3)%len(demoNames)] + " Customer",
			Email:    fmt.Sprintf("customer%d@demo.hirfa.ma", i+1),
			Password: password(sc),
			Phone:    fmt.Sprintf("+2127%08d", 10000000+i),
			Role:     model.RoleCustomer,
		}
	}

	accounts, err := registerAll(ctx, sc, reqs)
	if err != nil {
		return err
	}
	sc.Process[ProcessCustomers] = accounts
	return nil
}

func createBookings(ctx context.Context, sc *Context) error {
	craftsmen, _ := sc.Process[ProcessCraftsmen].([]Account)
	customers, _ := sc.Process[ProcessCustomers].([]Account)
	if len(craftsmen) == 0 || len(customers) == 0 {
		return fmt.Errorf("nothing to book: %d craftsmen, %d customers", len(craftsmen), len(customers))
	}

	var (
		mu       sync.Mutex
		bookings []*model.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCalls)
	day := time.Now().AddDate(0, 0, 7)

	for i, customer := range customers {
		craftsman := craftsmen[i%len(craftsmen)]
		if craftsman.CraftsmanID == "" {
			continue
		}
		g.Go(func() error {
			b, err := sc.API.As(customer.Token).CreateBooking(gctx, &model.BookingRequest{
				CraftsmanID:   craftsman.CraftsmanID,
				Service:       "Home repair visit",
				Description:   "Demo booking created by the seeding tool",
				ScheduledDate: day.AddDate(0, 0, i%5).Format("2006-01-02"),
				ScheduledTime: fmt.Sprintf("%02d:00", 9+i%8),
				Duration:      1 + i%3,
				Location:      model.Location{City: demoCities[i%len(demoCities)], Address: "Demo street"},
			})
			if err != nil {
				return fmt.Errorf("booking for %s: %w", customer.Email, err)
			}
			mu.Lock()
			bookings = append(bookings, b)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sc.Log.Info("Demo bookings created", "count", len(bookings))
	sc.Process[ProcessBookings] = bookings
	return nil
}

func registerAll(ctx context.Context, sc *Context, reqs []*model.RegisterRequest) ([]Account, error) {
	accounts := make([]Account, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCalls)

	for i, req := range reqs {
		g.Go(func() error {
			res, err := sc.API.Register(gctx, req)
			if err != nil {
				return fmt.Errorf("register %s: %w", req.Email, err)
			}
			accounts[i] = Account{UserID: res.User.ID, Email: req.Email, Token: res.Token}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sc.Log.Info("Demo accounts registered", "count", len(accounts))
	return accounts, nil
}
