package contracts

import (
	"context"

	"github.com/julienschmidt/httprouter"
)

// Handler is implemented by every domain's HTTP layer.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handlers registers several domain handlers on one router.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(router *httprouter.Router) {
	for _, h := range hs {
		h.RegisterRoutes(router)
	}
}
