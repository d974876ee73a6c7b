package seed

import (
	"context"
	"fmt"

	"hirfa/pkg/client"
	"hirfa/pkg/logger"
)

type Step struct {
	Name    string
	Execute func(ctx context.Context, sc *Context) error
}

type Flow interface {
	Name() string
	Steps() []Step
}

// Context carries a flow's input and the values earlier steps produced.
type Context struct {
	Input   map[string]any
	Process map[string]any
	API     *client.MarketplaceClient
	Log     *logger.Logger
}

func NewContext(input map[string]any, api *client.MarketplaceClient, log *logger.Logger) *Context {
	return &Context{
		Input:   input,
		Process: make(map[string]any),
		API:     api,
		Log:     log,
	}
}

func (c *Context) Int(key string, fallback int) int {
	if v, ok := c.Input[key].(int); ok && v > 0 {
		return v
	}
	return fallback
}

type Engine struct {
	flows map[string]Flow
}

func NewEngine(flows ...Flow) *Engine {
	m := make(map[string]Flow, len(flows))
	for _, f := range flows {
		m[f.Name()] = f
	}
	return &Engine{flows: m}
}

// Run executes the named flow's steps in order and stops at the first error.
func (e *Engine) Run(ctx context.Context, flowName string, sc *Context) error {
	f, exists := e.flows[flowName]
	if !exists {
		return fmt.Errorf("unsupported flow: %s", flowName)
	}
	for _, step := range f.Steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		sc.Log.Info("Running step", "flow", flowName, "step", step.Name)
		if err := step.Execute(ctx, sc); err != nil {
			return fmt.Errorf("%s step failed: %w", step.Name, err)
		}
	}
	return nil
}
