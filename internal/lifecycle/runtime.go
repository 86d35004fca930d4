package lifecycle

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Component is a long-running part of the bot started before updates flow
// and stopped in reverse order on shutdown.
type Component interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

type Runtime struct {
	components []Component
}

func NewRuntime(components ...Component) *Runtime {
	return &Runtime{components: components}
}

func (r *Runtime) Register(component Component) {
	if component == nil {
		return
	}
	r.components = append(r.components, component)
}

func (r *Runtime) Start(ctx context.Context) error {
	started := make([]Component, 0, len(r.components))
	for _, component := range r.components {
		if component == nil {
			continue
		}
		if err := component.Start(ctx); err != nil {
			_ = stopComponents(ctx, started)
			return fmt.Errorf("start component %s: %w", componentName(component), err)
		}
		getLogEntry().WithField("component", componentName(component)).Debug("started")
		started = append(started, component)
	}
	return nil
}

func (r *Runtime) Stop(ctx context.Context) error {
	return stopComponents(ctx, r.components)
}

func stopComponents(ctx context.Context, components []Component) error {
	var stopErr error
	for i := len(components) - 1; i >= 0; i-- {
		component := components[i]
		if component == nil {
			continue
		}
		if err := component.Stop(ctx); err != nil {
			stopErr = errors.Join(stopErr, fmt.Errorf("stop component %s: %w", componentName(component), err))
			continue
		}
		getLogEntry().WithField("component", componentName(component)).Debug("stopped")
	}
	return stopErr
}

func getLogEntry() *log.Entry {
	return log.WithField("object", "Runtime")
}

func componentName(c Component) string {
	if named, ok := c.(interface{ Name() string }); ok {
		return named.Name()
	}
	return fmt.Sprintf("%T", c)
}
