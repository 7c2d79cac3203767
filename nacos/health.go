package nacos

import (
	"context"
	"errors"
	"fmt"

	"github.com/KOMKZ/go-yogan-nacos/component"
	"github.com/KOMKZ/go-yogan-nacos/health"
)

// Sources every loaded source with its parameter set, in load order
func (in *Initializer) Sources() []DeferredSource {
	if in.pending != nil && in.pending.Enabled() {
		return in.pending.Loaded()
	}
	if in.loader == nil {
		return nil
	}
	return in.loader.DeferredSources()
}

// Check fetches every loaded document again through its cached client
// Some documents failing is reported as degraded, all of them as unhealthy.
func (in *Initializer) Check(ctx context.Context) error {
	sources := in.Sources()
	if len(sources) == 0 || in.clients == nil {
		return nil
	}

	var errs []error
	for _, ds := range sources {
		client, ok := in.clients.Lookup(ds.Properties)
		if !ok {
			errs = append(errs, fmt.Errorf("%s: no client", ds.Source.Name()))
			continue
		}
		if _, err := client.GetConfig(ctx, ds.Source.DataID(), ds.Source.Group()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ds.Source.Name(), err))
		}
	}

	switch {
	case len(errs) == 0:
		return nil
	case len(errs) < len(sources):
		return fmt.Errorf("%d of %d nacos documents unreachable: %w", len(errs), len(sources), errors.Join(append(errs, health.ErrDegraded)...))
	default:
		return errors.Join(errs...)
	}
}

// GetHealthChecker implements component.HealthCheckProvider
func (c *Component) GetHealthChecker() component.HealthChecker {
	return health.CheckerFunc{CheckName: component.ComponentNacos, Fn: c.initializer.Check}
}
