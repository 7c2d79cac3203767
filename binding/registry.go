// Package binding maps configuration keys to setters and callbacks
// and re-applies them when nacos sources refresh.
package binding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/KOMKZ/go-yogan-nacos/logger"
	"github.com/KOMKZ/go-yogan-nacos/nacos"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Setter receives the resolved value of a key
type Setter func(value string) error

// WatchFunc called with the previous and current value after a change
type WatchFunc func(oldValue, newValue string)

type entry struct {
	key     string
	setter  Setter
	watch   WatchFunc
	value   string
	present bool
}

// Registry key path to setter registry backed by an Environment
// Setters run while the registry lock is held, one at a time.
type Registry struct {
	env     *config.Environment
	mu      sync.Mutex
	entries []*entry
	logger  *logger.CtxZapLogger
}

// NewRegistry creates a registry reading from env
func NewRegistry(env *config.Environment) *Registry {
	return &Registry{
		env:    env,
		logger: logger.GetLogger("binding"),
	}
}

// Bind registers setter for key and applies the current value when the key is set
func (r *Registry) Bind(key string, setter Setter) error {
	if key == "" || setter == nil {
		return fmt.Errorf("binding: key and setter are required")
	}
	e := &entry{key: key, setter: setter}
	value, ok := r.env.GetResolved(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	if !ok {
		return nil
	}
	if err := setter(value); err != nil {
		return fmt.Errorf("binding %s: %w", key, err)
	}
	e.value, e.present = value, true
	return nil
}

// Watch registers fn, called on every later change of key
func (r *Registry) Watch(key string, fn WatchFunc) {
	value, ok := r.env.GetResolved(key)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, &entry{key: key, watch: fn, value: value, present: ok})
}

// BindString binds key to target
func (r *Registry) BindString(key string, target *string) error {
	return r.Bind(key, func(value string) error {
		*target = value
		return nil
	})
}

// BindInt binds key to target
func (r *Registry) BindInt(key string, target *int) error {
	return r.Bind(key, func(value string) error {
		n, err := cast.ToIntE(value)
		if err != nil {
			return err
		}
		*target = n
		return nil
	})
}

// BindBool binds key to target
func (r *Registry) BindBool(key string, target *bool) error {
	return r.Bind(key, func(value string) error {
		b, err := cast.ToBoolE(value)
		if err != nil {
			return err
		}
		*target = b
		return nil
	})
}

// BindDuration binds key to target ("1m30s", or a number of nanoseconds)
func (r *Registry) BindDuration(key string, target *time.Duration) error {
	return r.Bind(key, func(value string) error {
		d, err := cast.ToDurationE(value)
		if err != nil {
			return err
		}
		*target = d
		return nil
	})
}

// Refresh re-reads every key and applies the ones whose value changed
// A removed key is not applied; its watchers see the empty string.
func (r *Registry) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, e := range r.entries {
		value, ok := r.env.GetResolved(e.key)
		if ok == e.present && value == e.value {
			continue
		}

		if e.setter != nil && ok {
			if err := e.setter(value); err != nil {
				errs = append(errs, fmt.Errorf("binding %s: %w", e.key, err))
				continue
			}
		}
		if e.watch != nil {
			e.watch(e.value, value)
		}
		e.value, e.present = value, ok
	}
	return errors.Join(errs...)
}

// Len number of bindings and watches
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Attach refreshes the registry after every nacos property source refresh
func (r *Registry) Attach(d event.Dispatcher) event.UnsubscribeFunc {
	return d.Subscribe(nacos.EventPropertySourceRefreshed, event.ListenerFunc(func(ctx context.Context, e event.Event) error {
		if err := r.Refresh(); err != nil {
			r.logger.ErrorCtx(ctx, "refresh bindings failed", zap.Error(err))
		}
		return nil
	}), event.WithPriority(100))
}
