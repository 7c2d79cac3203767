package nacos

import (
	"context"
	"fmt"

	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/samber/do/v2"
)

// ProvideInitializer creates the Initializer provider
// Depends on *config.Environment; uses an event.Dispatcher when one is registered.
// Configuration is loaded before the provider returns.
//
// Example:
//
//	do.Provide(injector, config.ProvideEnvironment(opts))
//	do.Provide(injector, nacos.ProvideInitializer())
//	in := do.MustInvoke[*nacos.Initializer](injector)
func ProvideInitializer(opts ...Option) func(do.Injector) (*Initializer, error) {
	return func(i do.Injector) (*Initializer, error) {
		env, err := do.Invoke[*config.Environment](i)
		if err != nil {
			return nil, fmt.Errorf("nacos: config environment unavailable: %w", err)
		}

		options := []Option{WithInjector(i)}
		if d, err := do.Invoke[event.Dispatcher](i); err == nil {
			options = append(options, WithDispatcher(d))
		}
		options = append(options, opts...)

		in := NewInitializer(env, options...)
		if err := in.Run(context.Background()); err != nil {
			_ = in.Close()
			return nil, err
		}
		return in, nil
	}
}

// Shutdown implements do.Shutdowner
func (in *Initializer) Shutdown() error {
	return in.Close()
}
