package event

import (
	"context"
	"errors"
	"fmt"
)

// ErrStopPropagation stops event propagation (not considered an error)
var ErrStopPropagation = errors.New("stop propagation")

// Listener handles events
// A returned error stops synchronous propagation; ErrStopPropagation stops it silently
type Listener interface {
	Handle(ctx context.Context, event Event) error
}

// ListenerFunc functional listener adapter
type ListenerFunc func(ctx context.Context, event Event) error

// Handle implements Listener
func (f ListenerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Next continues with the next interceptor or the listeners
type Next func(ctx context.Context, event Event) error

// Interceptor wraps every dispatch (logging, filtering, recovery)
type Interceptor func(ctx context.Context, event Event, next Next) error

// Recover turns a panicking synchronous listener into a dispatch error
func Recover() Interceptor {
	return func(ctx context.Context, event Event, next Next) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("event %s: listener panic: %v", event.Name(), r)
			}
		}()
		return next(ctx, event)
	}
}
