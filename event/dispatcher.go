package event

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/KOMKZ/go-yogan-nacos/logger"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// UnsubscribeFunc cancels a subscription
type UnsubscribeFunc func()

// Dispatcher event dispatcher
type Dispatcher interface {
	// Subscribe to an event, returns the unsubscribe function
	Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc

	// Dispatch delivers the event (synchronously unless WithDispatchAsync)
	Dispatch(ctx context.Context, event Event, opts ...DispatchOption) error

	// Use registers a global interceptor
	Use(interceptor Interceptor)

	// Close releases the worker pool
	Close()
}

type dispatcher struct {
	mu           sync.RWMutex
	listeners    map[string][]listenerEntry
	interceptors []Interceptor
	nextID       uint64
	pool         *ants.Pool
	poolSize     int
	logger       *logger.CtxZapLogger
	closed       int32
	setAllSync   bool
}

// NewDispatcher creates an event dispatcher
func NewDispatcher(opts ...DispatcherOption) Dispatcher {
	d := &dispatcher{
		listeners: make(map[string][]listenerEntry),
		poolSize:  100,
		logger:    logger.GetLogger("event"),
	}
	for _, opt := range opts {
		opt(d)
	}

	var err error
	d.pool, err = ants.NewPool(d.poolSize)
	if err != nil {
		d.logger.Error("create worker pool failed, using default size", zap.Error(err))
		d.pool, _ = ants.NewPool(100)
	}
	return d
}

// Subscribe to an event
func (d *dispatcher) Subscribe(eventName string, listener Listener, opts ...SubscribeOption) UnsubscribeFunc {
	if eventName == "" || listener == nil {
		return func() {}
	}

	entry := listenerEntry{
		id:       atomic.AddUint64(&d.nextID, 1),
		listener: listener,
	}
	for _, opt := range opts {
		opt(&entry)
	}
	if d.setAllSync {
		entry.async = false
	}

	d.mu.Lock()
	d.listeners[eventName] = append(d.listeners[eventName], entry)
	sort.SliceStable(d.listeners[eventName], func(i, j int) bool {
		return d.listeners[eventName][i].priority < d.listeners[eventName][j].priority
	})
	d.mu.Unlock()

	return func() {
		d.unsubscribe(eventName, entry.id)
	}
}

func (d *dispatcher) unsubscribe(eventName string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entries := d.listeners[eventName]
	for i, e := range entries {
		if e.id == id {
			d.listeners[eventName] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Use registers a global interceptor
func (d *dispatcher) Use(interceptor Interceptor) {
	d.mu.Lock()
	d.interceptors = append(d.interceptors, interceptor)
	d.mu.Unlock()
}

// Dispatch delivers an event
func (d *dispatcher) Dispatch(ctx context.Context, event Event, opts ...DispatchOption) error {
	if event == nil {
		return nil
	}

	options := &dispatchOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.async && !d.setAllSync {
		d.dispatchAsync(ctx, event)
		return nil
	}
	return d.dispatchSync(ctx, event)
}

func (d *dispatcher) dispatchSync(ctx context.Context, event Event) error {
	d.mu.RLock()
	interceptors := make([]Interceptor, len(d.interceptors))
	copy(interceptors, d.interceptors)
	entries := make([]listenerEntry, len(d.listeners[event.Name()]))
	copy(entries, d.listeners[event.Name()])
	d.mu.RUnlock()

	handler := d.buildHandlerChain(entries, interceptors)
	err := handler(ctx, event)
	if errors.Is(err, ErrStopPropagation) {
		return nil
	}
	return err
}

func (d *dispatcher) dispatchAsync(ctx context.Context, event Event) {
	if atomic.LoadInt32(&d.closed) == 1 {
		return
	}

	// detach from the caller's cancellation, keep the trace id
	asyncCtx := context.Background()
	if traceID := ctx.Value("trace_id"); traceID != nil {
		asyncCtx = context.WithValue(asyncCtx, "trace_id", traceID)
	}

	if err := d.pool.Submit(func() {
		if err := d.dispatchSync(asyncCtx, event); err != nil {
			d.logger.ErrorCtx(asyncCtx, "async event handling failed",
				zap.String("event", event.Name()), zap.Error(err))
		}
	}); err != nil {
		d.logger.ErrorCtx(ctx, "submit async event failed",
			zap.String("event", event.Name()), zap.Error(err))
	}
}

func (d *dispatcher) buildHandlerChain(entries []listenerEntry, interceptors []Interceptor) Next {
	handler := func(ctx context.Context, event Event) error {
		return d.executeListeners(ctx, event, entries)
	}

	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		next := handler
		handler = func(ctx context.Context, event Event) error {
			return interceptor(ctx, event, next)
		}
	}
	return handler
}

func (d *dispatcher) executeListeners(ctx context.Context, event Event, entries []listenerEntry) error {
	for _, entry := range entries {
		if entry.async {
			listener := entry.listener
			_ = d.pool.Submit(func() {
				if err := listener.Handle(ctx, event); err != nil && !errors.Is(err, ErrStopPropagation) {
					d.logger.ErrorCtx(ctx, "async listener failed",
						zap.String("event", event.Name()), zap.Error(err))
				}
			})
			continue
		}

		if err := entry.listener.Handle(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

// Close stops accepting async work and releases the pool
func (d *dispatcher) Close() {
	if !atomic.CompareAndSwapInt32(&d.closed, 0, 1) {
		return
	}
	if d.pool != nil {
		d.pool.Release()
	}
}

// ListenerCount number of listeners of an event (for testing)
func (d *dispatcher) ListenerCount(eventName string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[eventName])
}
