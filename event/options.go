package event

// listenerEntry one subscription
type listenerEntry struct {
	id       uint64
	listener Listener
	priority int  // smaller runs first
	async    bool // always runs on the worker pool
}

// SubscribeOption subscription options
type SubscribeOption func(*listenerEntry)

// WithPriority smaller numbers run first (default 0)
func WithPriority(priority int) SubscribeOption {
	return func(e *listenerEntry) {
		e.priority = priority
	}
}

// WithAsync runs the listener on the worker pool even for synchronous dispatch
// Its errors do not affect propagation
func WithAsync() SubscribeOption {
	return func(e *listenerEntry) {
		e.async = true
	}
}

// DispatcherOption dispatcher configuration
type DispatcherOption func(*dispatcher)

// WithPoolSize size of the async worker pool
func WithPoolSize(size int) DispatcherOption {
	return func(d *dispatcher) {
		d.poolSize = size
	}
}

// WithSetAllSync forces every listener and dispatch to run synchronously (tests)
func WithSetAllSync(v bool) DispatcherOption {
	return func(d *dispatcher) {
		d.setAllSync = v
	}
}

// dispatchOptions per dispatch options
type dispatchOptions struct {
	async bool
}

// DispatchOption per dispatch option
type DispatchOption func(*dispatchOptions)

// WithDispatchAsync submits the whole dispatch to the worker pool and returns immediately
func WithDispatchAsync() DispatchOption {
	return func(o *dispatchOptions) {
		o.async = true
	}
}
