package nacos

import (
	"context"
	"errors"
	"sync"

	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/KOMKZ/go-yogan-nacos/logger"
	"go.uber.org/zap"
)

// Registrar registers change listeners for auto-refresh sources
// and swaps refreshed sources into the environment.
type Registrar struct {
	env        *config.Environment
	clients    *ClientCache
	dispatcher event.Dispatcher
	logger     *logger.CtxZapLogger

	mu        sync.Mutex
	listeners map[string]*sourceListener
}

// sourceListener serializes the updates of one source
type sourceListener struct {
	mu     sync.Mutex
	name   string
	source *PropertySource // last applied value
}

// RegistrarOption registrar options
type RegistrarOption func(*Registrar)

// WithRegistrarDispatcher events are published through d
func WithRegistrarDispatcher(d event.Dispatcher) RegistrarOption {
	return func(r *Registrar) {
		r.dispatcher = d
	}
}

// NewRegistrar creates a registrar, listeners are added through clients from the cache
func NewRegistrar(env *config.Environment, clients *ClientCache, opts ...RegistrarOption) *Registrar {
	r := &Registrar{
		env:       env,
		clients:   clients,
		logger:    logger.GetLogger("nacos"),
		listeners: make(map[string]*sourceListener),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Clients client cache used for registration
func (r *Registrar) Clients() *ClientCache {
	return r.clients
}

// Adopt takes over clients created while loading
func (r *Registrar) Adopt(clients map[string]Client) {
	r.clients.Adopt(clients)
}

// AddListenerIfAutoRefreshed registers one listener per auto-refresh source
// A source already registered is skipped. All sources are attempted, failures are joined.
func (r *Registrar) AddListenerIfAutoRefreshed(ctx context.Context, sources []DeferredSource) error {
	var errs []error
	for _, ds := range sources {
		if ds.Source == nil || !ds.Source.AutoRefreshed() {
			continue
		}
		if err := r.addListener(ctx, ds); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registrar) addListener(ctx context.Context, ds DeferredSource) error {
	source := ds.Source
	key := listenerKey(source.DataID(), source.Group(), ds.Properties)

	r.mu.Lock()
	if _, ok := r.listeners[key]; ok {
		r.mu.Unlock()
		return nil
	}
	l := &sourceListener{name: source.Name(), source: source}
	r.listeners[key] = l
	r.mu.Unlock()

	client, err := r.clients.Get(ds.Properties)
	if err == nil {
		err = client.AddListener(ctx, source.DataID(), source.Group(), func(dataID, group, content string) {
			r.onChange(l, content)
		})
	}
	if err != nil {
		r.mu.Lock()
		delete(r.listeners, key)
		r.mu.Unlock()
		return bootConfigError(ds.Properties, source.DataID(), source.Group(), err)
	}

	r.logger.DebugCtx(ctx, "nacos config listener registered",
		zap.String("data_id", source.DataID()),
		zap.String("group", source.Group()))
	r.dispatch(ctx, newListenerRegisteredEvent(source.DataID(), source.Group()))
	return nil
}

// onChange applies new content to the source owning the listener
func (r *Registrar) onChange(l *sourceListener, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx := context.Background()
	old := l.source
	r.dispatch(ctx, newConfigReceivedEvent(old.DataID(), old.Group(), content))

	refreshed, err := old.withContent(content)
	if err != nil {
		r.logger.ErrorCtx(ctx, "refresh nacos config failed, keeping previous value",
			zap.String("data_id", old.DataID()),
			zap.String("group", old.Group()),
			zap.Error(err))
		return
	}

	if err := r.env.Replace(l.name, refreshed); err != nil {
		r.logger.WarnCtx(ctx, "nacos property source no longer in environment",
			zap.String("source", l.name), zap.Error(err))
		return
	}
	l.source = refreshed

	changed := changedKeys(old.Properties(), refreshed.Properties())
	r.logger.InfoCtx(ctx, "nacos config refreshed",
		zap.String("data_id", old.DataID()),
		zap.String("group", old.Group()),
		zap.Strings("changed_keys", changed))
	r.dispatch(ctx, newPropertySourceRefreshedEvent(refreshed, changed))
}

func (r *Registrar) dispatch(ctx context.Context, e event.Event) {
	if r.dispatcher == nil {
		return
	}
	if err := r.dispatcher.Dispatch(ctx, e); err != nil {
		r.logger.ErrorCtx(ctx, "nacos event listener failed",
			zap.String("event", e.Name()), zap.Error(err))
	}
}

// ListenerCount number of registered listeners
func (r *Registrar) ListenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}

func listenerKey(dataID, group string, props Properties) string {
	return dataID + "|" + group + "|" + props.Identify()
}
