package nacos

import (
	"context"
	"sync"

	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/KOMKZ/go-yogan-nacos/logger"
	"github.com/samber/do/v2"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// GlobalPropertiesName name of the global parameter set in the injector
const GlobalPropertiesName = "globalNacosProperties"

// LoggingLevelKey refreshed together with the nacos sources when preloading is on
const LoggingLevelKey = "logging.level"

// Initializer drives loading in two steps
// PostProcessEnvironment runs right after the local environment is built,
// Initialize runs once the rest of the process is wired.
type Initializer struct {
	env        *config.Environment
	injector   do.Injector
	dispatcher event.Dispatcher
	factory    ClientFactory
	clientOpts ClientOptions
	meter      metric.Meter
	logger     *logger.CtxZapLogger

	props     ConfigProperties
	processor *Processor
	pending   *PendingSources
	clients   *ClientCache
	registrar *Registrar
	loader    *Loader

	closeOnce sync.Once
	unsub     []event.UnsubscribeFunc
}

// Option initializer option
type Option func(*Initializer)

// WithInjector injector receiving the global parameter set
func WithInjector(i do.Injector) Option {
	return func(in *Initializer) {
		in.injector = i
	}
}

// WithDispatcher dispatcher for nacos events
func WithDispatcher(d event.Dispatcher) Option {
	return func(in *Initializer) {
		in.dispatcher = d
	}
}

// WithClientFactory replaces the backend factory (tests, custom backends)
func WithClientFactory(f ClientFactory) Option {
	return func(in *Initializer) {
		in.factory = f
	}
}

// WithClientOptions sdk client settings
func WithClientOptions(opts ClientOptions) Option {
	return func(in *Initializer) {
		in.clientOpts = opts
	}
}

// WithMeter meter for the client metrics (default: global meter provider)
func WithMeter(meter metric.Meter) Option {
	return func(in *Initializer) {
		in.meter = meter
	}
}

// NewInitializer creates an initializer for env
func NewInitializer(env *config.Environment, opts ...Option) *Initializer {
	in := &Initializer{
		env:    env,
		logger: logger.GetLogger("nacos"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run both steps back to back
func (in *Initializer) Run(ctx context.Context) error {
	if err := in.PostProcessEnvironment(ctx); err != nil {
		return err
	}
	return in.Initialize(ctx)
}

// PostProcessEnvironment binds the properties and preloads when bootstrap.log-enable is set
func (in *Initializer) PostProcessEnvironment(ctx context.Context) error {
	props, err := BindConfigProperties(in.env)
	if err != nil {
		return err
	}
	in.props = props

	if in.factory == nil {
		opts := in.clientOpts
		opts.DisableSnapshot = !props.Bootstrap.SnapshotEnable
		factory, err := NewClientFactory(props.Backend, opts)
		if err != nil {
			return ErrInvalidProperties.Wrap(err)
		}
		in.factory = factory
	}
	if metrics, err := NewMetrics(in.meter); err != nil {
		in.logger.WarnCtx(ctx, "nacos metrics disabled", zap.Error(err))
	} else {
		in.factory = metrics.Instrument(in.factory)
	}

	in.clients = NewClientCache(in.factory)
	var regOpts []RegistrarOption
	if in.dispatcher != nil {
		regOpts = append(regOpts, WithRegistrarDispatcher(in.dispatcher))
	}
	in.registrar = NewRegistrar(in.env, in.clients, regOpts...)

	in.processor = NewProcessor(in.env, props, in.factory)
	pending, err := in.processor.Resolve(ctx)
	if err != nil {
		return err
	}
	in.pending = pending

	if in.processor.Enabled() {
		in.enableLogLevelRefresh()
	}
	return nil
}

// Initialize publishes preloaded sources or loads now, then exposes the global parameters
func (in *Initializer) Initialize(ctx context.Context) error {
	if in.registrar == nil {
		return ErrInvalidProperties.WithMsgf("nacos initializer used before PostProcessEnvironment")
	}

	in.loader = NewLoader(in.props, in.env, in.clients)

	switch {
	case !in.processor.Enabled() && !in.props.Bootstrap.Enable:
		in.logger.InfoCtx(ctx, "the preload configuration is not enabled")
	case in.processor.Enabled():
		// failures are already logged and must not stop the process
		_ = in.processor.Activate(ctx, in.pending, in.registrar)
	default:
		if err := in.loader.LoadConfig(ctx); err != nil {
			return err
		}
		if err := in.registrar.AddListenerIfAutoRefreshed(ctx, in.loader.DeferredSources()); err != nil {
			return err
		}
	}

	in.exposeGlobalProperties()
	return nil
}

func (in *Initializer) exposeGlobalProperties() {
	if in.injector == nil {
		return
	}
	if _, err := do.InvokeNamed[Properties](in.injector, GlobalPropertiesName); err == nil {
		return
	}
	do.ProvideNamedValue(in.injector, GlobalPropertiesName, in.GlobalProperties())
}

// enableLogLevelRefresh applies logging.level whenever a refresh changes it
func (in *Initializer) enableLogLevelRefresh() {
	if in.dispatcher == nil {
		return
	}
	unsub := in.dispatcher.Subscribe(EventPropertySourceRefreshed, event.ListenerFunc(func(ctx context.Context, e event.Event) error {
		refreshed, ok := e.(*PropertySourceRefreshedEvent)
		if !ok || !containsKey(refreshed.ChangedKeys, LoggingLevelKey) {
			return nil
		}
		level, ok := in.env.GetResolved(LoggingLevelKey)
		if !ok || level == "" {
			return nil
		}
		if err := logger.SetLevel(level); err != nil {
			in.logger.WarnCtx(ctx, "refresh log level failed", zap.String("level", level), zap.Error(err))
			return nil
		}
		in.logger.InfoCtx(ctx, "log level refreshed", zap.String("level", level))
		return nil
	}))
	in.unsub = append(in.unsub, unsub)
}

// Properties bound nacos.config section
func (in *Initializer) Properties() ConfigProperties {
	return in.props
}

// GlobalProperties global parameter set (nil before Initialize)
// After preloading it is the set the preload fetched with.
func (in *Initializer) GlobalProperties() Properties {
	if in.pending.Enabled() {
		return in.pending.GlobalProperties()
	}
	if in.loader == nil {
		return nil
	}
	return in.loader.GlobalProperties()
}

// Registrar listener registrar (nil before PostProcessEnvironment)
func (in *Initializer) Registrar() *Registrar {
	return in.registrar
}

// Pending result of the preload step
func (in *Initializer) Pending() *PendingSources {
	return in.pending
}

// Close removes subscriptions and closes every client
func (in *Initializer) Close() error {
	in.closeOnce.Do(func() {
		for _, unsub := range in.unsub {
			unsub()
		}
		if in.pending != nil && in.pending.clients != nil {
			in.pending.clients.Clear()
		}
		if in.clients != nil {
			in.clients.Clear()
		}
	})
	return nil
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
