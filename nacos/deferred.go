package nacos

import (
	"context"
	"fmt"
	"sync"

	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/logger"
	"go.uber.org/zap"
)

// PendingSources result of Processor.Resolve, activated at most once
type PendingSources struct {
	enabled bool
	global  Properties
	sources []DeferredSource // listener queue, cleared by Activate
	loaded  []DeferredSource // everything preloaded, kept after Activate
	clients *ClientCache

	mu   sync.Mutex
	once sync.Once
}

// Enabled whether configuration was preloaded
func (p *PendingSources) Enabled() bool {
	return p != nil && p.enabled
}

// GlobalProperties global parameter set used while preloading
func (p *PendingSources) GlobalProperties() Properties {
	return p.global
}

// Sources queued sources (empty once activated)
func (p *PendingSources) Sources() []DeferredSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]DeferredSource, len(p.sources))
	copy(out, p.sources)
	return out
}

// Loaded every preloaded source in load order, unaffected by Activate
func (p *PendingSources) Loaded() []DeferredSource {
	if p == nil {
		return nil
	}
	out := make([]DeferredSource, len(p.loaded))
	copy(out, p.loaded)
	return out
}

// CachedClients number of clients built while preloading and not yet handed over
func (p *PendingSources) CachedClients() int {
	if p.clients == nil {
		return 0
	}
	return p.clients.Len()
}

// Processor preloads configuration before the rest of the process is ready
// Resolve loads the environment, Activate later registers the listeners.
type Processor struct {
	env     *config.Environment
	props   ConfigProperties
	factory ClientFactory
	logger  *logger.CtxZapLogger
}

// NewProcessor creates a processor for the bound properties
func NewProcessor(env *config.Environment, props ConfigProperties, factory ClientFactory) *Processor {
	return &Processor{
		env:     env,
		props:   props,
		factory: factory,
		logger:  logger.GetLogger("nacos"),
	}
}

// Enabled preloading is switched on by bootstrap.log-enable
func (p *Processor) Enabled() bool {
	return p.props.Bootstrap.LogEnable
}

// Resolve loads every group into the environment and queues the sources
// Clients are cached per parameter identity until Activate hands them over.
func (p *Processor) Resolve(ctx context.Context) (*PendingSources, error) {
	if !p.Enabled() {
		return &PendingSources{}, nil
	}
	p.logger.InfoCtx(ctx, "the preload log configuration is enabled")

	cache := NewClientCache(p.factory)
	loader := NewLoader(p.props, p.env, cache)
	if err := loader.LoadConfig(ctx); err != nil {
		cache.Clear()
		return nil, err
	}

	sources := loader.DeferredSources()
	return &PendingSources{
		enabled: true,
		global:  loader.GlobalProperties(),
		sources: sources,
		loaded:  append([]DeferredSource(nil), sources...),
		clients: cache,
	}, nil
}

// Activate hands cached clients to the registrar and registers the queued listeners
// Only the first call does anything, later calls return ErrAlreadyActivated.
// Failures are logged and returned, they never panic.
func (p *Processor) Activate(ctx context.Context, pending *PendingSources, registrar *Registrar) (err error) {
	if pending == nil {
		return nil
	}

	ran := false
	pending.once.Do(func() {
		ran = true
		defer func() {
			if r := recover(); r != nil {
				err = ErrPublishDeferred.Wrap(fmt.Errorf("panic: %v", r))
				p.logger.ErrorCtx(ctx, "publish deferred nacos sources has some error", zap.Error(err))
			}
		}()

		pending.mu.Lock()
		sources := pending.sources
		pending.sources = nil
		pending.mu.Unlock()

		if pending.clients != nil {
			registrar.Adopt(pending.clients.Drain())
		}
		if regErr := registrar.AddListenerIfAutoRefreshed(ctx, sources); regErr != nil {
			err = ErrPublishDeferred.Wrap(regErr)
			p.logger.ErrorCtx(ctx, "publish deferred nacos sources has some error", zap.Error(regErr))
		}
	})
	if !ran {
		return ErrAlreadyActivated
	}
	return err
}
