package nacos

import (
	"context"
	"strings"

	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/logger"
	"go.uber.org/zap"
)

// DeferredSource a loaded source waiting for its listener registration
type DeferredSource struct {
	Source     *PropertySource
	Properties Properties
}

// Loader fetches the global and extension groups and layers them into the environment
type Loader struct {
	props    ConfigProperties
	env      *config.Environment
	factory  ClientFactory
	global   Properties
	deferred []DeferredSource
	logger   *logger.CtxZapLogger
}

// NewLoader creates a loader, the global parameter set is built right away
func NewLoader(props ConfigProperties, env *config.Environment, factory ClientFactory) *Loader {
	l := &Loader{
		props:   props,
		env:     env,
		factory: factory,
		logger:  logger.GetLogger("nacos"),
	}
	l.global = l.BuildGlobalProperties()
	return l
}

// BuildGlobalProperties parameter set of the global group
func (l *Loader) BuildGlobalProperties() Properties {
	return BuildProperties(l.env, l.props.GlobalParameters())
}

// buildSubProperties parameter set of an extension group, missing keys come from the global set
func (l *Loader) buildSubProperties(cfg Config) Properties {
	sub := BuildProperties(l.env, cfg.Parameters())
	MergeProperties(&sub, l.global)
	return sub
}

// GlobalProperties global parameter set
func (l *Loader) GlobalProperties() Properties {
	return l.global
}

// DeferredSources every source loaded so far, in load order
func (l *Loader) DeferredSources() []DeferredSource {
	out := make([]DeferredSource, len(l.deferred))
	copy(out, l.deferred)
	return out
}

// LoadConfig fetches every group and merges the result into the environment
// Nothing is added when any fetch fails.
func (l *Loader) LoadConfig(ctx context.Context) error {
	sources, err := l.Resolve(ctx)
	if err != nil {
		return err
	}
	return l.env.Mutate(func(list *config.PropertySources) error {
		return MergeSources(list, sources, l.props.RemoteFirst)
	})
}

// Resolve fetches the global group followed by each extension group in declaration order
func (l *Loader) Resolve(ctx context.Context) ([]*PropertySource, error) {
	sources, err := l.ResolveGlobal(ctx)
	if err != nil {
		return nil, err
	}
	for _, ext := range l.props.ExtConfig {
		elements, err := l.ResolveExt(ctx, ext)
		if err != nil {
			return nil, err
		}
		sources = append(sources, elements...)
	}
	return sources, nil
}

// ResolveGlobal sources of the global group
func (l *Loader) ResolveGlobal(ctx context.Context) ([]*PropertySource, error) {
	ids := l.dataIDs(l.props.DataID, l.props.DataIDs)
	group := l.env.ResolvePlaceholders(l.props.Group)
	return l.resolve(ctx, l.global, ids, group, l.props.Type, l.props.AutoRefresh)
}

// ResolveExt sources of one extension group
func (l *Loader) ResolveExt(ctx context.Context, cfg Config) ([]*PropertySource, error) {
	params := l.buildSubProperties(cfg)
	configType := cfg.Type
	if configType == "" {
		configType = l.props.Type
	}
	ids := l.dataIDs(cfg.DataID, cfg.DataIDs)
	group := l.env.ResolvePlaceholders(cfg.Group)
	return l.resolve(ctx, params, ids, group, configType, cfg.AutoRefresh)
}

// dataIDs a single data-id wins over the comma separated list
func (l *Loader) dataIDs(dataID, dataIDs string) []string {
	if dataID != "" {
		return []string{dataID}
	}
	ids := l.env.ResolvePlaceholders(dataIDs)
	if strings.TrimSpace(ids) == "" {
		return nil
	}
	return strings.Split(ids, ",")
}

func (l *Loader) resolve(ctx context.Context, params Properties, ids []string, group string, configType ConfigType, autoRefresh bool) ([]*PropertySource, error) {
	sources := make([]*PropertySource, 0, len(ids))
	for _, raw := range ids {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		dataID := l.env.ResolvePlaceholders(strings.TrimSpace(raw))

		client, err := l.factory.CreateClient(params)
		if err != nil {
			return nil, bootConfigError(params, dataID, group, err)
		}
		content, err := client.GetConfig(ctx, dataID, group)
		if err != nil {
			return nil, bootConfigError(params, dataID, group, err)
		}

		source, err := NewPropertySource(dataID, group, configType, content, params, autoRefresh)
		if err != nil {
			return nil, err
		}
		l.logger.InfoCtx(ctx, "load config from nacos",
			zap.String("data_id", dataID),
			zap.String("group", group))

		sources = append(sources, source)
		l.deferred = append(l.deferred, DeferredSource{Source: source, Properties: params})
	}
	return sources, nil
}

// MergeSources places the sources into the list keeping their relative order
// remoteFirst: right below the system environment (first when it is absent)
// otherwise: appended with the lowest precedence
func MergeSources(list *config.PropertySources, sources []*PropertySource, remoteFirst bool) error {
	if !remoteFirst {
		for _, s := range sources {
			list.AddLast(s)
		}
		return nil
	}

	// every insert targets the same anchor, so walk backwards
	for i := len(sources) - 1; i >= 0; i-- {
		if !list.Contains(config.SystemEnvironmentSourceName) {
			list.AddFirst(sources[i])
			continue
		}
		if err := list.AddAfter(config.SystemEnvironmentSourceName, sources[i]); err != nil {
			return err
		}
	}
	return nil
}
