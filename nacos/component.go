package nacos

import (
	"context"

	"github.com/KOMKZ/go-yogan-nacos/component"
	"github.com/KOMKZ/go-yogan-nacos/config"
)

// Component lifecycle wrapper around the Initializer
// Init loads configuration, Stop closes the clients.
type Component struct {
	initializer   *Initializer
	postProcessed bool
}

// NewComponent creates the nacos component for env
func NewComponent(env *config.Environment, opts ...Option) *Component {
	return &Component{initializer: NewInitializer(env, opts...)}
}

// Name implements component.Component
func (c *Component) Name() string {
	return component.ComponentNacos
}

// DependsOn implements component.Component
func (c *Component) DependsOn() []string {
	return []string{
		component.ComponentConfig,
		component.ComponentLogger,
		component.OptionalPrefix + component.ComponentEvent,
	}
}

// PostProcessEnvironment implements component.EnvironmentPostProcessor
// Runs before the logger component, so preloaded sources can carry the logger section.
func (c *Component) PostProcessEnvironment(ctx context.Context) error {
	if err := c.initializer.PostProcessEnvironment(ctx); err != nil {
		return err
	}
	c.postProcessed = true
	return nil
}

// Init loads the remote configuration into the environment
// The loader is not used, properties come from the environment the component was built with.
func (c *Component) Init(ctx context.Context, _ component.ConfigLoader) error {
	if c.postProcessed {
		return c.initializer.Initialize(ctx)
	}
	return c.initializer.Run(ctx)
}

// Start nothing to start, listeners are registered during Init
func (c *Component) Start(ctx context.Context) error {
	return nil
}

// Stop closes every client
func (c *Component) Stop(ctx context.Context) error {
	return c.initializer.Close()
}

// Initializer underlying initializer
func (c *Component) Initializer() *Initializer {
	return c.initializer
}
