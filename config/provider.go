package config

import (
	"fmt"

	"github.com/samber/do/v2"
)

// ProvideEnvironmentOptions options for building the Environment
type ProvideEnvironmentOptions struct {
	ConfigPath   string   // configuration directory
	ConfigPrefix string   // environment variable prefix
	Args         []string // command line arguments
}

// ProvideEnvironment creates the Environment provider
// The environment is the lowest layer and has no dependencies
//
// Example:
//
//	do.Provide(injector, config.ProvideEnvironment(config.ProvideEnvironmentOptions{
//	    ConfigPath:   "./configs",
//	    ConfigPrefix: "APP",
//	    Args:         os.Args[1:],
//	}))
//	env := do.MustInvoke[*config.Environment](injector)
func ProvideEnvironment(opts ProvideEnvironmentOptions) func(do.Injector) (*Environment, error) {
	return func(i do.Injector) (*Environment, error) {
		env, err := NewEnvironmentBuilder().
			WithConfigPath(opts.ConfigPath).
			WithEnvPrefix(opts.ConfigPrefix).
			WithArgs(opts.Args).
			Build()
		if err != nil {
			return nil, fmt.Errorf("config environment build failed: %w", err)
		}
		return env, nil
	}
}

// ProvideEnvironmentValue registers an already built Environment (tests or special cases)
func ProvideEnvironmentValue(env *Environment) func(do.Injector) (*Environment, error) {
	return func(i do.Injector) (*Environment, error) {
		return env, nil
	}
}
