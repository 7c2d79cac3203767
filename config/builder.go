package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvironmentBuilder assembles the standard local property sources
// Precedence (highest first):
// - command line arguments
// - environment variables
// - environment configuration file ({env}.yaml)
// - configuration file (config.yaml)
// - defaults
type EnvironmentBuilder struct {
	configPath string
	envPrefix  string
	args       []string
	defaults   map[string]interface{}
}

// NewEnvironmentBuilder creates a builder
func NewEnvironmentBuilder() *EnvironmentBuilder {
	return &EnvironmentBuilder{}
}

// WithConfigPath set configuration directory
func (b *EnvironmentBuilder) WithConfigPath(path string) *EnvironmentBuilder {
	b.configPath = path
	return b
}

// WithEnvPrefix set environment variable prefix
func (b *EnvironmentBuilder) WithEnvPrefix(prefix string) *EnvironmentBuilder {
	b.envPrefix = prefix
	return b
}

// WithArgs set command line arguments ("--key=value")
func (b *EnvironmentBuilder) WithArgs(args []string) *EnvironmentBuilder {
	b.args = args
	return b
}

// WithDefaults set lowest precedence default values
func (b *EnvironmentBuilder) WithDefaults(defaults map[string]interface{}) *EnvironmentBuilder {
	b.defaults = defaults
	return b
}

// Build loads every source and returns the environment
func (b *EnvironmentBuilder) Build() (*Environment, error) {
	env := NewEnvironment()

	var sources []ConfigSource
	if len(b.args) > 0 {
		sources = append(sources, NewArgsSource(b.args))
	}
	sources = append(sources, NewEnvSource(b.envPrefix))
	if b.configPath != "" {
		if name := GetEnv(); name != "" {
			sources = append(sources, NewFileSource(filepath.Join(b.configPath, name+".yaml")))
		}
		sources = append(sources, NewFileSource(filepath.Join(b.configPath, "config.yaml")))
	}

	err := env.Mutate(func(list *PropertySources) error {
		for _, src := range sources {
			loaded, err := LoadSource(src)
			if err != nil {
				return fmt.Errorf("load data source %s failed: %w", src.Name(), err)
			}
			list.AddLast(loaded)
		}
		if len(b.defaults) > 0 {
			list.AddLast(NewMapSource(DefaultsSourceName, flattenMap("", b.defaults)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return env, nil
}

// GetEnv retrieves the active environment name (priority: APP_ENV > ENV > default dev)
func GetEnv() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "dev"
}
