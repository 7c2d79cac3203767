package config

import (
	"os"
	"strings"
)

// EnvSource environment variable data source
type EnvSource struct {
	prefix   string            // environment variable prefix, e.g. "APP"
	bindings map[string]string // key mapping, e.g. "nacos.config.server-addr" -> "NACOS_SERVER_ADDR"
	environ  func() []string
}

// NewEnvSource creates an environment variable data source
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{
		prefix:   prefix,
		bindings: make(map[string]string),
		environ:  os.Environ,
	}
}

// AddBinding adds an explicit key mapping
// For example: AddBinding("nacos.config.server-addr", "NACOS_SERVER_ADDR")
func (s *EnvSource) AddBinding(key, envKey string) *EnvSource {
	s.bindings[key] = envKey
	return s
}

// Name data source name
func (s *EnvSource) Name() string {
	return SystemEnvironmentSourceName
}

// Load environment variables
// Every variable is exposed under its own name (for ${HOME} style placeholders);
// prefixed variables are additionally mapped: APP_NACOS_CONFIG_GROUP -> nacos.config.group
func (s *EnvSource) Load() (map[string]interface{}, error) {
	result := make(map[string]interface{})
	vars := make(map[string]string)

	for _, env := range s.environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = value
		result[key] = value
	}

	for key, envKey := range s.bindings {
		fullEnvKey := envKey
		if s.prefix != "" && !strings.HasPrefix(envKey, s.prefix+"_") {
			if _, exists := vars[envKey]; !exists {
				fullEnvKey = s.prefix + "_" + envKey
			}
		}
		if value, ok := vars[fullEnvKey]; ok && value != "" {
			result[key] = value
		}
	}

	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	for key, value := range vars {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		configKey := strings.TrimPrefix(key, prefix)
		configKey = strings.ToLower(configKey)
		configKey = strings.ReplaceAll(configKey, "_", ".")
		result[configKey] = value
	}

	return result, nil
}
