package config

import "strings"

// PropertySource a named set of configuration values inside an Environment
// Keys are flat and dot separated, such as "nacos.config.server-addr"
type PropertySource interface {
	// Source name (unique within one Environment)
	Name() string

	// Properties returns the flat key/value view of this source
	// Callers must not modify the returned map
	Properties() map[string]interface{}
}

// ConfigSource a loadable data source (files, environment variables, command line arguments)
// Loading happens once when the source is placed into an Environment
type ConfigSource interface {
	// Data source name (for logs and debugging)
	Name() string

	// Load configuration data
	// The returned map uses keys separated by dots, such as "nacos.config.data-id"
	Load() (map[string]interface{}, error)
}

// MapSource immutable in-memory property source
type MapSource struct {
	name string
	data map[string]interface{}
}

// NewMapSource creates a property source from a flat map (the map is copied)
func NewMapSource(name string, data map[string]interface{}) *MapSource {
	copied := make(map[string]interface{}, len(data))
	for k, v := range data {
		copied[normalizeKey(k)] = v
	}
	return &MapSource{name: name, data: copied}
}

// Name source name
func (s *MapSource) Name() string {
	return s.name
}

// Properties flat key/value view
func (s *MapSource) Properties() map[string]interface{} {
	return s.data
}

// LoadSource loads a ConfigSource into an immutable property source
func LoadSource(src ConfigSource) (*MapSource, error) {
	data, err := src.Load()
	if err != nil {
		return nil, err
	}
	return NewMapSource(src.Name(), data), nil
}

// normalizeKey keys are case-insensitive, same as viper
func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
