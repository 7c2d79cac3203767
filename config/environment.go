package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Well-known property source names
const (
	CommandLineSourceName       = "commandLineArgs"
	SystemEnvironmentSourceName = "systemEnvironment"
	DefaultsSourceName          = "defaultProperties"
)

// Environment layered configuration store
// Reads see the merge of all property sources, higher precedence wins.
// Mutations replace the merged view atomically, so readers never observe a half applied change.
type Environment struct {
	mu      sync.RWMutex
	sources *PropertySources
	merged  map[string]interface{} // flat merged view (lowercase keys)
	v       *viper.Viper           // nested view used for Unmarshal and typed getters
}

// NewEnvironment creates an empty environment
func NewEnvironment() *Environment {
	return &Environment{
		sources: NewPropertySources(),
		merged:  make(map[string]interface{}),
		v:       viper.New(),
	}
}

// Mutate runs fn against the property source list under the write lock, then rebuilds the merged view
// fn must not call back into the Environment
func (e *Environment) Mutate(fn func(sources *PropertySources) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.sources); err != nil {
		return err
	}
	e.rebuild()
	return nil
}

// AddFirst adds a source with the highest precedence
func (e *Environment) AddFirst(source PropertySource) {
	_ = e.Mutate(func(s *PropertySources) error {
		s.AddFirst(source)
		return nil
	})
}

// AddLast adds a source with the lowest precedence
func (e *Environment) AddLast(source PropertySource) {
	_ = e.Mutate(func(s *PropertySources) error {
		s.AddLast(source)
		return nil
	})
}

// AddBefore adds a source right above anchor
func (e *Environment) AddBefore(anchor string, source PropertySource) error {
	return e.Mutate(func(s *PropertySources) error {
		return s.AddBefore(anchor, source)
	})
}

// AddAfter adds a source right below anchor
func (e *Environment) AddAfter(anchor string, source PropertySource) error {
	return e.Mutate(func(s *PropertySources) error {
		return s.AddAfter(anchor, source)
	})
}

// Replace swaps the named source in place
func (e *Environment) Replace(name string, source PropertySource) error {
	return e.Mutate(func(s *PropertySources) error {
		return s.Replace(name, source)
	})
}

// Remove removes the named source
func (e *Environment) Remove(name string) PropertySource {
	var removed PropertySource
	_ = e.Mutate(func(s *PropertySources) error {
		removed = s.Remove(name)
		return nil
	})
	return removed
}

// PropertySource returns the named source
func (e *Environment) PropertySource(name string) (PropertySource, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sources.Get(name)
}

// PropertySourceNames source names in precedence order
func (e *Environment) PropertySourceNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sources.Names()
}

// rebuild merges from lowest to highest precedence (caller holds the write lock)
func (e *Environment) rebuild() {
	merged := make(map[string]interface{})
	rank := make(map[string]int)
	list := e.sources.list
	for i := len(list) - 1; i >= 0; i-- {
		for key, value := range list[i].Properties() {
			key = normalizeKey(key)
			merged[key] = value
			rank[key] = i
		}
	}
	pruneShadowed(merged, rank)

	v := viper.New()
	for key, value := range unflattenMap(merged) {
		v.Set(key, value)
	}

	e.merged = merged
	e.v = v
}

// Property returns the raw string value of a key (placeholders not resolved)
func (e *Environment) Property(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lookup(key)
}

// lookup caller holds the read lock
func (e *Environment) lookup(key string) (string, bool) {
	value, ok := e.merged[normalizeKey(key)]
	if !ok {
		return "", false
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return fmt.Sprint(value), true
	}
	return s, true
}

// ResolvePlaceholders replaces ${key} and ${key:default} in text
// Unresolvable placeholders without a default are left untouched
func (e *Environment) ResolvePlaceholders(text string) string {
	if !strings.Contains(text, placeholderPrefix) {
		return text
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return resolvePlaceholders(text, e.lookup, 0)
}

// GetResolved returns the value of key with placeholders resolved
func (e *Environment) GetResolved(key string) (string, bool) {
	raw, ok := e.Property(key)
	if !ok {
		return "", false
	}
	return e.ResolvePlaceholders(raw), true
}

// Get configuration value
func (e *Environment) Get(key string) interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.v.Get(key)
}

// GetString Get string configuration
func (e *Environment) GetString(key string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.v.GetString(key)
}

// GetInt Get integer configuration
func (e *Environment) GetInt(key string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.v.GetInt(key)
}

// GetBool Get boolean configuration
func (e *Environment) GetBool(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.v.GetBool(key)
}

// IsSet Check if the configuration item exists
func (e *Environment) IsSet(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.v.IsSet(key)
}

// AllSettings nested view of every merged setting
func (e *Environment) AllSettings() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.v.AllSettings()
}

// Unmarshal decodes the section under key into v (whole config when key is empty)
func (e *Environment) Unmarshal(key string, v interface{}) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if key == "" {
		return e.v.Unmarshal(v)
	}
	return e.v.UnmarshalKey(key, v)
}
