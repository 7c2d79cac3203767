package errcode

import (
	"fmt"
	"sync"
)

// Registry guards against two errors sharing one code
type Registry struct {
	mu    sync.RWMutex
	codes map[int]string // code -> module:msgKey
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codes: make(map[int]string)}
}

// Register records err and panics when its code is already taken by another key
// Registering the same code and key again is allowed
func (r *Registry) Register(err *LayeredError) *LayeredError {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := err.Module() + ":" + err.MsgKey()
	if existing, ok := r.codes[err.Code()]; ok && existing != key {
		panic(fmt.Sprintf("error code conflict: code %d is already registered as %s, cannot register as %s",
			err.Code(), existing, key))
	}
	r.codes[err.Code()] = key
	return err
}

// Count number of registered codes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.codes)
}

// Register registers err in the global registry
func Register(err *LayeredError) *LayeredError {
	return globalRegistry.Register(err)
}

// GetAllRegisteredCodes copy of the global registry
func GetAllRegisteredCodes() map[int]string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	codes := make(map[int]string, len(globalRegistry.codes))
	for k, v := range globalRegistry.codes {
		codes[k] = v
	}
	return codes
}
