package nacos

import (
	"context"
	"fmt"
)

// Listener receives the new content of a watched document
// Called on the client's own goroutine
type Listener func(dataID, group, content string)

// Client fetches and watches configuration documents
type Client interface {
	// GetConfig returns the content of the document ("" when it has no content)
	GetConfig(ctx context.Context, dataID, group string) (string, error)

	// AddListener registers a change listener, returns without waiting for changes
	AddListener(ctx context.Context, dataID, group string, listener Listener) error

	// Close releases the client
	Close() error
}

// ClientFactory creates a client for a parameter set
type ClientFactory interface {
	CreateClient(props Properties) (Client, error)
}

// ClientFactoryFunc function adapter
type ClientFactoryFunc func(props Properties) (Client, error)

// CreateClient implements ClientFactory
func (f ClientFactoryFunc) CreateClient(props Properties) (Client, error) {
	return f(props)
}

// ClientOptions backend independent client settings
type ClientOptions struct {
	DisableSnapshot bool   // bootstrap.snapshot-enable=false
	LogDir          string // nacos sdk log dir
	CacheDir        string // nacos sdk snapshot dir
	LogLevel        string
}

// NewClientFactory factory of the configured backend
func NewClientFactory(backend string, opts ClientOptions) (ClientFactory, error) {
	switch backend {
	case "", BackendNacos:
		return ClientFactoryFunc(func(props Properties) (Client, error) {
			return NewSDKClient(props, opts)
		}), nil
	case BackendEtcd:
		return WithFetchRetry(ClientFactoryFunc(func(props Properties) (Client, error) {
			return NewEtcdClient(props)
		})), nil
	case BackendRedis:
		return WithFetchRetry(ClientFactoryFunc(func(props Properties) (Client, error) {
			return NewRedisClient(props)
		})), nil
	default:
		return nil, fmt.Errorf("unknown nacos backend: %s", backend)
	}
}
