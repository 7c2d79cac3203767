package nacos

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-nacos/logger"
	"go.etcd.io/etcd/api/v3/v3rpc/rpctypes"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

const defaultEtcdDialTimeout = 5 * time.Second

// EtcdClient Client storing documents in etcd under /{namespace}/{group}/{dataId}
type EtcdClient struct {
	client    *clientv3.Client
	namespace string
	logger    *logger.CtxZapLogger

	mu      sync.Mutex
	cancels []context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
}

// NewEtcdClient connects to the endpoints listed in serverAddr
func NewEtcdClient(props Properties) (*EtcdClient, error) {
	var endpoints []string
	for _, ep := range strings.Split(props.Get(KeyServerAddr), ",") {
		if ep = strings.TrimSpace(ep); ep != "" {
			endpoints = append(endpoints, ep)
		}
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("etcd backend requires %s", KeyServerAddr)
	}

	cfg := clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: defaultEtcdDialTimeout,
	}
	if username := props.Get(KeyUsername); username != "" {
		cfg.Username = username
		cfg.Password = props.Get(KeyPassword)
	}

	client, err := clientv3.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to etcd failed: %w", err)
	}
	return newEtcdClientWith(client, props.Get(KeyNamespace)), nil
}

// newEtcdClientWith wraps an existing etcd client
func newEtcdClientWith(client *clientv3.Client, namespace string) *EtcdClient {
	return &EtcdClient{
		client:    client,
		namespace: namespace,
		logger:    logger.GetLogger("nacos"),
	}
}

// DocumentKey etcd key of a document
func DocumentKey(namespace, group, dataID string) string {
	return path.Join("/", namespace, group, dataID)
}

// GetConfig reads the document ("" when the key does not exist)
func (c *EtcdClient) GetConfig(ctx context.Context, dataID, group string) (string, error) {
	resp, err := c.client.Get(ctx, DocumentKey(c.namespace, group, dataID))
	if err != nil {
		err = fmt.Errorf("etcd get failed: %w", err)
		if isEtcdAuthError(err) {
			return "", ErrAuthFailed.Wrap(err)
		}
		return "", err
	}
	if len(resp.Kvs) == 0 {
		return "", nil
	}
	return string(resp.Kvs[0].Value), nil
}

func isEtcdAuthError(err error) bool {
	return errors.Is(err, rpctypes.ErrAuthFailed) ||
		errors.Is(err, rpctypes.ErrPermissionDenied) ||
		errors.Is(err, rpctypes.ErrInvalidAuthToken)
}

// PublishConfig writes a document
func (c *EtcdClient) PublishConfig(ctx context.Context, dataID, group, content string) error {
	if _, err := c.client.Put(ctx, DocumentKey(c.namespace, group, dataID), content); err != nil {
		return fmt.Errorf("etcd put failed: %w", err)
	}
	return nil
}

// AddListener watches the document key and delivers puts in revision order
// Deletes are delivered as empty content.
func (c *EtcdClient) AddListener(ctx context.Context, dataID, group string, listener Listener) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("etcd client closed")
	}

	// the watch outlives the registering call
	watchCtx, cancel := context.WithCancel(context.Background())
	c.cancels = append(c.cancels, cancel)
	key := DocumentKey(c.namespace, group, dataID)
	watchCh := c.client.Watch(watchCtx, key)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for resp := range watchCh {
			if err := resp.Err(); err != nil {
				c.logger.ErrorCtx(ctx, "etcd watch failed", zap.String("key", key), zap.Error(err))
				continue
			}
			for _, ev := range resp.Events {
				switch ev.Type {
				case clientv3.EventTypePut:
					listener(dataID, group, string(ev.Kv.Value))
				case clientv3.EventTypeDelete:
					listener(dataID, group, "")
				}
			}
		}
	}()
	return nil
}

// Close stops every watch and closes the connection
func (c *EtcdClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for _, cancel := range c.cancels {
		cancel()
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Debug("close etcd connection")
	return c.client.Close()
}
