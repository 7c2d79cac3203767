package nacos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/KOMKZ/go-yogan-nacos/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultRedisDialTimeout = 5 * time.Second
	redisChannelPrefix      = "config-changed:"
)

// RedisClient Client storing documents as redis strings under {namespace}:{group}:{dataId}
// Every publish also sends the new content on config-changed:{key}.
type RedisClient struct {
	client    *redis.Client
	namespace string
	logger    *logger.CtxZapLogger

	mu     sync.Mutex
	subs   []*redis.PubSub
	wg     sync.WaitGroup
	closed bool
}

// NewRedisClient connects to the first address of serverAddr
func NewRedisClient(props Properties) (*RedisClient, error) {
	addr := strings.TrimSpace(strings.Split(props.Get(KeyServerAddr), ",")[0])
	if addr == "" {
		return nil, fmt.Errorf("redis backend requires %s", KeyServerAddr)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Username:    props.Get(KeyUsername),
		Password:    props.Get(KeyPassword),
		DialTimeout: defaultRedisDialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultRedisDialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, redisError("ping redis failed", err)
	}
	return newRedisClientWith(client, props.Get(KeyNamespace)), nil
}

func newRedisClientWith(client *redis.Client, namespace string) *RedisClient {
	return &RedisClient{
		client:    client,
		namespace: namespace,
		logger:    logger.GetLogger("nacos"),
	}
}

// RedisKey redis key of a document
func RedisKey(namespace, group, dataID string) string {
	if namespace == "" {
		return group + ":" + dataID
	}
	return namespace + ":" + group + ":" + dataID
}

// GetConfig reads the document ("" when the key does not exist)
func (c *RedisClient) GetConfig(ctx context.Context, dataID, group string) (string, error) {
	content, err := c.client.Get(ctx, RedisKey(c.namespace, group, dataID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", redisError("redis get failed", err)
	}
	return content, nil
}

// redisError marks NOAUTH / WRONGPASS replies as ErrAuthFailed
func redisError(op string, err error) error {
	wrapped := fmt.Errorf("%s: %w", op, err)
	var rerr redis.Error
	if errors.As(err, &rerr) {
		msg := rerr.Error()
		if strings.HasPrefix(msg, "NOAUTH") || strings.HasPrefix(msg, "WRONGPASS") {
			return ErrAuthFailed.Wrap(wrapped)
		}
	}
	return wrapped
}

// PublishConfig writes a document and notifies the subscribers
func (c *RedisClient) PublishConfig(ctx context.Context, dataID, group, content string) error {
	key := RedisKey(c.namespace, group, dataID)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, content, 0)
		pipe.Publish(ctx, redisChannelPrefix+key, content)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// AddListener subscribes to the change channel of the document
// Returns once the subscription is confirmed by the server.
func (c *RedisClient) AddListener(ctx context.Context, dataID, group string, listener Listener) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("redis client closed")
	}

	channel := redisChannelPrefix + RedisKey(c.namespace, group, dataID)
	sub := c.client.Subscribe(context.Background(), channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("redis subscribe failed: %w", err)
	}
	c.subs = append(c.subs, sub)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for msg := range sub.Channel() {
			listener(dataID, group, msg.Payload)
		}
		c.logger.Debug("redis subscription closed", zap.String("channel", channel))
	}()
	return nil
}

// Close cancels every subscription and closes the connection
func (c *RedisClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	for _, sub := range c.subs {
		sub.Close()
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Debug("close redis connection")
	return c.client.Close()
}
