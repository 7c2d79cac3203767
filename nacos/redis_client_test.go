package nacos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisClient) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Unable to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client, err := NewRedisClient(Properties{KeyServerAddr: mr.Addr(), KeyNamespace: "dev"})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "dev:DEFAULT_GROUP:app.yaml", RedisKey("dev", DefaultGroup, "app.yaml"))
	assert.Equal(t, "DEFAULT_GROUP:app.yaml", RedisKey("", DefaultGroup, "app.yaml"))
}

func TestNewRedisClient_RequiresAddress(t *testing.T) {
	_, err := NewRedisClient(Properties{})
	assert.Error(t, err)
}

func TestRedisClient_GetAndPublish(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	content, err := client.GetConfig(ctx, "missing", DefaultGroup)
	require.NoError(t, err)
	assert.Empty(t, content)

	require.NoError(t, mr.Set("dev:G:seeded", "a=1"))
	content, err = client.GetConfig(ctx, "seeded", "G")
	require.NoError(t, err)
	assert.Equal(t, "a=1", content)

	require.NoError(t, client.PublishConfig(ctx, "app.properties", DefaultGroup, "b=2"))
	stored, err := mr.Get("dev:DEFAULT_GROUP:app.properties")
	require.NoError(t, err)
	assert.Equal(t, "b=2", stored)
}

func TestRedisClient_ListenerReceivesPublish(t *testing.T) {
	_, client := newTestRedis(t)
	ctx := context.Background()

	received := make(chan string, 1)
	require.NoError(t, client.AddListener(ctx, "watched", DefaultGroup, func(dataID, group, content string) {
		assert.Equal(t, "watched", dataID)
		assert.Equal(t, DefaultGroup, group)
		received <- content
	}))
	require.NoError(t, client.PublishConfig(ctx, "watched", DefaultGroup, "v=2"))

	select {
	case content := <-received:
		assert.Equal(t, "v=2", content)
	case <-time.After(2 * time.Second):
		t.Fatal("listener not called")
	}
}

func TestRedisClient_ClosedRejectsListener(t *testing.T) {
	_, client := newTestRedis(t)
	require.NoError(t, client.Close())
	require.NoError(t, client.Close())

	err := client.AddListener(context.Background(), "x", DefaultGroup, func(string, string, string) {})
	assert.Error(t, err)
}

func TestInitializer_RedisBackend(t *testing.T) {
	mr, publisher := newTestRedis(t)
	require.NoError(t, mr.Set("dev:DEFAULT_GROUP:app.yaml", "feature:\n  enabled: false\n"))

	env := newTestEnvironment(map[string]interface{}{
		"nacos.config.backend":          BackendRedis,
		"nacos.config.server-addr":      mr.Addr(),
		"nacos.config.namespace":        "dev",
		"nacos.config.data-id":          "app.yaml",
		"nacos.config.type":             "yaml",
		"nacos.config.auto-refresh":     true,
		"nacos.config.bootstrap.enable": true,
	})

	in := NewInitializer(env)
	defer in.Close()
	require.NoError(t, in.Run(context.Background()))
	assert.False(t, env.GetBool("feature.enabled"))

	require.NoError(t, publisher.PublishConfig(context.Background(), "app.yaml", DefaultGroup, "feature:\n  enabled: true\n"))
	assert.Eventually(t, func() bool {
		return env.GetBool("feature.enabled")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRedisClient_AuthRequired(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Unable to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	mr.RequireAuth("secret")

	client := newRedisClientWith(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "dev")
	t.Cleanup(func() { client.Close() })

	_, err = client.GetConfig(context.Background(), "app", DefaultGroup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAuthFailed))
}
