package nacos

import (
	"context"
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-nacos/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializer_Check(t *testing.T) {
	server := newFakeServer()
	server.put("a", DefaultGroup, "k=a")
	server.put("b", DefaultGroup, "k=b")
	env := newTestEnvironment(map[string]interface{}{
		"nacos.config.data-ids":         "a,b",
		"nacos.config.bootstrap.enable": true,
	})

	in := NewInitializer(env, WithClientFactory(server.factory()))
	defer in.Close()
	require.NoError(t, in.Run(context.Background()))
	require.Len(t, in.Sources(), 2)
	assert.NoError(t, in.Check(context.Background()))

	server.failFetch("b", DefaultGroup, errFakeUnavailable)
	err := in.Check(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, health.ErrDegraded))
	assert.True(t, errors.Is(err, errFakeUnavailable))

	server.failFetch("a", DefaultGroup, errFakeUnavailable)
	err = in.Check(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, health.ErrDegraded))
}

func TestInitializer_CheckAfterPreload(t *testing.T) {
	server := newFakeServer()
	server.put("app", DefaultGroup, "k=v")
	env := newTestEnvironment(map[string]interface{}{
		"nacos.config.data-id":              "app",
		"nacos.config.bootstrap.enable":     true,
		"nacos.config.bootstrap.log-enable": true,
	})

	in := NewInitializer(env, WithClientFactory(server.factory()))
	defer in.Close()
	require.NoError(t, in.Run(context.Background()))
	require.Empty(t, in.pending.Sources(), "queue is flushed by Activate")
	require.Len(t, in.Sources(), 1)
	assert.NoError(t, in.Check(context.Background()))

	server.failFetch("app", DefaultGroup, errFakeUnavailable)
	err := in.Check(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errFakeUnavailable))
	assert.False(t, errors.Is(err, health.ErrDegraded))
}

func TestComponent_HealthChecker(t *testing.T) {
	server := newFakeServer()
	server.put("a", DefaultGroup, "k=a")
	env := newTestEnvironment(map[string]interface{}{
		"nacos.config.data-id":          "a",
		"nacos.config.bootstrap.enable": true,
	})

	comp := NewComponent(env, WithClientFactory(server.factory()))
	require.NoError(t, comp.Init(context.Background(), env))
	defer comp.Stop(context.Background())

	agg := health.NewAggregator(0)
	agg.Register(comp.GetHealthChecker())
	resp := agg.Check(context.Background())
	assert.True(t, resp.IsHealthy())
	assert.Contains(t, resp.Checks, "nacos")
}

func TestInitializer_CheckBeforeRun(t *testing.T) {
	in := NewInitializer(newTestEnvironment(nil))
	assert.NoError(t, in.Check(context.Background()))
	assert.Empty(t, in.Sources())
}
