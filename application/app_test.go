package application

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/KOMKZ/go-yogan-nacos/component"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/KOMKZ/go-yogan-nacos/nacos"
	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryClient one shared in-memory document store
type memoryClient struct {
	mu        sync.Mutex
	docs      map[string]string
	listeners map[string][]nacos.Listener
	closed    int
}

func newMemoryClient() *memoryClient {
	return &memoryClient{
		docs:      make(map[string]string),
		listeners: make(map[string][]nacos.Listener),
	}
}

func (c *memoryClient) GetConfig(ctx context.Context, dataID, group string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docs[dataID+"@"+group], nil
}

func (c *memoryClient) AddListener(ctx context.Context, dataID, group string, l nacos.Listener) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners[dataID+"@"+group] = append(c.listeners[dataID+"@"+group], l)
	return nil
}

func (c *memoryClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *memoryClient) publish(dataID, group, content string) {
	c.mu.Lock()
	c.docs[dataID+"@"+group] = content
	listeners := append([]nacos.Listener(nil), c.listeners[dataID+"@"+group]...)
	c.mu.Unlock()
	for _, l := range listeners {
		l(dataID, group, content)
	}
}

func (c *memoryClient) factory() nacos.ClientFactory {
	return nacos.ClientFactoryFunc(func(props nacos.Properties) (nacos.Client, error) {
		return c, nil
	})
}

const testConfig = `
event:
  sync: true
nacos:
  config:
    server-addr: 127.0.0.1:8848
    data-id: app.yaml
    type: yaml
    auto-refresh: true
    bootstrap:
      enable: true
`

func newTestApp(t *testing.T, client *memoryClient, extra ...component.Component) *Application {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfig), 0644))

	return New(Options{
		ConfigPath:   dir,
		EnvPrefix:    "YOGAN_NACOS_TEST",
		Version:      "v0.0.1",
		NacosOptions: []nacos.Option{nacos.WithClientFactory(client.factory())},
		Components:   extra,
	})
}

func TestApplication_SetupLoadsRemoteConfig(t *testing.T) {
	client := newMemoryClient()
	client.publish("app.yaml", nacos.DefaultGroup, "server:\n  port: 8080\n")

	app := newTestApp(t, client)
	assert.Equal(t, StateInit, app.GetState())
	require.NoError(t, app.Setup())
	defer app.Shutdown(time.Second)

	assert.Equal(t, StateRunning, app.GetState())
	assert.Equal(t, 8080, app.Environment().GetInt("server.port"))
	assert.Contains(t, app.Environment().PropertySourceNames(), "nacos:app.yaml|DEFAULT_GROUP|"+app.Nacos().GlobalProperties().Digest())

	assert.Equal(t, []string{component.ComponentLogger, component.ComponentEvent, component.ComponentNacos}, names(app.Components()))

	_, err := do.InvokeNamed[nacos.Properties](app.Injector(), nacos.GlobalPropertiesName)
	assert.NoError(t, err)
	_, err = do.Invoke[event.Dispatcher](app.Injector())
	assert.NoError(t, err)
}

func TestApplication_BindingsFollowRefresh(t *testing.T) {
	client := newMemoryClient()
	client.publish("app.yaml", nacos.DefaultGroup, "server:\n  port: 8080\n")

	app := newTestApp(t, client)
	require.NoError(t, app.Setup())
	defer app.Shutdown(time.Second)

	var port int
	require.NoError(t, app.Bindings().BindInt("server.port", &port))
	assert.Equal(t, 8080, port)

	client.publish("app.yaml", nacos.DefaultGroup, "server:\n  port: 9090\n")
	assert.Equal(t, 9090, port)
}

func TestApplication_ShutdownStopsComponents(t *testing.T) {
	client := newMemoryClient()
	rec := &recordingComponent{name: "business", deps: []string{component.ComponentNacos}}

	app := newTestApp(t, client, rec)
	shutdownCalled := false
	app.OnShutdown(func(ctx context.Context) error {
		shutdownCalled = true
		return nil
	})
	require.NoError(t, app.Setup())
	assert.Equal(t, []string{"init", "start"}, rec.calls)

	require.NoError(t, app.Shutdown(time.Second))
	assert.True(t, shutdownCalled)
	assert.Equal(t, []string{"init", "start", "stop"}, rec.calls)
	assert.Equal(t, StateStopped, app.GetState())
	assert.Equal(t, 1, client.closed)
	assert.Error(t, app.Context().Err())
}

func TestApplication_SetupFailsOnMissingDependency(t *testing.T) {
	client := newMemoryClient()
	rec := &recordingComponent{name: "business", deps: []string{"database"}}

	app := newTestApp(t, client, rec)
	err := app.Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database")
	assert.Empty(t, rec.calls)
}

func TestApplication_SetupFailsOnInitError(t *testing.T) {
	client := newMemoryClient()
	failing := &recordingComponent{name: "business", initErr: assert.AnError}

	app := newTestApp(t, client, failing)
	err := app.Setup()
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, client.closed, "started components are stopped again")
}

func TestApplication_Health(t *testing.T) {
	client := newMemoryClient()
	client.publish("app.yaml", nacos.DefaultGroup, "a: 1\n")

	app := newTestApp(t, client)
	require.NoError(t, app.Setup())
	defer app.Shutdown(time.Second)

	resp := app.Health(context.Background())
	assert.True(t, resp.IsHealthy())
	assert.Contains(t, resp.Checks, component.ComponentNacos)
	assert.Equal(t, "v0.0.1", resp.Metadata["version"])
}
