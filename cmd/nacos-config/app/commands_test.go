package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KOMKZ/go-yogan-nacos/application"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/KOMKZ/go-yogan-nacos/nacos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClient map[string]string

func (c staticClient) GetConfig(_ context.Context, dataID, group string) (string, error) {
	return c[dataID+"@"+group], nil
}

func (c staticClient) AddListener(context.Context, string, string, nacos.Listener) error {
	return nil
}

func (c staticClient) Close() error { return nil }

func runRoot(t *testing.T, docs staticClient, args ...string) (string, error) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(
		"app:\n  name: demo\n  title: ${app.name}-svc\n"), 0644))

	old := nacosOptions
	nacosOptions = []nacos.Option{nacos.WithClientFactory(nacos.ClientFactoryFunc(func(nacos.Properties) (nacos.Client, error) {
		return docs, nil
	}))}
	t.Cleanup(func() { nacosOptions = old })

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--config-path", dir, "--env-prefix", "NACOS_CONFIG_TEST"))
	err := root.Execute()
	return out.String(), err
}

func TestDump_Properties(t *testing.T) {
	docs := staticClient{"remote.properties@" + nacos.DefaultGroup: "app.name=remote\nserver.port=8080\n"}

	out, err := runRoot(t, docs, "dump", "-d", "remote.properties", "-o", "properties")
	require.NoError(t, err)
	assert.Contains(t, out, "server.port=8080\n")
	assert.Contains(t, out, "app.name=demo\n", "local file wins by default")
}

func TestDump_Key(t *testing.T) {
	docs := staticClient{"remote.properties@" + nacos.DefaultGroup: "app.name=remote\n"}

	out, err := runRoot(t, docs, "dump", "-d", "remote.properties", "--key", "app.title")
	require.NoError(t, err)
	assert.Equal(t, "demo-svc\n", out)
}

func TestDump_Sources(t *testing.T) {
	docs := staticClient{"a.yaml@G": "a: 1\n"}

	out, err := runRoot(t, docs, "dump", "-d", "a.yaml", "-g", "G", "-t", "yaml", "--sources")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "commandLineArgs")
	assert.Contains(t, out, "nacos:a.yaml|G|")
}

func TestDump_UnknownFormatAndMissingKey(t *testing.T) {
	docs := staticClient{}

	_, err := runRoot(t, docs, "dump", "-d", "x", "-o", "xml")
	assert.Error(t, err)

	_, err = runRoot(t, docs, "dump", "-d", "x", "--key", "missing.key")
	assert.Error(t, err)
}

func TestDump_JSON(t *testing.T) {
	docs := staticClient{"remote.json@" + nacos.DefaultGroup: `{"feature": {"enabled": true}}`}

	out, err := runRoot(t, docs, "dump", "-d", "remote.json", "-t", "json", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"enabled": true`)
}

func TestVersion(t *testing.T) {
	out, err := runRoot(t, staticClient{}, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", out)
}

func TestHealth(t *testing.T) {
	docs := staticClient{"a@" + nacos.DefaultGroup: "a=1"}

	out, err := runRoot(t, docs, "health", "-d", "a")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "healthy"`)
	assert.Contains(t, out, `"nacos"`)
}

func TestWatch_PrintsRefreshedKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("app:\n  name: demo\n"), 0644))

	app := application.New(application.Options{
		ConfigPath: dir,
		EnvPrefix:  "NACOS_CONFIG_TEST",
		Args:       []string{"--event.sync=true"},
	})
	require.NoError(t, app.Setup())
	defer app.Shutdown(shutdownTimeout)

	var out bytes.Buffer
	unsubscribe := watch(&out, app)
	defer unsubscribe()

	require.NoError(t, app.Dispatcher().Dispatch(context.Background(), &nacos.PropertySourceRefreshedEvent{
		BaseEvent:   event.NewEvent(nacos.EventPropertySourceRefreshed),
		SourceName:  "nacos:app.yaml|DEFAULT_GROUP|abc",
		ChangedKeys: []string{"app.name"},
	}))
	assert.Contains(t, out.String(), "nacos:app.yaml|DEFAULT_GROUP|abc refreshed\n")
	assert.Contains(t, out.String(), "  app.name=demo\n")
}
