package nacos

import (
	"errors"
	"testing"

	"github.com/KOMKZ/go-yogan-nacos/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindConfigProperties_Defaults(t *testing.T) {
	props, err := BindConfigProperties(newTestEnvironment(nil))
	require.NoError(t, err)

	assert.Equal(t, DefaultServerAddr, props.ServerAddr)
	assert.Equal(t, DefaultGroup, props.Group)
	assert.Equal(t, TypeProperties, props.Type)
	assert.Equal(t, BackendNacos, props.Backend)
	assert.False(t, props.RemoteFirst)
	assert.False(t, props.AutoRefresh)
	assert.Empty(t, props.ExtConfig)
}

func TestBindConfigProperties_FlatKeys(t *testing.T) {
	env := newTestEnvironment(map[string]interface{}{
		"nacos.config.server-addr":                "10.0.0.2:8848",
		"nacos.config.namespace":                  "dev",
		"nacos.config.data-ids":                   "a,b",
		"nacos.config.type":                       "YAML",
		"nacos.config.auto-refresh":               "true",
		"nacos.config.remote-first":               true,
		"nacos.config.bootstrap.enable":           "true",
		"nacos.config.bootstrap.snapshot-enable":  "false",
		"nacos.config.ext-config[0].data-id":      "ext.yaml",
		"nacos.config.ext-config[0].namespace":    "ns1",
		"nacos.config.ext-config[1].data-ids":     "x,y",
		"nacos.config.ext-config[1].group":        "EXT",
		"nacos.config.ext-config[1].type":         "json",
		"nacos.config.ext-config[1].auto-refresh": "true",
	})

	props, err := BindConfigProperties(env)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.2:8848", props.ServerAddr)
	assert.Equal(t, "dev", props.Namespace)
	assert.Equal(t, "a,b", props.DataIDs)
	assert.Equal(t, TypeYAML, props.Type)
	assert.True(t, props.AutoRefresh)
	assert.True(t, props.RemoteFirst)
	assert.True(t, props.Bootstrap.Enable)
	assert.False(t, props.Bootstrap.SnapshotEnable)

	require.Len(t, props.ExtConfig, 2)
	assert.Equal(t, "ext.yaml", props.ExtConfig[0].DataID)
	assert.Equal(t, "ns1", props.ExtConfig[0].Namespace)
	assert.Equal(t, DefaultGroup, props.ExtConfig[0].Group)
	assert.Equal(t, TypeYAML, props.ExtConfig[0].Type, "falls back to the global type")
	assert.Equal(t, "x,y", props.ExtConfig[1].DataIDs)
	assert.Equal(t, "EXT", props.ExtConfig[1].Group)
	assert.Equal(t, TypeJSON, props.ExtConfig[1].Type)
	assert.True(t, props.ExtConfig[1].AutoRefresh)
}

func TestBindConfigProperties_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data map[string]interface{}
	}{
		{"unknown type", map[string]interface{}{"nacos.config.type": "xml"}},
		{"unknown backend", map[string]interface{}{"nacos.config.backend": "zookeeper"}},
		{"ext without data-id", map[string]interface{}{"nacos.config.ext-config[0].group": "G"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BindConfigProperties(newTestEnvironment(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProperties))
		})
	}
}

func TestConfigProperties_EndpointWithoutServerAddr(t *testing.T) {
	props := ConfigProperties{Endpoint: "acm.example.com", Type: TypeProperties, Backend: BackendNacos}
	assert.NoError(t, props.Validate())

	props.Endpoint = ""
	assert.Error(t, props.Validate())
}

func TestConfigType_Parse(t *testing.T) {
	t.Run("properties", func(t *testing.T) {
		out, err := TypeProperties.Parse("app", "a.b=1\nc=two\n")
		require.NoError(t, err)
		assert.Equal(t, "1", out["a.b"])
		assert.Equal(t, "two", out["c"])
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := TypeYAML.Parse("app", "server:\n  port: 8080\n")
		require.NoError(t, err)
		assert.Equal(t, 8080, out["server.port"])
	})

	t.Run("text kept whole", func(t *testing.T) {
		out, err := TypeText.Parse("banner.txt", "hello\nworld")
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"banner.txt": "hello\nworld"}, out)
	})

	t.Run("empty content", func(t *testing.T) {
		out, err := TypeJSON.Parse("app", "")
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := TypeJSON.Parse("app", "{not json")
		assert.Error(t, err)
	})
}

func TestConfigType_IsKnown(t *testing.T) {
	assert.True(t, ConfigType("YAML").IsKnown())
	assert.True(t, TypeText.IsKnown())
	assert.False(t, ConfigType("xml").IsKnown())
}

func TestBindConfigProperties_FieldErrorsAttached(t *testing.T) {
	_, err := BindConfigProperties(newTestEnvironment(map[string]interface{}{
		"nacos.config.ext-config[0].group": "G",
	}))
	require.Error(t, err)

	var layered *errcode.LayeredError
	require.True(t, errors.As(err, &layered))
	assert.Equal(t, 600002, layered.Code())
	fields, ok := layered.Data()["fields"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "ExtConfig.0.DataID")
}
