package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePlaceholders(t *testing.T) {
	env := NewEnvironment()
	env.AddLast(NewMapSource("s", map[string]interface{}{
		"nacos.addr":  "1.2.3.4:8848",
		"group.name":  "DEFAULT_GROUP",
		"inner":       "addr",
		"chained":     "${nacos.addr}",
		"self":        "${self}",
		"port":        8848,
		"empty.value": "",
	}))

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no placeholder", "plain", "plain"},
		{"simple", "${nacos.addr}", "1.2.3.4:8848"},
		{"embedded", "http://${nacos.addr}/nacos", "http://1.2.3.4:8848/nacos"},
		{"multiple", "${group.name}-${nacos.addr}", "DEFAULT_GROUP-1.2.3.4:8848"},
		{"default used", "${missing:fallback}", "fallback"},
		{"default ignored", "${group.name:other}", "DEFAULT_GROUP"},
		{"empty default", "${missing:}", ""},
		{"unresolvable kept", "${missing}", "${missing}"},
		{"nested key", "${nacos.${inner}}", "1.2.3.4:8848"},
		{"nested default", "${missing:${group.name}}", "DEFAULT_GROUP"},
		{"chained value", "${chained}", "1.2.3.4:8848"},
		{"non-string value", "${port}", "8848"},
		{"empty value", "[${empty.value}]", "[]"},
		{"unbalanced", "${nacos.addr", "${nacos.addr"},
		{"cycle terminates", "${self}", "${self}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.ResolvePlaceholders(tt.input))
		})
	}
}

func TestGetResolved(t *testing.T) {
	env := NewEnvironment()
	env.AddLast(NewMapSource("s", map[string]interface{}{
		"host":   "localhost",
		"server": "${host}:8848",
	}))

	v, ok := env.GetResolved("server")
	assert.True(t, ok)
	assert.Equal(t, "localhost:8848", v)

	_, ok = env.GetResolved("absent")
	assert.False(t, ok)
}
