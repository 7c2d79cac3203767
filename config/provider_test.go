package config

import (
	"testing"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvideEnvironment(t *testing.T) {
	injector := do.New()
	do.Provide(injector, ProvideEnvironment(ProvideEnvironmentOptions{
		Args: []string{"--app.name=injected"},
	}))

	env, err := do.Invoke[*Environment](injector)
	require.NoError(t, err)
	assert.Equal(t, "injected", env.GetString("app.name"))
}

func TestProvideEnvironmentValue(t *testing.T) {
	injector := do.New()
	env := NewEnvironment()
	do.Provide(injector, ProvideEnvironmentValue(env))

	got := do.MustInvoke[*Environment](injector)
	assert.Same(t, env, got)
}
