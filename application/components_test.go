package application

import (
	"context"
	"testing"

	"github.com/KOMKZ/go-yogan-nacos/component"
	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingComponent struct {
	name    string
	deps    []string
	initErr error
	calls   []string
}

func (c *recordingComponent) Name() string        { return c.name }
func (c *recordingComponent) DependsOn() []string { return c.deps }

func (c *recordingComponent) Init(ctx context.Context, loader component.ConfigLoader) error {
	if c.initErr != nil {
		return c.initErr
	}
	c.calls = append(c.calls, "init")
	return nil
}

func (c *recordingComponent) Start(ctx context.Context) error {
	c.calls = append(c.calls, "start")
	return nil
}

func (c *recordingComponent) Stop(ctx context.Context) error {
	c.calls = append(c.calls, "stop")
	return nil
}

func names(comps []component.Component) []string {
	out := make([]string, 0, len(comps))
	for _, c := range comps {
		out = append(out, c.Name())
	}
	return out
}

func TestSortComponents(t *testing.T) {
	comps := []component.Component{
		&recordingComponent{name: "c", deps: []string{"b"}},
		&recordingComponent{name: "a", deps: []string{component.ComponentConfig}},
		&recordingComponent{name: "b", deps: []string{"a", component.OptionalPrefix + "missing"}},
		&recordingComponent{name: "d"},
	}

	ordered, err := sortComponents(comps)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, names(ordered))
}

func TestSortComponents_Errors(t *testing.T) {
	_, err := sortComponents([]component.Component{
		&recordingComponent{name: "a", deps: []string{"b"}},
		&recordingComponent{name: "b", deps: []string{"a"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")

	_, err = sortComponents([]component.Component{
		&recordingComponent{name: "a"},
		&recordingComponent{name: "a"},
	})
	assert.Error(t, err)

	_, err = sortComponents([]component.Component{
		&recordingComponent{name: "a", deps: []string{"nope"}},
	})
	assert.Error(t, err)
}

func TestEventComponent_Options(t *testing.T) {
	env := config.NewEnvironment()
	env.AddLast(config.NewMapSource("test", map[string]interface{}{"event.pool-size": 4}))

	comp := NewEventComponent(env)
	require.NotNil(t, comp.Dispatcher())
	assert.Equal(t, component.ComponentEvent, comp.Name())
	assert.NoError(t, comp.Stop(context.Background()))
}

func TestEventComponent_RecoversListenerPanic(t *testing.T) {
	env := config.NewEnvironment()
	env.AddLast(config.NewMapSource("test", map[string]interface{}{"event.sync": true}))

	comp := NewEventComponent(env)
	defer comp.Stop(context.Background())

	comp.Dispatcher().Subscribe("refresh", event.ListenerFunc(func(context.Context, event.Event) error {
		panic("bad listener")
	}))
	err := comp.Dispatcher().Dispatch(context.Background(), event.NewEvent("refresh"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad listener")
}

func TestLoggerComponent_Init(t *testing.T) {
	env := config.NewEnvironment()
	env.AddLast(config.NewMapSource("test", map[string]interface{}{
		"logger.level":    "debug",
		"logger.encoding": "console",
	}))

	comp := NewLoggerComponent()
	require.NoError(t, comp.Init(context.Background(), env))
	require.NoError(t, comp.Stop(context.Background()))
	require.NoError(t, comp.Stop(context.Background()))
}
