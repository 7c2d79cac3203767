package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/KOMKZ/go-yogan-nacos/component"
	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/KOMKZ/go-yogan-nacos/logger"
)

// LoggerComponent 日志组件（核心组件）
type LoggerComponent struct {
	coreLogger *logger.CtxZapLogger
}

// NewLoggerComponent 创建日志组件
func NewLoggerComponent() *LoggerComponent {
	return &LoggerComponent{}
}

// Name 组件名称
func (l *LoggerComponent) Name() string {
	return component.ComponentLogger
}

// DependsOn 日志组件依赖配置组件
func (l *LoggerComponent) DependsOn() []string {
	return []string{component.ComponentConfig}
}

// Init 按 logger 配置段重建日志管理器，未配置时保持默认
func (l *LoggerComponent) Init(ctx context.Context, loader component.ConfigLoader) error {
	logger.InitManager(logger.DefaultManagerConfig())
	if loader.IsSet("logger") {
		cfg := logger.DefaultManagerConfig()
		if err := loader.Unmarshal("logger", &cfg); err != nil {
			return fmt.Errorf("load logger config: %w", err)
		}
		if err := logger.ReloadConfig(cfg); err != nil {
			return err
		}
	}
	l.coreLogger = logger.GetLogger("yogan")
	return nil
}

// Start 日志无需启动
func (l *LoggerComponent) Start(ctx context.Context) error {
	return nil
}

// Stop 刷新缓冲并关闭文件
func (l *LoggerComponent) Stop(ctx context.Context) error {
	if l.coreLogger != nil {
		l.coreLogger.DebugCtx(ctx, "application closed")
		logger.CloseAll()
		l.coreLogger = nil
	}
	return nil
}

// EventComponent 事件分发组件
// 分发器在构造时创建，nacos 组件在 Init 之前就需要它
type EventComponent struct {
	dispatcher event.Dispatcher
}

// NewEventComponent 读取 event.pool-size / event.sync 创建分发器
// 同步监听器的 panic 转为 Dispatch 错误
func NewEventComponent(env *config.Environment) *EventComponent {
	var opts []event.DispatcherOption
	if size := env.GetInt("event.pool-size"); size > 0 {
		opts = append(opts, event.WithPoolSize(size))
	}
	if env.GetBool("event.sync") {
		opts = append(opts, event.WithSetAllSync(true))
	}
	dispatcher := event.NewDispatcher(opts...)
	dispatcher.Use(event.Recover())
	return &EventComponent{dispatcher: dispatcher}
}

// Name 组件名称
func (e *EventComponent) Name() string {
	return component.ComponentEvent
}

// DependsOn 依赖配置与日志
func (e *EventComponent) DependsOn() []string {
	return []string{component.ComponentConfig, component.ComponentLogger}
}

// Init nothing
func (e *EventComponent) Init(ctx context.Context, loader component.ConfigLoader) error {
	return nil
}

// Start nothing
func (e *EventComponent) Start(ctx context.Context) error {
	return nil
}

// Stop 关闭协程池
func (e *EventComponent) Stop(ctx context.Context) error {
	e.dispatcher.Close()
	return nil
}

// Dispatcher 分发器
func (e *EventComponent) Dispatcher() event.Dispatcher {
	return e.dispatcher
}

// sortComponents 按 DependsOn 拓扑排序，同层保持注册顺序
// "config" 由环境本身提供；可选依赖缺失时忽略
func sortComponents(comps []component.Component) ([]component.Component, error) {
	byName := make(map[string]int, len(comps))
	for i, c := range comps {
		if _, dup := byName[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate component: %s", c.Name())
		}
		byName[c.Name()] = i
	}

	indegree := make([]int, len(comps))
	dependents := make([][]int, len(comps))
	for i, c := range comps {
		for _, dep := range c.DependsOn() {
			optional := strings.HasPrefix(dep, component.OptionalPrefix)
			name := strings.TrimPrefix(dep, component.OptionalPrefix)
			if name == component.ComponentConfig {
				continue
			}
			j, ok := byName[name]
			if !ok {
				if optional {
					continue
				}
				return nil, fmt.Errorf("component %s depends on missing component %s", c.Name(), name)
			}
			indegree[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	ordered := make([]component.Component, 0, len(comps))
	done := make([]bool, len(comps))
	for len(ordered) < len(comps) {
		progressed := false
		for i := range comps {
			if done[i] || indegree[i] > 0 {
				continue
			}
			done[i] = true
			progressed = true
			ordered = append(ordered, comps[i])
			for _, d := range dependents[i] {
				indegree[d]--
			}
			break
		}
		if !progressed {
			var cyclic []string
			for i, c := range comps {
				if !done[i] {
					cyclic = append(cyclic, c.Name())
				}
			}
			return nil, fmt.Errorf("component dependency cycle: %s", strings.Join(cyclic, ", "))
		}
	}
	return ordered, nil
}
