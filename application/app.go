// Package application 应用启动框架
// 负责构建配置环境、按依赖顺序初始化组件、优雅关闭
package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/KOMKZ/go-yogan-nacos/binding"
	"github.com/KOMKZ/go-yogan-nacos/component"
	"github.com/KOMKZ/go-yogan-nacos/config"
	"github.com/KOMKZ/go-yogan-nacos/event"
	"github.com/KOMKZ/go-yogan-nacos/health"
	"github.com/KOMKZ/go-yogan-nacos/logger"
	"github.com/KOMKZ/go-yogan-nacos/nacos"
	"github.com/samber/do/v2"
	"go.uber.org/zap"
)

// AppState 应用状态
type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

// String 状态字符串表示
func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Options 应用启动参数
type Options struct {
	ConfigPath string   // 配置目录（空表示不加载文件）
	EnvPrefix  string   // 环境变量前缀
	Args       []string // "--key=value" 形式的覆盖参数，优先级最高
	Version    string

	NacosOptions []nacos.Option
	Components   []component.Component // 额外的业务组件
}

// Application 应用核心
// 组件生命周期：PostProcessEnvironment → Init → Start → Stop（逆序）
type Application struct {
	opts     Options
	injector *do.RootScope

	env        *config.Environment
	dispatcher event.Dispatcher
	bindings   *binding.Registry
	nacos      *nacos.Component
	components []component.Component
	started    []component.Component
	health     *health.Aggregator

	logger *logger.CtxZapLogger
	ctx    context.Context
	cancel context.CancelFunc
	state  AppState
	mu     sync.RWMutex

	onSetup    func(*Application) error
	onShutdown func(context.Context) error
}

// New 创建应用实例（尚未加载任何配置）
func New(opts Options) *Application {
	ctx, cancel := context.WithCancel(context.Background())
	injector := do.New()
	do.Provide(injector, config.ProvideEnvironment(config.ProvideEnvironmentOptions{
		ConfigPath:   opts.ConfigPath,
		ConfigPrefix: opts.EnvPrefix,
		Args:         opts.Args,
	}))

	return &Application{
		opts:     opts,
		injector: injector,
		logger:   logger.GetLogger("application"),
		ctx:      ctx,
		cancel:   cancel,
		state:    StateInit,
	}
}

// Setup 构建环境并初始化所有组件
// 远程配置先于日志组件合并，日志配置可以来自 nacos
func (a *Application) Setup() error {
	a.setState(StateSetup)

	env, err := do.Invoke[*config.Environment](a.injector)
	if err != nil {
		return err
	}
	a.env = env

	eventComp := NewEventComponent(env)
	a.dispatcher = eventComp.Dispatcher()
	do.ProvideValue(a.injector, a.dispatcher)

	opts := append([]nacos.Option{
		nacos.WithInjector(a.injector),
		nacos.WithDispatcher(a.dispatcher),
	}, a.opts.NacosOptions...)
	a.nacos = nacos.NewComponent(env, opts...)
	do.ProvideValue(a.injector, a.nacos.Initializer())

	a.bindings = binding.NewRegistry(env)
	do.ProvideValue(a.injector, a.bindings)

	comps := append([]component.Component{NewLoggerComponent(), eventComp, a.nacos}, a.opts.Components...)
	ordered, err := sortComponents(comps)
	if err != nil {
		return err
	}
	a.components = ordered

	for _, c := range a.components {
		if p, ok := c.(component.EnvironmentPostProcessor); ok {
			if err := p.PostProcessEnvironment(a.ctx); err != nil {
				a.stopStarted(a.ctx)
				return fmt.Errorf("post process environment (%s): %w", c.Name(), err)
			}
		}
	}

	for _, c := range a.components {
		if err := c.Init(a.ctx, env); err != nil {
			a.stopStarted(a.ctx)
			return fmt.Errorf("init component %s: %w", c.Name(), err)
		}
		a.started = append(a.started, c)
		if err := c.Start(a.ctx); err != nil {
			a.stopStarted(a.ctx)
			return fmt.Errorf("start component %s: %w", c.Name(), err)
		}
	}
	a.bindings.Attach(a.dispatcher)

	a.health = health.NewAggregator(0)
	a.health.SetMetadata("version", a.opts.Version)
	for _, c := range a.components {
		if p, ok := c.(component.HealthCheckProvider); ok {
			a.health.Register(p.GetHealthChecker())
		}
	}

	// logger 组件 Init 之后才是最终配置
	a.logger = logger.GetLogger("application")
	a.logger.DebugCtx(a.ctx, "application setup done",
		zap.String("version", a.opts.Version),
		zap.Strings("sources", env.PropertySourceNames()))

	if a.onSetup != nil {
		if err := a.onSetup(a); err != nil {
			return fmt.Errorf("onSetup failed: %w", err)
		}
	}
	a.setState(StateRunning)
	return nil
}

// Shutdown 优雅关闭：回调 → 组件逆序 Stop → DI 容器
func (a *Application) Shutdown(timeout time.Duration) error {
	a.setState(StateStopping)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if a.onShutdown != nil {
		if err := a.onShutdown(ctx); err != nil {
			a.logger.ErrorCtx(ctx, "OnShutdown callback failed", zap.Error(err))
		}
	}

	a.stopStarted(ctx)
	if err := a.injector.Shutdown(); err != nil {
		a.logger.ErrorCtx(ctx, "DI container shutdown failed", zap.Error(err))
	}

	a.cancel()
	a.setState(StateStopped)
	return nil
}

func (a *Application) stopStarted(ctx context.Context) {
	for i := len(a.started) - 1; i >= 0; i-- {
		c := a.started[i]
		if err := c.Stop(ctx); err != nil {
			a.logger.ErrorCtx(ctx, "stop component failed", zap.String("component", c.Name()), zap.Error(err))
		}
	}
	a.started = nil
}

// WaitShutdown 阻塞直到 SIGINT/SIGTERM 或 Cancel
// 第二次信号立即退出
func (a *Application) WaitShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.DebugCtx(a.ctx, "shutdown signal received", zap.String("signal", sig.String()))
		a.cancel()
		go func() {
			sig := <-quit
			a.logger.WarnCtx(context.Background(), "second signal received, forcing exit", zap.String("signal", sig.String()))
			os.Exit(1)
		}()
	case <-a.ctx.Done():
	}
}

// Cancel 手动触发关闭
func (a *Application) Cancel() {
	a.cancel()
}

// OnSetup 注册 Setup 完成回调
func (a *Application) OnSetup(fn func(*Application) error) *Application {
	a.onSetup = fn
	return a
}

// OnShutdown 注册关闭前回调
func (a *Application) OnShutdown(fn func(context.Context) error) *Application {
	a.onShutdown = fn
	return a
}

// Environment 配置环境（Setup 之后可用）
func (a *Application) Environment() *config.Environment {
	return a.env
}

// Dispatcher 事件分发器（Setup 之后可用）
func (a *Application) Dispatcher() event.Dispatcher {
	return a.dispatcher
}

// Bindings 配置绑定注册表，随 nacos 刷新自动更新
func (a *Application) Bindings() *binding.Registry {
	return a.bindings
}

// Nacos nacos 初始化器
func (a *Application) Nacos() *nacos.Initializer {
	if a.nacos == nil {
		return nil
	}
	return a.nacos.Initializer()
}

// Health 执行所有组件的健康检查（Setup 之前为空结果）
func (a *Application) Health(ctx context.Context) *health.Response {
	if a.health == nil {
		return health.NewAggregator(0).Check(ctx)
	}
	return a.health.Check(ctx)
}

// Injector samber/do 注入器
func (a *Application) Injector() *do.RootScope {
	return a.injector
}

// Components 按依赖排序后的组件
func (a *Application) Components() []component.Component {
	return a.components
}

// Context 应用上下文，关闭时取消
func (a *Application) Context() context.Context {
	return a.ctx
}

// GetState 当前状态
func (a *Application) GetState() AppState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Application) setState(state AppState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	old := a.state
	a.state = state
	a.logger.DebugCtx(a.ctx, "State changed",
		zap.String("from", old.String()),
		zap.String("to", state.String()))
}
