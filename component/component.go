// Package component 组件生命周期接口
// 最底层的包，不依赖任何业务包
package component

import "context"

// Component 组件接口（统一生命周期管理）
//
// 生命周期：Init → Start → Stop
type Component interface {
	// Name 组件名称（唯一标识）
	Name() string

	// DependsOn 依赖的组件名称
	// 可选依赖使用 "optional:" 前缀，如 "optional:event"
	DependsOn() []string

	// Init 读取配置、创建资源，不对外提供服务
	Init(ctx context.Context, loader ConfigLoader) error

	// Start 开始监听或对外提供服务
	Start(ctx context.Context) error

	// Stop 释放资源（允许重复调用）
	Stop(ctx context.Context) error
}

// EnvironmentPostProcessor 在任何组件 Init 之前修改配置环境（可选实现）
// 例如 nacos 预加载：远程配置需要先于日志组件生效
type EnvironmentPostProcessor interface {
	PostProcessEnvironment(ctx context.Context) error
}

// HealthChecker 健康检查接口（可选实现）
type HealthChecker interface {
	// Check 返回 nil 表示健康
	Check(ctx context.Context) error

	// Name 检查项名称
	Name() string
}

// HealthCheckProvider 组件提供健康检查（可选实现）
type HealthCheckProvider interface {
	GetHealthChecker() HealthChecker
}
