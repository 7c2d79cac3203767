// Package health 健康检查聚合
package health

import (
	"context"
	"errors"
	"time"

	"github.com/KOMKZ/go-yogan-nacos/component"
)

// Status 健康状态
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded" // 部分功能不可用
	StatusUnhealthy Status = "unhealthy"
)

// ErrDegraded 检查器返回包装了它的错误时，结果记为降级而不是不健康
var ErrDegraded = errors.New("degraded")

// Checker 是 component.HealthChecker 的别名
type Checker = component.HealthChecker

// CheckerFunc 函数适配
type CheckerFunc struct {
	CheckName string
	Fn        func(ctx context.Context) error
}

// Name implements Checker
func (c CheckerFunc) Name() string {
	return c.CheckName
}

// Check implements Checker
func (c CheckerFunc) Check(ctx context.Context) error {
	return c.Fn(ctx)
}

// CheckResult 单个检查项的结果
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// Response 汇总结果
type Response struct {
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Duration  time.Duration          `json:"duration"`
	Checks    map[string]CheckResult `json:"checks"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// IsHealthy 整体是否健康
func (r *Response) IsHealthy() bool {
	return r.Status == StatusHealthy
}
