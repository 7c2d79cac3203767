package retry

import "time"

// BackoffStrategy 退避策略
type BackoffStrategy interface {
	// Next 第 attempt 次失败后的等待时间（attempt 从 1 开始）
	Next(attempt int) time.Duration
}

// BackoffFunc 函数适配
type BackoffFunc func(attempt int) time.Duration

// Next implements BackoffStrategy
func (f BackoffFunc) Next(attempt int) time.Duration {
	return f(attempt)
}

// ConstantBackoff 固定间隔
func ConstantBackoff(d time.Duration) BackoffStrategy {
	return BackoffFunc(func(int) time.Duration {
		return d
	})
}
