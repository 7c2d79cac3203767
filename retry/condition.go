package retry

import (
	"context"
	"errors"
)

// RetryCondition 判断一次失败是否值得重试
type RetryCondition interface {
	// ShouldRetry attempt 从 1 开始
	ShouldRetry(err error, attempt int) bool
}

// ConditionFunc 函数适配
type ConditionFunc func(err error, attempt int) bool

// ShouldRetry implements RetryCondition
func (f ConditionFunc) ShouldRetry(err error, attempt int) bool {
	return f(err, attempt)
}

// NotOnContextError 取消与超时不重试
func NotOnContextError() RetryCondition {
	return ConditionFunc(func(err error, _ int) bool {
		return err != nil &&
			!errors.Is(err, context.Canceled) &&
			!errors.Is(err, context.DeadlineExceeded)
	})
}

// NotOn 命中任意 targets（errors.Is）时不重试
func NotOn(targets ...error) RetryCondition {
	return ConditionFunc(func(err error, attempt int) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return false
			}
		}
		return NotOnContextError().ShouldRetry(err, attempt)
	})
}
