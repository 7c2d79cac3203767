// Package retry 带退避的重试执行
// 用于远程配置拉取等可重试的 IO 操作
package retry

import (
	"context"
	"time"
)

// DoWithData 执行并返回数据，失败时按配置重试
// 全部失败时返回 *MultiError
func DoWithData[T any](ctx context.Context, operation func(ctx context.Context) (T, error), opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		result T
		errs   []error
	)
	for attempt := 1; attempt <= cfg.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		var err error
		result, err = operation(ctx)
		if err == nil {
			return result, nil
		}
		errs = append(errs, err)

		if attempt == cfg.maxAttempts || !cfg.condition.ShouldRetry(err, attempt) {
			break
		}
		if cfg.onRetry != nil {
			cfg.onRetry(attempt, err)
		}

		// 剩余时间不足以等待时直接放弃
		backoff := cfg.backoff.Next(attempt)
		if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < backoff {
			errs = append(errs, context.DeadlineExceeded)
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return result, ctx.Err()
		}
	}

	return result, &MultiError{Errors: errs, Attempts: len(errs)}
}
