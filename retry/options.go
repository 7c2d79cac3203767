package retry

import "time"

// Config 重试配置
type Config struct {
	maxAttempts int             // 最大尝试次数（默认 3）
	backoff     BackoffStrategy // 退避策略（默认固定 1s）
	condition   RetryCondition  // 重试条件（默认上下文错误之外都重试）
	onRetry     func(attempt int, err error)
}

func defaultConfig() *Config {
	return &Config{
		maxAttempts: 3,
		backoff:     ConstantBackoff(time.Second),
		condition:   NotOnContextError(),
	}
}

// Option 配置选项函数
type Option func(*Config)

// MaxAttempts 设置最大尝试次数（含第一次）
func MaxAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// Backoff 设置退避策略
func Backoff(b BackoffStrategy) Option {
	return func(c *Config) {
		if b != nil {
			c.backoff = b
		}
	}
}

// Condition 设置重试条件
func Condition(cond RetryCondition) Option {
	return func(c *Config) {
		if cond != nil {
			c.condition = cond
		}
	}
}

// OnRetry 每次重试前回调
func OnRetry(f func(attempt int, err error)) Option {
	return func(c *Config) {
		c.onRetry = f
	}
}
