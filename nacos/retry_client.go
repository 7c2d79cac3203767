package nacos

import (
	"context"
	"errors"
	"time"

	"github.com/KOMKZ/go-yogan-nacos/logger"
	"github.com/KOMKZ/go-yogan-nacos/retry"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// defaultRetryWait wait between fetch attempts when configRetryTime is unset
const defaultRetryWait = 2 * time.Second

// WithFetchRetry wraps every client created by f so GetConfig is attempted
// maxRetry+1 times, configRetryTime milliseconds apart.
// Used for backends whose client has no retry of its own (etcd, redis).
// ErrAuthFailed is returned at once.
func WithFetchRetry(f ClientFactory) ClientFactory {
	return ClientFactoryFunc(func(props Properties) (Client, error) {
		client, err := f.CreateClient(props)
		if err != nil {
			return nil, err
		}

		attempts := cast.ToInt(props.Get(KeyMaxRetry)) + 1
		if attempts < 1 {
			attempts = 1
		}
		wait := defaultRetryWait
		if ms := cast.ToInt(props.Get(KeyConfigRetryTime)); ms > 0 {
			wait = time.Duration(ms) * time.Millisecond
		}
		return &retryingClient{
			Client:   client,
			attempts: attempts,
			wait:     wait,
			logger:   logger.GetLogger("nacos"),
		}, nil
	})
}

type retryingClient struct {
	Client
	attempts int
	wait     time.Duration
	logger   *logger.CtxZapLogger
}

func (c *retryingClient) GetConfig(ctx context.Context, dataID, group string) (string, error) {
	content, err := retry.DoWithData(ctx, func(ctx context.Context) (string, error) {
		return c.Client.GetConfig(ctx, dataID, group)
	},
		retry.MaxAttempts(c.attempts),
		retry.Backoff(retry.ConstantBackoff(c.wait)),
		retry.Condition(retry.NotOn(ErrAuthFailed)),
		retry.OnRetry(func(attempt int, err error) {
			c.logger.WarnCtx(ctx, "fetch config failed, retrying",
				zap.String("data_id", dataID),
				zap.String("group", group),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}),
	)

	var multi *retry.MultiError
	if errors.As(err, &multi) && multi.Attempts > 1 {
		c.logger.ErrorCtx(ctx, "fetch config gave up",
			zap.String("data_id", dataID),
			zap.String("group", group),
			zap.Int("attempts", multi.Attempts),
			zap.Error(multi.LastError()))
	}
	return content, err
}
