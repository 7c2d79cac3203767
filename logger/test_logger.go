package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// NewObservedLogger creates a logger that records to memory, for assertions in tests
//
//	log, logs := logger.NewObservedLogger("nacos", zapcore.DebugLevel)
//	svc := NewLoader(env, props, factory, WithLogger(log))
//	assert.Equal(t, 1, logs.FilterMessage("load config from nacos").Len())
func NewObservedLogger(module string, level zapcore.Level) (*CtxZapLogger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return WrapZapLogger(zap.New(core), module), logs
}
