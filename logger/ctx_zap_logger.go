package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CtxZapLogger context-aware zap logger bound to one module
// The module is bound at creation, callers only pass ctx
type CtxZapLogger struct {
	base   *zap.Logger
	module string
	config *ManagerConfig
}

// NewCtxZapLogger returns the managed logger of a module
//
//	log := logger.NewCtxZapLogger("nacos")
//	log.InfoCtx(ctx, "load config from nacos", zap.String("data_id", id))
func NewCtxZapLogger(module string) *CtxZapLogger {
	return GetLogger(module)
}

// WrapZapLogger wraps an existing zap logger (tests, third-party integration)
func WrapZapLogger(base *zap.Logger, module string) *CtxZapLogger {
	cfg := DefaultManagerConfig()
	cfg.EnableStacktrace = false
	return &CtxZapLogger{
		base:   base.With(zap.String("module", module)),
		module: module,
		config: &cfg,
	}
}

// Module bound module name
func (l *CtxZapLogger) Module() string {
	return l.module
}

// InfoCtx logs at info level (trace id extracted from ctx)
func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrichFields(ctx, fields)...)
}

// Info logs at info level without a context
func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

// ErrorCtx logs at error level, with a depth limited stack when configured
func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	enriched := l.enrichFields(ctx, fields)

	if l.config != nil && shouldCaptureStacktrace("error", *l.config) {
		// skip=3: Callers -> CaptureStacktrace -> ErrorCtx
		if stack := CaptureStacktrace(3, l.config.StacktraceDepth); stack != "" {
			enriched = append(enriched, zap.String("stack", stack))
		}
	}

	l.base.Error(msg, enriched...)
}

// Error logs at error level without a context
func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// DebugCtx logs at debug level
func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrichFields(ctx, fields)...)
}

// Debug logs at debug level without a context
func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

// WarnCtx logs at warn level
func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrichFields(ctx, fields)...)
}

// Warn logs at warn level without a context
func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

// With returns a logger carrying preset fields
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return &CtxZapLogger{
		base:   l.base.With(fields...),
		module: l.module,
		config: l.config,
	}
}

// GetZapLogger underlying *zap.Logger (for third-party integration)
func (l *CtxZapLogger) GetZapLogger() *zap.Logger {
	return l.base
}

// enrichFields prepends app_name and trace id
func (l *CtxZapLogger) enrichFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if l.config == nil {
		return fields
	}

	enriched := make([]zap.Field, 0, len(fields)+2)
	enriched = append(enriched, zap.String("app_name", l.config.AppName))

	if l.config.EnableTraceID {
		if traceID := extractTraceID(ctx, l.config); traceID != "" {
			fieldName := l.config.TraceIDFieldName
			if fieldName == "" {
				fieldName = "trace_id"
			}
			enriched = append(enriched, zap.String(fieldName, traceID))
		}
	}

	return append(enriched, fields...)
}

// extractTraceID OpenTelemetry span first, then the configured context key
func extractTraceID(ctx context.Context, cfg *ManagerConfig) string {
	if ctx == nil {
		return ""
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}

	key := "trace_id"
	if cfg != nil && cfg.TraceIDKey != "" {
		key = cfg.TraceIDKey
	}
	if val, ok := ctx.Value(key).(string); ok {
		return val
	}
	return ""
}
