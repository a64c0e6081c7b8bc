package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Context keys the request middleware stores ids under.
const (
	requestIDKey  = "request_id"
	xRequestIDKey = "x-request-id"
)

// Logger defines the interface for structured logging.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)
	With(fields ...Field) Logger
	WithError(err error) Logger

	DebugWithContext(ctx context.Context, msg string, fields ...Field)
	InfoWithContext(ctx context.Context, msg string, fields ...Field)
	WarnWithContext(ctx context.Context, msg string, fields ...Field)
	ErrorWithContext(ctx context.Context, msg string, fields ...Field)

	InfofWithContext(ctx context.Context, format string, args ...interface{})
	WarnfWithContext(ctx context.Context, format string, args ...interface{})
	ErrorfWithContext(ctx context.Context, format string, args ...interface{})
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// NewField creates a new log field.
func NewField(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// zapLogger is the zap-based implementation of Logger.
type zapLogger struct {
	logger *zap.Logger
}

// NewLogger creates a new logger with the specified level and format.
// level: debug, info, warn, error
// format: json, console
func NewLogger(level, format string) (Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.Encoding = encoding(format)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if config.Encoding == "console" {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.DisableCaller = true
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return &zapLogger{logger: logger}, nil
}

// NewLoggerFromConfig creates a logger, falling back to info/json when level or format is invalid.
func NewLoggerFromConfig(level, format string) Logger {
	logger, err := NewLogger(level, format)
	if err != nil {
		logger, _ = NewLogger("info", "json")
	}
	return logger
}

// NewFromZap wraps an existing zap logger. Used by tests with zaptest/observer cores.
func NewFromZap(logger *zap.Logger) Logger {
	return &zapLogger{logger: logger}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoding(format string) string {
	if format == "text" || format == "console" {
		return "console"
	}
	return "json"
}

func (z *zapLogger) Debug(msg string, fields ...Field) {
	z.logger.Debug(msg, z.fieldsToZap(fields)...)
}

func (z *zapLogger) Info(msg string, fields ...Field) {
	z.logger.Info(msg, z.fieldsToZap(fields)...)
}

func (z *zapLogger) Warn(msg string, fields ...Field) {
	z.logger.Warn(msg, z.fieldsToZap(fields)...)
}

func (z *zapLogger) Error(msg string, fields ...Field) {
	z.logger.Error(msg, z.fieldsToZap(fields)...)
}

// Fatal logs a fatal message and exits.
func (z *zapLogger) Fatal(msg string, fields ...Field) {
	z.logger.Fatal(msg, z.fieldsToZap(fields)...)
}

// With creates a new logger with additional fields.
func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{logger: z.logger.With(z.fieldsToZap(fields)...)}
}

// WithError creates a new logger with an error field.
func (z *zapLogger) WithError(err error) Logger {
	return &zapLogger{logger: z.logger.With(zap.Error(err))}
}

func (z *zapLogger) DebugWithContext(ctx context.Context, msg string, fields ...Field) {
	z.Debug(msg, z.enrichFields(ctx, fields)...)
}

func (z *zapLogger) InfoWithContext(ctx context.Context, msg string, fields ...Field) {
	z.Info(msg, z.enrichFields(ctx, fields)...)
}

func (z *zapLogger) WarnWithContext(ctx context.Context, msg string, fields ...Field) {
	z.Warn(msg, z.enrichFields(ctx, fields)...)
}

func (z *zapLogger) ErrorWithContext(ctx context.Context, msg string, fields ...Field) {
	z.Error(msg, z.enrichFields(ctx, fields)...)
}

func (z *zapLogger) InfofWithContext(ctx context.Context, format string, args ...interface{}) {
	z.Info(fmt.Sprintf(format, args...), z.enrichFields(ctx, nil)...)
}

func (z *zapLogger) WarnfWithContext(ctx context.Context, format string, args ...interface{}) {
	z.Warn(fmt.Sprintf(format, args...), z.enrichFields(ctx, nil)...)
}

func (z *zapLogger) ErrorfWithContext(ctx context.Context, format string, args ...interface{}) {
	z.Error(fmt.Sprintf(format, args...), z.enrichFields(ctx, nil)...)
}

// enrichFields appends the request id found in ctx, preferring request_id over x-request-id.
func (z *zapLogger) enrichFields(ctx context.Context, fields []Field) []Field {
	if ctx == nil {
		return fields
	}
	for _, key := range []string{requestIDKey, xRequestIDKey} {
		if id, ok := ctx.Value(key).(string); ok && id != "" {
			return append(fields, NewField(key, id))
		}
	}
	return fields
}

// fieldsToZap converts Field slice to zap fields.
func (z *zapLogger) fieldsToZap(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			zapFields = append(zapFields, zap.String(f.Key, v))
		case int:
			zapFields = append(zapFields, zap.Int(f.Key, v))
		case int64:
			zapFields = append(zapFields, zap.Int64(f.Key, v))
		case float64:
			zapFields = append(zapFields, zap.Float64(f.Key, v))
		case bool:
			zapFields = append(zapFields, zap.Bool(f.Key, v))
		case error:
			zapFields = append(zapFields, zap.NamedError(f.Key, v))
		default:
			zapFields = append(zapFields, zap.Any(f.Key, v))
		}
	}
	return zapFields
}

// Sync flushes any buffered log entries. Should be called before application exit.
func Sync(logger Logger) {
	if zl, ok := logger.(*zapLogger); ok {
		_ = zl.logger.Sync()
	}
}
