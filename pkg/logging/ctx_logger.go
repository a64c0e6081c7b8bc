package logging

import (
	"context"
)

type contextKey string

const loggerKey contextKey = "logger"

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext retrieves the logger from the context.
// Returns a no-op logger if not found.
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return Nop()
	}
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return Nop()
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &noOpLogger{}
}

type noOpLogger struct{}

func (n *noOpLogger) Debug(msg string, fields ...Field)                                  {}
func (n *noOpLogger) Info(msg string, fields ...Field)                                   {}
func (n *noOpLogger) Warn(msg string, fields ...Field)                                   {}
func (n *noOpLogger) Error(msg string, fields ...Field)                                  {}
func (n *noOpLogger) Fatal(msg string, fields ...Field)                                  {}
func (n *noOpLogger) With(fields ...Field) Logger                                        { return n }
func (n *noOpLogger) WithError(err error) Logger                                         { return n }
func (n *noOpLogger) DebugWithContext(ctx context.Context, msg string, fields ...Field)  {}
func (n *noOpLogger) InfoWithContext(ctx context.Context, msg string, fields ...Field)   {}
func (n *noOpLogger) WarnWithContext(ctx context.Context, msg string, fields ...Field)   {}
func (n *noOpLogger) ErrorWithContext(ctx context.Context, msg string, fields ...Field)  {}
func (n *noOpLogger) InfofWithContext(ctx context.Context, f string, a ...interface{})   {}
func (n *noOpLogger) WarnfWithContext(ctx context.Context, f string, a ...interface{})   {}
func (n *noOpLogger) ErrorfWithContext(ctx context.Context, f string, a ...interface{})  {}
