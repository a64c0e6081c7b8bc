package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yourorg/pdf2json/pkg/logging"
)

// ContextLoggerMiddleware stores a request-scoped logger in the request context.
// It must run after TracingMiddleware and RequestIDMiddleware.
func ContextLoggerMiddleware(baseLogger logging.Logger, serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		fields := []logging.Field{
			logging.NewField("service", serviceName),
			logging.NewField("method", c.Request.Method),
			logging.NewField("path", c.Request.URL.Path),
		}
		if traceID := GetTraceIDFromGin(c); traceID != "" {
			fields = append(fields, logging.NewField(TraceIDKey, traceID))
		}
		if requestID := GetRequestIDFromGin(c); requestID != "" {
			fields = append(fields, logging.NewField(RequestIDKey, requestID))
		}

		ctx := logging.WithLogger(c.Request.Context(), baseLogger.With(fields...))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
