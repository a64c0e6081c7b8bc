package httpservice

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/middleware"
)

// HandlerFunc is a handler function that returns an error.
type HandlerFunc func(c *gin.Context) error

// Wrap adapts a HandlerFunc to gin. Entry and exit are logged at debug level;
// a returned error is converted to an AppError and left for ErrorHandlerMiddleware.
func Wrap(handlerName string, fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := logging.FromContext(c.Request.Context())
		start := time.Now()

		logger.Debug("Handler started", logging.NewField("handler", handlerName))

		if err := fn(c); err != nil {
			logger.Debug("Handler failed",
				logging.NewField("handler", handlerName),
				logging.NewField("latency_ms", time.Since(start).Milliseconds()),
				logging.NewField("error", err),
			)
			middleware.SetError(c, errors.FromError(err))
			return
		}

		logger.Debug("Handler completed",
			logging.NewField("handler", handlerName),
			logging.NewField("latency_ms", time.Since(start).Milliseconds()),
		)
	}
}
