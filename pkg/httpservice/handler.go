package httpservice

import (
	"github.com/gin-gonic/gin"
	"github.com/yourorg/pdf2json/pkg/logging"
)

// GetLogger retrieves the contextual logger from the request.
func GetLogger(c *gin.Context) logging.Logger {
	return logging.FromContext(c.Request.Context())
}

// LogInfo logs an info message using the contextual logger.
func LogInfo(c *gin.Context, msg string, fields ...logging.Field) {
	GetLogger(c).Info(msg, fields...)
}

// LogWarn logs a warning message using the contextual logger.
func LogWarn(c *gin.Context, msg string, err error, fields ...logging.Field) {
	if err != nil {
		fields = append(fields, logging.NewField("error", err))
	}
	GetLogger(c).Warn(msg, fields...)
}
