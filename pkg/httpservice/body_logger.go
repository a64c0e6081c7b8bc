package httpservice

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourorg/pdf2json/pkg/logging"
)

// maxLoggedBody caps how much of a JSON body ends up in a log entry.
const maxLoggedBody = 8 << 10

// responseWriter wraps gin.ResponseWriter to capture the response body.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if w.body.Len() < maxLoggedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// BodyLoggingMiddleware logs one entry per request. Small JSON request bodies are
// logged as JSON; multipart uploads are logged by size only. Response bodies are
// logged for 4xx and 5xx answers, where they carry the error message.
func BodyLoggingMiddleware(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var requestBodyJSON interface{}
		contentType := c.ContentType()
		if c.Request.Body != nil && contentType == gin.MIMEJSON &&
			c.Request.ContentLength >= 0 && c.Request.ContentLength <= maxLoggedBody {
			requestBody, err := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(requestBody))
			if err == nil && len(requestBody) > 0 {
				_ = json.Unmarshal(requestBody, &requestBodyJSON)
			}
		}

		responseBodyWriter := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = responseBodyWriter

		c.Next()

		status := c.Writer.Status()
		fields := []logging.Field{
			logging.NewField("method", c.Request.Method),
			logging.NewField("path", c.Request.URL.Path),
			logging.NewField("status", status),
			logging.NewField("latency_ms", time.Since(start).Milliseconds()),
			logging.NewField("response_bytes", c.Writer.Size()),
		}

		if requestID := c.GetString("request_id"); requestID != "" {
			fields = append(fields, logging.NewField("request_id", requestID))
		}
		if traceID := c.GetString("trace_id"); traceID != "" {
			fields = append(fields, logging.NewField("trace_id", traceID))
		}

		switch {
		case requestBodyJSON != nil:
			fields = append(fields, logging.NewField("request_body", requestBodyJSON))
		case strings.HasPrefix(contentType, "multipart/"):
			fields = append(fields, logging.NewField("request_bytes", c.Request.ContentLength))
		}

		if status >= 400 && responseBodyWriter.body.Len() > 0 {
			var responseBodyJSON interface{}
			if json.Unmarshal(responseBodyWriter.body.Bytes(), &responseBodyJSON) == nil {
				fields = append(fields, logging.NewField("response_body", responseBodyJSON))
			} else {
				fields = append(fields, logging.NewField("response_body_raw", responseBodyWriter.body.String()))
			}
		}

		switch {
		case status >= 500:
			logger.Error("HTTP Request/Response", fields...)
		case status >= 400:
			logger.Warn("HTTP Request/Response", fields...)
		default:
			logger.Info("HTTP Request/Response", fields...)
		}
	}
}
