package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourorg/pdf2json/pkg/logging"
)

// Gin keys holding the upload a request is converting.
const (
	UploadFilenameKey = "upload_filename"
	UploadSizeKey     = "upload_size"
	UploadPagesKey    = "upload_pages"
)

// RequestAlert describes a slow or failed request.
type RequestAlert struct {
	Path       string
	DurationMs int64
	StatusCode int
	Error      string
	TraceID    string
	RequestID  string

	// Set for conversions; empty for other routes.
	Filename string
	Size     int64
	Pages    int
}

// TelemetryClient records alerts as telemetry events.
type TelemetryClient interface {
	RecordSlowRequest(ctx context.Context, alert RequestAlert)
	RecordError(ctx context.Context, alert RequestAlert)
}

// SlackClient posts alerts to a channel.
type SlackClient interface {
	SendSlowRequestAlert(ctx context.Context, alert RequestAlert) error
	SendErrorAlert(ctx context.Context, alert RequestAlert) error
}

// SetUpload records the uploaded file so alerts can name it.
func SetUpload(c *gin.Context, filename string, size int64) {
	c.Set(UploadFilenameKey, filename)
	c.Set(UploadSizeKey, size)
}

// SetUploadPages records the page count once the document has been opened.
func SetUploadPages(c *gin.Context, pages int) {
	c.Set(UploadPagesKey, pages)
}

func newRequestAlert(c *gin.Context, path string, durationMs int64) RequestAlert {
	return RequestAlert{
		Path:       path,
		DurationMs: durationMs,
		StatusCode: c.Writer.Status(),
		TraceID:    GetTraceIDFromGin(c),
		RequestID:  GetRequestIDFromGin(c),
		Filename:   c.GetString(UploadFilenameKey),
		Size:       c.GetInt64(UploadSizeKey),
		Pages:      c.GetInt(UploadPagesKey),
	}
}

// SlowRequestMiddleware reports requests slower than slowThresholdMs and
// unhandled 5xx answers. Errors marked with X-Service-Handled are skipped.
func SlowRequestMiddleware(
	slowThresholdMs int64,
	telemetryClient TelemetryClient,
	slackClient SlackClient,
	logger logging.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if c.Writer.Header().Get(ServiceHandledHeader) == "true" {
			return
		}

		alert := newRequestAlert(c, path, time.Since(start).Milliseconds())
		ctx := c.Request.Context()

		if alert.DurationMs > slowThresholdMs {
			fields := []logging.Field{
				logging.NewField("path", path),
				logging.NewField("duration_ms", alert.DurationMs),
				logging.NewField("threshold_ms", slowThresholdMs),
			}
			if alert.Filename != "" {
				fields = append(fields,
					logging.NewField("filename", alert.Filename),
					logging.NewField("size", alert.Size),
					logging.NewField("pages", alert.Pages),
				)
			}
			logger.Warn("Slow request detected", fields...)

			if telemetryClient != nil {
				telemetryClient.RecordSlowRequest(ctx, alert)
			}
			if slackClient != nil {
				if err := slackClient.SendSlowRequestAlert(ctx, alert); err != nil {
					logger.Error("Failed to send Slack alert", logging.NewField("error", err))
				}
			}
		}

		// Only failures that bypassed ErrorHandlerMiddleware reach this point.
		if alert.StatusCode >= 500 {
			alert.Error = "Internal server error"
			if len(c.Errors) > 0 {
				alert.Error = c.Errors.String()
			}

			if telemetryClient != nil {
				telemetryClient.RecordError(ctx, alert)
			}
			if slackClient != nil {
				if err := slackClient.SendErrorAlert(ctx, alert); err != nil {
					logger.Error("Failed to send Slack alert", logging.NewField("error", err))
				}
			}
		}
	}
}
