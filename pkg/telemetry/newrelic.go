package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/middleware"
)

// ConversionEventType is the New Relic custom event name for finished conversions.
const ConversionEventType = "PdfConversion"

// NewRelicClient wraps the New Relic agent. A disabled client is a no-op.
type NewRelicClient struct {
	app         *newrelic.Application
	logger      logging.Logger
	serviceName string
	enabled     bool
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	ServiceName string
	Enabled     bool
}

// NewNewRelicClient creates a new New Relic client.
func NewNewRelicClient(cfg NewRelicConfig, logger logging.Logger) (*NewRelicClient, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		logger.Info("New Relic disabled or license key not provided")
		return &NewRelicClient{logger: logger, serviceName: cfg.ServiceName}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	logger.Info("New Relic client initialized",
		logging.NewField("app_name", cfg.AppName),
		logging.NewField("service", cfg.ServiceName),
	)

	return &NewRelicClient{
		app:         app,
		logger:      logger,
		serviceName: cfg.ServiceName,
		enabled:     true,
	}, nil
}

// Enabled reports whether events are sent.
func (n *NewRelicClient) Enabled() bool {
	return n.enabled && n.app != nil
}

// Middleware starts a web transaction per request and stores it in the request context.
func (n *NewRelicClient) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !n.Enabled() {
			c.Next()
			return
		}

		txn := n.app.StartTransaction(c.Request.Method + " " + c.FullPath())
		defer txn.End()

		txn.SetWebRequestHTTP(c.Request)
		c.Writer = &txnWriter{ResponseWriter: c.Writer, txn: txn}
		c.Request = c.Request.WithContext(newrelic.NewContext(c.Request.Context(), txn))

		c.Next()
	}
}

// txnWriter reports the response status to the transaction.
type txnWriter struct {
	gin.ResponseWriter
	txn *newrelic.Transaction
}

func (w *txnWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(code)
	w.txn.SetWebResponse(nil).WriteHeader(code)
}

// RecordCustomEvent records a custom event in New Relic.
func (n *NewRelicClient) RecordCustomEvent(eventType string, attributes map[string]interface{}) {
	if !n.Enabled() {
		return
	}
	n.app.RecordCustomEvent(eventType, attributes)
}

// RecordConversion records a finished conversion and annotates the current transaction.
func (n *NewRelicClient) RecordConversion(ctx context.Context, attributes map[string]interface{}) {
	if !n.Enabled() {
		return
	}

	event := make(map[string]interface{}, len(attributes)+1)
	for k, v := range attributes {
		event[k] = v
	}
	event["service"] = n.serviceName
	n.RecordCustomEvent(ConversionEventType, event)

	if txn := newrelic.FromContext(ctx); txn != nil {
		for k, v := range attributes {
			txn.AddAttribute(k, v)
		}
	}
}

// RecordSlowRequest records a SlowRequest custom event.
// Implements middleware.TelemetryClient.
func (n *NewRelicClient) RecordSlowRequest(ctx context.Context, alert middleware.RequestAlert) {
	if !n.Enabled() {
		return
	}

	n.RecordCustomEvent("SlowRequest", n.alertAttributes(alert))

	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.AddAttribute("slow_request", true)
	}
}

// RecordError records a ServiceError custom event and notices the error on the transaction.
// Implements middleware.TelemetryClient.
func (n *NewRelicClient) RecordError(ctx context.Context, alert middleware.RequestAlert) {
	if !n.Enabled() {
		return
	}

	attrs := n.alertAttributes(alert)
	attrs["error"] = alert.Error
	n.RecordCustomEvent("ServiceError", attrs)

	if txn := newrelic.FromContext(ctx); txn != nil {
		txn.NoticeError(fmt.Errorf("HTTP %d: %s", alert.StatusCode, alert.Error))
	}
}

func (n *NewRelicClient) alertAttributes(alert middleware.RequestAlert) map[string]interface{} {
	attrs := map[string]interface{}{
		"service":     n.serviceName,
		"path":        alert.Path,
		"duration_ms": alert.DurationMs,
		"status_code": alert.StatusCode,
		"trace_id":    alert.TraceID,
		"request_id":  alert.RequestID,
	}
	if alert.Filename != "" {
		attrs["filename"] = alert.Filename
		attrs["size"] = alert.Size
		attrs["pages"] = alert.Pages
	}
	return attrs
}

// Shutdown flushes pending data.
func (n *NewRelicClient) Shutdown(timeout time.Duration) {
	if n.Enabled() {
		n.app.Shutdown(timeout)
	}
}
