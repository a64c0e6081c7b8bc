package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/servicebusclient"
)

// Conversion outcomes.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// publishTimeout bounds how long a request waits on the event sinks.
const publishTimeout = 5 * time.Second

// ConversionEvent describes one POST /convert call. It is published to the
// event queue and recorded as a telemetry custom event.
type ConversionEvent struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject,omitempty"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	Pages       int       `json:"pages"`
	FailedPages int       `json:"failedPages"`
	Schema      string    `json:"schema"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	DurationMs  int64     `json:"durationMs"`
	StartedAt   time.Time `json:"startedAt"`
}

// Attributes flattens the event for telemetry.
func (e ConversionEvent) Attributes() map[string]interface{} {
	attrs := map[string]interface{}{
		"filename":    e.Filename,
		"size":        e.Size,
		"pages":       e.Pages,
		"failedPages": e.FailedPages,
		"schema":      e.Schema,
		"status":      e.Status,
		"durationMs":  e.DurationMs,
	}
	if e.Error != "" {
		attrs["error"] = e.Error
	}
	if e.Subject != "" {
		attrs["subject"] = e.Subject
	}
	return attrs
}

// publish hands the event to the configured sinks. Failures are logged only.
func (h *ConvertHandler) publish(ctx context.Context, event ConversionEvent) {
	logger := logging.FromContext(ctx)

	if h.recorder != nil {
		h.recorder.RecordConversion(ctx, event.Attributes())
	}
	if h.events == nil {
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode conversion event", logging.NewField("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	opts := []servicebusclient.SendOption{
		servicebusclient.WithContentType("application/json"),
		servicebusclient.WithProperties(map[string]interface{}{"status": event.Status}),
	}
	if event.ID != "" {
		opts = append(opts, servicebusclient.WithMessageID(event.ID))
	}

	if _, err := h.events.Publish(ctx, body, opts...); err != nil {
		logger.Warn("Failed to publish conversion event",
			logging.NewField("filename", event.Filename),
			logging.NewField("error", err),
		)
	}
}
