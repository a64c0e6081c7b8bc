package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/middleware"
	"github.com/yourorg/pdf2json/pkg/utils"
)

// SlackClient sends webhook notifications, at most one per MinInterval.
type SlackClient struct {
	webhookURL  string
	serviceName string
	channel     string
	logger      logging.Logger
	enabled     bool
	client      *http.Client
	mu          sync.Mutex
	lastSent    time.Time
	minInterval time.Duration
}

// SlackConfig holds Slack configuration.
type SlackConfig struct {
	WebhookURL  string
	ServiceName string
	Channel     string
	Enabled     bool
	MinInterval time.Duration
}

// SlackMessage represents a Slack webhook message.
type SlackMessage struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment represents a Slack message attachment.
type SlackAttachment struct {
	Color     string       `json:"color,omitempty"`
	Title     string       `json:"title,omitempty"`
	Text      string       `json:"text,omitempty"`
	Fields    []SlackField `json:"fields,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
}

// SlackField represents a field in a Slack attachment.
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// NewSlackClient creates a new Slack client.
func NewSlackClient(cfg SlackConfig, logger logging.Logger) *SlackClient {
	if !cfg.Enabled || cfg.WebhookURL == "" {
		logger.Info("Slack notifications disabled or webhook URL not provided")
		return &SlackClient{logger: logger}
	}

	interval := cfg.MinInterval
	if interval <= 0 {
		interval = time.Second
	}

	return &SlackClient{
		webhookURL:  cfg.WebhookURL,
		serviceName: cfg.ServiceName,
		channel:     cfg.Channel,
		logger:      logger,
		enabled:     true,
		client:      &http.Client{Timeout: 10 * time.Second},
		minInterval: interval,
	}
}

// SendMessage posts msg to the webhook, waiting out the minimum interval first.
func (s *SlackClient) SendMessage(ctx context.Context, msg SlackMessage) error {
	if !s.enabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if wait := s.minInterval - time.Since(s.lastSent); !s.lastSent.IsZero() && wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	if msg.Channel == "" {
		msg.Channel = s.channel
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send Slack message: %w", err)
	}
	defer resp.Body.Close()

	s.lastSent = time.Now()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Slack API returned status %d", resp.StatusCode)
	}
	return nil
}

// SendSlowRequestAlert implements middleware.SlackClient.
func (s *SlackClient) SendSlowRequestAlert(ctx context.Context, alert middleware.RequestAlert) error {
	if !s.enabled {
		return nil
	}

	title := fmt.Sprintf("⚠️ Slow Request Detected - %s", s.serviceName)
	fields := []SlackField{
		{Title: "Path", Value: alert.Path, Short: true},
		{Title: "Duration", Value: fmt.Sprintf("%d ms", alert.DurationMs), Short: true},
	}
	return s.SendMessage(ctx, SlackMessage{
		Text: title,
		Attachments: []SlackAttachment{{
			Color:     "warning",
			Title:     title,
			Text:      fmt.Sprintf("A slow request was detected in %s", s.serviceName),
			Fields:    append(append(fields, uploadFields(alert)...), idFields(alert)...),
			Timestamp: time.Now().Unix(),
		}},
	})
}

// SendErrorAlert implements middleware.SlackClient.
func (s *SlackClient) SendErrorAlert(ctx context.Context, alert middleware.RequestAlert) error {
	if !s.enabled {
		return nil
	}

	title := fmt.Sprintf("🚨 Error - %s", s.serviceName)
	fields := []SlackField{
		{Title: "Path", Value: alert.Path, Short: true},
		{Title: "Status Code", Value: fmt.Sprintf("%d", alert.StatusCode), Short: true},
		{Title: "Error", Value: alert.Error, Short: false},
	}
	return s.SendMessage(ctx, SlackMessage{
		Text: title,
		Attachments: []SlackAttachment{{
			Color:     "danger",
			Title:     title,
			Text:      fmt.Sprintf("An error occurred in %s", s.serviceName),
			Fields:    append(append(fields, uploadFields(alert)...), idFields(alert)...),
			Timestamp: time.Now().Unix(),
		}},
	})
}

// uploadFields describes the document being converted, if any.
func uploadFields(alert middleware.RequestAlert) []SlackField {
	if alert.Filename == "" {
		return nil
	}
	fields := []SlackField{
		{Title: "File", Value: alert.Filename, Short: true},
		{Title: "Size", Value: utils.FormatFileSize(alert.Size), Short: true},
	}
	if alert.Pages > 0 {
		fields = append(fields, SlackField{Title: "Pages", Value: fmt.Sprintf("%d", alert.Pages), Short: true})
	}
	return fields
}

func idFields(alert middleware.RequestAlert) []SlackField {
	return []SlackField{
		{Title: "Trace ID", Value: alert.TraceID, Short: true},
		{Title: "Request ID", Value: alert.RequestID, Short: true},
	}
}

// RetrySendMessage sends a message with retry logic.
func (s *SlackClient) RetrySendMessage(ctx context.Context, msg SlackMessage, maxAttempts int) error {
	if !s.enabled {
		return nil
	}

	cfg := utils.DefaultRetryConfig()
	cfg.MaxAttempts = maxAttempts
	cfg.MaxDelay = 2 * time.Second

	return utils.Retry(ctx, cfg, func() error {
		return s.SendMessage(ctx, msg)
	})
}
