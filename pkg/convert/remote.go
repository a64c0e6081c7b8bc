package convert

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/utils"
)

// UploadField is the multipart field the server reads the PDF from.
const UploadField = "pdfFile"

// RemoteConfig configures RemoteDecoder.
type RemoteConfig struct {
	BaseURL string
	Token   string
	Retry   utils.RetryConfig
	Timeout time.Duration
	Client  *http.Client
}

// RemoteDecoder converts by uploading the file to a pdf2json server.
type RemoteDecoder struct {
	endpoint string
	token    string
	retry    utils.RetryConfig
	client   *http.Client
	logger   logging.Logger
}

// NewRemoteDecoder returns a decoder that posts to <BaseURL>/convert.
func NewRemoteDecoder(cfg RemoteConfig, logger logging.Logger) *RemoteDecoder {
	if logger == nil {
		logger = logging.Nop()
	}
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = utils.DefaultRetryConfig()
	}
	return &RemoteDecoder{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/convert",
		token:    cfg.Token,
		retry:    retry,
		client:   client,
		logger:   logger,
	}
}

// statusError is a non-2xx answer from the server.
type statusError struct {
	Status int
	Body   errors.ErrorResponse
}

func (e *statusError) Error() string {
	if e.Body.Details != "" {
		return fmt.Sprintf("server answered %d: %s: %s", e.Status, e.Body.Error, e.Body.Details)
	}
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Body.Error)
}

// Decode uploads f. Network errors and 502/503/504 answers are retried; any other
// non-2xx answer, or exhausting the retries, is a TransportError.
func (d *RemoteDecoder) Decode(ctx context.Context, f File) (*Result, error) {
	body, contentType, err := encodeUpload(f)
	if err != nil {
		return nil, errors.NewTransportError(err)
	}

	attempt := 0
	result, err := utils.RetryWithResult(ctx, d.retry, func() (*Result, error) {
		attempt++
		res, err := d.post(ctx, body, contentType)
		if err != nil && !retryable(err) {
			return nil, utils.Permanent(err)
		}
		if err != nil {
			d.logger.WarnWithContext(ctx, "Remote conversion attempt failed",
				logging.NewField("attempt", attempt),
				logging.NewField("error", err),
			)
		}
		return res, err
	})
	if err != nil {
		return nil, errors.NewTransportError(err)
	}

	if result.Filename == "" {
		result.Filename = f.Name
	}
	if result.Size == 0 {
		result.Size = f.Size()
	}
	if result.PageTexts == nil {
		result.PageTexts = []PageText{}
	}
	return result, nil
}

func (d *RemoteDecoder) post(ctx context.Context, body []byte, contentType string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &statusError{Status: resp.StatusCode}
		if json.Unmarshal(payload, &se.Body) != nil || se.Body.Error == "" {
			se.Body.Error = http.StatusText(resp.StatusCode)
		}
		return nil, se
	}

	var result Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode server response: %w", err)
	}
	return &result, nil
}

func retryable(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if stderrors.As(err, &se) {
		switch se.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return stderrors.As(err, &opErr)
}

func encodeUpload(f File) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(UploadField, f.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
