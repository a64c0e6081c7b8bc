package convert

import (
	"context"
	"fmt"
	"time"

	"github.com/yourorg/pdf2json/pkg/config"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/utils"
)

// Decoder converts a selected file into a Result.
type Decoder interface {
	Decode(ctx context.Context, f File) (*Result, error)
}

// LocalDecoder converts in-process.
type LocalDecoder struct {
	open   Opener
	logger logging.Logger
}

// NewLocalDecoder returns a decoder backed by pdfutil.Open.
func NewLocalDecoder(logger logging.Logger) *LocalDecoder {
	return NewLocalDecoderWithOpener(nil, logger)
}

// NewLocalDecoderWithOpener returns a decoder that opens documents with open.
func NewLocalDecoderWithOpener(open Opener, logger logging.Logger) *LocalDecoder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &LocalDecoder{open: open, logger: logger}
}

// Decode extracts every page of f. Per-page failures are reported inside the Result.
func (d *LocalDecoder) Decode(ctx context.Context, f File) (*Result, error) {
	start := time.Now()

	ex, err := Extract(f.Data, d.open)
	if err != nil {
		d.logger.ErrorWithContext(ctx, "PDF decode failed",
			logging.NewField("file", f.Name),
			logging.NewField("error", err),
		)
		return nil, err
	}

	result := Assemble(f.Name, f.Size(), ex)
	d.logger.DebugWithContext(ctx, "PDF decoded",
		logging.NewField("file", f.Name),
		logging.NewField("pages", result.Pages),
		logging.NewField("failed_pages", result.FailedPages()),
		logging.NewField("duration_ms", time.Since(start).Milliseconds()),
	)
	return result, nil
}

// NewDecoder selects the local or remote decoder from cfg.Decoder.
func NewDecoder(cfg *config.Config, logger logging.Logger) (Decoder, error) {
	switch cfg.Decoder {
	case "", "local":
		return NewLocalDecoder(logger), nil
	case "remote":
		if cfg.RemoteURL == "" {
			return nil, errors.NewBadRequestError("remote decoder requires REMOTE_URL")
		}
		return NewRemoteDecoder(RemoteConfig{
			BaseURL: cfg.RemoteURL,
			Token:   cfg.RemoteToken,
			Retry:   utils.NewRetryConfig(cfg.RetryMaxAttempts, cfg.RetryInitialDelay, cfg.RetryMaxDelay),
			Timeout: time.Duration(cfg.HTTPWriteTimeout) * time.Second,
		}, logger), nil
	default:
		return nil, errors.NewBadRequestError(fmt.Sprintf("unknown decoder %q", cfg.Decoder))
	}
}
