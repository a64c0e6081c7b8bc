// Package api serves the conversion endpoint and the browser client shell.
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourorg/pdf2json/pkg/convert"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/httpservice"
	"github.com/yourorg/pdf2json/pkg/jwt"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/middleware"
	"github.com/yourorg/pdf2json/pkg/servicebusclient"
	"github.com/yourorg/pdf2json/pkg/upload"
)

const (
	SchemaCanonical = "canonical"
	SchemaLegacy    = "legacy"
)

// removeTimeout bounds cleanup of a staged upload once the request is over.
const removeTimeout = 10 * time.Second

// ConversionRecorder receives one call per finished conversion.
// telemetry.NewRelicClient implements it.
type ConversionRecorder interface {
	RecordConversion(ctx context.Context, attributes map[string]interface{})
}

// Options configures a ConvertHandler. Store and Logger are required.
type Options struct {
	Store     upload.Store
	PublicDir string
	Logger    logging.Logger

	// Opener overrides pdfutil.Open, mostly for tests.
	Opener convert.Opener
	// Auth guards POST /convert when set, e.g. jwt.RequireToken.
	Auth gin.HandlerFunc
	// Events and Recorder are optional sinks for ConversionEvent.
	Events   servicebusclient.Publisher
	Recorder ConversionRecorder
}

// ConvertHandler handles POST /convert and the static client.
type ConvertHandler struct {
	store     upload.Store
	publicDir string
	open      convert.Opener
	auth      gin.HandlerFunc
	events    servicebusclient.Publisher
	recorder  ConversionRecorder
	logger    logging.Logger
}

// NewConvertHandler creates a ConvertHandler.
func NewConvertHandler(opts Options) *ConvertHandler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	publicDir := opts.PublicDir
	if publicDir == "" {
		publicDir = "public"
	}
	return &ConvertHandler{
		store:     opts.Store,
		publicDir: publicDir,
		open:      opts.Opener,
		auth:      opts.Auth,
		events:    opts.Events,
		recorder:  opts.Recorder,
		logger:    logger,
	}
}

// Register implements httpservice.Handler.
func (h *ConvertHandler) Register(router *gin.Engine) {
	router.GET("/", func(c *gin.Context) {
		c.File(filepath.Join(h.publicDir, "index.html"))
	})
	router.Static("/assets", filepath.Join(h.publicDir, "assets"))

	handlers := []gin.HandlerFunc{}
	if h.auth != nil {
		handlers = append(handlers, h.auth)
	}
	handlers = append(handlers, httpservice.Wrap("convert", h.convert))
	router.POST("/convert", handlers...)
}

type convertQuery struct {
	Schema string `form:"schema" validate:"omitempty,oneof=canonical legacy"`
}

func (h *ConvertHandler) convert(c *gin.Context) error {
	var query convertQuery
	if err := httpservice.BindQuery(c, &query); err != nil {
		return err
	}

	fileHeader, err := c.FormFile(convert.UploadField)
	if err != nil {
		httpservice.LogWarn(c, "Upload without a PDF file", err, logging.NewField("field", convert.UploadField))
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.NewPayloadTooLargeError(tooLarge.Limit)
		}
		return errors.NewBadRequestError(errors.MsgNoFileUploaded)
	}

	middleware.SetUpload(c, fileHeader.Filename, fileHeader.Size)

	ctx := c.Request.Context()
	start := time.Now()
	event := ConversionEvent{
		ID:        c.GetString("request_id"),
		Filename:  fileHeader.Filename,
		Size:      fileHeader.Size,
		Schema:    query.Schema,
		StartedAt: start.UTC(),
	}
	if event.Schema == "" {
		event.Schema = SchemaCanonical
	}
	if claims, ok := jwt.GetClaims(c); ok {
		event.Subject = claims.Subject
	}

	src, err := fileHeader.Open()
	if err != nil {
		return errors.NewFilesystemError("failed to read upload", err)
	}
	defer src.Close()

	ex, err := h.extract(ctx, fileHeader.Filename, src)
	event.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		event.Status = StatusFailed
		event.Error = err.Error()
		h.publish(ctx, event)
		return err
	}

	event.Status = StatusSucceeded
	event.Pages = ex.PageCount
	middleware.SetUploadPages(c, ex.PageCount)
	for _, p := range ex.Pages {
		if p.Error != "" {
			event.FailedPages++
		}
	}
	h.publish(ctx, event)
	httpservice.LogInfo(c, "PDF converted",
		logging.NewField("filename", event.Filename),
		logging.NewField("pages", event.Pages),
		logging.NewField("failed_pages", event.FailedPages),
		logging.NewField("duration_ms", event.DurationMs),
	)

	if query.Schema == SchemaLegacy {
		c.JSON(http.StatusOK, convert.AssembleLegacy(ex))
		return nil
	}
	c.JSON(http.StatusOK, convert.Assemble(fileHeader.Filename, fileHeader.Size, ex))
	return nil
}

// extract stages the upload, decodes it and always removes the staged copy.
func (h *ConvertHandler) extract(ctx context.Context, filename string, src io.Reader) (*convert.Extraction, error) {
	key, err := h.store.Save(ctx, filename, src)
	if err != nil {
		return nil, errors.NewFilesystemError("failed to stage upload", err)
	}
	defer h.remove(ctx, key)

	staged, err := h.store.Open(ctx, key)
	if err != nil {
		return nil, errors.NewFilesystemError("failed to open staged upload", err)
	}
	defer staged.Close()

	data, err := io.ReadAll(staged)
	if err != nil {
		return nil, errors.NewFilesystemError("failed to read staged upload", err)
	}

	return convert.Extract(data, h.open)
}

func (h *ConvertHandler) remove(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), removeTimeout)
	defer cancel()

	if err := h.store.Remove(ctx, key); err != nil {
		appErr := errors.NewFilesystemError("failed to remove staged upload", err)
		logging.FromContext(ctx).Error("Staged upload not removed",
			logging.NewField("key", key),
			logging.NewField("error", appErr),
		)
	}
}
