package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/logging"
)

type recordingTelemetry struct {
	mu     sync.Mutex
	slow   []RequestAlert
	errors []RequestAlert
}

func (r *recordingTelemetry) RecordSlowRequest(ctx context.Context, alert RequestAlert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slow = append(r.slow, alert)
}

func (r *recordingTelemetry) RecordError(ctx context.Context, alert RequestAlert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, alert)
}

func paths(alerts []RequestAlert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Path)
	}
	return out
}

func TestSlowRequestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	telemetry := &recordingTelemetry{}

	router := gin.New()
	router.Use(SlowRequestMiddleware(25, telemetry, nil, logging.Nop()))
	router.Use(ErrorHandlerMiddleware(logging.Nop()))
	router.GET("/slow", func(c *gin.Context) {
		time.Sleep(60 * time.Millisecond)
		c.Status(http.StatusOK)
	})
	router.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { SetError(c, errors.NewInternalError("boom")) })
	router.GET("/handled", func(c *gin.Context) {
		SetError(c, errors.NewInternalError("boom").SetHandledByService(true))
	})

	for _, path := range []string{"/slow", "/fast", "/fail", "/handled"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, []string{"/slow"}, paths(telemetry.slow))
	assert.Equal(t, []string{"/fail"}, paths(telemetry.errors))
	assert.Equal(t, http.StatusInternalServerError, telemetry.errors[0].StatusCode)
	assert.Contains(t, telemetry.errors[0].Error, "boom")
	assert.Empty(t, telemetry.slow[0].Filename)
}

func TestSlowRequestMiddleware_NamesTheUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	telemetry := &recordingTelemetry{}

	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(SlowRequestMiddleware(25, telemetry, nil, logging.Nop()))
	router.POST("/convert", func(c *gin.Context) {
		SetUpload(c, "scan.pdf", 2048)
		SetUploadPages(c, 12)
		time.Sleep(60 * time.Millisecond)
		c.Status(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/convert", nil))

	require.Len(t, telemetry.slow, 1)
	alert := telemetry.slow[0]
	assert.Equal(t, "scan.pdf", alert.Filename)
	assert.Equal(t, int64(2048), alert.Size)
	assert.Equal(t, 12, alert.Pages)
	assert.Equal(t, http.StatusOK, alert.StatusCode)
	assert.NotEmpty(t, alert.RequestID)
	assert.GreaterOrEqual(t, alert.DurationMs, int64(60))
}
