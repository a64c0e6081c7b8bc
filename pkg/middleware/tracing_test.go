package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/yourorg/pdf2json/pkg/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestTracingMiddleware_GeneratesTraceID(t *testing.T) {
	logger, _ := logging.NewLogger("info", "json")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingMiddleware(logger, "test-service"))
	router.GET("/test", func(c *gin.Context) {
		traceID := GetTraceIDFromGin(c)
		c.JSON(http.StatusOK, gin.H{"trace_id": traceID})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestTracingMiddleware_UsesExistingTraceID(t *testing.T) {
	logger, _ := logging.NewLogger("info", "json")
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(TracingMiddleware(logger, "test-service"))
	router.GET("/test", func(c *gin.Context) {
		traceID := GetTraceIDFromGin(c)
		c.JSON(http.StatusOK, gin.H{"trace_id": traceID})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Trace-ID", "existing-trace-id")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "existing-trace-id", w.Header().Get("X-Trace-ID"))
}


func TestContextLoggerMiddleware_AttachesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(TracingMiddleware(logging.Nop(), "pdf2json"))
	router.Use(RequestIDMiddleware())
	router.Use(ContextLoggerMiddleware(logging.NewFromZap(zap.New(core)), "pdf2json"))
	router.GET("/health", func(c *gin.Context) {
		logging.FromContext(c.Request.Context()).Info("checked")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(TraceIDHeader, "trace-1")
	req.Header.Set(RequestIDHeader, "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("checked").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "trace-1", fields["trace_id"])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "pdf2json", fields["service"])
		assert.Equal(t, "/health", fields["path"])
	}
}
