package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newRequestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c.Request.Context()))
	})
	return router
}

func TestRequestIDMiddleware_GeneratesRequestID(t *testing.T) {
	w := httptest.NewRecorder()
	newRequestIDRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
}

func TestRequestIDMiddleware_KeepsIncomingID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "upload-42")
	w := httptest.NewRecorder()
	newRequestIDRouter().ServeHTTP(w, req)

	assert.Equal(t, "upload-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "upload-42", w.Body.String())
}

func TestRequestIDMiddleware_ReplacesMalformedID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "<script>alert(1)</script>")
	w := httptest.NewRecorder()
	newRequestIDRouter().ServeHTTP(w, req)

	got := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "<")
}
