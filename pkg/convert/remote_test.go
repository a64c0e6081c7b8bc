package convert

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/utils"
)

func fastRemote(url string) RemoteConfig {
	return RemoteConfig{
		BaseURL: url,
		Token:   "secret-token",
		Retry:   utils.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1},
		Timeout: 5 * time.Second,
	}
}

func TestRemoteDecoder_PostsUploadAndFillsMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/convert", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))

		file, header, err := r.FormFile(UploadField)
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "a.pdf", header.Filename)
		assert.Equal(t, "%PDF-1.4 fake", string(data))

		_ = json.NewEncoder(w).Encode(Result{
			Pages:     1,
			Text:      "hello",
			PageTexts: []PageText{{Page: 1, Text: "hello"}},
		})
	}))
	defer srv.Close()

	f := File{Name: "a.pdf", MediaType: PDFMediaType, Data: []byte("%PDF-1.4 fake")}
	result, err := NewRemoteDecoder(fastRemote(srv.URL+"/"), nil).Decode(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, "a.pdf", result.Filename)
	assert.Equal(t, int64(13), result.Size)
	assert.Equal(t, "hello", result.Text)
}

func TestRemoteDecoder_RetriesUnavailable(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(Result{Filename: "b.pdf", Pages: 0, PageTexts: []PageText{}})
	}))
	defer srv.Close()

	result, err := NewRemoteDecoder(fastRemote(srv.URL), nil).Decode(context.Background(), File{Name: "b.pdf"})
	require.NoError(t, err)

	assert.Equal(t, "b.pdf", result.Filename)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRemoteDecoder_ServerErrorIsTransportError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errors.ErrorResponse{Error: "Error processing PDF", Details: "bad xref"})
	}))
	defer srv.Close()

	_, err := NewRemoteDecoder(fastRemote(srv.URL), nil).Decode(context.Background(), File{Name: "c.pdf"})

	require.True(t, errors.IsTransport(err))
	assert.Equal(t, errors.MsgConversionFailed, errors.FromError(err).Message)
	assert.Contains(t, err.Error(), "bad xref")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRemoteDecoder_UnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewRemoteDecoder(fastRemote(url), nil).Decode(context.Background(), File{Name: "d.pdf"})

	assert.True(t, errors.IsTransport(err))
}
