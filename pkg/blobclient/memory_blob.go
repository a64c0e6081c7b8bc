package blobclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryBlob struct {
	data        []byte
	contentType string
	modified    time.Time
}

// MemoryBlobClient is an in-memory BlobClient for local runs and tests.
type MemoryBlobClient struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
	now   func() time.Time
}

// NewMemoryBlobClient creates an empty store.
func NewMemoryBlobClient() *MemoryBlobClient {
	return &MemoryBlobClient{blobs: make(map[string]memoryBlob), now: time.Now}
}

func (m *MemoryBlobClient) Upload(ctx context.Context, name string, data io.Reader, contentType string) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("failed to read data: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = memoryBlob{data: content, contentType: contentType, modified: m.now()}
	return "memory://" + name, nil
}

func (m *MemoryBlobClient) Get(ctx context.Context, name string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.blobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, name)
	}
	return io.NopCloser(bytes.NewReader(b.data)), nil
}

func (m *MemoryBlobClient) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrBlobNotFound, name)
	}
	delete(m.blobs, name)
	return nil
}

func (m *MemoryBlobClient) Exists(ctx context.Context, name string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.blobs[name]
	return ok, nil
}

// List returns matching blobs sorted by name.
func (m *MemoryBlobClient) List(ctx context.Context, prefix string) ([]BlobInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blobs := []BlobInfo{}
	for name, b := range m.blobs {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		blobs = append(blobs, BlobInfo{
			Name:         name,
			Size:         int64(len(b.data)),
			ContentType:  b.contentType,
			LastModified: b.modified,
			URL:          "memory://" + name,
		})
	}
	sort.Slice(blobs, func(i, j int) bool { return blobs[i].Name < blobs[j].Name })
	return blobs, nil
}

// Len returns the number of stored blobs.
func (m *MemoryBlobClient) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}
