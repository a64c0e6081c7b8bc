// Package blobclient stores staged uploads in object storage.
package blobclient

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrBlobNotFound is returned by Get and Delete for unknown blobs.
var ErrBlobNotFound = errors.New("blob not found")

// BlobClient is a container-scoped object store.
type BlobClient interface {
	// Upload stores data under name and returns the blob URL.
	Upload(ctx context.Context, name string, data io.Reader, contentType string) (url string, err error)

	// Get opens a blob for reading.
	Get(ctx context.Context, name string) (io.ReadCloser, error)

	// Delete removes a blob.
	Delete(ctx context.Context, name string) error

	// Exists reports whether a blob exists.
	Exists(ctx context.Context, name string) (bool, error)

	// List lists blobs whose names start with prefix.
	List(ctx context.Context, prefix string) ([]BlobInfo, error)
}

// BlobInfo describes a stored blob.
type BlobInfo struct {
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
	URL          string
}
