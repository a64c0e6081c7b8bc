package upload

import (
	"context"
	"io"
	"time"

	"github.com/yourorg/pdf2json/pkg/blobclient"
	"github.com/yourorg/pdf2json/pkg/errors"
)

// BlobStore stages uploads in object storage under a key prefix.
type BlobStore struct {
	client blobclient.BlobClient
	prefix string
}

// NewBlobStore returns a store writing to client under prefix (e.g. "uploads/").
func NewBlobStore(client blobclient.BlobClient, prefix string) *BlobStore {
	return &BlobStore{client: client, prefix: prefix}
}

func (s *BlobStore) Save(ctx context.Context, original string, r io.Reader) (string, error) {
	key := s.prefix + StagedName(original)
	if _, err := s.client.Upload(ctx, key, r, "application/pdf"); err != nil {
		return "", errors.NewFilesystemError("cannot stage upload", err)
	}
	return key, nil
}

func (s *BlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.client.Get(ctx, key)
	if err != nil {
		return nil, errors.NewFilesystemError("cannot open staged upload", err)
	}
	return rc, nil
}

func (s *BlobStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, key); err != nil {
		return errors.NewFilesystemError("cannot remove staged upload", err)
	}
	return nil
}

// Sweep deletes blobs under the prefix last modified before now-maxAge.
func (s *BlobStore) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	blobs, err := s.client.List(ctx, s.prefix)
	if err != nil {
		return 0, errors.NewFilesystemError("cannot list staged uploads", err)
	}

	cutoff := now().Add(-maxAge)
	removed := 0
	for _, b := range blobs {
		if b.LastModified.After(cutoff) {
			continue
		}
		if err := s.client.Delete(ctx, b.Name); err == nil {
			removed++
		}
	}
	return removed, nil
}
