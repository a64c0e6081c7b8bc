package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/yourorg/pdf2json/pkg/errors"
)

// DiskStore stages uploads in a local directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates dir if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewFilesystemError(fmt.Sprintf("cannot create upload directory %s", dir), err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the staging directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) {
		return "", errors.NewFilesystemError(fmt.Sprintf("invalid upload key %q", key), nil)
	}
	return filepath.Join(s.dir, key), nil
}

// Save writes r to a new file. A partially written file is removed on failure.
func (s *DiskStore) Save(ctx context.Context, original string, r io.Reader) (string, error) {
	key := StagedName(original)
	path, err := s.path(key)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", errors.NewFilesystemError("cannot stage upload", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.NewFilesystemError("cannot stage upload", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.NewFilesystemError("cannot stage upload", err)
	}
	return key, nil
}

// Open opens a staged file.
func (s *DiskStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewFilesystemError("cannot open staged upload", err)
	}
	return f, nil
}

// Remove deletes a staged file.
func (s *DiskStore) Remove(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return errors.NewFilesystemError("cannot remove staged upload", err)
	}
	return nil
}

// Sweep deletes regular files in the directory older than maxAge.
func (s *DiskStore) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, errors.NewFilesystemError("cannot list upload directory", err)
	}

	cutoff := now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}
