package upload

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/pdf2json/pkg/blobclient"
	"github.com/yourorg/pdf2json/pkg/errors"
)

func TestStagedName(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{13}-[0-9a-f]{8}-(.+)$`)

	tests := []struct {
		original string
		base     string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\My Report (final).pdf`, "My_Report_final_.pdf"},
		{"", "upload"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			m := pattern.FindStringSubmatch(StagedName(tt.original))
			require.NotNil(t, m)
			assert.Equal(t, tt.base, m[1])
		})
	}

	assert.NotEqual(t, StagedName("a.pdf"), StagedName("a.pdf"))
}

func TestDiskStore_Lifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.Save(ctx, "a.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, "-a.pdf"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, store.Remove(ctx, key))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = store.Remove(ctx, key)
	assert.True(t, errors.IsFilesystem(err))
}

func TestDiskStore_RejectsTraversalKeys(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "../secret")
	assert.True(t, errors.IsFilesystem(err))
}

func TestDiskStore_Sweep(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	oldKey, err := store.Save(ctx, "old.pdf", strings.NewReader("x"))
	require.NoError(t, err)
	freshKey, err := store.Save(ctx, "fresh.pdf", strings.NewReader("y"))
	require.NoError(t, err)
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldKey), past, past))

	removed, err := store.Sweep(ctx, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	_, err = os.Stat(filepath.Join(dir, freshKey))
	assert.NoError(t, err)
}

func TestBlobStore_Lifecycle(t *testing.T) {
	client := blobclient.NewMemoryBlobClient()
	store := NewBlobStore(client, "uploads/")
	ctx := context.Background()

	key, err := store.Save(ctx, "b.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "uploads/"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF", string(data))

	require.NoError(t, store.Remove(ctx, key))
	assert.Zero(t, client.Len())
	assert.True(t, errors.IsFilesystem(store.Remove(ctx, key)))
}

func TestBlobStore_Sweep(t *testing.T) {
	client := blobclient.NewMemoryBlobClient()
	store := NewBlobStore(client, "uploads/")
	ctx := context.Background()

	_, err := store.Save(ctx, "c.pdf", strings.NewReader("x"))
	require.NoError(t, err)

	removed, err := store.Sweep(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	removed, err = store.Sweep(ctx, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
