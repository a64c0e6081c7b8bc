// Package upload stages uploaded files for the duration of one conversion.
package upload

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yourorg/pdf2json/pkg/utils"
)

// Store holds staged uploads. Every key returned by Save must be passed to Remove
// once the conversion is done, whatever its outcome.
type Store interface {
	// Save stages r under a unique name derived from original and returns its key.
	Save(ctx context.Context, original string, r io.Reader) (key string, err error)
	// Open reads a staged upload.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove deletes a staged upload.
	Remove(ctx context.Context, key string) error
	// Sweep removes staged uploads older than maxAge and returns how many were removed.
	Sweep(ctx context.Context, maxAge time.Duration) (int, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// now is replaced in tests.
var now = time.Now

// StagedName returns "<unix-millis>-<short-id>-<basename>" with the basename
// reduced to a safe character set.
func StagedName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == "_" {
		base = "upload"
	}
	return fmt.Sprintf("%d-%s-%s", now().UnixMilli(), utils.GenerateShortID(), base)
}
