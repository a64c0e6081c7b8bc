package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/yourorg/pdf2json/pkg/errors"
)

// PDFMediaType is the only media type accepted for conversion.
const PDFMediaType = "application/pdf"

// File is a selected upload: its name, detected media type and contents.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// Size returns the file size in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// IsPDF reports whether the media type is application/pdf.
func (f File) IsPDF() bool {
	return f.MediaType == PDFMediaType
}

// NewFile sniffs the media type of data.
func NewFile(name string, data []byte) File {
	return File{
		Name:      filepath.Base(name),
		MediaType: DetectMediaType(data),
		Data:      data,
	}
}

// OpenFile reads path and sniffs its media type.
func OpenFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, errors.NewFilesystemError(fmt.Sprintf("cannot read %s", path), err)
	}
	return NewFile(path, data), nil
}

// DetectMediaType returns the media type of data without parameters.
func DetectMediaType(data []byte) string {
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return mt
}

var extPattern = regexp.MustCompile(`\.\w+$`)

// DownloadName returns the export file name for name: its extension replaced by
// .json, or converted.json when there is no name.
func DownloadName(name string) string {
	if name == "" {
		return "converted.json"
	}
	base := extPattern.ReplaceAllString(filepath.Base(name), "")
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "converted.json"
	}
	return base + ".json"
}
