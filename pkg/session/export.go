package session

import (
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/yourorg/pdf2json/pkg/convert"
	"github.com/yourorg/pdf2json/pkg/errors"
)

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard writes to the OS clipboard.
type SystemClipboard struct{}

// WriteAll implements Clipboard.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Copy puts the exported text on cb.
func (s *Session) Copy(cb Clipboard) error {
	text, err := s.Export()
	if err != nil {
		return err
	}
	if err := cb.WriteAll(text); err != nil {
		return errors.NewInternalError("Failed to copy to clipboard").WithDetails(err.Error())
	}
	return nil
}

// DownloadName is the file name Download writes: the selected file's name with
// its extension replaced by .json, or converted.json.
func (s *Session) DownloadName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return convert.DownloadName("")
	}
	return convert.DownloadName(s.file.Name)
}

// Download writes the exported text into dir and returns the file path.
func (s *Session) Download(dir string) (string, error) {
	text, err := s.Export()
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, s.DownloadName())
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", errors.NewFilesystemError("failed to save result", err)
	}
	return path, nil
}
