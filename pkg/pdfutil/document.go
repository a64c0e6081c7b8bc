package pdfutil

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotPDF is returned by Open when neither reader accepts the input.
var ErrNotPDF = errors.New("not a readable PDF document")

// Info is the best-effort document information dictionary.
// Absent entries are empty strings.
type Info struct {
	Title        string
	Author       string
	Subject      string
	Keywords     string
	Creator      string
	Producer     string
	CreationDate string
	ModDate      string
	Version      string
}

// Document is an opened PDF. Implementations are not safe for concurrent use.
type Document interface {
	// PageCount returns the number of pages.
	PageCount() int
	// PageText returns the text of page n (1-based) with text runs in visual order
	// joined by single spaces.
	PageText(n int) (string, error)
	// Info returns document metadata.
	Info() Info
	// Close releases the document.
	Close() error
}

// Open parses data with the primary reader and falls back to the secondary
// reader when the primary cannot open it.
func Open(data []byte) (Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrNotPDF)
	}

	doc, primaryErr := openLedongthuc(data)
	if primaryErr == nil {
		return doc, nil
	}

	doc, fallbackErr := openDslipak(data)
	if fallbackErr == nil {
		return doc, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNotPDF, errors.Join(primaryErr, fallbackErr))
}

// PageError reports a failure to extract a single page.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// recoverPage converts a panic raised by a reader while decoding page n into a PageError.
func recoverPage(n int, err *error) {
	if r := recover(); r != nil {
		*err = &PageError{Page: n, Err: fmt.Errorf("decoder panic: %v", r)}
	}
}

func checkPage(n, count int) error {
	if n < 1 || n > count {
		return &PageError{Page: n, Err: fmt.Errorf("out of range [1, %d]", count)}
	}
	return nil
}

// infoValue abstracts the Value type shared by both readers.
type infoValue interface {
	Text() string
}

func trimInfo(v infoValue) string {
	return strings.TrimSpace(v.Text())
}
