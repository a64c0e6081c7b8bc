package pdfutil

import (
	"bytes"
	"fmt"

	lpdf "github.com/ledongthuc/pdf"
)

// ledongthucDocument is the primary reader.
type ledongthucDocument struct {
	reader *lpdf.Reader
	data   []byte
}

func openLedongthuc(data []byte) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ledongthuc: open panic: %v", r)
		}
	}()

	r, err := lpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("ledongthuc: %w", err)
	}
	return &ledongthucDocument{reader: r, data: data}, nil
}

func (d *ledongthucDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *ledongthucDocument) PageText(n int) (text string, err error) {
	if err := checkPage(n, d.PageCount()); err != nil {
		return "", err
	}
	defer recoverPage(n, &err)

	page := d.reader.Page(n)
	if page.V.IsNull() {
		return "", &PageError{Page: n, Err: fmt.Errorf("missing page object")}
	}

	content := page.Content()
	glyphs := make([]glyph, 0, len(content.Text))
	for _, t := range content.Text {
		glyphs = append(glyphs, glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return layoutText(glyphs), nil
}

func (d *ledongthucDocument) Info() (info Info) {
	defer func() {
		if recover() != nil {
			info = Info{Version: headerVersion(d.data)}
		}
	}()

	dict := d.reader.Trailer().Key("Info")
	return Info{
		Title:        trimInfo(dict.Key("Title")),
		Author:       trimInfo(dict.Key("Author")),
		Subject:      trimInfo(dict.Key("Subject")),
		Keywords:     trimInfo(dict.Key("Keywords")),
		Creator:      trimInfo(dict.Key("Creator")),
		Producer:     trimInfo(dict.Key("Producer")),
		CreationDate: trimInfo(dict.Key("CreationDate")),
		ModDate:      trimInfo(dict.Key("ModDate")),
		Version:      headerVersion(d.data),
	}
}

func (d *ledongthucDocument) Close() error {
	d.reader = nil
	d.data = nil
	return nil
}
