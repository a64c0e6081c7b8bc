package pdfutil

import (
	"bytes"
	"fmt"

	dpdf "github.com/dslipak/pdf"
)

// dslipakDocument is the fallback reader.
type dslipakDocument struct {
	reader *dpdf.Reader
	data   []byte
}

func openDslipak(data []byte) (doc Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dslipak: open panic: %v", r)
		}
	}()

	r, err := dpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("dslipak: %w", err)
	}
	return &dslipakDocument{reader: r, data: data}, nil
}

func (d *dslipakDocument) PageCount() int {
	return d.reader.NumPage()
}

func (d *dslipakDocument) PageText(n int) (text string, err error) {
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

func (d *dslipakDocument) Info() (info Info) {
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

func (d *dslipakDocument) Close() error {
	d.reader = nil
	d.data = nil
	return nil
}
