package convert

import (
	"strings"

	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/pdfutil"
)

// UnknownVersion is reported in the legacy schema when the decoder gives no version.
const UnknownVersion = "Unknown"

// Opener opens raw PDF bytes. pdfutil.Open is the production opener.
type Opener func(data []byte) (pdfutil.Document, error)

// Extraction is the decoder output before it is shaped into a response.
type Extraction struct {
	PageCount int
	Pages     []PageText
	Info      pdfutil.Info
}

// Extract opens data and walks its pages in order. A page that fails is recorded
// with an error and the walk continues. Failing to open the document is a DecodeError.
func Extract(data []byte, open Opener) (*Extraction, error) {
	if open == nil {
		open = pdfutil.Open
	}

	doc, err := open(data)
	if err != nil {
		return nil, errors.NewDecodeError(err)
	}
	defer doc.Close()

	count := doc.PageCount()
	ex := &Extraction{
		PageCount: count,
		Pages:     make([]PageText, 0, count),
		Info:      doc.Info(),
	}

	for n := 1; n <= count; n++ {
		text, err := doc.PageText(n)
		if err != nil {
			ex.Pages = append(ex.Pages, PageText{Page: n, Text: "", Error: err.Error()})
			continue
		}
		ex.Pages = append(ex.Pages, PageText{Page: n, Text: text})
	}

	return ex, nil
}

// Text concatenates the successful pages, each followed by a newline, and trims the result.
func (ex *Extraction) Text() string {
	var b strings.Builder
	for _, p := range ex.Pages {
		if p.Error != "" {
			continue
		}
		b.WriteString(p.Text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// Assemble builds the canonical Result.
func Assemble(filename string, size int64, ex *Extraction) *Result {
	pages := ex.Pages
	if pages == nil {
		pages = []PageText{}
	}
	return &Result{
		Filename: filename,
		Size:     size,
		Pages:    ex.PageCount,
		Metadata: Metadata{
			Title:            ex.Info.Title,
			Author:           ex.Info.Author,
			Subject:          ex.Info.Subject,
			Creator:          ex.Info.Creator,
			Producer:         ex.Info.Producer,
			CreationDate:     ex.Info.CreationDate,
			ModificationDate: ex.Info.ModDate,
		},
		Text:      ex.Text(),
		PageTexts: pages,
	}
}

// AssembleLegacy builds the legacy server schema. numPages defaults to 0 and
// version to "Unknown"; info lists the non-empty information entries and
// metadata stays an empty object.
func AssembleLegacy(ex *Extraction) *LegacyResult {
	version := ex.Info.Version
	if version == "" {
		version = UnknownVersion
	}

	info := map[string]string{}
	for key, val := range map[string]string{
		"Title":        ex.Info.Title,
		"Author":       ex.Info.Author,
		"Subject":      ex.Info.Subject,
		"Keywords":     ex.Info.Keywords,
		"Creator":      ex.Info.Creator,
		"Producer":     ex.Info.Producer,
		"CreationDate": ex.Info.CreationDate,
		"ModDate":      ex.Info.ModDate,
	} {
		if val != "" {
			info[key] = val
		}
	}
	if ex.Info.Version != "" {
		info["PDFFormatVersion"] = ex.Info.Version
	}

	return &LegacyResult{
		Text: ex.Text(),
		Metadata: LegacyMetadata{
			Info:     info,
			Metadata: map[string]string{},
			NumPages: ex.PageCount,
			Version:  version,
		},
	}
}
