package convert

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/pdfutil"
)

// fakeDocument serves fixed page texts; pages listed in fail return an error.
type fakeDocument struct {
	pages  []string
	fail   map[int]error
	info   pdfutil.Info
	closed bool
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageText(n int) (string, error) {
	if err, ok := d.fail[n]; ok {
		return "", err
	}
	return d.pages[n-1], nil
}

func (d *fakeDocument) Info() pdfutil.Info { return d.info }

func (d *fakeDocument) Close() error {
	d.closed = true
	return nil
}

func openerFor(doc pdfutil.Document) Opener {
	return func([]byte) (pdfutil.Document, error) { return doc, nil }
}

func TestLocalDecoder_ThreePageDocument(t *testing.T) {
	data, err := pdfutil.GenerateTextPDF([]string{"A", "B", "C"}, pdfutil.TextPDFOptions{Title: "Letters"})
	require.NoError(t, err)

	result, err := NewLocalDecoder(nil).Decode(context.Background(), NewFile("letters.pdf", data))
	require.NoError(t, err)

	assert.Equal(t, "letters.pdf", result.Filename)
	assert.Equal(t, int64(len(data)), result.Size)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, []PageText{
		{Page: 1, Text: "A"},
		{Page: 2, Text: "B"},
		{Page: 3, Text: "C"},
	}, result.PageTexts)
	assert.Equal(t, "A\nB\nC", result.Text)
	assert.Equal(t, "Letters", result.Metadata.Title)
}

func TestExtract_IsolatesFailingPage(t *testing.T) {
	doc := &fakeDocument{
		pages: []string{"first", "", "third"},
		fail:  map[int]error{2: stderrors.New("invalid content stream")},
	}

	ex, err := Extract([]byte("%PDF"), openerFor(doc))
	require.NoError(t, err)
	result := Assemble("report.pdf", 4, ex)

	require.Len(t, result.PageTexts, 3)
	assert.Equal(t, PageText{Page: 1, Text: "first"}, result.PageTexts[0])
	assert.Equal(t, 2, result.PageTexts[1].Page)
	assert.Empty(t, result.PageTexts[1].Text)
	assert.Equal(t, "invalid content stream", result.PageTexts[1].Error)
	assert.Equal(t, PageText{Page: 3, Text: "third"}, result.PageTexts[2])
	assert.Equal(t, "first\nthird", result.Text)
	assert.Equal(t, 1, result.FailedPages())
	assert.True(t, doc.closed)
}

func TestExtract_OpenFailureIsDecodeError(t *testing.T) {
	open := func([]byte) (pdfutil.Document, error) { return nil, stderrors.New("xref not found") }

	_, err := Extract([]byte("junk"), open)

	require.True(t, errors.IsDecode(err))
	assert.Equal(t, "xref not found", errors.FromError(err).Details)
}

func TestAssemble_MissingMetadataIsEmpty(t *testing.T) {
	result := Assemble("a.pdf", 1, &Extraction{})

	assert.Equal(t, Metadata{}, result.Metadata)
	assert.NotNil(t, result.PageTexts)
	assert.Equal(t, "", result.Text)
}

func TestAssembleLegacy_Defaults(t *testing.T) {
	legacy := AssembleLegacy(&Extraction{})

	assert.Equal(t, 0, legacy.Metadata.NumPages)
	assert.Equal(t, UnknownVersion, legacy.Metadata.Version)
	assert.Empty(t, legacy.Metadata.Info)
	assert.NotNil(t, legacy.Metadata.Info)
	assert.NotNil(t, legacy.Metadata.Metadata)
}

func TestAssembleLegacy_CarriesInfo(t *testing.T) {
	legacy := AssembleLegacy(&Extraction{
		PageCount: 2,
		Pages:     []PageText{{Page: 1, Text: "hello"}, {Page: 2, Text: "world"}},
		Info:      pdfutil.Info{Title: "Greeting", Version: "1.7"},
	})

	assert.Equal(t, "hello\nworld", legacy.Text)
	assert.Equal(t, 2, legacy.Metadata.NumPages)
	assert.Equal(t, "1.7", legacy.Metadata.Version)
	assert.Equal(t, map[string]string{"Title": "Greeting", "PDFFormatVersion": "1.7"}, legacy.Metadata.Info)
}

func TestOpenFile_DetectsMediaType(t *testing.T) {
	dir := t.TempDir()
	pdfData, err := pdfutil.GenerateTextPDF([]string{"x"}, pdfutil.TextPDFOptions{})
	require.NoError(t, err)
	pdfPath := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(pdfPath, pdfData, 0o644))
	txtPath := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(txtPath, []byte("just some notes"), 0o644))

	f, err := OpenFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, f.IsPDF())
	assert.Equal(t, "doc.pdf", f.Name)

	f, err = OpenFile(txtPath)
	require.NoError(t, err)
	assert.False(t, f.IsPDF())
	assert.Equal(t, "text/plain", f.MediaType)

	_, err = OpenFile(filepath.Join(dir, "missing.pdf"))
	assert.True(t, errors.IsFilesystem(err))
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "report.json", DownloadName("report.pdf"))
	assert.Equal(t, "archive.v2.json", DownloadName("/tmp/archive.v2.pdf"))
	assert.Equal(t, "README.json", DownloadName("README"))
	assert.Equal(t, "converted.json", DownloadName(""))
	assert.Equal(t, "converted.json", DownloadName(".pdf"))
	// Only a trailing run of word characters counts as an extension.
	assert.Equal(t, "scan.2024-01.json", DownloadName("scan.2024-01"))
}
