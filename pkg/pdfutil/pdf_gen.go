package pdfutil

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// TextPDFOptions controls GenerateTextPDF.
type TextPDFOptions struct {
	Title    string
	Author   string
	Subject  string
	Keywords string
	Creator  string
	FontSize float64
	Created  time.Time
}

// PDFGenerator builds simple text documents, one string per page.
type PDFGenerator struct {
	pdf      *gofpdf.Fpdf
	fontSize float64
}

// NewPDFGenerator creates a generator with the document information from opts.
func NewPDFGenerator(opts TextPDFOptions) *PDFGenerator {
	pdf := gofpdf.New("P", "mm", "A4", "")
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	pdf.SetFont("Helvetica", "", opts.FontSize)
	pdf.SetTitle(opts.Title, true)
	pdf.SetAuthor(opts.Author, true)
	pdf.SetSubject(opts.Subject, true)
	pdf.SetKeywords(opts.Keywords, true)
	if opts.Creator != "" {
		pdf.SetCreator(opts.Creator, true)
	}
	if !opts.Created.IsZero() {
		pdf.SetCreationDate(opts.Created)
	}
	return &PDFGenerator{pdf: pdf, fontSize: opts.FontSize}
}

// AddTextPage appends a page holding text. Lines wrap at the page margin.
func (g *PDFGenerator) AddTextPage(text string) {
	g.pdf.AddPage()
	g.pdf.SetXY(10, 20)
	g.pdf.MultiCell(0, g.fontSize*0.5, text, "", "L", false)
}

// WriteToWriter writes the PDF to an io.Writer.
func (g *PDFGenerator) WriteToWriter(w io.Writer) error {
	return g.pdf.Output(w)
}

// GetBytes returns the PDF as a byte slice.
func (g *PDFGenerator) GetBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.WriteToWriter(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveToFile saves the PDF to a file.
func (g *PDFGenerator) SaveToFile(filename string) error {
	return g.pdf.OutputFileAndClose(filename)
}

// GenerateTextPDF renders one page per entry of pages.
func GenerateTextPDF(pages []string, opts TextPDFOptions) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("at least one page is required")
	}
	g := NewPDFGenerator(opts)
	for _, text := range pages {
		g.AddTextPage(text)
	}
	return g.GetBytes()
}
