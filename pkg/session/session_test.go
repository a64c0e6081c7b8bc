package session

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/pdf2json/pkg/convert"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/pdfutil"
)

type decoderFunc func(ctx context.Context, f convert.File) (*convert.Result, error)

func (fn decoderFunc) Decode(ctx context.Context, f convert.File) (*convert.Result, error) {
	return fn(ctx, f)
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func pdfFile(name string) convert.File {
	return convert.File{Name: name, MediaType: convert.PDFMediaType, Data: make([]byte, 1536)}
}

func fixedResult(f convert.File) *convert.Result {
	return &convert.Result{
		Filename:  f.Name,
		Size:      f.Size(),
		Pages:     1,
		Text:      "hello",
		PageTexts: []convert.PageText{{Page: 1, Text: "hello"}},
	}
}

func resultOf(s *Session) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.jsonData)
}

func okDecoder() decoderFunc {
	return func(ctx context.Context, f convert.File) (*convert.Result, error) {
		return fixedResult(f), nil
	}
}

func converted(t *testing.T) *Session {
	t.Helper()
	s := New(okDecoder(), nil)
	require.NoError(t, s.SelectFile(pdfFile("report.pdf")))
	_, err := s.Convert(context.Background())
	require.NoError(t, err)
	return s
}

func TestSelectFile_RejectsNonPDF(t *testing.T) {
	s := converted(t)
	before := s.View()

	err := s.SelectFile(convert.File{Name: "notes.txt", MediaType: "text/plain", Data: []byte("hi")})

	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
	assert.Equal(t, errors.MsgInvalidPDF, errors.FromError(err).Message)
	assert.Equal(t, before, s.View())
}

func TestSelectFile_ResetsResult(t *testing.T) {
	s := converted(t)
	require.NoError(t, s.ToggleView())

	require.NoError(t, s.SelectFile(pdfFile("other.pdf")))

	v := s.View()
	assert.Equal(t, FileSelected, v.State)
	assert.Equal(t, Pretty, v.Mode)
	assert.Empty(t, v.Text)
	assert.Empty(t, resultOf(s))
	assert.Equal(t, Actions{Convert: true}, v.Actions)
	assert.Equal(t, "Selected: other.pdf (1.5 KB)", v.FileLabel())
}

func TestConvert_Lifecycle(t *testing.T) {
	s := New(okDecoder(), nil)
	assert.Equal(t, Idle, s.State())
	assert.Equal(t, Actions{}, s.Actions())

	_, err := s.Convert(context.Background())
	assert.ErrorIs(t, err, ErrNoFile)

	require.NoError(t, s.SelectFile(pdfFile("report.pdf")))
	result, err := s.Convert(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", result.Filename)
	assert.Equal(t, Converted, s.State())
	assert.Equal(t, Actions{Convert: true, Toggle: true, Copy: true, Download: true}, s.Actions())
	assert.JSONEq(t, `{"filename":"report.pdf","size":1536,"pages":1,
		"metadata":{"title":"","author":"","subject":"","creator":"","producer":"","creationDate":"","modificationDate":""},
		"text":"hello","pageTexts":[{"page":1,"text":"hello"}]}`, resultOf(s))
}

func TestConvert_FailureKeepsFile(t *testing.T) {
	fail := false
	s := New(decoderFunc(func(ctx context.Context, f convert.File) (*convert.Result, error) {
		if fail {
			return nil, errors.NewTransportError(stderrors.New("connection refused"))
		}
		return fixedResult(f), nil
	}), nil)
	require.NoError(t, s.SelectFile(pdfFile("report.pdf")))
	_, err := s.Convert(context.Background())
	require.NoError(t, err)

	// A later failure clears the previous result.
	fail = true
	_, err = s.Convert(context.Background())

	require.Error(t, err)
	assert.True(t, errors.IsTransport(err))
	assert.Equal(t, errors.MsgConversionFailed, errors.FromError(err).Message)
	assert.Equal(t, err, s.LastError())
	assert.Equal(t, FileSelected, s.State())
	assert.Empty(t, resultOf(s))
	assert.Equal(t, Actions{Convert: true}, s.Actions())
	assert.Equal(t, "report.pdf", s.View().FileName)
}

func TestConvert_SupersededResultDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := New(decoderFunc(func(ctx context.Context, f convert.File) (*convert.Result, error) {
		if f.Name == "slow.pdf" {
			close(started)
			<-release
		}
		return fixedResult(f), nil
	}), nil)
	require.NoError(t, s.SelectFile(pdfFile("slow.pdf")))

	done := make(chan error, 1)
	go func() {
		_, err := s.Convert(context.Background())
		done <- err
	}()
	<-started

	assert.Equal(t, Converting, s.State())
	_, err := s.Convert(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, s.SelectFile(pdfFile("fast.pdf")))
	close(release)

	assert.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, FileSelected, s.State())
	assert.Empty(t, resultOf(s))
}

func TestToggleView_RoundTrip(t *testing.T) {
	s := converted(t)
	original := resultOf(s)

	require.NoError(t, s.ToggleView())
	v := s.View()
	assert.Equal(t, Edit, v.Mode)
	assert.Contains(t, v.Text, "\n  \"filename\": \"report.pdf\"")

	require.NoError(t, s.ToggleView())
	assert.Equal(t, Pretty, s.View().Mode)
	assert.JSONEq(t, original, resultOf(s))
}

func TestToggleView_AppliesEdits(t *testing.T) {
	s := converted(t)
	require.NoError(t, s.ToggleView())
	require.NoError(t, s.SetEditorText(`{"z": 1, "a": [true, null]}`))

	require.NoError(t, s.ToggleView())

	assert.Equal(t, `{"z":1,"a":[true,null]}`, resultOf(s))
	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": [\n    true,\n    null\n  ]\n}", s.View().Text)
}

func TestToggleView_InvalidJSONStaysInEdit(t *testing.T) {
	s := converted(t)
	original := resultOf(s)
	require.NoError(t, s.ToggleView())
	require.NoError(t, s.SetEditorText(`{"broken": `))

	err := s.ToggleView()

	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	v := s.View()
	assert.Equal(t, Edit, v.Mode)
	assert.Equal(t, `{"broken": `, v.Text)
	assert.Equal(t, original, resultOf(s))
}

func TestResultActionsDisabledWithoutResult(t *testing.T) {
	s := New(okDecoder(), nil)
	require.NoError(t, s.SelectFile(pdfFile("a.pdf")))

	assert.ErrorIs(t, s.ToggleView(), ErrNoResult)
	assert.ErrorIs(t, s.Copy(&fakeClipboard{}), ErrNoResult)
	_, err := s.Download(t.TempDir())
	assert.ErrorIs(t, err, ErrNoResult)
	assert.ErrorIs(t, s.SetEditorText("{}"), ErrNotEditing)
}

func TestCopy_UsesEditorTextInEditMode(t *testing.T) {
	s := converted(t)
	cb := &fakeClipboard{}

	require.NoError(t, s.Copy(cb))
	assert.Contains(t, cb.text, "\"pages\": 1")

	require.NoError(t, s.ToggleView())
	require.NoError(t, s.SetEditorText("draft"))
	require.NoError(t, s.Copy(cb))
	assert.Equal(t, "draft", cb.text)

	cb.err = stderrors.New("no clipboard utility")
	assert.Error(t, s.Copy(cb))
}

func TestDownload_WritesBasenameJSON(t *testing.T) {
	s := converted(t)
	dir := t.TempDir()

	path, err := s.Download(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "report.json"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, resultOf(s), string(data))
}

func TestSession_ThreePagePDFWithLocalDecoder(t *testing.T) {
	data, err := pdfutil.GenerateTextPDF([]string{"A", "B", "C"}, pdfutil.TextPDFOptions{})
	require.NoError(t, err)

	s := New(convert.NewLocalDecoder(nil), nil)
	require.NoError(t, s.SelectFile(convert.NewFile("abc.pdf", data)))
	result, err := s.Convert(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, "A\nB\nC", result.Text)
}

func TestExport_KeepsMarkupCharacters(t *testing.T) {
	s := New(decoderFunc(func(ctx context.Context, f convert.File) (*convert.Result, error) {
		r := fixedResult(f)
		r.Text = "R&D <draft> a>b"
		r.PageTexts[0].Text = r.Text
		return r, nil
	}), nil)
	require.NoError(t, s.SelectFile(pdfFile("r&d.pdf")))
	_, err := s.Convert(context.Background())
	require.NoError(t, err)

	text, err := s.Export()
	require.NoError(t, err)
	assert.Contains(t, text, `"text": "R&D <draft> a>b"`)
	assert.Contains(t, text, `"filename": "r&d.pdf"`)
	assert.NotContains(t, text, `\u0026`)

	require.NoError(t, s.ToggleView())
	edit, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, text, edit)
}
