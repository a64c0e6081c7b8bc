// Package session holds the client-side conversion state shared by the terminal UI
// and the CLI: the selected file, the last result and the view mode.
package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"

	"github.com/yourorg/pdf2json/pkg/convert"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/jsonview"
	"github.com/yourorg/pdf2json/pkg/logging"
	"github.com/yourorg/pdf2json/pkg/utils"
)

// State is the position of a Session in its lifecycle.
type State int

const (
	Idle State = iota
	FileSelected
	Converting
	Converted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileSelected:
		return "file selected"
	case Converting:
		return "converting"
	case Converted:
		return "converted"
	}
	return "unknown"
}

// Mode is how the result is shown.
type Mode int

const (
	Pretty Mode = iota
	Edit
)

func (m Mode) String() string {
	if m == Edit {
		return "edit"
	}
	return "pretty"
}

var (
	// ErrNoFile is returned by Convert before a file is selected.
	ErrNoFile = errors.NewBadRequestError("Select a PDF file first.")
	// ErrBusy is returned by Convert while a conversion is running.
	ErrBusy = errors.NewBadRequestError("A conversion is already running.")
	// ErrNoResult is returned by result actions before a successful conversion.
	ErrNoResult = errors.NewBadRequestError("Nothing converted yet.")
	// ErrNotEditing is returned by SetEditorText in pretty mode.
	ErrNotEditing = errors.NewBadRequestError("The result is not being edited.")
	// ErrSuperseded is returned by a Convert whose file was replaced while it ran.
	ErrSuperseded = stderrors.New("conversion superseded by a newer file selection")
)

// Session is the conversion state machine. It is safe for concurrent use; Convert
// releases the lock while the decoder runs.
type Session struct {
	mu      sync.Mutex
	decoder convert.Decoder
	logger  logging.Logger

	state      State
	file       *convert.File
	jsonData   json.RawMessage
	mode       Mode
	editorText string
	generation uint64
	lastErr    error
}

// New creates an idle session converting with decoder.
func New(decoder convert.Decoder, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{decoder: decoder, logger: logger}
}

// SelectFile replaces the current file. Files that are not PDFs are rejected
// with a ValidationError and leave the session untouched.
func (s *Session) SelectFile(f convert.File) error {
	if !f.IsPDF() {
		s.logger.Warn("Rejected file",
			logging.NewField("file", f.Name),
			logging.NewField("media_type", f.MediaType),
		)
		return errors.NewValidationError(errors.MsgInvalidPDF)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = &f
	s.generation++
	s.state = FileSelected
	s.lastErr = nil
	s.resetResult()
	return nil
}

// resetResult clears the result and leaves edit mode. Callers hold mu.
func (s *Session) resetResult() {
	s.jsonData = nil
	s.mode = Pretty
	s.editorText = ""
}

// Convert decodes the selected file. On failure the result is cleared, the file
// is kept and the error is also available from LastError. If another file is
// selected while the decoder runs, the outcome is dropped and ErrSuperseded returned.
func (s *Session) Convert(ctx context.Context) (*convert.Result, error) {
	s.mu.Lock()
	if s.file == nil {
		s.mu.Unlock()
		return nil, ErrNoFile
	}
	if s.state == Converting {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	f := *s.file
	gen := s.generation
	s.state = Converting
	s.lastErr = nil
	s.mu.Unlock()

	result, err := s.decoder.Decode(ctx, f)

	var data json.RawMessage
	if err == nil {
		data, err = jsonview.Marshal(result)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug("Discarded superseded conversion", logging.NewField("file", f.Name))
		return nil, ErrSuperseded
	}

	if err != nil {
		s.state = FileSelected
		s.lastErr = err
		s.resetResult()
		s.logger.WarnWithContext(ctx, "Conversion failed",
			logging.NewField("file", f.Name),
			logging.NewField("error", err),
		)
		return nil, err
	}

	s.state = Converted
	s.resetResult()
	s.jsonData = data
	return result, nil
}

// ToggleView switches between pretty and edit mode. Leaving edit mode parses the
// editor text; a ParseError keeps the session in edit mode with its text intact.
func (s *Session) ToggleView() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.jsonData == nil {
		return ErrNoResult
	}

	if s.mode == Pretty {
		text, err := jsonview.Pretty(s.jsonData)
		if err != nil {
			return err
		}
		s.editorText = text
		s.mode = Edit
		return nil
	}

	raw, err := jsonview.Parse(s.editorText)
	if err != nil {
		s.lastErr = err
		return err
	}
	s.jsonData = raw
	s.editorText = ""
	s.mode = Pretty
	return nil
}

// SetEditorText replaces the editor content. Only valid in edit mode.
func (s *Session) SetEditorText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode != Edit {
		return ErrNotEditing
	}
	s.editorText = text
	return nil
}

// Export returns the text copy and download act on: the editor text in edit
// mode, the indented result otherwise.
func (s *Session) Export() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exportLocked()
}

func (s *Session) exportLocked() (string, error) {
	if s.jsonData == nil {
		return "", ErrNoResult
	}
	if s.mode == Edit {
		return s.editorText, nil
	}
	return jsonview.Pretty(s.jsonData)
}

// LastError returns the error of the last failed Convert or ToggleView.
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Actions lists which commands are currently available.
type Actions struct {
	Convert  bool
	Toggle   bool
	Copy     bool
	Download bool
}

// Actions reports the enabled commands.
func (s *Session) Actions() Actions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.actionsLocked()
}

func (s *Session) actionsLocked() Actions {
	hasResult := s.jsonData != nil
	return Actions{
		Convert:  s.file != nil && s.state != Converting,
		Toggle:   hasResult,
		Copy:     hasResult,
		Download: hasResult,
	}
}

// View is a consistent snapshot for rendering.
type View struct {
	State    State
	Mode     Mode
	FileName string
	FileSize string
	// Text is the indented result in pretty mode and the editor text in edit mode.
	Text    string
	Actions Actions
	Err     error
}

// FileLabel renders "Selected: name (size)" or "" when nothing is selected.
func (v View) FileLabel() string {
	if v.FileName == "" {
		return ""
	}
	return "Selected: " + v.FileName + " (" + v.FileSize + ")"
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:   s.state,
		Mode:    s.mode,
		Actions: s.actionsLocked(),
		Err:     s.lastErr,
	}
	if s.file != nil {
		v.FileName = s.file.Name
		v.FileSize = utils.FormatFileSize(s.file.Size())
	}
	if s.jsonData != nil {
		v.Text, _ = s.exportLocked()
	}
	return v
}
