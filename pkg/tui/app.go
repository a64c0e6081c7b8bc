// Package tui is the interactive terminal client: pick a PDF, convert it and
// browse, edit, copy or save the JSON.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yourorg/pdf2json/pkg/convert"
	"github.com/yourorg/pdf2json/pkg/errors"
	"github.com/yourorg/pdf2json/pkg/jsonview"
	"github.com/yourorg/pdf2json/pkg/session"
)

// Options configures an App.
type Options struct {
	Clipboard session.Clipboard
	// OutputDir is where ctrl+s writes the result.
	OutputDir string
	// Path is selected on start when set.
	Path string
}

type convertDoneMsg struct {
	err error
}

// App is the bubbletea model.
type App struct {
	ctx       context.Context
	session   *session.Session
	clipboard session.Clipboard
	outputDir string

	width  int
	height int

	prompting bool
	input     textinput.Model
	viewport  viewport.Model
	editor    textarea.Model
	spinner   spinner.Model
	theme     jsonview.Theme

	status    string
	statusErr bool
	quitting  bool
}

// NewApp creates the model around sess.
func NewApp(ctx context.Context, sess *session.Session, opts Options) *App {
	input := textinput.New()
	input.Placeholder = "path/to/file.pdf (or drop a file here)"
	input.CharLimit = 4096
	input.Width = 60
	input.Prompt = "PDF: "

	editor := textarea.New()
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.MaxHeight = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	clip := opts.Clipboard
	if clip == nil {
		clip = session.SystemClipboard{}
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "."
	}

	a := &App{
		ctx:       ctx,
		session:   sess,
		clipboard: clip,
		outputDir: outDir,
		input:     input,
		viewport:  viewport.New(80, 20),
		editor:    editor,
		spinner:   sp,
		theme:     jsonview.DefaultTheme(),
	}

	if opts.Path != "" {
		a.selectPath(opts.Path)
	}
	if a.session.State() == session.Idle {
		a.openPrompt()
	}
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.WindowSize(), textinput.Blink)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, handled := a.handleKey(msg)
		if handled {
			return a, cmd
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()

	case convertDoneMsg:
		a.afterConvert(msg.err)
		return a, nil

	case spinner.TickMsg:
		if a.session.State() != session.Converting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	switch {
	case a.prompting:
		a.input, cmd = a.input.Update(msg)
	case a.session.View().Mode == session.Edit:
		a.editor, cmd = a.editor.Update(msg)
	default:
		a.viewport, cmd = a.viewport.Update(msg)
	}
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// handleKey runs global bindings. handled is false when the key should reach
// the focused component.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		a.quitting = true
		return tea.Quit, true

	case key.Matches(msg, keys.Cancel):
		if a.prompting && a.session.State() != session.Idle {
			a.closePrompt()
			return nil, true
		}
		a.quitting = true
		return tea.Quit, true

	case key.Matches(msg, keys.Open):
		a.openPrompt()
		return textinput.Blink, true

	case key.Matches(msg, keys.Enter) && a.prompting:
		a.selectPath(a.input.Value())
		return nil, true

	case key.Matches(msg, keys.Convert):
		return a.startConvert(), true

	case key.Matches(msg, keys.Toggle):
		a.toggle()
		return nil, true

	case key.Matches(msg, keys.Copy):
		a.copy()
		return nil, true

	case key.Matches(msg, keys.Save):
		a.save()
		return nil, true
	}
	return nil, false
}

func (a *App) openPrompt() {
	a.prompting = true
	a.input.Reset()
	a.input.Focus()
	a.editor.Blur()
}

func (a *App) closePrompt() {
	a.prompting = false
	a.input.Blur()
	if a.session.View().Mode == session.Edit {
		a.editor.Focus()
	}
}

func (a *App) selectPath(raw string) {
	path := normalizePath(raw)
	if path == "" {
		return
	}
	f, err := convert.OpenFile(path)
	if err == nil {
		err = a.session.SelectFile(f)
	}
	if err != nil {
		a.setError(err)
		return
	}
	a.closePrompt()
	a.editor.Reset()
	a.editor.Blur()
	a.refresh()
	a.setStatus(a.session.View().FileLabel())
}

func (a *App) startConvert() tea.Cmd {
	if !a.session.Actions().Convert {
		return nil
	}
	a.setStatus("Converting...")
	return tea.Batch(a.spinner.Tick, a.convertCmd())
}

func (a *App) convertCmd() tea.Cmd {
	sess, ctx := a.session, a.ctx
	return func() tea.Msg {
		_, err := sess.Convert(ctx)
		return convertDoneMsg{err: err}
	}
}

func (a *App) afterConvert(err error) {
	switch {
	case err == session.ErrSuperseded:
		return
	case err != nil:
		a.setError(err)
	default:
		v := a.session.View()
		a.setStatus(fmt.Sprintf("Converted %s", v.FileName))
	}
	a.refresh()
}

// syncEditor pushes the textarea content into the session while editing.
func (a *App) syncEditor() {
	if a.session.View().Mode == session.Edit {
		_ = a.session.SetEditorText(a.editor.Value())
	}
}

func (a *App) toggle() {
	a.syncEditor()
	if err := a.session.ToggleView(); err != nil {
		a.setError(err)
		return
	}
	v := a.session.View()
	if v.Mode == session.Edit {
		a.editor.SetValue(v.Text)
		a.editor.Focus()
		a.setStatus("Editing JSON, ctrl+e to apply")
	} else {
		a.editor.Blur()
		a.setStatus("JSON updated")
	}
	a.refresh()
}

func (a *App) copy() {
	a.syncEditor()
	if err := a.session.Copy(a.clipboard); err != nil {
		a.setError(err)
		return
	}
	a.setStatus("Copied!")
}

func (a *App) save() {
	a.syncEditor()
	path, err := a.session.Download(a.outputDir)
	if err != nil {
		a.setError(err)
		return
	}
	a.setStatus("Saved " + path)
}

func (a *App) refresh() {
	v := a.session.View()
	if v.Mode == session.Pretty {
		if v.Text == "" {
			a.viewport.SetContent(styleSubtitle.Render("Upload a PDF file to see the JSON output here..."))
		} else {
			a.viewport.SetContent(jsonview.HighlightANSI(v.Text, a.theme))
		}
		a.viewport.GotoTop()
	}
}

func (a *App) resize() {
	w := max(a.width-4, 20)
	h := max(a.height-9, 5)
	a.viewport.Width = w
	a.viewport.Height = h
	a.editor.SetWidth(w)
	a.editor.SetHeight(h)
	a.input.Width = max(w-len(a.input.Prompt), 10)
	a.refresh()
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

// setError shows the user-facing message of err.
func (a *App) setError(err error) {
	appErr := errors.FromError(err)
	a.status = appErr.Message
	if errors.CodeOf(err) == "" {
		a.status = err.Error()
	}
	a.statusErr = true
}
