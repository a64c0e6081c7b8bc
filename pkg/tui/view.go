package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/yourorg/pdf2json/pkg/session"
)

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	v := a.session.View()
	var b strings.Builder

	b.WriteString(styleTitle.Render("PDF to JSON"))
	if label := v.FileLabel(); label != "" {
		b.WriteString("  ")
		b.WriteString(styleSubtitle.Render(label))
	}
	b.WriteString("\n")

	if a.prompting {
		b.WriteString(a.input.View())
	}
	b.WriteString("\n")

	switch {
	case v.State == session.Converting:
		b.WriteString(styleBox.Render(a.spinner.View() + " Converting..."))
	case v.Mode == session.Edit:
		b.WriteString(a.editor.View())
	default:
		b.WriteString(styleBox.Render(a.viewport.View()))
	}
	b.WriteString("\n")

	if a.status != "" {
		if a.statusErr {
			b.WriteString(styleError.Render(a.status))
		} else {
			b.WriteString(styleStatus.Render(a.status))
		}
	}
	b.WriteString("\n")
	b.WriteString(a.helpLine(v.Actions, v.Mode))
	return b.String()
}

func (a *App) helpLine(act session.Actions, mode session.Mode) string {
	toggle := keys.Toggle.Help().Key + " edit"
	if mode == session.Edit {
		toggle = keys.Toggle.Help().Key + " pretty"
	}
	items := []struct {
		text    string
		enabled bool
	}{
		{helpText(keys.Open), true},
		{helpText(keys.Convert), act.Convert},
		{toggle, act.Toggle},
		{helpText(keys.Copy), act.Copy},
		{helpText(keys.Save), act.Download},
		{helpText(keys.Cancel), true},
	}

	parts := make([]string, 0, len(items))
	for _, it := range items {
		if it.enabled {
			parts = append(parts, styleSubtitle.Render(it.text))
		} else {
			parts = append(parts, styleDisabled.Render(it.text))
		}
	}
	return strings.Join(parts, styleSubtitle.Render(" | "))
}

func helpText(b key.Binding) string {
	h := b.Help()
	return h.Key + " " + h.Desc
}
