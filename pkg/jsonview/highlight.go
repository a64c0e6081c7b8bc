// Package jsonview renders conversion results as indented, syntax highlighted JSON
// for the browser (HTML spans) and the terminal (ANSI styles).
package jsonview

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Kind is the highlight category of a token.
type Kind string

const (
	KindPlain   Kind = ""
	KindKey     Kind = "key"
	KindString  Kind = "string"
	KindNumber  Kind = "number"
	KindBoolean Kind = "boolean"
	KindNull    Kind = "null"
)

// Token is a run of input text and its category. Plain tokens hold the
// whitespace and punctuation between values.
type Token struct {
	Kind Kind
	Text string
}

// tokenPattern matches quoted strings (with an optional trailing colon),
// the literals and numbers.
var tokenPattern = regexp.MustCompile(`"(?:\\u[a-zA-Z0-9]{4}|\\[^u]|[^\\"])*"(?:\s*:)?|\b(?:true|false|null)\b|-?\d+(?:\.\d*)?(?:[eE][+\-]?\d+)?`)

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Tokenize splits s into tokens. Concatenating the token texts yields s.
func Tokenize(s string) []Token {
	var tokens []Token
	last := 0
	for _, loc := range tokenPattern.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			tokens = append(tokens, Token{Kind: KindPlain, Text: s[last:loc[0]]})
		}
		tokens = append(tokens, classify(s[loc[0]:loc[1]])...)
		last = loc[1]
	}
	if last < len(s) {
		tokens = append(tokens, Token{Kind: KindPlain, Text: s[last:]})
	}
	return tokens
}

// classify splits a key match into the quoted key and its colon.
func classify(match string) []Token {
	switch {
	case strings.HasPrefix(match, `"`):
		if strings.HasSuffix(match, ":") {
			end := strings.LastIndex(match, `"`) + 1
			return []Token{{Kind: KindKey, Text: match[:end]}, {Kind: KindPlain, Text: match[end:]}}
		}
		return []Token{{Kind: KindString, Text: match}}
	case match == "true" || match == "false":
		return []Token{{Kind: KindBoolean, Text: match}}
	case match == "null":
		return []Token{{Kind: KindNull, Text: match}}
	default:
		return []Token{{Kind: KindNumber, Text: match}}
	}
}

// HighlightHTML escapes &, < and > in s and wraps every token in
// <span class="KIND">. The result is safe to assign to innerHTML.
func HighlightHTML(s string) string {
	var b strings.Builder
	for _, tok := range Tokenize(htmlEscaper.Replace(s)) {
		if tok.Kind == KindPlain {
			b.WriteString(tok.Text)
			continue
		}
		b.WriteString(`<span class="`)
		b.WriteString(string(tok.Kind))
		b.WriteString(`">`)
		b.WriteString(tok.Text)
		b.WriteString(`</span>`)
	}
	return b.String()
}

// Theme holds the terminal style of each token kind.
type Theme struct {
	Key     lipgloss.Style
	String  lipgloss.Style
	Number  lipgloss.Style
	Boolean lipgloss.Style
	Null    lipgloss.Style
}

// DefaultTheme mirrors the colours of the browser stylesheet.
func DefaultTheme() Theme {
	return Theme{
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("#9CDCFE")),
		String:  lipgloss.NewStyle().Foreground(lipgloss.Color("#CE9178")),
		Number:  lipgloss.NewStyle().Foreground(lipgloss.Color("#B5CEA8")),
		Boolean: lipgloss.NewStyle().Foreground(lipgloss.Color("#569CD6")),
		Null:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C586C0")).Italic(true),
	}
}

func (t Theme) style(k Kind) (lipgloss.Style, bool) {
	switch k {
	case KindKey:
		return t.Key, true
	case KindString:
		return t.String, true
	case KindNumber:
		return t.Number, true
	case KindBoolean:
		return t.Boolean, true
	case KindNull:
		return t.Null, true
	}
	return lipgloss.Style{}, false
}

// HighlightANSI styles every token of s with theme.
func HighlightANSI(s string, theme Theme) string {
	var b strings.Builder
	for _, tok := range Tokenize(s) {
		if style, ok := theme.style(tok.Kind); ok {
			b.WriteString(style.Render(tok.Text))
			continue
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}
