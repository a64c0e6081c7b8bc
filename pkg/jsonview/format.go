package jsonview

import (
	"bytes"
	"encoding/json"

	"github.com/yourorg/pdf2json/pkg/errors"
)

// Indent is the indentation of pretty output.
const Indent = "  "

// Pretty indents JSON data with two spaces. Key order is kept as written.
func Pretty(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", Indent); err != nil {
		return "", errors.NewParseError(err)
	}
	return buf.String(), nil
}

// Marshal encodes v compactly. Unlike json.Marshal it leaves &, < and > as
// written, so exported text matches what the document contains.
func Marshal(v interface{}) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, errors.NewParseError(err)
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Parse validates text typed into the editor and returns it compacted.
// Invalid input yields a ParseError carrying the user message.
func Parse(text string) (json.RawMessage, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(text)); err != nil {
		return nil, errors.NewParseError(err)
	}
	return json.RawMessage(buf.Bytes()), nil
}
