package jsonview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/pdf2json/pkg/errors"
)

func TestHighlightHTML_TagsKinds(t *testing.T) {
	got := HighlightHTML(`{"a":1,"b":true}`)

	assert.Equal(t,
		`{<span class="key">"a"</span>:<span class="number">1</span>,<span class="key">"b"</span>:<span class="boolean">true</span>}`,
		got)
}

func TestHighlightHTML_StringsNullAndNumbers(t *testing.T) {
	got := HighlightHTML(`["x", null, -1.5e3, false]`)

	assert.Contains(t, got, `<span class="string">"x"</span>`)
	assert.Contains(t, got, `<span class="null">null</span>`)
	assert.Contains(t, got, `<span class="number">-1.5e3</span>`)
	assert.Contains(t, got, `<span class="boolean">false</span>`)
}

func TestHighlightHTML_EscapesMarkup(t *testing.T) {
	got := HighlightHTML(`{"text":"<script>alert('x') & more</script>"}`)

	assert.NotContains(t, got, "<script>")
	assert.Contains(t, got, `<span class="string">"&lt;script&gt;alert('x') &amp; more&lt;/script&gt;"</span>`)
}

func TestHighlightHTML_KeyWithSpaceBeforeColon(t *testing.T) {
	got := HighlightHTML(`{"a" : "b"}`)

	assert.Equal(t, `{<span class="key">"a"</span> : <span class="string">"b"</span>}`, got)
}

func TestHighlightHTML_EscapedQuotesStayInString(t *testing.T) {
	got := HighlightHTML(`{"q":"say \"hi\": now"}`)

	assert.Contains(t, got, `<span class="string">"say \"hi\": now"</span>`)
}

func TestTokenize_Lossless(t *testing.T) {
	input := "{\n  \"pages\": 3,\n  \"text\": \"A\\nB\",\n  \"ok\": null\n}"

	var b strings.Builder
	for _, tok := range Tokenize(input) {
		b.WriteString(tok.Text)
	}
	assert.Equal(t, input, b.String())
}

func TestHighlightANSI_KeepsText(t *testing.T) {
	input := `{"a":1,"b":[true,null,"s"]}`
	got := HighlightANSI(input, DefaultTheme())

	last := 0
	for _, part := range []string{`"a"`, "1", `"b"`, "true", "null", `"s"`} {
		idx := strings.Index(got[last:], part)
		require.GreaterOrEqual(t, idx, 0, part)
		last += idx + len(part)
	}
}

func TestPretty_TwoSpaceIndentKeepsKeyOrder(t *testing.T) {
	got, err := Pretty([]byte(`{"z":1,"a":{"b":[1,2]}}`))
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"z\": 1,\n  \"a\": {\n    \"b\": [\n      1,\n      2\n    ]\n  }\n}", got)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse(`{"a": }`)

	require.Error(t, err)
	assert.True(t, errors.IsParse(err))
	assert.Equal(t, errors.MsgInvalidJSON, errors.FromError(err).Message)
}

func TestParse_RoundTrip(t *testing.T) {
	raw, err := Parse("{ \"b\": 2,\n \"a\": [1, \"x\"] }")
	require.NoError(t, err)
	assert.Equal(t, `{"b":2,"a":[1,"x"]}`, string(raw))

	pretty, err := Pretty(raw)
	require.NoError(t, err)
	again, err := Parse(pretty)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestMarshal_DoesNotEscapeHTML(t *testing.T) {
	raw, err := Marshal(map[string]string{"text": "R&D <draft>"})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"R&D <draft>"}`, string(raw))

	pretty, err := Pretty(raw)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"text\": \"R&D <draft>\"\n}", pretty)
}
