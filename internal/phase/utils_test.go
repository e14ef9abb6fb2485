package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type outline struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func TestExtractJSON(t *testing.T) {
	want := outline{Title: "First Day", Tags: []string{"school"}}
	bare := `{"title": "First Day", "tags": ["school"]}`

	tests := []struct {
		name string
		raw  string
	}{
		{"bare object", bare},
		{"json fence", "```json\n" + bare + "\n```"},
		{"plain fence", "```\n" + bare + "\n```"},
		{"leading prose", "Here is your outline:\n" + bare},
		{"trailing prose", bare + "\nLet me know if you need changes."},
		{"surrounding whitespace", "\n\n   " + bare + "   \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got outline
			require.NoError(t, ExtractJSON(tt.raw, &got))
			assert.Equal(t, want, got)
		})
	}
}

func TestExtractJSONFallsBackToWholeText(t *testing.T) {
	// the braced span holds two objects, so it fails; the whole text is an array
	var got []outline
	require.NoError(t, ExtractJSON(`[{"title": "a"}, {"title": "b"}]`, &got))
	assert.Len(t, got, 2)
}

func TestExtractJSONFailure(t *testing.T) {
	tests := []string{
		"",
		"no json here",
		"{broken",
		`{"title": "unterminated}`,
		"} backwards {",
	}

	for _, raw := range tests {
		var got outline
		err := ExtractJSON(raw, &got)
		assert.ErrorIs(t, err, ErrNoJSONPayload, "input %q", raw)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no fence", "  <html></html>  ", "<html></html>"},
		{"html fence", "```html\n<html></html>\n```", "<html></html>"},
		{"javascript fence", "```javascript\nfunction initQuiz(id) {}\n```", "function initQuiz(id) {}"},
		{"js fence", "```js\nconst x = 1;\n```", "const x = 1;"},
		{"untagged fence", "```\nconst x = 1;\n```", "const x = 1;"},
		{"opening fence only", "```html\n<p>hi</p>", "<p>hi</p>"},
		{"closing fence only", "<p>hi</p>\n```", "<p>hi</p>"},
		{"single line fence", "```<p>hi</p>```", "<p>hi</p>"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.raw))
		})
	}
}
