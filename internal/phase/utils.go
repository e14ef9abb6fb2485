package phase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONPayload means neither the braced span nor the whole response
// decoded as JSON.
var ErrNoJSONPayload = errors.New("no JSON payload in response")

// ExtractJSON decodes the object spanning the first '{' to the last '}' of
// raw into v. If that span is missing or does not decode, the trimmed
// response is decoded as a whole. Prose or markdown fences around the object
// are ignored.
func ExtractJSON(raw string, v any) error {
	if candidate, ok := bracedSpan(raw); ok {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), v); err != nil {
		return fmt.Errorf("%w: %v", ErrNoJSONPayload, err)
	}
	return nil
}

// StripCodeFence removes a markdown fence around generated HTML or
// JavaScript. An opening fence line (with any language tag) and a closing
// fence are dropped; anything else is returned trimmed.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			text = text[nl+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text)
}

func bracedSpan(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}
