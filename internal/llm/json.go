package llm

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// CleanJSON returns the outermost JSON object in a model reply, dropping
// code fences and surrounding prose. Replies without an object come back
// trimmed but otherwise unchanged.
func CleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if rest, ok := strings.CutPrefix(text, "```"); ok {
		rest = strings.TrimPrefix(rest, "json")
		if i := strings.LastIndex(rest, "```"); i >= 0 {
			rest = rest[:i]
		}
		text = rest
	}
	open, end := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if open >= 0 && end > open {
		text = text[open : end+1]
	}
	return strings.TrimSpace(text)
}

// DecodeJSON unmarshals the JSON object in a model reply into v.
func DecodeJSON(text string, v any) error {
	if err := json.Unmarshal([]byte(CleanJSON(text)), v); err != nil {
		return eris.Wrap(err, "llm: decode json response")
	}
	return nil
}
