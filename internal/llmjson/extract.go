// Package llmjson pulls a structured payload out of free text returned by
// the generation service. Model replies routinely wrap valid JSON in
// markdown fences or surrounding prose; a single strict parse would reject
// most of them.
package llmjson

import (
	"encoding/json"
	"strings"
)

// Extract attempts, in order: a direct parse of the fence-stripped text,
// then a parse of the greedy first-'{' to last-'}' span. A false second
// return means no payload was found at all, which callers must keep
// distinct from "payload present but wrong shape".
func Extract(raw string) (map[string]any, bool) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, false
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(cleaned), &obj); err == nil {
		return obj, true
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	obj = nil
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &obj); err == nil {
		return obj, true
	}
	return nil, false
}

// StripCodeFences drops a leading ``` line (with optional language tag) and
// a trailing ``` line, returning the trimmed body.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 2 {
		return s
	}
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "```" {
		return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
	}
	return strings.TrimSpace(strings.Join(lines[1:], "\n"))
}
