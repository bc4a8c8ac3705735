// Package sanitize pulls structured JSON out of free-form model output.
// Every function here is total: malformed input yields an empty value.
package sanitize

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject parses text as a JSON object. When text is not a bare
// object it tries the span from the first '{' to the last '}'. Anything that
// still fails to parse yields an empty, non-nil map.
func ExtractJSONObject(text string) map[string]any {
	obj, _ := ParseObject(text)
	return obj
}

// ParseObject is ExtractJSONObject that also reports whether an object was found.
func ParseObject(text string) (map[string]any, bool) {
	var obj map[string]any
	if decode(text, &obj) && obj != nil {
		return obj, true
	}

	if span := outermost(text, '{', '}'); span != "" {
		obj = nil
		if decode(span, &obj) && obj != nil {
			return obj, true
		}
	}
	return map[string]any{}, false
}

// ExtractJSONArray is ExtractJSONObject for arrays, scanning for '[' .. ']'.
func ExtractJSONArray(text string) []any {
	var arr []any
	if decode(text, &arr) && arr != nil {
		return arr
	}

	if span := outermost(text, '[', ']'); span != "" {
		arr = nil
		if decode(span, &arr) && arr != nil {
			return arr
		}
	}
	return []any{}
}

func decode(text string, v any) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	return json.Unmarshal([]byte(text), v) == nil
}

func outermost(text string, opener, closer byte) string {
	start := strings.IndexByte(text, opener)
	end := strings.LastIndexByte(text, closer)
	if start < 0 || end <= start {
		return ""
	}
	return text[start : end+1]
}

// StringSlice coerces a decoded JSON value to a list of strings.
// Non-arrays yield an empty slice; non-string elements are dropped.
func StringSlice(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// String returns v when it is a JSON string, otherwise "".
func String(v any) string {
	s, _ := v.(string)
	return s
}
