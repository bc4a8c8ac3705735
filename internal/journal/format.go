package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// PayloadLines flattens a JSON payload into sorted "path: value" lines, e.g.
// "decision.required[0]: map:sunken_chapel".
func PayloadLines(payload json.RawMessage) []string {
	if len(strings.TrimSpace(string(payload))) == 0 {
		return nil
	}

	var data any
	dec := json.NewDecoder(strings.NewReader(string(payload)))
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return []string{"(invalid JSON)"}
	}

	var lines []string
	flatten(data, "", &lines)
	return lines
}

func flatten(value any, path string, lines *[]string) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			emit(path, "{}", lines)
			return
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := k
			if path != "" {
				child = path + "." + k
			}
			flatten(v[k], child, lines)
		}
	case []any:
		if len(v) == 0 {
			emit(path, "[]", lines)
			return
		}
		for i, item := range v {
			flatten(item, fmt.Sprintf("%s[%d]", path, i), lines)
		}
	case nil:
		emit(path, "null", lines)
	default:
		emit(path, fmt.Sprint(v), lines)
	}
}

func emit(path, value string, lines *[]string) {
	if path == "" {
		*lines = append(*lines, value)
		return
	}
	*lines = append(*lines, path+": "+value)
}

// WriteEntries prints entries one event per block for humans.
func WriteEntries(w io.Writer, entries []*Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Type); err != nil {
			return err
		}
		for _, line := range PayloadLines(e.Payload) {
			if line == "{}" {
				continue
			}
			if _, err := fmt.Fprintf(w, "    %s\n", line); err != nil {
				return err
			}
		}
	}
	return nil
}
