package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Coercion helpers. The model's output drifts between types across
// invocations, so every field read is lenient: wrong types are coerced
// and unparseable values fall back to the caller's default instead of
// propagating an error.

func asMap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	default:
		// Bare scalar in a list position wraps into a single-element list.
		return []any{t}
	}
}

// stringify forces any value into a string form. Numbers render without
// a trailing ".0", composites render as compact JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// asString returns the stringified value, or def when the value is
// missing or empty.
func asString(v any, def string) string {
	if v == nil {
		return def
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return def
	}
	return s
}

// asInt parses the value as an integer, tolerating float and string
// encodings. Parse failures return def, never an error.
func asInt(v any, def int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return int(f)
		}
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return def
}

// asFloat parses the value as a float, tolerating string encodings.
func asFloat(v any, def float64) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return def
}

// asStringList coerces a value into a list of display strings. Scalars
// wrap into a single-element list; missing values yield an empty list.
func asStringList(v any) []string {
	items := asList(v)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := asString(item, ""); s != "" {
			out = append(out, s)
		}
	}
	return out
}
