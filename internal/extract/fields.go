package extract

import (
	"encoding/json"
	"time"
)

// Accessors for loosely typed model output. Decoded numbers may arrive as
// json.Number or float64 depending on the decoder, so both are handled.

func getString(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getStringPtr(m map[string]any, key string) *string {
	if s, ok := m[key].(string); ok && s != "" {
		return &s
	}
	return nil
}

func getBool(m map[string]any, key string) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

func getFloat(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case int:
		return float64(v)
	}
	return 0
}

// getTime parses an ISO-8601 timestamp, accepting a bare date as well.
// Absent or unparseable values map to nil.
func getTime(m map[string]any, key string) *time.Time {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func getStringList(m map[string]any, key string) []string {
	out := make([]string, 0)
	arr, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, v := range arr {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func getObjectList(m map[string]any, key string) []map[string]any {
	out := make([]map[string]any, 0)
	arr, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, v := range arr {
		if obj, ok := v.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
