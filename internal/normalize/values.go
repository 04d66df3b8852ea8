// internal/normalize/values.go
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Field access helpers. Every accessor is total: a missing key, a nil value
// or a wrong type reads as "absent", never a fault.

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	m, ok := v.(map[string]interface{})
	return m, ok && m != nil
}

func asArray(v interface{}) ([]interface{}, bool) {
	a, ok := v.([]interface{})
	return a, ok
}

// stringField returns the first non-empty string among the candidate keys.
func stringField(m map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		if s, ok := asString(m[key]); ok {
			return s, true
		}
	}
	return "", false
}

// numberField returns the first numeric value among the candidate keys.
func numberField(m map[string]interface{}, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, exists := m[key]; exists {
			if f, ok := asNumber(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// mapField returns the first map value among the candidate keys.
func mapField(m map[string]interface{}, keys ...string) (map[string]interface{}, bool) {
	for _, key := range keys {
		if sub, ok := asMap(m[key]); ok {
			return sub, true
		}
	}
	return nil, false
}

// arrayField returns the first non-empty array among the candidate keys.
func arrayField(m map[string]interface{}, keys ...string) ([]interface{}, bool) {
	for _, key := range keys {
		if arr, ok := asArray(m[key]); ok && len(arr) > 0 {
			return arr, true
		}
	}
	return nil, false
}

// timestampFormats covers the shapes seen across backend versions.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses defensively; a zero time means "unknown" and is
// rendered as a dash downstream.
func parseTimestamp(raw string) time.Time {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}
