package contract

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// Helpers for reading loosely shaped JSON objects. Every accessor tolerates
// missing keys and wrong types by returning the zero value.

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			switch t := v.(type) {
			case string:
				if s := strings.TrimSpace(t); s != "" {
					return s
				}
			case json.Number:
				return t.String()
			}
		}
	}
	return ""
}

func num(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch t := m[k].(type) {
		case float64:
			if !math.IsNaN(t) && !math.IsInf(t, 0) {
				return t, true
			}
		case int:
			return float64(t), true
		case json.Number:
			if f, err := t.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func numPtr(m map[string]any, keys ...string) *float64 {
	if f, ok := num(m, keys...); ok {
		return &f
	}
	return nil
}

func integer(m map[string]any, fallback int, keys ...string) int {
	if f, ok := num(m, keys...); ok {
		return int(math.Round(f))
	}
	return fallback
}

func boolean(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if b, ok := m[k].(bool); ok {
			return b
		}
	}
	return false
}

func object(m map[string]any, key string) map[string]any {
	if o, ok := m[key].(map[string]any); ok {
		return o
	}
	return map[string]any{}
}

func objects(m map[string]any, key string) []map[string]any {
	arr, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if o, ok := v.(map[string]any); ok {
			out = append(out, o)
		}
	}
	return out
}

// stringList reads an array of strings, also accepting objects with a "code"
// or "id" field in place of bare strings.
func stringList(m map[string]any, key string) []string {
	out := []string{}
	arr, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, v := range arr {
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case map[string]any:
			if s := str(t, "code", "id"); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// timestamp parses RFC3339 strings or unix-millisecond numbers.
func timestamp(m map[string]any, fallback time.Time, keys ...string) time.Time {
	for _, k := range keys {
		switch t := m[k].(type) {
		case string:
			if ts, err := time.Parse(time.RFC3339Nano, t); err == nil {
				return ts
			}
		case float64:
			if t > 0 {
				return time.UnixMilli(int64(t)).UTC()
			}
		}
	}
	return fallback
}
