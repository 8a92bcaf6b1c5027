// Package store provides the per-student persisted key/value store that
// every engagement component builds on. All operations are best-effort:
// failures are logged and reported to callers as "no value".
package store

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Store is a best-effort string key/value store. Last write wins.
type Store interface {
	// Get returns the stored value and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string)

	// Remove deletes key. Removing a missing key is a no-op.
	Remove(ctx context.Context, key string)

	// Take reads and deletes key in one step; a concurrent Take on the same
	// key never observes the same value.
	Take(ctx context.Context, key string) (string, bool)
}

// GetJSON decodes the value under key into T. Missing or malformed values
// yield the zero T and false; malformed values are logged.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool) {
	var zero T
	raw, ok := s.Get(ctx, key)
	if !ok {
		return zero, false
	}
	return decodeJSON[T](ctx, key, raw)
}

// TakeJSON is GetJSON with read-and-delete semantics.
func TakeJSON[T any](ctx context.Context, s Store, key string) (T, bool) {
	var zero T
	raw, ok := s.Take(ctx, key)
	if !ok {
		return zero, false
	}
	return decodeJSON[T](ctx, key, raw)
}

// SetJSON encodes v and stores it under key. Encoding failures are logged.
func SetJSON(ctx context.Context, s Store, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.WarnContext(ctx, "store_encode_failed", "key", key, "error", err)
		return
	}
	s.Set(ctx, key, string(data))
}

func decodeJSON[T any](ctx context.Context, key, raw string) (T, bool) {
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.WarnContext(ctx, "store_decode_failed", "key", key, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}
