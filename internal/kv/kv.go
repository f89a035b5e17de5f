// Package kv defines the durable local key-value store the engine persists to,
// plus in-memory, Badger and JSON-file implementations.
//
// The SQLite implementation lives in internal/db. Every component owns a
// disjoint set of keys, so implementations only need per-call atomicity.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("kv: key not found")
	// ErrCorrupt is returned by GetJSON when a stored value cannot be decoded.
	ErrCorrupt = errors.New("kv: corrupt value")
	// ErrInvalidValue is returned by stores that only accept JSON documents.
	ErrInvalidValue = errors.New("kv: value is not valid JSON")
)

// Store is a synchronous, process-local key-value store.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Keys returns all keys starting with prefix, sorted.
	Keys(prefix string) ([]string, error)
}

// GetJSON decodes the value under key into v.
// It returns false with a nil error when the key is absent, and an error
// wrapping ErrCorrupt when the stored bytes do not decode.
func GetJSON(s Store, key string, v any) (bool, error) {
	data, err := s.Get(key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w: %v", key, ErrCorrupt, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(key, data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
