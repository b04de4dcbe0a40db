// Package kv is the local key/value persistence facility behind the draft,
// vocabulary and archive stores. Values are opaque strings; the stores put
// JSON in them.
package kv

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Keys used by the journal's stores.
const (
	KeyDraft      = "pilsa_draft"
	KeyArchive    = "pilsa_archive"
	KeyVocabulary = "pilsa_user_vocabulary"
)

var ErrClosed = errors.New("kv: store closed")

// Store is a synchronous local key/value store.
type Store interface {
	// Get returns the value under key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

// LoadJSON decodes the value under key into v. It reports false, leaving v
// untouched, when the key is absent, unreadable or not valid JSON. The
// error is returned only so callers can log it.
func LoadJSON(s Store, key string, v any) (bool, error) {
	raw, ok, err := s.Get(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON encodes v and writes it under key.
func SaveJSON(s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Set(key, string(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
