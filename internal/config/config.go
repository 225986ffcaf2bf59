// Package config is the read-only key/value settings store.
package config

import (
	"errors"
	"fmt"
	"sort"
)

const (
	UsePlaylists    = "use-playlists"
	StopNotPause    = "stop-not-pause"
	DebugMode       = "debug-mode"
	DefaultPlaylist = "default-playlist"
)

var (
	ErrUnknownKey   = errors.New("config: unknown key")
	ErrInvalidValue = errors.New("config: invalid value")
)

// Store is what components read settings through.
type Store interface {
	Bool(key string) bool
	String(key string) string
}

// MapStore is an in-memory Store holding bool and string values.
type MapStore map[string]any

var _ Store = MapStore(nil)

// Defaults returns a fresh store with every known key at its default.
func Defaults() MapStore {
	return MapStore{
		UsePlaylists:    false,
		StopNotPause:    false,
		DebugMode:       false,
		DefaultPlaylist: "default",
	}
}

func (m MapStore) Bool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (m MapStore) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Set changes a known key. The value must have the default's type.
func (m MapStore) Set(key string, value any) error {
	def, ok := Defaults()[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	switch def.(type) {
	case bool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %q wants a boolean, got %T", ErrInvalidValue, key, value)
		}
	case string:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %q wants a string, got %T", ErrInvalidValue, key, value)
		}
		if key == DefaultPlaylist && s == "" {
			return fmt.Errorf("%w: %q must not be empty", ErrInvalidValue, key)
		}
	}
	m[key] = value
	return nil
}

// Keys returns the known keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, 4)
	for k := range Defaults() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
