package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	if s.Bool(UsePlaylists) || s.Bool(StopNotPause) || s.Bool(DebugMode) {
		t.Fatalf("booleans should default to false: %v", s)
	}
	if s.String(DefaultPlaylist) != "default" {
		t.Fatalf("default playlist = %q", s.String(DefaultPlaylist))
	}
	if s.Bool("missing") || s.String(UsePlaylists) != "" {
		t.Fatalf("mismatched lookups should return zero values")
	}
	want := []string{DebugMode, DefaultPlaylist, StopNotPause, UsePlaylists}
	if got := Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys = %v", got)
	}
}

func TestSetValidatesKeysAndTypes(t *testing.T) {
	s := Defaults()
	if err := s.Set(StopNotPause, true); err != nil || !s.Bool(StopNotPause) {
		t.Fatalf("set bool: %v", err)
	}
	if err := s.Set("volume", 3); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if err := s.Set(UsePlaylists, "yes"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if err := s.Set(DefaultPlaylist, ""); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for empty playlist, got %v", err)
	}
}

func TestLoadLuaString(t *testing.T) {
	s, err := LoadLuaString(`composer = { ["use-playlists"] = true, ["default-playlist"] = "chill" }`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !s.Bool(UsePlaylists) || s.String(DefaultPlaylist) != "chill" || s.Bool(StopNotPause) {
		t.Fatalf("unexpected store %v", s)
	}

	cases := map[string]error{
		`composer = 5`:                      ErrInvalidConfig,
		`settings = {}`:                     ErrInvalidConfig,
		`composer = { ["debug-mode"] = 1 }`: ErrInvalidValue,
		`composer = { ["shuffle"] = true }`: ErrUnknownKey,
		`composer = { [1] = true }`:         ErrInvalidConfig,
		`composer = {`:                      ErrInvalidConfig,
	}
	for src, want := range cases {
		if _, err := LoadLuaString(src); !errors.Is(err, want) {
			t.Fatalf("%s: expected %v, got %v", src, want, err)
		}
	}
}

func TestWriteDefaultThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "composer.lua")
	if _, err := LoadLua(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist before writing, got %v", err)
	}
	if err := WriteDefault(path); err != nil {
		t.Fatalf("write default: %v", err)
	}
	s, err := LoadLua(path)
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if !reflect.DeepEqual(s, Defaults()) {
		t.Fatalf("default file does not match defaults: %v", s)
	}

	custom := []byte(`composer = { ["stop-not-pause"] = true }`)
	if err := os.WriteFile(path, custom, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteDefault(path); err != nil {
		t.Fatalf("second write default: %v", err)
	}
	s, err = LoadLua(path)
	if err != nil || !s.Bool(StopNotPause) {
		t.Fatalf("existing file should be kept: %v %v", s, err)
	}
}
