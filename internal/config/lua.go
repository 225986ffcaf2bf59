package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
)

// TableName is the global table a config file assigns.
const TableName = "composer"

var ErrInvalidConfig = errors.New("config: invalid config file")

// LoadLua evaluates the Lua file at path and layers its composer table over
// Defaults. When the file does not exist the defaults are returned along with
// an error wrapping os.ErrNotExist.
func LoadLua(path string) (MapStore, error) {
	store := Defaults()
	if _, err := os.Stat(path); err != nil {
		return store, err
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if err := L.DoFile(path); err != nil {
		return store, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := apply(store, L.GetGlobal(TableName)); err != nil {
		return store, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// LoadLuaString is LoadLua for source held in memory.
func LoadLuaString(src string) (MapStore, error) {
	store := Defaults()
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	if err := L.DoString(src); err != nil {
		return store, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return store, apply(store, L.GetGlobal(TableName))
}

func apply(store MapStore, lv lua.LValue) error {
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		return fmt.Errorf("%w: global %q must be a table, got %s", ErrInvalidConfig, TableName, lv.Type())
	}
	var firstErr error
	tbl.ForEach(func(k, v lua.LValue) {
		if firstErr != nil {
			return
		}
		key, ok := k.(lua.LString)
		if !ok {
			firstErr = fmt.Errorf("%w: non-string key %s", ErrInvalidConfig, k.String())
			return
		}
		var value any
		switch v := v.(type) {
		case lua.LBool:
			value = bool(v)
		case lua.LString:
			value = string(v)
		default:
			value = v.String()
			if _, isBool := Defaults()[string(key)].(bool); isBool {
				firstErr = fmt.Errorf("%w: %q wants a boolean, got %s", ErrInvalidValue, string(key), v.Type())
				return
			}
		}
		firstErr = store.Set(string(key), value)
	})
	return firstErr
}

const defaultFile = `-- Composer settings.
composer = {
  -- Group tracks into playlists by subdirectory of playlists/ instead of one flat tracks/ list.
  ["use-playlists"] = false,

  -- Pausing stops the track; resuming starts it over.
  ["stop-not-pause"] = false,

  -- Enables diagnostic commands such as --dump and --demo.
  ["debug-mode"] = false,

  -- Playlist new listeners start on when playlists are enabled.
  ["default-playlist"] = "default",
}
`

// WriteDefault writes the default config file, creating parent directories.
// An existing file is left alone.
func WriteDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil
		}
		return err
	}
	if _, err := f.WriteString(defaultFile); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
