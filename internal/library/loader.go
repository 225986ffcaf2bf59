// Package library finds and decodes the .nbs tracks under a data directory.
//
// Layout:
//
//	<root>/tracks/*.nbs               flat track list
//	<root>/playlists/<name>/*.nbs     one playlist per directory
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/composer-go/internal/config"
	"github.com/cbegin/composer-go/internal/nbs"
)

const (
	TracksDir    = "tracks"
	PlaylistsDir = "playlists"
	Extension    = ".nbs"
)

var ErrUnknownPlaylist = errors.New("library: unknown playlist")

// Track is a decoded song and the file it came from.
type Track struct {
	Path string
	Song *nbs.Song
}

func (t Track) Label() string {
	return t.Song.Label()
}

// Library is the result of one Load. Tracks is filled in flat mode and
// Playlists in playlist mode.
type Library struct {
	Tracks    []Track
	Playlists map[string][]Track
}

// Playlist returns a copy of the named playlist's tracks.
func (l *Library) Playlist(name string) ([]Track, error) {
	tracks, ok := l.Playlists[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlaylist, name)
	}
	return append([]Track(nil), tracks...), nil
}

func (l *Library) PlaylistNames() []string {
	names := make([]string, 0, len(l.Playlists))
	for name := range l.Playlists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Loader struct {
	FS     FileSystem   // nil uses the OS
	Store  config.Store // nil uses config.Defaults()
	Logger *log.Logger  // nil discards
	Root   string

	// Workers bounds concurrent decodes; 0 means GOMAXPROCS.
	Workers int
}

// Load creates any missing folders and decodes every track. Files that fail
// to read or decode are logged and skipped. Nothing is published until the
// whole batch is done.
func (l *Loader) Load(ctx context.Context) (*Library, error) {
	fsys := l.FS
	if fsys == nil {
		fsys = NewOSFileSystem()
	}
	store := l.Store
	if store == nil {
		store = config.Defaults()
	}
	logger := l.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	run := &loadRun{fs: fsys, logger: logger, workers: l.Workers}

	tracksDir := filepath.Join(l.Root, TracksDir)
	if err := run.ensureDir(tracksDir, "tracks folder"); err != nil {
		return nil, err
	}
	lib := &Library{}
	if !store.Bool(config.UsePlaylists) {
		tracks, err := run.loadDir(ctx, tracksDir)
		if err != nil {
			return nil, err
		}
		lib.Tracks = tracks
		return lib, nil
	}

	playlistsDir := filepath.Join(l.Root, PlaylistsDir)
	if err := run.ensureDir(playlistsDir, "playlists folder"); err != nil {
		return nil, err
	}
	if err := run.ensureDir(filepath.Join(playlistsDir, store.String(config.DefaultPlaylist)), "default playlist folder"); err != nil {
		return nil, err
	}
	entries, err := fsys.ReadDir(playlistsDir)
	if err != nil {
		return nil, fmt.Errorf("library: list %s: %w", playlistsDir, err)
	}
	sortEntries(entries)
	lib.Playlists = make(map[string][]Track)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		tracks, err := run.loadDir(ctx, filepath.Join(playlistsDir, e.Name()))
		if err != nil {
			return nil, err
		}
		lib.Playlists[e.Name()] = tracks
		logger.Printf("Loaded %s", e.Name())
	}
	return lib, nil
}

type loadRun struct {
	fs      FileSystem
	logger  *log.Logger
	workers int
}

func (r *loadRun) ensureDir(dir, what string) error {
	if _, err := r.fs.Stat(dir); err == nil {
		return nil
	}
	if err := r.fs.MkdirAll(dir, 0o755); err != nil {
		r.logger.Printf("Could not create %s: %v", what, err)
		return fmt.Errorf("library: create %s: %w", dir, err)
	}
	r.logger.Printf("Created %s.", what)
	return nil
}

func (r *loadRun) loadDir(ctx context.Context, dir string) ([]Track, error) {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("library: list %s: %w", dir, err)
	}
	sortEntries(entries)
	var paths []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), Extension) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}

	total := len(paths)
	r.progress(0)
	songs := make([]*nbs.Song, total)

	var mu sync.Mutex
	loaded := 0
	workers := r.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			song, err := r.read(path)
			if err != nil {
				r.logger.Printf("could not read file (file is likely malformed): %v", err)
				return nil
			}
			songs[i] = song
			mu.Lock()
			loaded++
			r.progress(float64(loaded) / float64(total) * 100)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, total)
	for i, song := range songs {
		if song != nil {
			tracks = append(tracks, Track{Path: paths[i], Song: song})
		}
	}
	r.logger.Printf("Loaded %d/%d tracks.", len(tracks), total)
	return tracks, nil
}

func (r *loadRun) read(path string) (*nbs.Song, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, &nbs.FileError{Path: path, Err: fmt.Errorf("%w: %w", nbs.ErrIOFailure, err)}
	}
	return nbs.DecodeNamed(path, data)
}

func (r *loadRun) progress(p float64) {
	r.logger.Printf("Loading tracks: %d%%", int(p))
}

func sortEntries(entries []DirEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
}
