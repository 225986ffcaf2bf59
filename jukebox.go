package composer

import (
	"sort"
	"sync"

	"github.com/cbegin/composer-go/internal/config"
	"github.com/cbegin/composer-go/internal/library"
	"github.com/cbegin/composer-go/internal/pitch"
	"github.com/cbegin/composer-go/internal/sequencer"
)

// SinkFactory returns the sink a listener's player emits into.
type SinkFactory func(listener string) sequencer.Sink

// Jukebox hands out one MusicPlayer per listener, creating it on first use.
type Jukebox struct {
	mu      sync.Mutex
	lib     *library.Library
	store   config.Store
	sinks   SinkFactory
	opts    []PlayerOption
	players map[string]*MusicPlayer
}

func NewJukebox(lib *library.Library, store config.Store, sinks SinkFactory, opts ...PlayerOption) *Jukebox {
	if store == nil {
		store = config.Defaults()
	}
	if sinks == nil {
		sinks = func(string) sequencer.Sink {
			return sequencer.SinkFunc(func(pitch.Instrument, float64, float64, sequencer.Position) {})
		}
	}
	return &Jukebox{
		lib:     lib,
		store:   store,
		sinks:   sinks,
		opts:    append([]PlayerOption{WithStore(store)}, opts...),
		players: make(map[string]*MusicPlayer),
	}
}

// Player returns the listener's player. New players start on the default
// playlist when playlists are enabled and on the flat track list otherwise.
func (j *Jukebox) Player(listener string) (*MusicPlayer, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if mp, ok := j.players[listener]; ok {
		return mp, nil
	}
	tracks := j.lib.Tracks
	if j.store.Bool(config.UsePlaylists) {
		var err error
		tracks, err = j.lib.Playlist(j.store.String(config.DefaultPlaylist))
		if err != nil {
			return nil, err
		}
	}
	mp := NewMusicPlayer(tracks, j.sinks(listener), j.opts...)
	j.players[listener] = mp
	return mp, nil
}

// SelectPlaylist switches the listener's player to the named playlist.
func (j *Jukebox) SelectPlaylist(listener, name string) error {
	tracks, err := j.lib.Playlist(name)
	if err != nil {
		return err
	}
	mp, err := j.Player(listener)
	if err != nil {
		return err
	}
	mp.SetPlaylist(tracks)
	return nil
}

// Remove stops and forgets the listener's player.
func (j *Jukebox) Remove(listener string) {
	j.mu.Lock()
	mp := j.players[listener]
	delete(j.players, listener)
	j.mu.Unlock()
	if mp != nil {
		mp.Stop()
	}
}

func (j *Jukebox) Listeners() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, 0, len(j.players))
	for id := range j.players {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
