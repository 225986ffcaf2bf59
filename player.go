// Package composer plays Note Block Studio tracks: a MusicPlayer walks a
// track list for one listener and a Jukebox keeps one player per listener.
package composer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/cbegin/composer-go/internal/config"
	"github.com/cbegin/composer-go/internal/library"
	"github.com/cbegin/composer-go/internal/score"
	"github.com/cbegin/composer-go/internal/sequencer"
)

var (
	ErrNotPlaying     = errors.New("composer: no music playing")
	ErrAlreadyPlaying = errors.New("composer: music already playing")
	ErrTrackIndex     = errors.New("composer: track index out of range")
)

// PlaybackEvent is delivered through Watch().
type PlaybackEvent struct {
	Kind  EventKind
	Index int
	Track library.Track
}

type EventKind int

// EventTrackStopped means the listener paused or stopped the track;
// EventTrackFinished means it reached the end on its own.
const (
	EventTrackStarted EventKind = iota
	EventTrackStopped
	EventTrackFinished
	EventPlaylistEnded
)

func (k EventKind) String() string {
	switch k {
	case EventTrackStarted:
		return "started"
	case EventTrackStopped:
		return "stopped"
	case EventTrackFinished:
		return "finished"
	case EventPlaylistEnded:
		return "playlist ended"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

type PlayerOption func(*playerConfig)

type playerConfig struct {
	store    config.Store
	logger   *log.Logger
	clock    sequencer.Clock
	position sequencer.Position
	rand     *rand.Rand
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		store:  config.Defaults(),
		logger: log.New(io.Discard, "", 0),
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func WithStore(store config.Store) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.store = store
	}
}

func WithLogger(logger *log.Logger) PlayerOption {
	return func(cfg *playerConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithClock replaces the real-time ticker used by each track's scheduler.
func WithClock(clock sequencer.Clock) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.clock = clock
	}
}

// WithPosition sets where the listener hears notes from.
func WithPosition(pos sequencer.Position) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.position = pos
	}
}

// WithRand seeds Shuffle.
func WithRand(r *rand.Rand) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.rand = r
	}
}

// MusicPlayer plays one track at a time from its list into a sink.
type MusicPlayer struct {
	mu           sync.Mutex
	cfg          playerConfig
	sink         sequencer.Sink
	tracks       []library.Track
	current      int
	sched        *sequencer.Scheduler
	playing      bool
	loopTrack    bool
	loopPlaylist bool
	silentRun    int

	eventCh   chan PlaybackEvent
	eventChMu sync.Mutex
}

func NewMusicPlayer(tracks []library.Track, sink sequencer.Sink, opts ...PlayerOption) *MusicPlayer {
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MusicPlayer{
		cfg:    cfg,
		sink:   sink,
		tracks: append([]library.Track(nil), tracks...),
	}
}

// Watch returns a channel that receives playback events. The channel is
// buffered (cap 8) and events are dropped when it is full. Only the most
// recent Watch() channel receives events.
func (p *MusicPlayer) Watch() <-chan PlaybackEvent {
	ch := make(chan PlaybackEvent, 8)
	p.eventChMu.Lock()
	p.eventCh = ch
	p.eventChMu.Unlock()
	return ch
}

func (p *MusicPlayer) sendEvent(ev PlaybackEvent) {
	p.eventChMu.Lock()
	ch := p.eventCh
	p.eventChMu.Unlock()
	if ch != nil {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Play starts track i. Calling it for the track that is playing pauses it,
// and for a paused track resumes it.
func (p *MusicPlayer) Play(i int) error {
	p.mu.Lock()
	if err := p.checkIndex(i); err != nil {
		p.mu.Unlock()
		return err
	}
	if i == p.current && p.sched != nil {
		sched := p.sched
		if p.playing {
			p.playing = false
			ev := p.eventLocked(EventTrackStopped)
			p.mu.Unlock()
			if err := sched.Pause(); err != nil {
				return err
			}
			p.cfg.logger.Printf("Stopped: %s", ev.Track.Label())
			p.sendEvent(ev)
			return nil
		}
		if sched.State() == sequencer.Paused {
			p.playing = true
			ev := p.eventLocked(EventTrackStarted)
			p.mu.Unlock()
			if err := sched.Play(); err != nil {
				return err
			}
			p.cfg.logger.Printf("Now playing: %s", ev.Track.Label())
			p.sendEvent(ev)
			return nil
		}
	}
	p.mu.Unlock()
	return p.startUser(i)
}

// Resume plays the current track, picking up where a pause left off.
func (p *MusicPlayer) Resume() error {
	p.mu.Lock()
	playing, current := p.playing, p.current
	p.mu.Unlock()
	if playing {
		return ErrAlreadyPlaying
	}
	return p.Play(current)
}

// Pause halts the current track. With stop-not-pause set the track is
// dropped and the next Resume starts it from the beginning.
func (p *MusicPlayer) Pause() error {
	p.mu.Lock()
	if !p.playing || p.sched == nil {
		p.mu.Unlock()
		return ErrNotPlaying
	}
	p.playing = false
	sched := p.sched
	stop := p.cfg.store.Bool(config.StopNotPause)
	if stop {
		p.sched = nil
	}
	ev := p.eventLocked(EventTrackStopped)
	p.mu.Unlock()

	var err error
	if stop {
		err = sched.Finish()
	} else {
		err = sched.Pause()
	}
	p.sendEvent(ev)
	return err
}

func (p *MusicPlayer) Next() error {
	return p.Skip(1)
}

func (p *MusicPlayer) Previous() error {
	return p.Skip(-1)
}

// Skip moves n tracks from the current one and starts playing. Past either
// end it wraps to the first track when the playlist loops, and otherwise
// stops and rewinds to the first track.
func (p *MusicPlayer) Skip(n int) error {
	p.mu.Lock()
	if len(p.tracks) == 0 {
		p.mu.Unlock()
		return ErrNoTracks
	}
	next := p.current + n
	if next < 0 || next >= len(p.tracks) {
		if !p.loopPlaylist {
			old := p.detachLocked()
			p.current = 0
			p.mu.Unlock()
			finishQuietly(old)
			p.sendEvent(PlaybackEvent{Kind: EventPlaylistEnded, Index: 0})
			return nil
		}
		next = 0
	}
	p.mu.Unlock()
	return p.startUser(next)
}

// Shuffle reorders the tracks and starts from the first one.
func (p *MusicPlayer) Shuffle() error {
	p.mu.Lock()
	if len(p.tracks) == 0 {
		p.mu.Unlock()
		return ErrNoTracks
	}
	p.cfg.rand.Shuffle(len(p.tracks), func(i, j int) {
		p.tracks[i], p.tracks[j] = p.tracks[j], p.tracks[i]
	})
	p.mu.Unlock()
	return p.startUser(0)
}

// SetPlaylist replaces the track list. Any current track is stopped and the
// player rewinds to the first track.
func (p *MusicPlayer) SetPlaylist(tracks []library.Track) {
	p.mu.Lock()
	old := p.detachLocked()
	p.tracks = append([]library.Track(nil), tracks...)
	p.current = 0
	p.silentRun = 0
	p.mu.Unlock()
	finishQuietly(old)
}

// Stop drops the current track without rewinding.
func (p *MusicPlayer) Stop() {
	p.mu.Lock()
	old := p.detachLocked()
	p.mu.Unlock()
	finishQuietly(old)
}

func (p *MusicPlayer) SetLoopTrack(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loopTrack = on
}

func (p *MusicPlayer) SetLoopPlaylist(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loopPlaylist = on
}

func (p *MusicPlayer) LoopTrack() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loopTrack
}

func (p *MusicPlayer) LoopPlaylist() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loopPlaylist
}

func (p *MusicPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Tracks returns a copy of the track list in play order.
func (p *MusicPlayer) Tracks() []library.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]library.Track(nil), p.tracks...)
}

// Current returns the current track index and track.
func (p *MusicPlayer) Current() (int, library.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tracks) == 0 {
		return 0, library.Track{}, ErrNoTracks
	}
	return p.current, p.tracks[p.current], nil
}

// Scheduler exposes the scheduler of the current track, nil when none.
func (p *MusicPlayer) Scheduler() *sequencer.Scheduler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sched
}

func (p *MusicPlayer) checkIndex(i int) error {
	if len(p.tracks) == 0 {
		return ErrNoTracks
	}
	if i < 0 || i >= len(p.tracks) {
		return fmt.Errorf("%w: %d of %d", ErrTrackIndex, i+1, len(p.tracks))
	}
	return nil
}

func (p *MusicPlayer) eventLocked(kind EventKind) PlaybackEvent {
	return PlaybackEvent{Kind: kind, Index: p.current, Track: p.tracks[p.current]}
}

func (p *MusicPlayer) detachLocked() *sequencer.Scheduler {
	old := p.sched
	p.sched = nil
	p.playing = false
	return old
}

// finishQuietly ends a detached scheduler. Its completion callback sees it is
// no longer current and does nothing.
func finishQuietly(s *sequencer.Scheduler) {
	if s != nil {
		_ = s.Finish()
	}
}

// startUser starts track i on behalf of the listener. A failure leaves the
// player stopped.
func (p *MusicPlayer) startUser(i int) error {
	p.mu.Lock()
	p.silentRun = 0
	p.mu.Unlock()
	sched, err := p.start(i)
	if err != nil {
		p.mu.Lock()
		if p.sched == sched {
			p.detachLocked()
		}
		p.mu.Unlock()
	}
	return err
}

// start replaces the current scheduler with a fresh one for track i. It must
// be called without p.mu held: a track with nothing audible finishes inside
// Play and the completion callback runs straight away.
func (p *MusicPlayer) start(i int) (*sequencer.Scheduler, error) {
	p.mu.Lock()
	if err := p.checkIndex(i); err != nil {
		p.mu.Unlock()
		return nil, err
	}
	track := p.tracks[i]
	var sched *sequencer.Scheduler
	sched = sequencer.New(score.FromSong(track.Song), p.sink, sequencer.Options{
		OnFinish: func() { p.trackFinished(sched) },
		Position: p.cfg.position,
		Clock:    p.cfg.clock,
		Logger:   p.loggerFor(),
	})
	old := p.sched
	p.sched = sched
	p.current = i
	p.playing = true
	p.mu.Unlock()

	finishQuietly(old)
	p.cfg.logger.Printf("Now playing: %s", track.Label())
	p.sendEvent(PlaybackEvent{Kind: EventTrackStarted, Index: i, Track: track})
	if err := sched.Play(); err != nil {
		return sched, fmt.Errorf("composer: play %s: %w", track.Path, err)
	}
	return sched, nil
}

// loggerFor hands the player's logger to schedulers only in debug mode.
func (p *MusicPlayer) loggerFor() *log.Logger {
	if p.cfg.store.Bool(config.DebugMode) {
		return p.cfg.logger
	}
	return nil
}

func (p *MusicPlayer) trackFinished(sched *sequencer.Scheduler) {
	p.advance(sched, sched.Snapshot().Steps == 0)
}

// advance moves on after sched finished on its own. A track that never
// stepped counts as silent; once every track in a row was silent the
// player stops instead of spinning through the list.
func (p *MusicPlayer) advance(sched *sequencer.Scheduler, silent bool) {
	p.mu.Lock()
	if sched == nil || sched != p.sched {
		p.mu.Unlock()
		return
	}
	finished := p.eventLocked(EventTrackFinished)
	p.detachLocked()
	if silent {
		p.silentRun++
	} else {
		p.silentRun = 0
	}
	if p.silentRun >= len(p.tracks) {
		p.silentRun = 0
		p.current = 0
		n := len(p.tracks)
		p.mu.Unlock()
		p.cfg.logger.Printf("Nothing audible in the last %d tracks, stopping.", n)
		p.sendEvent(finished)
		p.sendEvent(PlaybackEvent{Kind: EventPlaylistEnded})
		return
	}
	next := p.current
	if !p.loopTrack {
		next++
	}
	if next >= len(p.tracks) {
		if !p.loopPlaylist {
			p.current = 0
			p.mu.Unlock()
			p.sendEvent(finished)
			p.sendEvent(PlaybackEvent{Kind: EventPlaylistEnded})
			return
		}
		next = 0
	}
	p.mu.Unlock()

	p.sendEvent(finished)
	s, err := p.start(next)
	if err != nil {
		p.cfg.logger.Printf("Skipping track: %v", err)
		p.advance(s, true)
	}
}
