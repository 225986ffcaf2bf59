package composer

import (
	"bytes"
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/cbegin/composer-go/internal/config"
	"github.com/cbegin/composer-go/internal/library"
	"github.com/cbegin/composer-go/internal/nbs"
	"github.com/cbegin/composer-go/internal/nbs/nbstest"
	"github.com/cbegin/composer-go/internal/pitch"
	"github.com/cbegin/composer-go/internal/sequencer"
)

type countingSink struct {
	mu   sync.Mutex
	n    int
	last sequencer.Position
}

func (c *countingSink) Emit(inst pitch.Instrument, p float64, volume float64, pos sequencer.Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	c.last = pos
}

func (c *countingSink) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// track decodes a one-layer song with one quarter note per key at 600 bpm.
// No keys gives a song with nothing audible.
func track(t *testing.T, name string, keys ...int) library.Track {
	t.Helper()
	return trackAt(t, name, 1000, keys...)
}

func trackAt(t *testing.T, name string, tempo int, keys ...int) library.Track {
	t.Helper()
	blocks := make([]nbstest.Block, len(keys))
	for i, k := range keys {
		blocks[i] = nbstest.Block{Tick: i, Layer: 0, Key: k}
	}
	h := nbstest.Header{LengthTicks: max(len(keys)-1, 0), Height: 1, Name: name, Tempo: tempo, TimeSignature: 4}
	song, err := nbs.Decode(nbstest.Legacy(h, blocks, []nbstest.Layer{{Volume: 100}}))
	if err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return library.Track{Path: name + ".nbs", Song: song}
}

func newTestPlayer(tracks []library.Track, opts ...PlayerOption) (*MusicPlayer, *sequencer.ManualClock, *countingSink) {
	clock := &sequencer.ManualClock{}
	sink := &countingSink{}
	opts = append([]PlayerOption{WithClock(clock)}, opts...)
	return NewMusicPlayer(tracks, sink, opts...), clock, sink
}

func drain(ch <-chan PlaybackEvent) []EventKind {
	var kinds []EventKind
	for {
		select {
		case ev := <-ch:
			kinds = append(kinds, ev.Kind)
		default:
			return kinds
		}
	}
}

func sameKinds(got, want []EventKind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestPlayAdvancesThroughTracks(t *testing.T) {
	mp, clock, sink := newTestPlayer([]library.Track{track(t, "a", 45, 47, 49, 50), track(t, "b", 45, 45)})
	events := mp.Watch()

	if err := mp.Play(0); err != nil {
		t.Fatalf("play: %v", err)
	}
	clock.Advance(4)
	if i, tr, _ := mp.Current(); i != 1 || tr.Song.Name != "b" || !mp.IsPlaying() {
		t.Fatalf("expected track b to be playing, at %d playing=%v", i, mp.IsPlaying())
	}
	clock.Advance(2)
	if mp.IsPlaying() {
		t.Fatalf("player should stop at the end of the list")
	}
	if i, _, _ := mp.Current(); i != 0 {
		t.Fatalf("player should rewind to the first track, at %d", i)
	}
	if sink.count() != 6 {
		t.Fatalf("expected 6 emissions, got %d", sink.count())
	}
	want := []EventKind{EventTrackStarted, EventTrackFinished, EventTrackStarted, EventTrackFinished, EventPlaylistEnded}
	if got := drain(events); !sameKinds(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	if clock.Active() != 0 {
		t.Fatalf("no clock subscription should outlive the list")
	}
}

func TestPlaySameTrackTogglesPause(t *testing.T) {
	mp, clock, sink := newTestPlayer([]library.Track{track(t, "a", 45, 47, 49, 50)})
	if err := mp.Play(0); err != nil {
		t.Fatalf("play: %v", err)
	}
	clock.Advance(1)
	if err := mp.Play(0); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if mp.IsPlaying() || mp.Scheduler().State() != sequencer.Paused {
		t.Fatalf("second Play should pause")
	}
	clock.Advance(5)
	if sink.count() != 1 {
		t.Fatalf("paused track emitted: %d", sink.count())
	}
	if err := mp.Play(0); err != nil {
		t.Fatalf("resume: %v", err)
	}
	clock.Advance(3)
	if sink.count() != 4 || mp.IsPlaying() {
		t.Fatalf("expected the rest of the track after resume, got %d playing=%v", sink.count(), mp.IsPlaying())
	}
}

func TestPauseAndResumeErrors(t *testing.T) {
	mp, _, _ := newTestPlayer([]library.Track{track(t, "a", 45, 47)})
	if err := mp.Pause(); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("expected ErrNotPlaying, got %v", err)
	}
	if err := mp.Resume(); err != nil {
		t.Fatalf("resume from stopped: %v", err)
	}
	if err := mp.Resume(); !errors.Is(err, ErrAlreadyPlaying) {
		t.Fatalf("expected ErrAlreadyPlaying, got %v", err)
	}
	if err := mp.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := mp.Pause(); !errors.Is(err, ErrNotPlaying) {
		t.Fatalf("expected ErrNotPlaying after pause, got %v", err)
	}
}

func TestStopNotPauseRestartsTrack(t *testing.T) {
	store := config.Defaults()
	if err := store.Set(config.StopNotPause, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	mp, clock, sink := newTestPlayer([]library.Track{track(t, "a", 45, 47, 49, 50), track(t, "b", 45)}, WithStore(store))
	events := mp.Watch()
	_ = mp.Play(0)
	clock.Advance(2)
	if err := mp.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if mp.Scheduler() != nil || clock.Active() != 0 {
		t.Fatalf("stop-not-pause should drop the scheduler")
	}
	if i, _, _ := mp.Current(); i != 0 {
		t.Fatalf("stopping must not advance, at %d", i)
	}
	if err := mp.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	clock.Advance(4)
	if sink.count() != 6 {
		t.Fatalf("expected the track to restart from the top, got %d emissions", sink.count())
	}
	want := []EventKind{EventTrackStarted, EventTrackStopped, EventTrackStarted, EventTrackFinished, EventTrackStarted}
	if got := drain(events); !sameKinds(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestSkipPastTheEnd(t *testing.T) {
	tracks := []library.Track{track(t, "a", 45), track(t, "b", 45), track(t, "c", 45)}
	mp, clock, _ := newTestPlayer(tracks)

	_ = mp.Play(2)
	if err := mp.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if i, _, _ := mp.Current(); i != 0 || mp.IsPlaying() || clock.Active() != 0 {
		t.Fatalf("skipping past the end should stop and rewind, at %d", i)
	}

	mp.SetLoopPlaylist(true)
	_ = mp.Play(2)
	_ = mp.Next()
	if i, _, _ := mp.Current(); i != 0 || !mp.IsPlaying() {
		t.Fatalf("looping playlist should wrap to 0, at %d", i)
	}
	_ = mp.Previous()
	if i, _, _ := mp.Current(); i != 0 || !mp.IsPlaying() {
		t.Fatalf("previous from the first track should wrap to 0, at %d", i)
	}
	_ = mp.Skip(2)
	if i, _, _ := mp.Current(); i != 2 {
		t.Fatalf("skip 2 = %d", i)
	}
	if clock.Active() != 1 {
		t.Fatalf("expected one live subscription, got %d", clock.Active())
	}
}

func TestLoopPlaylistAutoAdvanceWraps(t *testing.T) {
	mp, clock, _ := newTestPlayer([]library.Track{track(t, "a", 45), track(t, "b", 45)})
	mp.SetLoopPlaylist(true)
	_ = mp.Play(1)
	clock.Advance(1)
	if i, _, _ := mp.Current(); i != 0 || !mp.IsPlaying() {
		t.Fatalf("expected wrap to track 0, at %d", i)
	}
}

func TestLoopTrackReplays(t *testing.T) {
	mp, clock, sink := newTestPlayer([]library.Track{track(t, "a", 45, 47, 49, 50), track(t, "b", 45)})
	mp.SetLoopTrack(true)
	if !mp.LoopTrack() || mp.LoopPlaylist() {
		t.Fatalf("loop flags not set")
	}
	_ = mp.Play(0)
	clock.Advance(8)
	if i, _, _ := mp.Current(); i != 0 || !mp.IsPlaying() {
		t.Fatalf("loop track should stay on track 0, at %d", i)
	}
	if sink.count() != 8 {
		t.Fatalf("expected two full passes, got %d", sink.count())
	}
}

func TestSilentTracksStopThePlayer(t *testing.T) {
	var buf bytes.Buffer
	mp, clock, sink := newTestPlayer([]library.Track{track(t, "quiet"), track(t, "hush")}, WithLogger(log.New(&buf, "", 0)))
	mp.SetLoopPlaylist(true)
	mp.SetLoopTrack(true)
	events := mp.Watch()
	if err := mp.Play(0); err != nil {
		t.Fatalf("play: %v", err)
	}
	if mp.IsPlaying() || clock.Subscriptions() != 0 || sink.count() != 0 {
		t.Fatalf("silent tracks should never reach the clock or the sink")
	}
	if !strings.Contains(buf.String(), "Nothing audible") {
		t.Fatalf("expected a log line, got:\n%s", buf.String())
	}
	kinds := drain(events)
	if len(kinds) == 0 || kinds[len(kinds)-1] != EventPlaylistEnded {
		t.Fatalf("events = %v", kinds)
	}
}

func TestSilentTrackIsSkipped(t *testing.T) {
	mp, clock, _ := newTestPlayer([]library.Track{track(t, "quiet"), track(t, "loud", 45, 47)})
	_ = mp.Play(0)
	if i, _, _ := mp.Current(); i != 1 || !mp.IsPlaying() || clock.Active() != 1 {
		t.Fatalf("expected the audible track to start, at %d", i)
	}
}

func TestInvalidTempoTrack(t *testing.T) {
	bad := trackAt(t, "slow", 50, 45)
	mp, clock, _ := newTestPlayer([]library.Track{track(t, "a", 45), bad, track(t, "c", 45, 47)})
	if err := mp.Play(1); !errors.Is(err, sequencer.ErrInvalidTempo) {
		t.Fatalf("expected ErrInvalidTempo, got %v", err)
	}
	if mp.IsPlaying() || mp.Scheduler() != nil {
		t.Fatalf("failed play should leave the player stopped")
	}

	_ = mp.Play(0)
	clock.Advance(1)
	if i, _, _ := mp.Current(); i != 2 || !mp.IsPlaying() {
		t.Fatalf("auto-advance should skip the unplayable track, at %d", i)
	}
}

func TestShuffleRestartsAtFirstTrack(t *testing.T) {
	var tracks []library.Track
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		tracks = append(tracks, track(t, name, 45))
	}
	mp, _, _ := newTestPlayer(tracks, WithRand(rand.New(rand.NewSource(7))))
	_ = mp.Play(3)
	if err := mp.Shuffle(); err != nil {
		t.Fatalf("shuffle: %v", err)
	}
	if i, _, _ := mp.Current(); i != 0 || !mp.IsPlaying() {
		t.Fatalf("shuffle should start at track 0, at %d", i)
	}
	seen := map[string]bool{}
	for _, tr := range mp.Tracks() {
		seen[tr.Song.Name] = true
	}
	if len(seen) != 5 {
		t.Fatalf("shuffle lost tracks: %v", seen)
	}
}

func TestPlayerIndexErrors(t *testing.T) {
	mp, _, _ := newTestPlayer([]library.Track{track(t, "a", 45)})
	if err := mp.Play(1); !errors.Is(err, ErrTrackIndex) {
		t.Fatalf("expected ErrTrackIndex, got %v", err)
	}
	if err := mp.Play(-1); !errors.Is(err, ErrTrackIndex) {
		t.Fatalf("expected ErrTrackIndex, got %v", err)
	}

	empty, _, _ := newTestPlayer(nil)
	if err := empty.Play(0); !errors.Is(err, ErrNoTracks) {
		t.Fatalf("expected ErrNoTracks, got %v", err)
	}
	if err := empty.Next(); !errors.Is(err, ErrNoTracks) {
		t.Fatalf("expected ErrNoTracks, got %v", err)
	}
	if err := empty.Shuffle(); !errors.Is(err, ErrNoTracks) {
		t.Fatalf("expected ErrNoTracks, got %v", err)
	}
	if _, _, err := empty.Current(); !errors.Is(err, ErrNoTracks) {
		t.Fatalf("expected ErrNoTracks, got %v", err)
	}
}

func TestSetPlaylistStopsAndRewinds(t *testing.T) {
	mp, clock, _ := newTestPlayer([]library.Track{track(t, "a", 45, 47), track(t, "b", 45, 47)})
	_ = mp.Play(1)
	mp.SetPlaylist([]library.Track{track(t, "x", 45)})
	if mp.IsPlaying() || clock.Active() != 0 {
		t.Fatalf("SetPlaylist should stop playback")
	}
	if i, tr, _ := mp.Current(); i != 0 || tr.Song.Name != "x" {
		t.Fatalf("expected the new list at 0, got %d %q", i, tr.Song.Name)
	}
}

func TestPositionAndDebugLogging(t *testing.T) {
	store := config.Defaults()
	_ = store.Set(config.DebugMode, true)
	var buf bytes.Buffer
	pos := sequencer.Position{X: 3, Y: 64, Z: -2}
	mp, clock, sink := newTestPlayer([]library.Track{track(t, "a", 45)},
		WithStore(store), WithLogger(log.New(&buf, "", 0)), WithPosition(pos))
	_ = mp.Play(0)
	clock.Tick()
	if sink.last != pos {
		t.Fatalf("position = %+v, want %+v", sink.last, pos)
	}
	out := buf.String()
	if !strings.Contains(out, "Now playing: a by Unknown") || !strings.Contains(out, "millis per beat") {
		t.Fatalf("unexpected log:\n%s", out)
	}
}
