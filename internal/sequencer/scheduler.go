// Package sequencer plays a score in real time, stepping every layer in
// lockstep on a fixed-period clock and emitting notes to a Sink.
package sequencer

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/cbegin/composer-go/internal/score"
)

var (
	// ErrSchedulerMisuse is wrapped by every error caused by calling the
	// scheduler in the wrong state.
	ErrSchedulerMisuse = errors.New("sequencer: scheduler misuse")

	ErrAlreadyPlaying = fmt.Errorf("%w: already playing", ErrSchedulerMisuse)
	ErrFinished       = fmt.Errorf("%w: score finished", ErrSchedulerMisuse)

	ErrInvalidTempo = errors.New("sequencer: tempo must be positive")
)

// State is the scheduler lifecycle: Idle, Playing, Paused, Finished.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type Options struct {
	// OnFinish runs once when the score finishes, on its own or through Finish.
	// It runs without the scheduler lock held and may call into other schedulers.
	OnFinish func()
	Position Position
	Clock    Clock       // nil uses TickerClock
	Logger   *log.Logger // nil discards
}

// Timing is derived from the tempo and the shortest note in the score.
type Timing struct {
	Shortest      score.Duration
	MillisPerBeat float64
	MillisPerStep float64
	StepsPerBeat  int
	Period        time.Duration
}

// Snapshot is a copy of the scheduler's counters.
type Snapshot struct {
	State      State
	Steps      int
	StepInBeat int
	Layers     []Cursor
}

type Scheduler struct {
	mu         sync.Mutex
	score      *score.Score
	sink       Sink
	opts       Options
	clock      Clock
	logger     *log.Logger
	state      State
	timing     Timing
	layers     []layerCursor
	stepInBeat int
	steps      int
	gen        uint64
	stop       func()
}

// New returns an Idle scheduler. The scheduler owns s's playback from here on.
func New(s *score.Score, sink Sink, opts Options) *Scheduler {
	clock := opts.Clock
	if clock == nil {
		clock = TickerClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scheduler{
		score:  s,
		sink:   sink,
		opts:   opts,
		clock:  clock,
		logger: logger,
	}
}

// ComputeTiming derives step timing for s without playing it.
func ComputeTiming(s *score.Score) (Timing, error) {
	if s.Tempo <= 0 {
		return Timing{}, fmt.Errorf("%w: %d bpm", ErrInvalidTempo, s.Tempo)
	}
	if err := s.Validate(); err != nil {
		return Timing{}, err
	}
	t := Timing{
		Shortest:      s.Shortest(),
		MillisPerBeat: 60000 / float64(s.Tempo),
		StepsPerBeat:  1,
	}
	if t.Shortest > s.Time.BeatUnit {
		t.StepsPerBeat = int(t.Shortest / s.Time.BeatUnit)
	}
	t.MillisPerStep = t.MillisPerBeat / float64(t.StepsPerBeat)
	t.Period = time.Duration(t.MillisPerStep * float64(time.Millisecond))
	if t.Period <= 0 {
		return Timing{}, fmt.Errorf("%w: %d bpm gives a step period under 1ns", ErrInvalidTempo, s.Tempo)
	}
	return t, nil
}

// Play starts playback from Idle or resumes it from Paused. A score with
// nothing audible finishes immediately without subscribing to the clock.
func (s *Scheduler) Play() error {
	s.mu.Lock()
	switch s.state {
	case Finished:
		s.mu.Unlock()
		return ErrFinished
	case Playing:
		s.mu.Unlock()
		return ErrAlreadyPlaying
	case Idle:
		t, err := ComputeTiming(s.score)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.timing = t
		if !s.score.Audible() {
			s.state = Finished
			s.mu.Unlock()
			s.finished()
			return nil
		}
		s.layers = make([]layerCursor, len(s.score.Layers))
		for i, l := range s.score.Layers {
			s.layers[i] = newLayerCursor(l, s.score.TimeOf(l))
		}
		s.logger.Printf("%q: millis per beat %.2f, millis per step %.2f, steps per beat %d",
			s.score.Title, t.MillisPerBeat, t.MillisPerStep, t.StepsPerBeat)
	}

	s.gen++
	gen := s.gen
	s.state = Playing
	s.stop = s.clock.Every(s.timing.Period, func() { s.tick(gen) })
	s.mu.Unlock()
	return nil
}

// Pause stops the clock and keeps every counter. Pausing a scheduler that is
// not playing does nothing.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Finished:
		return ErrFinished
	case Playing:
		s.cancelLocked()
		s.state = Paused
	}
	return nil
}

// Finish stops playback for good and runs OnFinish.
func (s *Scheduler) Finish() error {
	s.mu.Lock()
	if s.state == Finished {
		s.mu.Unlock()
		return ErrFinished
	}
	s.cancelLocked()
	s.state = Finished
	s.mu.Unlock()
	s.finished()
	return nil
}

func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Timing is zero until the first Play.
func (s *Scheduler) Timing() Timing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timing
}

func (s *Scheduler) Score() *score.Score {
	return s.score
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:      s.state,
		Steps:      s.steps,
		StepInBeat: s.stepInBeat,
		Layers:     make([]Cursor, len(s.layers)),
	}
	for i, l := range s.layers {
		snap.Layers[i] = l.Cursor
	}
	return snap
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != Playing {
		s.mu.Unlock()
		return
	}
	done := s.stepLocked()
	if done {
		s.cancelLocked()
		s.state = Finished
	}
	s.mu.Unlock()
	if done {
		s.finished()
	}
}

func (s *Scheduler) stepLocked() bool {
	s.stepInBeat++
	spb := s.timing.StepsPerBeat
	emit := func(n score.Note) {
		s.sink.Emit(n.Instrument, n.Pitch, n.Volume, s.opts.Position)
	}
	all := true
	for i := range s.layers {
		if !s.layers[i].step(s.stepInBeat, spb, emit) {
			all = false
		}
	}
	if s.stepInBeat == spb {
		s.stepInBeat = 0
	}
	s.steps++
	return all
}

func (s *Scheduler) cancelLocked() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
	s.gen++
}

func (s *Scheduler) finished() {
	if s.opts.OnFinish != nil {
		s.opts.OnFinish()
	}
}
