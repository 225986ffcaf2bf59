// Package score holds the playable form of a song: layers of measures of notes.
package score

import (
	"errors"
	"fmt"

	"github.com/cbegin/composer-go/internal/pitch"
)

// Duration is a note length class. Larger values are shorter notes.
type Duration int

const (
	Whole     Duration = 1
	Half      Duration = 2
	Quarter   Duration = 4
	Eighth    Duration = 8
	Sixteenth Duration = 16
)

var ErrInvalidScore = errors.New("score: invalid score")

// TimeSignature is beats per measure over the duration that receives one beat.
type TimeSignature struct {
	BeatsPerMeasure int
	BeatUnit        Duration
}

var (
	Common = TimeSignature{BeatsPerMeasure: 4, BeatUnit: Quarter}
	Cut    = TimeSignature{BeatsPerMeasure: 2, BeatUnit: Half}
)

// Beats returns how many beats a note of duration d lasts.
func (t TimeSignature) Beats(d Duration) float64 {
	return float64(t.BeatUnit) / float64(d)
}

func (t TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", t.BeatsPerMeasure, int(t.BeatUnit))
}

// Note is one slot of a measure. A zero Volume or no Instrument is a rest.
type Note struct {
	Instrument pitch.Instrument
	Pitch      float64
	Duration   Duration
	Volume     float64 // 0-1
}

// NewNote returns a full-volume note.
func NewNote(inst pitch.Instrument, p float64, d Duration) Note {
	return Note{Instrument: inst, Pitch: p, Duration: d, Volume: 1}
}

// Harp returns a full-volume harp note.
func Harp(p float64, d Duration) Note {
	return NewNote(pitch.Harp, p, d)
}

// Rest returns a silent note of duration d.
func Rest(d Duration) Note {
	return Note{Pitch: -1, Duration: d}
}

func (n Note) IsRest() bool {
	return n.Instrument == pitch.InstrumentNone || n.Volume <= 0
}

type Measure struct {
	Notes []Note
}

func NewMeasure(notes ...Note) Measure {
	return Measure{Notes: notes}
}

// Layer is an independent track. It shares the score's clock but not its cursor.
// A zero Time means the score's time signature.
type Layer struct {
	Time     TimeSignature
	Measures []Measure
}

type Score struct {
	Title  string
	Artist string
	Tempo  int // beats per minute
	Time   TimeSignature
	Layers []Layer
}

// TimeOf returns the time signature layer l is counted in.
func (s *Score) TimeOf(l Layer) TimeSignature {
	if l.Time == (TimeSignature{}) {
		return s.Time
	}
	return l.Time
}

// Shortest returns the shortest duration class present, or 0 for a score without notes.
func (s *Score) Shortest() Duration {
	var shortest Duration
	s.each(func(n Note) {
		if n.Duration > shortest {
			shortest = n.Duration
		}
	})
	return shortest
}

// Audible reports whether any note would reach a sound sink.
func (s *Score) Audible() bool {
	audible := false
	s.each(func(n Note) {
		if !n.IsRest() {
			audible = true
		}
	})
	return audible
}

// NoteCount returns the number of non-rest notes.
func (s *Score) NoteCount() int {
	count := 0
	s.each(func(n Note) {
		if !n.IsRest() {
			count++
		}
	})
	return count
}

func (s *Score) each(fn func(Note)) {
	for _, l := range s.Layers {
		for _, m := range l.Measures {
			for _, n := range m.Notes {
				fn(n)
			}
		}
	}
}

// Validate rejects time signatures and durations the scheduler cannot step.
func (s *Score) Validate() error {
	if err := validTime(s.Time); err != nil {
		return err
	}
	for li, l := range s.Layers {
		lt := s.TimeOf(l)
		if err := validTime(lt); err != nil {
			return fmt.Errorf("layer %d: %w", li, err)
		}
		// Steps are timed from the score's beat unit.
		if lt.BeatUnit != s.Time.BeatUnit {
			return fmt.Errorf("%w: layer %d counts in %s, score in %s", ErrInvalidScore, li, lt, s.Time)
		}
		for mi, m := range l.Measures {
			for ni, n := range m.Notes {
				if n.Duration <= 0 {
					return fmt.Errorf("%w: layer %d measure %d note %d has duration %d", ErrInvalidScore, li, mi, ni, n.Duration)
				}
			}
		}
	}
	return nil
}

func validTime(t TimeSignature) error {
	if t.BeatsPerMeasure <= 0 || t.BeatUnit <= 0 {
		return fmt.Errorf("%w: time signature %s", ErrInvalidScore, t)
	}
	return nil
}
