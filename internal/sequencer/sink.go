package sequencer

import "github.com/cbegin/composer-go/internal/pitch"

// Position is where a note sounds, in listener space.
type Position struct {
	X, Y, Z float64
}

// Sink receives note emissions. Emit runs on the scheduler's step and must
// return promptly; it must not call back into the Scheduler.
type Sink interface {
	Emit(inst pitch.Instrument, p float64, volume float64, pos Position)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(inst pitch.Instrument, p float64, volume float64, pos Position)

func (f SinkFunc) Emit(inst pitch.Instrument, p float64, volume float64, pos Position) {
	f(inst, p, volume, pos)
}
