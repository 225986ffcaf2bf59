package sequencer

import (
	"math"

	"github.com/cbegin/composer-go/internal/score"
)

// Cursor is a layer's playback position. Measure and Note are 0-based, Beat is 1-based.
type Cursor struct {
	Measure  int
	Beat     int
	Note     int
	Hold     int // steps left before the next note starts
	Finished bool
}

type layerCursor struct {
	Cursor
	time     score.TimeSignature
	measures []score.Measure
	beats    []int // length of each measure in beats
}

func newLayerCursor(l score.Layer, time score.TimeSignature) layerCursor {
	c := layerCursor{
		Cursor:   Cursor{Beat: 1, Hold: 1},
		time:     time,
		measures: l.Measures,
		beats:    make([]int, len(l.Measures)),
	}
	for i, m := range l.Measures {
		c.beats[i] = measureBeats(m, time)
	}
	if len(l.Measures) == 0 {
		c.Finished = true
	}
	return c
}

// measureBeats is the full bar, or the notes' span rounded up for a short measure.
func measureBeats(m score.Measure, time score.TimeSignature) int {
	var span float64
	for _, n := range m.Notes {
		span += time.Beats(n.Duration)
	}
	if span >= float64(time.BeatsPerMeasure) {
		return time.BeatsPerMeasure
	}
	return max(1, int(math.Ceil(span)))
}

// step advances the layer by one clock step and reports whether it is finished.
// stepInBeat runs 1..stepsPerBeat and is shared by every layer of the score.
func (c *layerCursor) step(stepInBeat, stepsPerBeat int, emit func(score.Note)) bool {
	if c.Finished {
		return true
	}

	c.Hold--
	if c.Hold <= 0 {
		notes := c.measures[c.Measure].Notes
		if c.Note < len(notes) {
			n := notes[c.Note]
			c.Note++
			if !n.IsRest() {
				emit(n)
			}
			c.Hold = int(c.time.Beats(n.Duration) * float64(stepsPerBeat))
		}
	}

	if stepInBeat == stepsPerBeat {
		if c.Beat >= c.beats[c.Measure] {
			c.Beat = 1
			if c.Measure == len(c.measures)-1 {
				c.Finished = true
			} else {
				c.Measure++
				c.Note = 0
			}
		} else {
			c.Beat++
		}
	}
	return c.Finished
}
