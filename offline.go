package composer

import (
	"encoding/binary"
	"math"

	"github.com/cbegin/composer-go/internal/score"
	"github.com/cbegin/composer-go/internal/sequencer"
	"github.com/cbegin/composer-go/internal/synth"
)

// RenderSamples plays s through the synth faster than real time and returns
// interleaved stereo frames, followed by tailSeconds of decay.
func RenderSamples(s *score.Score, sampleRate int, tailSeconds float64) ([]float32, error) {
	return RenderSamplesWith(s, synth.New(sampleRate, synth.DefaultParams()), tailSeconds)
}

// RenderSamplesWith renders through an existing engine.
func RenderSamplesWith(s *score.Score, engine *synth.Engine, tailSeconds float64) ([]float32, error) {
	timing, err := sequencer.ComputeTiming(s)
	if err != nil {
		return nil, err
	}
	clock := &sequencer.ManualClock{}
	sched := sequencer.New(s, engine, sequencer.Options{Clock: clock})
	if err := sched.Play(); err != nil {
		return nil, err
	}

	rate := float64(engine.SampleRate())
	framesPerStep := timing.MillisPerStep / 1000 * rate
	var out []float32
	var due float64
	for sched.State() == sequencer.Playing {
		clock.Tick()
		due += framesPerStep
		n := int(due)
		due -= float64(n)
		out = appendFrames(out, engine, n)
	}
	out = appendFrames(out, engine, int(tailSeconds*rate))
	return out, nil
}

func appendFrames(out []float32, engine *synth.Engine, frames int) []float32 {
	if frames <= 0 {
		return out
	}
	start := len(out)
	out = append(out, make([]float32, frames*2)...)
	engine.Process(out[start:])
	return out
}

func EncodeWAVFloat32LE(samples []float32, sampleRate int, channels int) []byte {
	dataSize := len(samples) * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3) // IEEE float
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*channels*4))
	binary.LittleEndian.PutUint16(out[32:], uint16(channels*4))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}
