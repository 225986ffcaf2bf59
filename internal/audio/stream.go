// Package audio streams a live frame source to the system output through ebiten.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"
	"sync/atomic"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Source renders interleaved stereo float32 frames on demand.
type Source interface {
	Process(dst []float32)
}

// frameReader turns a Source into the little-endian float32 byte stream ebiten
// expects. It never reports EOF: the output stays open while songs change.
type frameReader struct {
	mu     sync.Mutex
	source Source
	buf    []float32
	frames atomic.Int64
}

func newFrameReader(source Source) *frameReader {
	return &frameReader{source: source}
}

func (r *frameReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i, s := range r.buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(s))
	}
	r.frames.Add(int64(frames))
	return frames * 8, nil
}

func (r *frameReader) Close() error { return nil }

var _ io.ReadCloser = (*frameReader)(nil)

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

func sharedContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// Output is an open audio device fed by a Source.
type Output struct {
	player     *ebitaudio.Player
	reader     *frameReader
	sampleRate int
}

// Open starts streaming source at sampleRate. buffer of 0 keeps ebiten's default latency.
func Open(sampleRate int, source Source, buffer time.Duration) (*Output, error) {
	ctx, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	reader := newFrameReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	if buffer > 0 {
		pl.SetBufferSize(buffer)
	}
	pl.Play()
	return &Output{player: pl, reader: reader, sampleRate: sampleRate}, nil
}

func (o *Output) SetVolume(v float64) { o.player.SetVolume(v) }

// Rendered returns how much audio has been pulled from the source.
func (o *Output) Rendered() time.Duration {
	return framesToDuration(o.reader.frames.Load(), o.sampleRate)
}

func (o *Output) Close() error {
	o.player.Pause()
	if err := o.player.Close(); err != nil {
		return err
	}
	return o.reader.Close()
}

func framesToDuration(frames int64, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}
