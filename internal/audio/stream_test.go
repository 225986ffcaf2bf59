package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

type rampSource struct {
	next float32
}

func (s *rampSource) Process(dst []float32) {
	for i := range dst {
		dst[i] = s.next
		s.next += 0.25
	}
}

func TestFrameReaderEncodesLittleEndianFloats(t *testing.T) {
	r := newFrameReader(&rampSource{})
	p := make([]byte, 8*3+5) // trailing partial frame is left untouched
	n, err := r.Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 24 {
		t.Fatalf("read %d bytes, want 24", n)
	}
	for i := 0; i < 6; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != float32(i)*0.25 {
			t.Fatalf("sample %d = %v", i, got)
		}
	}
	if r.frames.Load() != 3 {
		t.Fatalf("frames = %d, want 3", r.frames.Load())
	}
	if n, err := r.Read(make([]byte, 7)); n != 0 || err != nil {
		t.Fatalf("short read = %d, %v", n, err)
	}
}

func TestFramesToDuration(t *testing.T) {
	if got := framesToDuration(48000, 48000); got != time.Second {
		t.Fatalf("got %v, want 1s", got)
	}
	if got := framesToDuration(100, 0); got != 0 {
		t.Fatalf("got %v for zero rate", got)
	}
}
