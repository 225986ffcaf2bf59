package composer

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/cbegin/composer-go/internal/score"
	"github.com/cbegin/composer-go/internal/sequencer"
)

func TestRenderSamplesLength(t *testing.T) {
	const rate = 8000
	out, err := RenderSamples(score.Mary(), rate, 0.5)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// 32 quarter-note steps at 240 bpm, 2000 frames each, plus the tail.
	want := (32*2000 + 4000) * 2
	if len(out) != want {
		t.Fatalf("len = %d, want %d", len(out), want)
	}
	var peak float64
	for _, s := range out {
		peak = math.Max(peak, math.Abs(float64(s)))
	}
	if peak == 0 || peak > 1 {
		t.Fatalf("peak = %v", peak)
	}
}

func TestRenderSamplesSilentScore(t *testing.T) {
	s := score.NewBuilder().Tempo(120).NewLayer().Measure(score.NewMeasure(score.Rest(score.Whole))).SaveLayer().Build()
	out, err := RenderSamples(s, 8000, 0.25)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(out) != 2000*2 {
		t.Fatalf("expected only the tail, got %d samples", len(out))
	}
	for _, v := range out {
		if v != 0 {
			t.Fatalf("silent score rendered sound")
		}
	}
}

func TestRenderSamplesInvalidTempo(t *testing.T) {
	s := score.NewBuilder().Tempo(0).NewLayer().Measure(score.NewMeasure(score.Harp(1, score.Quarter))).SaveLayer().Build()
	if _, err := RenderSamples(s, 8000, 0); !errors.Is(err, sequencer.ErrInvalidTempo) {
		t.Fatalf("expected ErrInvalidTempo, got %v", err)
	}
}

func TestEncodeWAVFloat32LE(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1}
	wav := EncodeWAVFloat32LE(samples, 44100, 2)
	if len(wav) != 44+16 {
		t.Fatalf("len = %d", len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Fatalf("bad chunk ids")
	}
	if binary.LittleEndian.Uint16(wav[20:]) != 3 || binary.LittleEndian.Uint32(wav[24:]) != 44100 {
		t.Fatalf("bad fmt chunk")
	}
	if got := math.Float32frombits(binary.LittleEndian.Uint32(wav[48:])); got != 0.5 {
		t.Fatalf("second sample = %v", got)
	}
}
