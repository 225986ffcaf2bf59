package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	composer "github.com/cbegin/composer-go"
	"github.com/cbegin/composer-go/internal/nbs"
	"github.com/cbegin/composer-go/internal/score"
	"github.com/cbegin/composer-go/internal/sequencer"
)

func main() {
	var (
		outPath    = pflag.StringP("out", "o", "", "output WAV path (default: input name with .wav)")
		sampleRate = pflag.Int("sample-rate", 48000, "output sample rate")
		tail       = pflag.Float64("tail", 1.5, "seconds of decay rendered after the last step")
		demo       = pflag.Bool("demo", false, "render the built-in demo score instead of a file")
	)
	pflag.Parse()
	logger := log.New(os.Stdout, "", log.Ldate|log.Ltime)

	var s *score.Score
	switch {
	case *demo:
		s = score.Mary()
		if *outPath == "" {
			*outPath = "mary.wav"
		}
	case pflag.NArg() == 1:
		in := pflag.Arg(0)
		song, err := nbs.ReadFile(in)
		if err != nil {
			logger.Fatalf("read: %v", err)
		}
		s = score.FromSong(song)
		if *outPath == "" {
			*outPath = strings.TrimSuffix(in, filepath.Ext(in)) + ".wav"
		}
		logger.Printf("Rendering %s", song.Label())
	default:
		logger.Fatalf("usage: nbs2wav [flags] <song.nbs> | nbs2wav --demo")
	}

	timing, err := sequencer.ComputeTiming(s)
	if err != nil {
		logger.Fatalf("score: %v", err)
	}
	logger.Printf("millis per beat %.2f, millis per step %.2f, steps per beat %d",
		timing.MillisPerBeat, timing.MillisPerStep, timing.StepsPerBeat)

	samples, err := composer.RenderSamples(s, *sampleRate, *tail)
	if err != nil {
		logger.Fatalf("render: %v", err)
	}
	if err := os.WriteFile(*outPath, composer.EncodeWAVFloat32LE(samples, *sampleRate, 2), 0o644); err != nil {
		logger.Fatalf("write: %v", err)
	}
	logger.Printf("Wrote %s (%.2fs)", *outPath, float64(len(samples)/2)/float64(*sampleRate))
}
