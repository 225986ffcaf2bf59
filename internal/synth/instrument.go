package synth

import "github.com/cbegin/composer-go/internal/pitch"

type waveType int

const (
	waveSine waveType = iota
	waveTriangle
	wavePulseA // 12.5% duty
	wavePulseB // 25% duty
	waveSquare
	waveNoise
	waveKick
)

// Base frequencies at pitch 1.0. Harp's is F#4.
const (
	fSharp2 = 92.499
	fSharp3 = 184.997
	fSharp4 = 369.994
	fSharp5 = 739.989
	fSharp6 = 1479.978
)

type profile struct {
	wave     waveType
	base     float64
	decaySec float64 // time to fall 60 dB
	vibrato  float64 // depth in semitones, 0 = none
	gain     float64
}

var profiles = map[pitch.Instrument]profile{
	pitch.Harp:          {wave: waveTriangle, base: fSharp4, decaySec: 1.2, gain: 1},
	pitch.Bass:          {wave: waveTriangle, base: fSharp2, decaySec: 0.6, gain: 1.1},
	pitch.BaseDrum:      {wave: waveKick, base: fSharp2, decaySec: 0.25, gain: 1.2},
	pitch.Snare:         {wave: waveNoise, base: fSharp5, decaySec: 0.18, gain: 0.6},
	pitch.Hat:           {wave: waveNoise, base: fSharp6 * 4, decaySec: 0.06, gain: 0.4},
	pitch.Guitar:        {wave: wavePulseB, base: fSharp3, decaySec: 0.8, gain: 0.7},
	pitch.Flute:         {wave: waveSine, base: fSharp5, decaySec: 1.0, vibrato: 0.15, gain: 0.9},
	pitch.Bell:          {wave: waveSine, base: fSharp6, decaySec: 2.0, gain: 0.8},
	pitch.Chime:         {wave: waveSine, base: fSharp6, decaySec: 2.5, gain: 0.7},
	pitch.Xylophone:     {wave: waveTriangle, base: fSharp6, decaySec: 0.35, gain: 0.9},
	pitch.IronXylophone: {wave: wavePulseA, base: fSharp4, decaySec: 0.5, gain: 0.6},
	pitch.CowBell:       {wave: wavePulseB, base: fSharp5, decaySec: 0.4, gain: 0.6},
	pitch.Didgeridoo:    {wave: wavePulseA, base: fSharp2, decaySec: 1.0, vibrato: 0.1, gain: 0.8},
	pitch.Bit:           {wave: waveSquare, base: fSharp4, decaySec: 0.7, gain: 0.5},
	pitch.Banjo:         {wave: wavePulseB, base: fSharp4, decaySec: 0.5, gain: 0.7},
	pitch.Pling:         {wave: waveTriangle, base: fSharp4, decaySec: 1.5, gain: 0.9},
}

// profileFor falls back to harp for sounds the engine has no voice for.
func profileFor(inst pitch.Instrument) profile {
	if p, ok := profiles[inst]; ok {
		return p
	}
	return profiles[pitch.Harp]
}
