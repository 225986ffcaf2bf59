package synth

// vibrato is a per-voice triangle LFO returning a pitch offset in semitones.
type vibrato struct {
	depth  float64
	rateHz float64
	phase  float64
}

func (v *vibrato) sample(sampleRate float64) float64 {
	if v.depth == 0 || v.rateHz == 0 || sampleRate == 0 {
		return 0
	}
	var w float64
	if v.phase < 0.5 {
		w = 4*v.phase - 1
	} else {
		w = 3 - 4*v.phase
	}
	v.phase += v.rateHz / sampleRate
	for v.phase >= 1 {
		v.phase--
	}
	return w * v.depth
}
