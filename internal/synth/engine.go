// Package synth renders note-block emissions as stereo audio. Engine is a
// sequencer.Sink on one side and a frame source for the audio stream on the other.
package synth

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/cbegin/composer-go/internal/pitch"
	"github.com/cbegin/composer-go/internal/sequencer"
)

const twoPi = math.Pi * 2

type Params struct {
	Voices     int
	MasterGain float64
	AttackSec  float64
	LPFCutoff  float64 // Hz, 0 disables
	RoomSize   float64 // 0 disables the room
	RoomWet    float64
	VibratoHz  float64
	LimiterDB  float64 // master limiter threshold in dBFS, 0 disables

	// PanWidth maps a position's X offset onto the stereo field; X = ±PanWidth is hard left/right.
	PanWidth float64
}

func DefaultParams() Params {
	return Params{
		Voices:     32,
		MasterGain: 0.3,
		AttackSec:  0.002,
		LPFCutoff:  12000,
		RoomSize:   0.6,
		RoomWet:    0.18,
		VibratoHz:  5,
		LimiterDB:  -3,
		PanWidth:   16,
	}
}

type voice struct {
	active    bool
	age       int
	prof      profile
	freq      float64
	phase     float64
	level     float64
	env       float64
	attacking bool
	decay     float64 // per-sample multiplier
	pan       float64 // -1..1
	noiseLFSR uint16
	sweep     float64 // kick pitch envelope
	vib       vibrato
}

type Engine struct {
	mu         sync.Mutex
	sampleRate float64
	params     Params
	voices     []voice
	masterGain uint64
	attackStep float64
	lpfAlpha   float64
	lpfL, lpfR float64
	dcInL      float64
	dcOutL     float64
	dcInR      float64
	dcOutR     float64
	room       *room
	limiter    *limiter
	emitted    uint64
}

var _ sequencer.Sink = (*Engine)(nil)

func New(sampleRate int, params Params) *Engine {
	if params.Voices <= 0 {
		params.Voices = 32
	}
	if params.AttackSec <= 0 {
		params.AttackSec = 0.002
	}
	if params.PanWidth <= 0 {
		params.PanWidth = 16
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		voices:     make([]voice, params.Voices),
		masterGain: math.Float64bits(params.MasterGain),
		attackStep: 1 / (params.AttackSec * float64(sampleRate)),
	}
	for i := range e.voices {
		e.voices[i].noiseLFSR = uint16(0xACE1 + i*97)
	}
	if params.LPFCutoff > 0 && params.LPFCutoff < float64(sampleRate)/2 {
		rc := 1.0 / (twoPi * params.LPFCutoff)
		dt := 1.0 / float64(sampleRate)
		e.lpfAlpha = dt / (rc + dt)
	}
	if params.RoomSize > 0 && params.RoomWet > 0 {
		e.room = newRoom(sampleRate, params.RoomSize, 0.7, params.RoomWet)
	}
	if params.LimiterDB < 0 {
		e.limiter = newLimiter(sampleRate, params.LimiterDB, 10, 1, 80)
	}
	return e
}

// Emit starts a voice for inst at the note-block pitch multiplier p.
func (e *Engine) Emit(inst pitch.Instrument, p float64, volume float64, pos sequencer.Position) {
	if volume <= 0 || p <= 0 {
		return
	}
	prof := profileFor(inst)
	atomic.AddUint64(&e.emitted, 1)

	e.mu.Lock()
	defer e.mu.Unlock()
	v := &e.voices[e.stealVoice()]
	lfsr := v.noiseLFSR
	*v = voice{
		active:    true,
		prof:      prof,
		freq:      prof.base * p,
		level:     clamp(volume, 0, 1) * prof.gain,
		attacking: true,
		decay:     math.Exp(math.Log(0.001) / (prof.decaySec * e.sampleRate)),
		pan:       clamp(pos.X/e.params.PanWidth, -1, 1),
		noiseLFSR: lfsr,
		sweep:     1,
		vib:       vibrato{depth: prof.vibrato, rateHz: e.params.VibratoHz},
	}
	if v.noiseLFSR == 0 {
		v.noiseLFSR = 0xACE1
	}
}

// Process fills dst with interleaved stereo frames.
func (e *Engine) Process(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := 0; i+1 < len(dst); i += 2 {
		dst[i], dst[i+1] = e.renderFrame()
	}
}

func (e *Engine) RenderFrame() (float32, float32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renderFrame()
}

func (e *Engine) renderFrame() (float32, float32) {
	gain := e.masterGainValue()
	var l, r float64
	for i := range e.voices {
		v := &e.voices[i]
		if !v.active {
			continue
		}
		v.age++
		env := e.advanceEnv(v)
		if !v.active {
			continue
		}
		sig := e.renderWave(v) * env * v.level
		angle := (v.pan + 1) / 2 * (math.Pi / 2)
		l += sig * math.Cos(angle) * gain
		r += sig * math.Sin(angle) * gain
	}
	l = dcBlock(l, &e.dcInL, &e.dcOutL)
	r = dcBlock(r, &e.dcInR, &e.dcOutR)
	if e.lpfAlpha > 0 {
		e.lpfL += e.lpfAlpha * (l - e.lpfL)
		e.lpfR += e.lpfAlpha * (r - e.lpfR)
		l, r = e.lpfL, e.lpfR
	}
	if e.room != nil {
		l, r = e.room.process(l, r)
	}
	if e.limiter != nil {
		l, r = e.limiter.process(l, r)
	}
	return float32(clamp(l, -1, 1)), float32(clamp(r, -1, 1))
}

func dcBlock(x float64, prevIn, prevOut *float64) float64 {
	const r = 0.995
	in, out := *prevIn, *prevOut
	y := x - in + r*out
	*prevIn, *prevOut = x, y
	return y
}

// polyBLEP reduces aliasing at waveform discontinuities.
// t is the phase position [0,1), dt is the phase increment per sample.
func polyBLEP(t, dt float64) float64 {
	if t < dt {
		t /= dt
		return t + t - t*t - 1
	}
	if t > 1-dt {
		t = (t - 1) / dt
		return t*t + t + t + 1
	}
	return 0
}

func pulse(phase, dt, duty float64) float64 {
	out := -1.0
	if phase < duty {
		out = 1
	}
	out += polyBLEP(phase, dt)
	out -= polyBLEP(math.Mod(phase-duty+1, 1), dt)
	return out
}

func (e *Engine) renderWave(v *voice) float64 {
	freq := v.freq
	if semis := v.vib.sample(e.sampleRate); semis != 0 {
		freq *= math.Pow(2, semis/12)
	}
	if v.prof.wave == waveKick {
		// Drop from twice the pitch to the pitch over the first few milliseconds.
		freq *= 1 + v.sweep
		v.sweep *= 0.9985
	}
	dt := freq / e.sampleRate
	v.phase += dt
	if v.phase >= 1 {
		v.phase -= 1
	}
	switch v.prof.wave {
	case waveSine, waveKick:
		return math.Sin(twoPi * v.phase)
	case waveTriangle:
		return 2*math.Abs(2*v.phase-1) - 1
	case wavePulseA:
		return pulse(v.phase, dt, 0.125)
	case wavePulseB:
		return pulse(v.phase, dt, 0.25)
	case waveSquare:
		return pulse(v.phase, dt, 0.5)
	case waveNoise:
		if v.phase < dt {
			bit := (v.noiseLFSR ^ (v.noiseLFSR >> 1)) & 1
			v.noiseLFSR = (v.noiseLFSR >> 1) | (bit << 15)
		}
		if v.noiseLFSR&1 == 1 {
			return 1
		}
		return -1
	default:
		return 0
	}
}

func (e *Engine) advanceEnv(v *voice) float64 {
	if v.attacking {
		v.env += e.attackStep
		if v.env >= 1 {
			v.env = 1
			v.attacking = false
		}
		return v.env
	}
	v.env *= v.decay
	if v.env < 0.0005 {
		v.env = 0
		v.active = false
	}
	return v.env
}

func (e *Engine) stealVoice() int {
	for i := range e.voices {
		if !e.voices[i].active {
			return i
		}
	}
	// Steal the quietest voice; ties go to the oldest.
	best := 0
	for i := range e.voices {
		v, b := &e.voices[i], &e.voices[best]
		if v.env*v.level < b.env*b.level || (v.env*v.level == b.env*b.level && v.age > b.age) {
			best = i
		}
	}
	return best
}

// Silence cuts every sounding voice.
func (e *Engine) Silence() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.voices {
		e.voices[i].active = false
		e.voices[i].env = 0
	}
}

func (e *Engine) SetMasterGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	atomic.StoreUint64(&e.masterGain, math.Float64bits(gain))
}

func (e *Engine) masterGainValue() float64 {
	return math.Float64frombits(atomic.LoadUint64(&e.masterGain))
}

func (e *Engine) ActiveVoiceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}

// Emitted returns how many notes have been accepted since New.
func (e *Engine) Emitted() int {
	return int(atomic.LoadUint64(&e.emitted))
}

func (e *Engine) SampleRate() int {
	return int(e.sampleRate)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
