package synth

import "math"

// limiter is a linked-stereo peak compressor on the master bus. Both channels
// share one envelope so the stereo image does not shift under gain reduction.
type limiter struct {
	threshold float64 // linear
	ratio     float64
	attack    float64 // coefficient
	release   float64 // coefficient
	env       float64
}

func newLimiter(sampleRate int, thresholdDB, ratio, attackMs, releaseMs float64) *limiter {
	sr := float64(sampleRate)
	return &limiter{
		threshold: math.Pow(10, thresholdDB/20),
		ratio:     ratio,
		attack:    1 - math.Exp(-1/(attackMs*sr/1000)),
		release:   1 - math.Exp(-1/(releaseMs*sr/1000)),
	}
}

func (c *limiter) process(l, r float64) (float64, float64) {
	peak := math.Max(math.Abs(l), math.Abs(r))
	if peak > c.env {
		c.env += c.attack * (peak - c.env)
	} else {
		c.env += c.release * (peak - c.env)
	}
	g := c.gain()
	return l * g, r * g
}

func (c *limiter) gain() float64 {
	if c.env <= c.threshold {
		return 1
	}
	return math.Pow(c.env/c.threshold, 1/c.ratio-1)
}
