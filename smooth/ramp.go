// Package smooth provides bounded-rate linear parameter ramps and the
// per-field bank that smooths a whole scene once per audio block.
package smooth

// Ramp moves a value linearly from its current position to a target over
// a fixed window, then holds. A zero-length window snaps immediately.
//
// Re-setting an equal target does not restart an in-flight ramp.
type Ramp struct {
	current float64
	target  float64
	step    float64

	rampSamples int
	countdown   int
}

// Reset sets the ramp window. Values currently held are kept.
func (r *Ramp) Reset(sampleRate, seconds float64) {
	n := int(seconds * sampleRate)
	if n < 0 {
		n = 0
	}
	r.rampSamples = n
	r.countdown = 0
	r.current = r.target
}

// SetCurrentAndTarget snaps the ramp to v with no transition.
func (r *Ramp) SetCurrentAndTarget(v float64) {
	r.current = v
	r.target = v
	r.countdown = 0
}

// SetTarget starts a ramp from the current value toward v.
func (r *Ramp) SetTarget(v float64) {
	if v == r.target {
		return
	}

	r.target = v
	if r.rampSamples == 0 || v == r.current {
		r.current = v
		r.countdown = 0
		return
	}

	r.countdown = r.rampSamples
	r.step = (r.target - r.current) / float64(r.countdown)
}

// Next advances the ramp by one sample and returns the new value.
func (r *Ramp) Next() float64 {
	if r.countdown <= 0 {
		return r.current
	}

	r.countdown--
	if r.countdown == 0 {
		r.current = r.target
	} else {
		r.current += r.step
	}
	return r.current
}

// Skip advances the ramp by n samples without yielding intermediate values.
func (r *Ramp) Skip(n int) {
	if r.countdown <= 0 || n <= 0 {
		return
	}

	if n >= r.countdown {
		r.current = r.target
		r.countdown = 0
		return
	}

	r.current += r.step * float64(n)
	r.countdown -= n
}

// Current returns the ramp's present value.
func (r *Ramp) Current() float64 { return r.current }

// Target returns the value the ramp is heading toward.
func (r *Ramp) Target() float64 { return r.target }

// IsSmoothing reports whether the ramp is still in flight.
func (r *Ramp) IsSmoothing() bool { return r.countdown > 0 }
