// Package reverb implements a Schroeder/Moorer style algorithmic reverb
// (eight parallel damped combs into four serial allpasses per channel)
// behind an adjustable pre-delay line. The stage outputs 100% wet signal;
// dry/wet balance belongs to the caller.
package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

const (
	// Comb and allpass tunings are defined at this reference rate and
	// scaled to the running sample rate.
	refSampleRate = 44100.0

	// The right channel's lines are lengthened by this many reference
	// samples to decorrelate the two channels.
	stereoSpread = 23

	// Input is attenuated before the comb bank so eight summed combs
	// with near-unity feedback stay in range.
	fixedGain = 0.015

	// Comb feedback spans 0.7 .. 0.98 over the room size range.
	feedbackBase = 0.7
	feedbackSpan = 0.28

	// Damping input scaling.
	dampScale = 0.4

	allpassFeedback = 0.5

	maxPreDelaySeconds = 0.2
)

var combTunings = [8]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}

var allpassTunings = [4]int{556, 441, 341, 225}

// comb is a feedback comb filter with a one-pole low-pass in its loop.
type comb struct {
	buf         []float64
	idx         int
	feedback    float64
	damp        float64
	filterStore float64
}

func (c *comb) process(in float64) float64 {
	out := c.buf[c.idx]
	c.filterStore = out*(1-c.damp) + c.filterStore*c.damp
	c.buf[c.idx] = in + c.filterStore*c.feedback
	c.idx++
	if c.idx >= len(c.buf) {
		c.idx = 0
	}
	return out
}

// allpass smears transients without coloring the long-term spectrum.
type allpass struct {
	buf []float64
	idx int
}

func (a *allpass) process(in float64) float64 {
	buffered := a.buf[a.idx]
	a.buf[a.idx] = in + buffered*allpassFeedback
	a.idx++
	if a.idx >= len(a.buf) {
		a.idx = 0
	}
	return buffered - in
}

// Reverb is a stereo reverb with a per-channel pre-delay line.
// SetParameters is expected once per block before Process.
type Reverb struct {
	sampleRate float64

	combs     [2][8]comb
	allpasses [2][4]allpass

	wet1 float64
	wet2 float64

	preBuf     [2][]float64
	preWrite   [2]int
	preSamples int
}

// New creates a reverb at the given sample rate with medium room
// settings and no pre-delay.
func New(sampleRate float64) (*Reverb, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("reverb: sample rate must be > 0: %f", sampleRate)
	}

	r := &Reverb{sampleRate: sampleRate}

	scale := sampleRate / refSampleRate
	for ch := 0; ch < 2; ch++ {
		spread := ch * stereoSpread
		for i, tuning := range combTunings {
			r.combs[ch][i].buf = make([]float64, scaledLength(tuning+spread, scale))
		}
		for i, tuning := range allpassTunings {
			r.allpasses[ch][i].buf = make([]float64, scaledLength(tuning+spread, scale))
		}
		r.preBuf[ch] = make([]float64, int(sampleRate*maxPreDelaySeconds)+1)
	}

	r.SetParameters(0.5, 0.5, 0, 1)
	return r, nil
}

func scaledLength(refSamples int, scale float64) int {
	n := int(float64(refSamples) * scale)
	if n < 1 {
		n = 1
	}
	return n
}

// Reset clears all delay lines and filter state.
func (r *Reverb) Reset() {
	for ch := 0; ch < 2; ch++ {
		for i := range r.combs[ch] {
			c := &r.combs[ch][i]
			for j := range c.buf {
				c.buf[j] = 0
			}
			c.idx = 0
			c.filterStore = 0
		}
		for i := range r.allpasses[ch] {
			a := &r.allpasses[ch][i]
			for j := range a.buf {
				a.buf[j] = 0
			}
			a.idx = 0
		}
		for i := range r.preBuf[ch] {
			r.preBuf[ch][i] = 0
		}
		r.preWrite[ch] = 0
	}
}

// SetParameters updates the reverb for the next block.
// size and damp are 0..1, preDelayMs is 0..200, width is 0 (mono tail)
// to 1 (full stereo tail).
func (r *Reverb) SetParameters(size01, damp01, preDelayMs, width01 float64) {
	size01 = core.Clamp(size01, 0, 1)
	damp01 = core.Clamp(damp01, 0, 1)
	width01 = core.Clamp(width01, 0, 1)

	feedback := feedbackBase + feedbackSpan*size01
	damp := dampScale * damp01
	for ch := 0; ch < 2; ch++ {
		for i := range r.combs[ch] {
			r.combs[ch][i].feedback = feedback
			r.combs[ch][i].damp = damp
		}
	}

	r.wet1 = width01/2 + 0.5
	r.wet2 = (1 - width01) / 2

	samples := int(preDelayMs * 0.001 * r.sampleRate)
	maxSamples := len(r.preBuf[0]) - 1
	if samples < 0 {
		samples = 0
	} else if samples > maxSamples {
		samples = maxSamples
	}
	r.preSamples = samples
}

// PreDelaySamples returns the pre-delay currently applied, in samples.
func (r *Reverb) PreDelaySamples() int { return r.preSamples }

// Process replaces both channels with the wet reverb signal.
func (r *Reverb) Process(left, right []float64) {
	if r.preSamples > 0 {
		r.applyPreDelay(0, left)
		r.applyPreDelay(1, right)
	}

	for s := range left {
		in := (left[s] + right[s]) * fixedGain

		var outL, outR float64
		for i := range r.combs[0] {
			outL += r.combs[0][i].process(in)
			outR += r.combs[1][i].process(in)
		}
		for i := range r.allpasses[0] {
			outL = r.allpasses[0][i].process(outL)
			outR = r.allpasses[1][i].process(outR)
		}

		left[s] = outL*r.wet1 + outR*r.wet2
		right[s] = outR*r.wet1 + outL*r.wet2
	}

	for ch := 0; ch < 2; ch++ {
		for i := range r.combs[ch] {
			r.combs[ch][i].filterStore = core.FlushDenormals(r.combs[ch][i].filterStore)
		}
	}
}

func (r *Reverb) applyPreDelay(ch int, buf []float64) {
	line := r.preBuf[ch]
	pos := r.preWrite[ch]

	for s := range buf {
		line[pos] = buf[s]

		readPos := pos - r.preSamples
		if readPos < 0 {
			readPos += len(line)
		}
		buf[s] = line[readPos]

		pos++
		if pos >= len(line) {
			pos = 0
		}
	}

	r.preWrite[ch] = pos
}
