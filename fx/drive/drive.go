// Package drive implements the chain's waveshaper stage: a tanh soft
// clipper followed by a one-pole low-pass tone filter.
package drive

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

const (
	// Below this amount the stage is an exact pass-through.
	bypassThreshold = 0.001

	// Drive gain spans 1..50 over the amount range.
	gainSpan = 49.0

	// Tone cutoff spans 800 Hz .. 20 kHz: 800 · 25^tone.
	toneBaseHz = 800.0
	toneSpan   = 25.0
)

// Drive is a stereo waveshaper with a post-shape tone filter.
//
// SetParameters is expected once per block before Process. The tone
// filter state persists across blocks and only runs while the drive
// branch runs.
type Drive struct {
	sampleRate float64

	amount    float64
	toneCoeff float64

	toneState [2]float64
}

// New creates a drive stage at the given sample rate, fully clean.
func New(sampleRate float64) (*Drive, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("drive: sample rate must be > 0: %f", sampleRate)
	}

	d := &Drive{sampleRate: sampleRate}
	d.SetParameters(0, 0.5)
	return d, nil
}

// Reset clears the tone filter state.
func (d *Drive) Reset() {
	d.toneState = [2]float64{}
}

// SetParameters updates amount and tone for the next block.
// amount 0 is clean, 1 is heavy clipping; tone 0 is dark, 1 is bright.
func (d *Drive) SetParameters(amount01, tone01 float64) {
	d.amount = core.Clamp(amount01, 0, 1)
	tone01 = core.Clamp(tone01, 0, 1)

	cutoffHz := toneBaseHz * math.Pow(toneSpan, tone01)
	d.toneCoeff = 1 - math.Exp(-2*math.Pi*cutoffHz/d.sampleRate)
}

// Amount returns the current drive amount.
func (d *Drive) Amount() float64 { return d.amount }

// Process shapes both channels in place. Amounts below the bypass
// threshold leave the buffers untouched.
func (d *Drive) Process(left, right []float64) {
	if d.amount < bypassThreshold {
		return
	}

	gain := 1 + d.amount*gainSpan
	d.processChannel(0, gain, left)
	d.processChannel(1, gain, right)
}

func (d *Drive) processChannel(ch int, gain float64, buf []float64) {
	z := d.toneState[ch]
	a := d.toneCoeff

	for i, in := range buf {
		shaped := shapeTanh(gain * in)
		z += a * (shaped - z)
		buf[i] = z
	}

	d.toneState[ch] = core.FlushDenormals(z)
}
