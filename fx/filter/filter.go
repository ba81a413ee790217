// Package filter implements the chain's state-variable filter stage: a
// 2-pole TPT structure with low-pass, band-pass and high-pass modes and a
// normalized resonance control.
package filter

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

// Mode selects the filter response.
type Mode int

const (
	// ModeLowpass passes frequencies below the cutoff.
	ModeLowpass Mode = iota
	// ModeBandpass passes a band around the cutoff.
	ModeBandpass
	// ModeHighpass passes frequencies above the cutoff.
	ModeHighpass
)

func (m Mode) String() string {
	switch m {
	case ModeLowpass:
		return "lowpass"
	case ModeBandpass:
		return "bandpass"
	case ModeHighpass:
		return "highpass"
	default:
		return "unknown"
	}
}

const (
	minCutoffHz = 20.0
	maxCutoffHz = 20000.0

	// Damping endpoints of the normalized resonance control:
	// k = √2 is flat (Butterworth), k = 0.1 sits near self-oscillation.
	dampingFlat = math.Sqrt2
	dampingPeak = 0.1
)

type channelState struct {
	ic1 float64
	ic2 float64
}

// Filter is a stereo 2-pole TPT state-variable filter.
//
// SetParameters is expected once per block before Process; the integrator
// state persists across blocks and is only cleared by Reset.
type Filter struct {
	sampleRate float64

	mode Mode
	g    float64
	k    float64
	a1   float64
	a2   float64
	a3   float64

	state [2]channelState
}

// New creates a filter at the given sample rate with a flat 8 kHz low-pass.
func New(sampleRate float64) (*Filter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("filter: sample rate must be > 0: %f", sampleRate)
	}

	f := &Filter{sampleRate: sampleRate}
	f.SetParameters(ModeLowpass, 8000, 0)
	return f, nil
}

// Reset clears the integrator state of both channels.
func (f *Filter) Reset() {
	f.state = [2]channelState{}
}

// SetParameters updates mode, cutoff and resonance for the next block.
//
// Cutoff is clamped to [20 Hz, min(20 kHz, 0.49·sampleRate)]. reso01 in
// [0,1] interpolates the damping linearly from flat down to near
// self-oscillation. Unknown modes fall back to low-pass.
func (f *Filter) SetParameters(mode Mode, cutoffHz, reso01 float64) {
	if mode < ModeLowpass || mode > ModeHighpass {
		mode = ModeLowpass
	}
	f.mode = mode

	upper := math.Min(maxCutoffHz, 0.49*f.sampleRate)
	cutoffHz = core.Clamp(cutoffHz, minCutoffHz, upper)
	reso01 = core.Clamp(reso01, 0, 1)

	f.g = math.Tan(math.Pi * cutoffHz / f.sampleRate)
	f.k = dampingFlat + reso01*(dampingPeak-dampingFlat)
	f.a1 = 1 / (1 + f.g*(f.g+f.k))
	f.a2 = f.g * f.a1
	f.a3 = f.g * f.a2
}

// Mode returns the current filter mode.
func (f *Filter) Mode() Mode { return f.mode }

// Process filters both channels in place. Slices may have different
// lengths; each channel is processed over its own length.
func (f *Filter) Process(left, right []float64) {
	f.processChannel(0, left)
	f.processChannel(1, right)
}

func (f *Filter) processChannel(ch int, buf []float64) {
	s := &f.state[ch]
	ic1 := s.ic1
	ic2 := s.ic2

	for i, in := range buf {
		v3 := in - ic2
		v1 := f.a1*ic1 + f.a2*v3
		v2 := ic2 + f.a2*ic1 + f.a3*v3

		ic1 = 2*v1 - ic1
		ic2 = 2*v2 - ic2

		switch f.mode {
		case ModeBandpass:
			buf[i] = v1
		case ModeHighpass:
			buf[i] = in - f.k*v1 - v2
		default:
			buf[i] = v2
		}
	}

	s.ic1 = core.FlushDenormals(ic1)
	s.ic2 = core.FlushDenormals(ic2)
}
