// Package delay implements a tempo-synced stereo delay with feedback
// tone filtering, ping-pong routing and stereo width control.
package delay

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-morphfx/smooth"
)

const (
	// Buffer capacity covers one bar at 30 BPM.
	maxDelaySeconds = 2.0

	// Delay-time changes ramp over 50 ms to avoid clicks.
	timeRampSeconds = 0.05

	// Feedback is hard-capped below unity regardless of the requested value.
	maxFeedback = 0.95

	// Feedback tone cutoff spans 500 Hz .. 20 kHz: 500 · 40^tone.
	toneBaseHz = 500.0
	toneSpan   = 40.0

	// Tempos at or below this are treated as unreported.
	minPlausibleBPM = 20.0
	fallbackBPM     = 120.0
)

// noteBeats maps a sync index to a note duration in beats:
// 1/32, 1/16, 1/8, 1/4, 1/2, 1 bar, 1/8 dotted, 1/4 dotted.
var noteBeats = [8]float64{0.125, 0.25, 0.5, 1, 2, 4, 0.75, 1.5}

// Delay is a stereo delay line pair with a shared, smoothed delay time.
//
// Each channel owns a circular buffer, a write cursor and a one-pole
// low-pass filter in its feedback path. SetParameters is expected once
// per block before Process.
type Delay struct {
	sampleRate float64
	bufSize    int

	lines    [2][]float64
	writePos [2]int

	feedback float64
	width    float64
	pingPong bool

	toneCoeff float64
	toneState [2]float64

	time smooth.Ramp
}

// New creates a delay at the given sample rate with cleared lines and a
// quarter-buffer initial delay time.
func New(sampleRate float64) (*Delay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay: sample rate must be > 0: %f", sampleRate)
	}

	d := &Delay{
		sampleRate: sampleRate,
		bufSize:    int(sampleRate * maxDelaySeconds),
	}
	for ch := range d.lines {
		d.lines[ch] = make([]float64, d.bufSize)
	}

	d.time.Reset(sampleRate, timeRampSeconds)
	d.time.SetCurrentAndTarget(float64(d.bufSize / 4))

	d.SetParameters(3, 0.25, 0.7, 0.7, false, fallbackBPM)
	return d, nil
}

// Reset clears the delay lines, write cursors and tone filter state.
// The smoothed delay time is left alone so a reset does not retrigger
// a time ramp.
func (d *Delay) Reset() {
	for ch := range d.lines {
		for i := range d.lines[ch] {
			d.lines[ch][i] = 0
		}
		d.writePos[ch] = 0
	}
	d.toneState = [2]float64{}
}

// SetParameters updates the delay for the next block.
//
// syncIndex selects a note value from the sync table (clamped to 0..7),
// which together with bpm determines the target delay time. Tempos at
// or below 20 BPM fall back to 120. The new time feeds the 50 ms ramp
// rather than taking effect immediately.
func (d *Delay) SetParameters(syncIndex int, feedback, tone01, width01 float64, pingPong bool, bpm float64) {
	d.feedback = math.Min(feedback, maxFeedback)
	d.width = width01
	d.pingPong = pingPong

	if syncIndex < 0 {
		syncIndex = 0
	} else if syncIndex > len(noteBeats)-1 {
		syncIndex = len(noteBeats) - 1
	}
	beats := noteBeats[syncIndex]

	if bpm <= minPlausibleBPM {
		bpm = fallbackBPM
	}
	samples := beats * (60.0 / bpm) * d.sampleRate
	d.time.SetTarget(core.Clamp(samples, 1, float64(d.bufSize-1)))

	tone01 = core.Clamp(tone01, 0, 1)
	cutoffHz := toneBaseHz * math.Pow(toneSpan, tone01)
	d.toneCoeff = 1 - math.Exp(-2*math.Pi*cutoffHz/d.sampleRate)
}

// TargetDelaySamples returns the delay time the ramp is heading toward.
func (d *Delay) TargetDelaySamples() float64 { return d.time.Target() }

// CurrentDelaySamples returns the delay time as of the last processed sample.
func (d *Delay) CurrentDelaySamples() float64 { return d.time.Current() }

// Process runs the delay over both channels in place.
//
// Per sample, both channels' delayed values are read before either
// channel writes, so feedback never sees the other channel's
// just-written sample.
func (d *Delay) Process(left, right []float64) {
	bufs := [2][]float64{left, right}

	for s := range left {
		currentDelay := d.time.Next()

		var delayed [2]float64
		for ch := 0; ch < 2; ch++ {
			readPos := float64(d.writePos[ch]) - currentDelay
			if readPos < 0 {
				readPos += float64(d.bufSize)
			}

			idx0 := int(math.Floor(readPos))
			frac := readPos - math.Floor(readPos)
			if idx0 < 0 {
				idx0 += d.bufSize
			}
			if idx0 >= d.bufSize {
				idx0 -= d.bufSize
			}
			idx1 := idx0 + 1
			if idx1 >= d.bufSize {
				idx1 = 0
			}

			delayed[ch] = d.lines[ch][idx0]*(1-frac) + d.lines[ch][idx1]*frac
		}

		monoAvg := (delayed[0] + delayed[1]) * 0.5

		for ch := 0; ch < 2; ch++ {
			in := bufs[ch][s]

			src := delayed[ch]
			if d.pingPong {
				src = delayed[1-ch]
			}
			d.toneState[ch] += d.toneCoeff * (src - d.toneState[ch])

			d.lines[ch][d.writePos[ch]] = in + d.toneState[ch]*d.feedback

			wet := monoAvg + d.width*(delayed[ch]-monoAvg)
			bufs[ch][s] = in + wet

			d.writePos[ch]++
			if d.writePos[ch] >= d.bufSize {
				d.writePos[ch] = 0
			}
		}
	}

	d.toneState[0] = core.FlushDenormals(d.toneState[0])
	d.toneState[1] = core.FlushDenormals(d.toneState[1])
}
