package delay

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/signal"
)

func TestNewValidates(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := New(math.Inf(1)); err == nil {
		t.Fatal("expected error for infinite sample rate")
	}
}

func TestSyncTimeAtQuarterNote(t *testing.T) {
	d, err := New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Quarter note at 120 BPM is half a second: 24000 samples at 48 kHz.
	d.SetParameters(3, 0.25, 0.5, 1, false, 120)
	if got := d.TargetDelaySamples(); got != 24000 {
		t.Fatalf("target delay = %g samples, want 24000", got)
	}
}

func TestImplausibleTempoFallsBackTo120(t *testing.T) {
	d, err := New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	d.SetParameters(3, 0.25, 0.5, 1, false, 120)
	want := d.TargetDelaySamples()

	for _, bpm := range []float64{0, -3, 20} {
		d.SetParameters(3, 0.25, 0.5, 1, false, bpm)
		if got := d.TargetDelaySamples(); got != want {
			t.Fatalf("bpm=%g: target = %g, want fallback %g", bpm, got, want)
		}
	}
}

func TestSyncIndexAndBufferClamping(t *testing.T) {
	d, err := New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Out-of-range sync indices clamp to the table edges.
	d.SetParameters(99, 0.25, 0.5, 1, false, 120)
	if got := d.TargetDelaySamples(); got != 36000 { // dotted quarter = 1.5 beats
		t.Fatalf("clamped high sync: target = %g, want 36000", got)
	}
	d.SetParameters(-1, 0.25, 0.5, 1, false, 120)
	if got := d.TargetDelaySamples(); got != 3000 { // 1/32 = 0.125 beats
		t.Fatalf("clamped low sync: target = %g, want 3000", got)
	}

	// One bar at 30 BPM would need 8 seconds; the target must stop at the
	// buffer edge.
	d.SetParameters(5, 0.25, 0.5, 1, false, 30)
	if got := d.TargetDelaySamples(); got != float64(d.bufSize-1) {
		t.Fatalf("overlong delay not clamped: target = %g, cap %d", got, d.bufSize-1)
	}
}

func TestEchoArrivesAfterDelayTime(t *testing.T) {
	const sampleRate = 8000.0

	d, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Quarter note at 120 BPM at 8 kHz is 4000 samples, which matches the
	// initial delay time, so no ramp is in flight.
	d.SetParameters(3, 0, 1, 1, false, 120)

	left := make([]float64, 4100)
	right := make([]float64, 4100)
	left[0] = 1
	d.Process(left, right)

	if math.Abs(left[4000]-1) > 1e-9 {
		t.Fatalf("echo at 4000 = %g, want 1", left[4000])
	}
	for i := 1; i < 3999; i++ {
		if left[i] != 0 {
			t.Fatalf("unexpected output before the echo at %d: %g", i, left[i])
		}
	}
}

func TestFeedbackIsCappedBelowUnity(t *testing.T) {
	const sampleRate = 8000.0

	d, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Requested feedback of 3 would triple every repeat; the cap must keep
	// the output bounded across several repeat cycles.
	d.SetParameters(3, 3.0, 1, 1, false, 120)

	left := make([]float64, 4000)
	right := make([]float64, 4000)
	left[0] = 1

	var peak float64
	for block := 0; block < 6; block++ {
		d.Process(left, right)
		for _, v := range left {
			if a := math.Abs(v); a > peak {
				peak = a
			}
		}
		for i := range left {
			left[i] = 0
			right[i] = 0
		}
	}

	if peak > 1.5 {
		t.Fatalf("feedback not capped: peak %g across repeats", peak)
	}
}

func TestMonoInputStaysMono(t *testing.T) {
	const sampleRate = 8000.0

	d, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.SetParameters(2, 0.5, 0.5, 1, false, 120)

	gen := signal.NewGenerator()
	left, err := gen.WhiteNoise(0.5, 8000)
	if err != nil {
		t.Fatalf("noise: %v", err)
	}
	right := make([]float64, len(left))
	copy(right, left)

	for block := 0; block < 3; block++ {
		d.Process(left, right)
		for i := range left {
			if left[i] != right[i] {
				t.Fatalf("block %d sample %d: L=%g R=%g", block, i, left[i], right[i])
			}
		}
	}
}

func TestZeroWidthCollapsesWetToMono(t *testing.T) {
	const sampleRate = 8000.0

	d, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.SetParameters(3, 0, 1, 0, false, 120)

	// An impulse on the left only: at width 0 both channels get the mono
	// average of the delayed pair.
	left := make([]float64, 4100)
	right := make([]float64, 4100)
	left[0] = 1
	d.Process(left, right)

	if math.Abs(left[4000]-0.5) > 1e-9 || math.Abs(right[4000]-0.5) > 1e-9 {
		t.Fatalf("mono collapse: L=%g R=%g, want 0.5/0.5", left[4000], right[4000])
	}
}

func TestPingPongCrossesRepeatsToOtherChannel(t *testing.T) {
	const sampleRate = 8000.0

	d, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d.SetParameters(3, 0.5, 1, 1, true, 120)

	// First repeat of a left impulse plays on the left; its feedback is
	// routed into the right line, so the second repeat plays on the right.
	left := make([]float64, 8200)
	right := make([]float64, 8200)
	left[0] = 1
	d.Process(left, right)

	var lPeak, rPeak float64
	for i := 7900; i < 8100; i++ {
		if a := math.Abs(left[i]); a > lPeak {
			lPeak = a
		}
		if a := math.Abs(right[i]); a > rPeak {
			rPeak = a
		}
	}

	if rPeak < 0.2 {
		t.Fatalf("second repeat missing on right: peak %g", rPeak)
	}
	if lPeak > 0.05 {
		t.Fatalf("second repeat leaked onto left: peak %g", lPeak)
	}
}

func TestDelayTimeRampsOverFiftyMilliseconds(t *testing.T) {
	const sampleRate = 8000.0

	d, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := d.CurrentDelaySamples()
	d.SetParameters(0, 0.25, 0.5, 1, false, 120)
	want := d.TargetDelaySamples()
	if want == start {
		t.Fatal("test needs a target different from the initial time")
	}

	// Halfway through the 50 ms window the time is in flight.
	left := make([]float64, 200)
	right := make([]float64, 200)
	d.Process(left, right)

	mid := d.CurrentDelaySamples()
	if mid == start || mid == want {
		t.Fatalf("delay time jumped instead of ramping: %g", mid)
	}

	// The remaining 200 samples complete the 400-sample window exactly.
	d.Process(left, right)
	if got := d.CurrentDelaySamples(); got != want {
		t.Fatalf("delay time after ramp = %g, want %g", got, want)
	}
}
