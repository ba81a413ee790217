package filter

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/signal"
)

func rms(buf []float64) float64 {
	var sum float64
	for _, v := range buf {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf)))
}

func TestNewValidates(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := New(math.NaN()); err == nil {
		t.Fatal("expected error for NaN sample rate")
	}
}

func TestLowpassAttenuatesHighFrequencies(t *testing.T) {
	const (
		sampleRate = 48000.0
		n          = 8192
	)

	f, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.SetParameters(ModeLowpass, 500, 0)

	// 500 Hz cutoff: a 10 kHz tone should come out far quieter than a 100 Hz tone.
	low := make([]float64, n)
	high := make([]float64, n)
	for i := 0; i < n; i++ {
		low[i] = math.Sin(2 * math.Pi * 100 * float64(i) / sampleRate)
		high[i] = math.Sin(2 * math.Pi * 10000 * float64(i) / sampleRate)
	}

	f.Process(low, make([]float64, n))
	f.Reset()
	f.Process(high, make([]float64, n))

	// Skip the transient at the start.
	lowRMS := rms(low[n/2:])
	highRMS := rms(high[n/2:])

	if highRMS > lowRMS*0.05 {
		t.Fatalf("lowpass barely attenuates: pass=%g stop=%g", lowRMS, highRMS)
	}
}

func TestHighpassAttenuatesLowFrequencies(t *testing.T) {
	const (
		sampleRate = 48000.0
		n          = 8192
	)

	f, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.SetParameters(ModeHighpass, 5000, 0)

	low := make([]float64, n)
	high := make([]float64, n)
	for i := 0; i < n; i++ {
		low[i] = math.Sin(2 * math.Pi * 100 * float64(i) / sampleRate)
		high[i] = math.Sin(2 * math.Pi * 15000 * float64(i) / sampleRate)
	}

	f.Process(low, make([]float64, n))
	f.Reset()
	f.Process(high, make([]float64, n))

	if rms(low[n/2:]) > rms(high[n/2:])*0.05 {
		t.Fatalf("highpass barely attenuates: stop=%g pass=%g", rms(low[n/2:]), rms(high[n/2:]))
	}
}

func TestBandpassPeaksAtCutoff(t *testing.T) {
	const (
		sampleRate = 48000.0
		n          = 8192
	)

	f, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	levels := map[float64]float64{}
	for _, freq := range []float64{100, 1000, 10000} {
		f.Reset()
		f.SetParameters(ModeBandpass, 1000, 0.3)

		buf := make([]float64, n)
		for i := range buf {
			buf[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
		}
		f.Process(buf, make([]float64, n))
		levels[freq] = rms(buf[n/2:])
	}

	if levels[1000] <= levels[100] || levels[1000] <= levels[10000] {
		t.Fatalf("bandpass does not peak at cutoff: %v", levels)
	}
}

func TestResonanceBoostsCutoffRegion(t *testing.T) {
	const (
		sampleRate = 48000.0
		n          = 8192
	)

	run := func(reso float64) float64 {
		f, err := New(sampleRate)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		f.SetParameters(ModeLowpass, 1000, reso)

		buf := make([]float64, n)
		for i := range buf {
			buf[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / sampleRate)
		}
		f.Process(buf, make([]float64, n))
		return rms(buf[n/2:])
	}

	flat := run(0)
	peaked := run(1)

	if peaked < flat*2 {
		t.Fatalf("high resonance does not boost cutoff region: flat=%g peaked=%g", flat, peaked)
	}
}

func TestStatePersistsAcrossBlocksAndChannelsAreIndependent(t *testing.T) {
	const sampleRate = 48000.0

	f, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.SetParameters(ModeLowpass, 200, 0)

	// An impulse on the left channel must ring into the next block while
	// leaving the right channel silent.
	left := make([]float64, 64)
	right := make([]float64, 64)
	left[0] = 1
	f.Process(left, right)

	left2 := make([]float64, 64)
	right2 := make([]float64, 64)
	f.Process(left2, right2)

	var tail float64
	for _, v := range left2 {
		tail += math.Abs(v)
	}
	if tail == 0 {
		t.Fatal("filter state did not persist across blocks")
	}

	for i, v := range right2 {
		if v != 0 {
			t.Fatalf("right channel rang at %d: %g", i, v)
		}
	}
}

func TestUnknownModeFallsBackToLowpass(t *testing.T) {
	f, err := New(48000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.SetParameters(Mode(42), 1000, 0)
	if f.Mode() != ModeLowpass {
		t.Fatalf("mode = %v, want lowpass fallback", f.Mode())
	}
}

func TestFilterStableOnGeneratedNoise(t *testing.T) {
	const sampleRate = 48000.0

	f, err := New(sampleRate)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.SetParameters(ModeLowpass, 18000, 1)

	gen := signal.NewGenerator()
	buf, err := gen.WhiteNoise(1.0, 48000)
	if err != nil {
		t.Fatalf("noise: %v", err)
	}

	f.Process(buf, make([]float64, len(buf)))

	for i, v := range buf {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("unstable output at %d: %g", i, v)
		}
	}
}
