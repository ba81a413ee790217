package engine

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync/atomic"

	"github.com/cwbudde/algo-dsp/dsp/window"
	algofft "github.com/MeKo-Christian/algo-fft"
)

const (
	analyzerFloorDB   = -130.0
	analyzerSmoothing = 0.7
	analyzerEps       = 1e-12
)

// Analyzer is a Hann-windowed, 50%-overlap FFT spectrum tap for display.
//
// Push is meant for the audio goroutine and never takes a lock or
// allocates; finished frames are published through an atomic pointer into
// a pair of alternating dB buffers. CurveDB and Ready read the most
// recently published frame from any goroutine.
type Analyzer struct {
	sampleRate float64
	fftSize    int
	hopSize    int

	win        []float64
	winGain    float64
	plan       *algofft.Plan[complex128]
	fftInput   []complex128
	fftOutput  []complex128
	ring       []float64
	writePos   int
	filled     int
	toHop      int

	frames [2][]float64
	frame  int
	cur    atomic.Pointer[[]float64]
}

// NewAnalyzer creates an analyzer for the given FFT size, which must be
// a power of two between 256 and 8192.
func NewAnalyzer(sampleRate float64, fftSize int) (*Analyzer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("analyzer: sample rate must be > 0: %f", sampleRate)
	}
	switch fftSize {
	case 256, 512, 1024, 2048, 4096, 8192:
	default:
		return nil, fmt.Errorf("analyzer: unsupported fft size: %d", fftSize)
	}

	win := window.Generate(window.TypeHann, fftSize, window.WithPeriodic())
	if len(win) != fftSize {
		return nil, fmt.Errorf("analyzer: invalid window size: %d", len(win))
	}

	sum := 0.0
	for _, w := range win {
		sum += w
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer: fft plan: %w", err)
	}

	a := &Analyzer{
		sampleRate: sampleRate,
		fftSize:    fftSize,
		hopSize:    fftSize / 2,
		win:        win,
		winGain:    sum / float64(fftSize),
		plan:       plan,
		fftInput:   make([]complex128, fftSize),
		fftOutput:  make([]complex128, fftSize),
		ring:       make([]float64, fftSize),
	}
	a.frames[0] = make([]float64, fftSize/2+1)
	a.frames[1] = make([]float64, fftSize/2+1)
	return a, nil
}

// Push feeds one mono sample into the analysis ring.
func (a *Analyzer) Push(x float64) {
	a.ring[a.writePos] = x

	a.writePos++
	if a.writePos >= a.fftSize {
		a.writePos = 0
	}
	if a.filled < a.fftSize {
		a.filled++
	}

	a.toHop++
	if a.filled < a.fftSize || a.toHop < a.hopSize {
		return
	}
	a.toHop = 0
	a.updateFrame()
}

// Ready reports whether at least one full frame has been analyzed.
func (a *Analyzer) Ready() bool {
	return a.cur.Load() != nil
}

// CurveDB samples the smoothed spectrum in dBFS at the given frequencies,
// linearly interpolated between bins. Lock-free; a frame published while
// the curve is being read shows up on the next call.
func (a *Analyzer) CurveDB(freqs []float64) []float64 {
	out := make([]float64, len(freqs))

	cur := a.cur.Load()
	if cur == nil {
		for i := range out {
			out[i] = analyzerFloorDB
		}
		return out
	}
	db := *cur

	nyquist := a.sampleRate * 0.5
	binHz := a.sampleRate / float64(a.fftSize)
	lastBin := len(db) - 1

	for i, f := range freqs {
		if f < 0 {
			f = 0
		} else if f > nyquist {
			f = nyquist
		}

		bin := f / binHz
		if bin <= 0 {
			out[i] = db[0]
			continue
		}
		if bin >= float64(lastBin) {
			out[i] = db[lastBin]
			continue
		}

		base := int(bin)
		frac := bin - float64(base)
		out[i] = db[base] + frac*(db[base+1]-db[base])
	}

	return out
}

func (a *Analyzer) updateFrame() {
	read := a.writePos
	for i := 0; i < a.fftSize; i++ {
		a.fftInput[i] = complex(a.ring[read]*a.win[i], 0)

		read++
		if read >= a.fftSize {
			read = 0
		}
	}

	if err := a.plan.Forward(a.fftOutput, a.fftInput); err != nil {
		return
	}

	norm := float64(a.fftSize) * math.Max(a.winGain, analyzerEps)

	// Smooth against the last published frame into the spare buffer, then
	// swap the pointer. Readers keep the old frame until they reload.
	prev := a.cur.Load()
	idx := a.frame & 1
	a.frame++
	next := a.frames[idx]

	last := len(next) - 1
	for k := 0; k <= last; k++ {
		mag := cmplx.Abs(a.fftOutput[k]) / norm
		if k > 0 && k < last {
			mag *= 2
		}

		valDB := 20 * math.Log10(math.Max(analyzerEps, mag))
		if valDB < analyzerFloorDB {
			valDB = analyzerFloorDB
		}

		if prev == nil {
			next[k] = valDB
			continue
		}
		next[k] = analyzerSmoothing*(*prev)[k] + (1-analyzerSmoothing)*valDB
	}

	a.cur.Store(&a.frames[idx])
}
