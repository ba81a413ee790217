// Package engine wires the scene, macro and smoothing layers to the
// serial effect chain and owns the per-block processing loop.
//
// Control changes arrive from any goroutine through the setters; the
// audio goroutine reads them via atomic snapshots inside ProcessBlock.
package engine

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-morphfx/fx/delay"
	"github.com/cwbudde/algo-morphfx/fx/drive"
	"github.com/cwbudde/algo-morphfx/fx/filter"
	"github.com/cwbudde/algo-morphfx/fx/reverb"
	"github.com/cwbudde/algo-morphfx/macro"
	"github.com/cwbudde/algo-morphfx/param"
	"github.com/cwbudde/algo-morphfx/smooth"
)

const (
	// Input/output gain ramp times.
	gainRampSeconds = 0.02

	// Bypass crossfade window.
	bypassRampSeconds = 0.01

	// Settled-bypass fast path and crossfade activity thresholds.
	bypassSettledAbove = 0.999
	bypassActiveAbove  = 0.001

	// Hard output safety clamp.
	outputLimit = 4.0

	minGainDB = -24.0
	maxGainDB = 24.0

	defaultBPM = 120.0
)

// controlState holds every performance control in one immutable value.
// Setters publish a fresh copy; ProcessBlock loads it once per block.
type controlState struct {
	sceneA int
	sceneB int
	morph  float64

	macros [macro.NumMacros]float64

	mix          float64
	inputGainDB  float64
	outputGainDB float64
	bypassed     bool
	bpm          float64
}

func defaultControls() *controlState {
	return &controlState{
		sceneA: 0,
		sceneB: 1,
		mix:    1,
		bpm:    defaultBPM,
	}
}

// Engine is the realtime core: an 8-scene bank morphed and offset into a
// 14-field target, smoothed per field and fed to the serial chain
// filter → drive → delay → reverb, with dry/wet mix, gain staging,
// click-free bypass and an output safety clamp.
type Engine struct {
	sampleRate float64

	scenes   atomic.Pointer[[param.NumScenes]param.Scene]
	controls atomic.Pointer[controlState]
	snapshot atomic.Pointer[param.Scene]

	macros *macro.Engine
	bank   *smooth.Bank

	filter *filter.Filter
	drive  *drive.Drive
	delay  *delay.Delay
	reverb *reverb.Reverb

	inGain  smooth.Ramp
	outGain smooth.Ramp
	bypass  smooth.Ramp

	analyzer *Analyzer

	dry [2][]float64
	tmp []float64

	snapBuf [2]param.Scene
	snapIdx int
}

// Option configures optional engine features at construction time.
type Option func(*Engine)

// WithAnalyzer taps the post-limiter output into a spectrum analyzer.
func WithAnalyzer(a *Analyzer) Option {
	return func(e *Engine) { e.analyzer = a }
}

// New creates an engine at the given sample rate with the default scene
// bank, default macro mappings and neutral performance controls.
//
// maxBlockSize bounds the block length passed to ProcessBlock; all scratch
// buffers are sized here so that the processing path never allocates.
func New(sampleRate float64, maxBlockSize int, opts ...Option) (*Engine, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("engine: sample rate must be > 0: %f", sampleRate)
	}
	if maxBlockSize <= 0 {
		return nil, fmt.Errorf("engine: max block size must be > 0: %d", maxBlockSize)
	}

	bank, err := smooth.NewBank(sampleRate)
	if err != nil {
		return nil, err
	}

	flt, err := filter.New(sampleRate)
	if err != nil {
		return nil, err
	}
	drv, err := drive.New(sampleRate)
	if err != nil {
		return nil, err
	}
	dly, err := delay.New(sampleRate)
	if err != nil {
		return nil, err
	}
	rev, err := reverb.New(sampleRate)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		sampleRate: sampleRate,
		macros:     macro.NewEngine(),
		bank:       bank,
		filter:     flt,
		drive:      drv,
		delay:      dly,
		reverb:     rev,
	}

	var scenes [param.NumScenes]param.Scene
	for i := range scenes {
		scenes[i] = param.DefaultScene()
	}
	e.scenes.Store(&scenes)
	e.controls.Store(defaultControls())

	e.snapBuf[0] = param.DefaultScene()
	e.snapshot.Store(&e.snapBuf[0])
	e.snapIdx = 1

	e.dry[0] = make([]float64, maxBlockSize)
	e.dry[1] = make([]float64, maxBlockSize)
	e.tmp = make([]float64, maxBlockSize)

	e.inGain.Reset(sampleRate, gainRampSeconds)
	e.inGain.SetCurrentAndTarget(1)
	e.outGain.Reset(sampleRate, gainRampSeconds)
	e.outGain.SetCurrentAndTarget(1)
	e.bypass.Reset(sampleRate, bypassRampSeconds)
	e.bypass.SetCurrentAndTarget(0)

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	return e, nil
}

// SampleRate returns the rate the engine was created for.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// Macros exposes the macro mapping engine for configuration.
func (e *Engine) Macros() *macro.Engine { return e.macros }

// Reset clears all effect state without touching controls or scenes.
func (e *Engine) Reset() {
	e.filter.Reset()
	e.drive.Reset()
	e.delay.Reset()
	e.reverb.Reset()
}

func (e *Engine) setControls(mutate func(*controlState)) {
	next := *e.controls.Load()
	mutate(&next)
	e.controls.Store(&next)
}

// SetSceneSelection chooses the morph endpoints A and B.
// Out-of-range indices clamp to the bank edges.
func (e *Engine) SetSceneSelection(a, b int) {
	e.setControls(func(c *controlState) {
		c.sceneA = clampSceneIndex(a)
		c.sceneB = clampSceneIndex(b)
	})
}

// SetMorph sets the A/B morph position, clamped to 0..1.
func (e *Engine) SetMorph(t float64) {
	e.setControls(func(c *controlState) { c.morph = core.Clamp(t, 0, 1) })
}

// SetMacroValue sets one macro control, clamped to 0..1.
// Out-of-range macro indices are ignored.
func (e *Engine) SetMacroValue(index int, value float64) {
	if index < 0 || index >= macro.NumMacros {
		return
	}
	e.setControls(func(c *controlState) { c.macros[index] = core.Clamp(value, 0, 1) })
}

// SetMix sets the dry/wet balance, clamped to 0..1.
func (e *Engine) SetMix(mix float64) {
	e.setControls(func(c *controlState) { c.mix = core.Clamp(mix, 0, 1) })
}

// SetInputGainDB sets the pre-chain gain in decibels, clamped to ±24.
func (e *Engine) SetInputGainDB(db float64) {
	e.setControls(func(c *controlState) { c.inputGainDB = core.Clamp(db, minGainDB, maxGainDB) })
}

// SetOutputGainDB sets the post-mix gain in decibels, clamped to ±24.
func (e *Engine) SetOutputGainDB(db float64) {
	e.setControls(func(c *controlState) { c.outputGainDB = core.Clamp(db, minGainDB, maxGainDB) })
}

// SetBypassed engages or releases the click-free bypass crossfade.
func (e *Engine) SetBypassed(bypassed bool) {
	e.setControls(func(c *controlState) { c.bypassed = bypassed })
}

// SetTempoBPM updates the host tempo used for delay sync.
// Implausible tempos are handled downstream by the delay stage.
func (e *Engine) SetTempoBPM(bpm float64) {
	e.setControls(func(c *controlState) { c.bpm = bpm })
}

// ControlValues is a read-only copy of every performance control.
type ControlValues struct {
	SceneA int
	SceneB int
	Morph  float64

	Macros [macro.NumMacros]float64

	Mix          float64
	InputGainDB  float64
	OutputGainDB float64
	Bypassed     bool
	TempoBPM     float64
}

// ControlValues returns the current performance controls.
func (e *Engine) ControlValues() ControlValues {
	c := e.controls.Load()
	return ControlValues{
		SceneA:       c.sceneA,
		SceneB:       c.sceneB,
		Morph:        c.morph,
		Macros:       c.macros,
		Mix:          c.mix,
		InputGainDB:  c.inputGainDB,
		OutputGainDB: c.outputGainDB,
		Bypassed:     c.bypassed,
		TempoBPM:     c.bpm,
	}
}

// Scene returns a copy of one scene from the bank.
func (e *Engine) Scene(index int) (param.Scene, bool) {
	if index < 0 || index >= param.NumScenes {
		return param.Scene{}, false
	}
	return e.scenes.Load()[index], true
}

// Scenes returns a copy of the whole scene bank.
func (e *Engine) Scenes() [param.NumScenes]param.Scene {
	return *e.scenes.Load()
}

// SetScene replaces one scene. Values outside their field ranges are
// clamped. Out-of-range indices are ignored.
func (e *Engine) SetScene(index int, scene param.Scene) {
	if index < 0 || index >= param.NumScenes {
		return
	}
	scene.ClampToRanges()

	next := *e.scenes.Load()
	next[index] = scene
	e.scenes.Store(&next)
}

// SetScenes replaces the whole bank, clamping every scene to its ranges.
func (e *Engine) SetScenes(scenes [param.NumScenes]param.Scene) {
	for i := range scenes {
		scenes[i].ClampToRanges()
	}
	e.scenes.Store(&scenes)
}

// SetSceneValue writes one field of one scene, clamped to the field's
// range. Out-of-range indices are ignored.
func (e *Engine) SetSceneValue(sceneIndex, fieldIndex int, value float64) {
	if sceneIndex < 0 || sceneIndex >= param.NumScenes {
		return
	}
	if fieldIndex < 0 || fieldIndex >= param.NumFields {
		return
	}

	f := param.Fields[fieldIndex]

	next := *e.scenes.Load()
	next[sceneIndex].Values[fieldIndex] = core.Clamp(value, f.Min, f.Max)
	e.scenes.Store(&next)
}

// StoreCurrentToScene captures the current morph + macro result (before
// smoothing) into the given scene slot.
func (e *Engine) StoreCurrentToScene(index int) {
	if index < 0 || index >= param.NumScenes {
		return
	}

	c := e.controls.Load()
	morphed := e.morphedScene(c)

	next := *e.scenes.Load()
	next[index] = morphed
	e.scenes.Store(&next)
}

// LastComputed returns the smoothed 14-field values published by the
// most recent ProcessBlock call. Safe from any goroutine; the values are
// double-buffered, so a reader lags the audio path by at most one block.
func (e *Engine) LastComputed() param.Scene {
	return *e.snapshot.Load()
}

func (e *Engine) morphedScene(c *controlState) param.Scene {
	scenes := e.scenes.Load()
	morphed := param.Morph(scenes[c.sceneA], scenes[c.sceneB], c.morph)
	e.macros.Apply(&morphed, c.macros)
	return morphed
}

// ProcessBlock runs one audio block through the full chain in place.
// Both channel slices must have the same length, at most the max block
// size the engine was created with. The path never allocates.
func (e *Engine) ProcessBlock(left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("engine: channel length mismatch: %d != %d", len(left), len(right))
	}
	n := len(left)
	if n == 0 {
		return nil
	}
	if n > len(e.tmp) {
		return fmt.Errorf("engine: block length %d exceeds max block size %d", n, len(e.tmp))
	}

	c := e.controls.Load()

	if c.bypassed {
		e.bypass.SetTarget(1)
	} else {
		e.bypass.SetTarget(0)
	}

	// Fully bypassed and settled: the input passes through untouched.
	if !e.bypass.IsSmoothing() && e.bypass.Current() > bypassSettledAbove {
		e.bypass.Skip(n)
		return nil
	}

	morphed := e.morphedScene(c)
	smoothed := e.bank.Advance(morphed, n)

	e.snapBuf[e.snapIdx] = smoothed
	e.snapshot.Store(&e.snapBuf[e.snapIdx])
	e.snapIdx ^= 1

	dryL := e.dry[0][:n]
	dryR := e.dry[1][:n]
	copy(dryL, left)
	copy(dryR, right)

	e.inGain.SetTarget(core.DBToLinear(c.inputGainDB))
	applyGain(&e.inGain, left, right)

	v := &smoothed.Values

	e.filter.SetParameters(filter.Mode(int(v[param.FiltMode])), v[param.FiltCutoff], v[param.FiltReso])
	e.filter.Process(left, right)

	e.drive.SetParameters(v[param.DriveAmt], v[param.DriveTone])
	e.drive.Process(left, right)

	e.delay.SetParameters(int(v[param.DelaySync]), v[param.DelayFeedback], v[param.DelayTone],
		v[param.DelayWidth], v[param.DelayPingPong] > 0.5, c.bpm)
	e.delay.Process(left, right)

	e.reverb.SetParameters(v[param.RevSize], v[param.RevDamp], v[param.RevPreDelay], v[param.RevWidth])
	e.reverb.Process(left, right)

	if c.mix < 1 {
		e.mixDry(left, dryL, c.mix)
		e.mixDry(right, dryR, c.mix)
	}

	e.outGain.SetTarget(core.DBToLinear(c.outputGainDB))
	applyGain(&e.outGain, left, right)

	if e.bypass.IsSmoothing() || e.bypass.Current() > bypassActiveAbove {
		for s := 0; s < n; s++ {
			b := e.bypass.Next()
			left[s] += b * (dryL[s] - left[s])
			right[s] += b * (dryR[s] - right[s])
		}
	}

	for s := 0; s < n; s++ {
		left[s] = core.Clamp(left[s], -outputLimit, outputLimit)
		right[s] = core.Clamp(right[s], -outputLimit, outputLimit)
	}

	if e.analyzer != nil {
		for s := 0; s < n; s++ {
			e.analyzer.Push((left[s] + right[s]) * 0.5)
		}
	}

	return nil
}

// mixDry blends wet and dry as dry·(1−mix) + wet·mix.
func (e *Engine) mixDry(wet, dry []float64, mix float64) {
	tmp := e.tmp[:len(wet)]
	vecmath.ScaleBlock(wet, wet, mix)
	vecmath.ScaleBlock(tmp, dry, 1-mix)
	vecmath.AddBlockInPlace(wet, tmp)
}

func applyGain(r *smooth.Ramp, left, right []float64) {
	if !r.IsSmoothing() {
		g := r.Current()
		if g != 1 {
			vecmath.ScaleBlock(left, left, g)
			vecmath.ScaleBlock(right, right, g)
		}
		return
	}

	for i := range left {
		g := r.Next()
		left[i] *= g
		right[i] *= g
	}
}

func clampSceneIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= param.NumScenes {
		return param.NumScenes - 1
	}
	return i
}
