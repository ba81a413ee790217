// Package macro maps four macro controls onto weighted, curved offsets
// against a scene's continuous parameters.
//
// Target lists are replaced as whole values and read through an atomic
// pointer, so the real-time path never observes a partially updated list.
package macro

import (
	"sync/atomic"

	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-morphfx/param"
)

// NumMacros is the number of independent macro controls.
const NumMacros = 4

// zeroThreshold is the cutoff below which a macro contributes nothing.
const zeroThreshold = 0.001

// Target maps one macro onto one scene field.
type Target struct {
	// Field is a param field index.
	Field int
	// Weight scales the offset as a fraction of the field's full range,
	// in [-1, 1].
	Weight float64
	// Curve shapes the macro value before weighting.
	Curve param.Curve
}

// Engine holds the four macro target lists.
type Engine struct {
	mappings [NumMacros]atomic.Pointer[[]Target]
}

// NewEngine returns an engine loaded with the default mappings.
func NewEngine() *Engine {
	e := &Engine{}
	for m, targets := range DefaultMappings() {
		e.SetMappings(m, targets)
	}
	return e
}

// DefaultMappings returns the factory macro assignments:
// filter sweep, dirt, space and width.
func DefaultMappings() [NumMacros][]Target {
	return [NumMacros][]Target{
		{
			{Field: param.FiltCutoff, Weight: 0.5},
			{Field: param.FiltReso, Weight: 0.3},
		},
		{
			{Field: param.DriveAmt, Weight: 0.7},
			{Field: param.DriveTone, Weight: -0.3},
		},
		{
			{Field: param.DelayFeedback, Weight: 0.4},
			{Field: param.RevSize, Weight: 0.5},
			{Field: param.RevPreDelay, Weight: 0.2},
		},
		{
			{Field: param.DelayWidth, Weight: 0.3},
			{Field: param.RevWidth, Weight: 0.2},
		},
	}
}

// SetMappings replaces macro m's target list in one swap.
// Out-of-range macro indices are ignored. The engine keeps its own copy,
// so callers may reuse the slice afterwards.
func (e *Engine) SetMappings(m int, targets []Target) {
	if m < 0 || m >= NumMacros {
		return
	}

	own := make([]Target, len(targets))
	copy(own, targets)
	e.mappings[m].Store(&own)
}

// Mappings returns macro m's current target list. The returned slice must
// be treated as read-only.
func (e *Engine) Mappings(m int) []Target {
	if m < 0 || m >= NumMacros {
		return nil
	}

	p := e.mappings[m].Load()
	if p == nil {
		return nil
	}
	return *p
}

// TargetCount returns the number of targets assigned to macro m.
func (e *Engine) TargetCount(m int) int {
	return len(e.Mappings(m))
}

// ClearAll removes every target from every macro.
func (e *Engine) ClearAll() {
	for m := 0; m < NumMacros; m++ {
		e.SetMappings(m, nil)
	}
}

// Apply adds macro offsets to scene in place.
//
// Macros below the zero threshold are skipped entirely. For each target,
// in list order: discrete fields are skipped; otherwise
// offset = curve(value) · weight · (max−min), and the clamped result feeds
// any later target touching the same field. Contributions are therefore
// additive and order-dependent, which is the intended composition rule.
func (e *Engine) Apply(scene *param.Scene, values [NumMacros]float64) {
	for m := 0; m < NumMacros; m++ {
		raw := values[m]
		if raw < zeroThreshold {
			continue
		}

		for _, target := range e.Mappings(m) {
			idx := target.Field
			if idx < 0 || idx >= param.NumFields {
				continue
			}

			field := param.Fields[idx]
			if field.Discrete {
				continue
			}

			curved := target.Curve.Apply(raw)
			offset := curved * target.Weight * (field.Max - field.Min)
			scene.Values[idx] = core.Clamp(scene.Values[idx]+offset, field.Min, field.Max)
		}
	}
}
