package smooth

import (
	"fmt"

	"github.com/cwbudde/algo-morphfx/param"
)

// Bank runs one Ramp per scene field with the field's fixed smoothing
// class. Discrete fields snap so they never pass through invalid
// intermediate values (a fractional filter mode, for instance).
type Bank struct {
	ramps [param.NumFields]Ramp
}

// NewBank creates a bank for the given sample rate, with every channel
// resting at the registry default.
func NewBank(sampleRate float64) (*Bank, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("smooth: sample rate must be > 0: %f", sampleRate)
	}

	b := &Bank{}
	for i := range param.Fields {
		b.ramps[i].Reset(sampleRate, param.Fields[i].Smooth.Seconds())
		b.ramps[i].SetCurrentAndTarget(param.Fields[i].Default)
	}
	return b, nil
}

// Advance pushes a new target scene and steps every channel by n samples,
// returning the smoothed scene for this block.
func (b *Bank) Advance(target param.Scene, n int) param.Scene {
	var out param.Scene
	for i := range param.Fields {
		if param.Fields[i].Discrete {
			b.ramps[i].SetCurrentAndTarget(target.Values[i])
		} else {
			b.ramps[i].SetTarget(target.Values[i])
		}

		b.ramps[i].Skip(n)
		out.Values[i] = b.ramps[i].Current()
	}
	return out
}

// Current returns the present smoothed scene without advancing.
func (b *Bank) Current() param.Scene {
	var out param.Scene
	for i := range param.Fields {
		out.Values[i] = b.ramps[i].Current()
	}
	return out
}
