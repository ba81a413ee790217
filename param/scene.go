package param

import "github.com/cwbudde/algo-dsp/dsp/core"

// NumScenes is the size of the scene bank.
const NumScenes = 8

// Scene is one stored snapshot of the 14 scene parameters.
// Values are kept in each field's native unit.
type Scene struct {
	Values [NumFields]float64
}

// DefaultScene returns a scene filled from the registry defaults.
func DefaultScene() Scene {
	var s Scene
	for i := range Fields {
		s.Values[i] = Fields[i].Default
	}
	return s
}

// Morph blends two scenes by t.
//
// Continuous fields interpolate linearly in their native unit; discrete
// fields take a's value while t < 0.5 and b's value from 0.5 upward.
// The caller supplies t in [0,1]; Morph does not clamp it.
func Morph(a, b Scene, t float64) Scene {
	var out Scene
	for i := range Fields {
		if Fields[i].Discrete {
			if t < 0.5 {
				out.Values[i] = a.Values[i]
			} else {
				out.Values[i] = b.Values[i]
			}
			continue
		}
		out.Values[i] = a.Values[i] + t*(b.Values[i]-a.Values[i])
	}
	return out
}

// ClampToRanges forces every value back into its registry range.
func (s *Scene) ClampToRanges() {
	for i := range Fields {
		s.Values[i] = core.Clamp(s.Values[i], Fields[i].Min, Fields[i].Max)
	}
}
