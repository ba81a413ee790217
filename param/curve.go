package param

import "math"

// Curve selects the response shape applied to a raw 0..1 macro value
// before weighting.
type Curve int

const (
	// CurveLinear passes the value through unchanged: f(x) = x.
	CurveLinear Curve = iota
	// CurveExponential emphasises the top of the range: f(x) = x².
	CurveExponential
	// CurveLogarithmic emphasises the bottom of the range: f(x) = √x.
	CurveLogarithmic
	// CurveSCurve is the smoothstep shape: f(x) = 3x² − 2x³.
	CurveSCurve

	numCurves
)

func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveExponential:
		return "exponential"
	case CurveLogarithmic:
		return "logarithmic"
	case CurveSCurve:
		return "s-curve"
	default:
		return "unknown"
	}
}

// Curves lists all valid curve kinds in tag order.
func Curves() []Curve {
	return []Curve{CurveLinear, CurveExponential, CurveLogarithmic, CurveSCurve}
}

// ClampCurve maps any integer tag onto a valid curve kind.
// Out-of-range tags fall back to CurveLinear.
func ClampCurve(tag int) Curve {
	if tag < 0 || tag >= int(numCurves) {
		return CurveLinear
	}
	return Curve(tag)
}

// Apply evaluates the curve at x. The input is clamped to [0,1] first,
// so every kind maps 0→0 and 1→1 and is monotone non-decreasing.
func (c Curve) Apply(x float64) float64 {
	if x < 0 {
		x = 0
	}
	if x > 1 {
		x = 1
	}

	switch c {
	case CurveExponential:
		return x * x
	case CurveLogarithmic:
		return math.Sqrt(x)
	case CurveSCurve:
		return x * x * (3 - 2*x)
	default:
		return x
	}
}
