// Package param defines the canonical 14-field parameter registry of the
// morph engine: field ranges, defaults, discreteness, smoothing classes,
// scene snapshots and the morph/curve primitives operating on them.
//
// The field order is the cross-system key. It is persisted in documents
// and must never change once shipped.
package param

// Field indices. Order is frozen; see package comment.
const (
	FiltMode = iota
	FiltCutoff
	FiltReso
	DriveAmt
	DriveTone
	DelaySync
	DelayFeedback
	DelayTone
	DelayWidth
	DelayPingPong
	RevSize
	RevDamp
	RevPreDelay
	RevWidth

	// NumFields is the number of scene parameters. Always 14.
	NumFields
)

// SmoothClass groups fields by their fixed smoothing window.
type SmoothClass int

const (
	// SmoothNone marks discrete fields that snap instead of ramping.
	SmoothNone SmoothClass = iota
	// SmoothCutoff is the 20 ms class used for filter cutoff.
	SmoothCutoff
	// SmoothTone is the 30 ms class for tone/resonance-style controls.
	SmoothTone
	// SmoothFeedback is the 50 ms class for delay feedback.
	SmoothFeedback
	// SmoothTimeish is the 100 ms class for size/pre-delay-style controls.
	SmoothTimeish
)

// Seconds returns the ramp duration of the class.
func (c SmoothClass) Seconds() float64 {
	switch c {
	case SmoothCutoff:
		return 0.020
	case SmoothTone:
		return 0.030
	case SmoothFeedback:
		return 0.050
	case SmoothTimeish:
		return 0.100
	default:
		return 0
	}
}

// Field describes one scene parameter.
type Field struct {
	ID       string
	Min      float64
	Max      float64
	Default  float64
	Discrete bool
	Smooth   SmoothClass
}

// Fields is the canonical registry. Index it with the constants above.
var Fields = [NumFields]Field{
	FiltMode:      {ID: "filtMode", Min: 0, Max: 2, Default: 0, Discrete: true, Smooth: SmoothNone},
	FiltCutoff:    {ID: "filtCutoffHz", Min: 20, Max: 20000, Default: 8000, Smooth: SmoothCutoff},
	FiltReso:      {ID: "filtReso", Min: 0, Max: 1, Default: 0.2, Smooth: SmoothTone},
	DriveAmt:      {ID: "driveAmt", Min: 0, Max: 1, Default: 0, Smooth: SmoothTone},
	DriveTone:     {ID: "driveTone", Min: 0, Max: 1, Default: 0.5, Smooth: SmoothTone},
	DelaySync:     {ID: "delaySync", Min: 0, Max: 7, Default: 2, Discrete: true, Smooth: SmoothNone},
	DelayFeedback: {ID: "delayFeedback", Min: 0, Max: 0.95, Default: 0.25, Smooth: SmoothFeedback},
	DelayTone:     {ID: "delayTone", Min: 0, Max: 1, Default: 0.5, Smooth: SmoothTone},
	DelayWidth:    {ID: "delayWidth", Min: 0, Max: 1, Default: 0.7, Smooth: SmoothTone},
	DelayPingPong: {ID: "delayPingPong", Min: 0, Max: 1, Default: 0, Discrete: true, Smooth: SmoothNone},
	RevSize:       {ID: "revSize", Min: 0, Max: 1, Default: 0.35, Smooth: SmoothTimeish},
	RevDamp:       {ID: "revDamp", Min: 0, Max: 1, Default: 0.5, Smooth: SmoothTone},
	RevPreDelay:   {ID: "revPreDelayMs", Min: 0, Max: 200, Default: 10, Smooth: SmoothTimeish},
	RevWidth:      {ID: "revWidth", Min: 0, Max: 1, Default: 0.8, Smooth: SmoothTone},
}

// FieldByID resolves a persisted field name to its index.
func FieldByID(id string) (int, bool) {
	for i := range Fields {
		if Fields[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
