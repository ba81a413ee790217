package macro

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-morphfx/param"
)

func TestApplyAllZeroIsNoOp(t *testing.T) {
	e := NewEngine()
	s := param.DefaultScene()
	want := s

	e.Apply(&s, [NumMacros]float64{})

	if s != want {
		t.Fatalf("apply with zero macros changed the scene: %v != %v", s, want)
	}
}

func TestApplyNeverTouchesDiscreteFields(t *testing.T) {
	e := NewEngine()
	e.SetMappings(0, []Target{
		{Field: param.FiltMode, Weight: 1},
		{Field: param.DelaySync, Weight: 1},
		{Field: param.DelayPingPong, Weight: 1},
	})

	s := param.DefaultScene()
	want := s

	e.Apply(&s, [NumMacros]float64{1, 1, 1, 1})

	if s.Values[param.FiltMode] != want.Values[param.FiltMode] ||
		s.Values[param.DelaySync] != want.Values[param.DelaySync] ||
		s.Values[param.DelayPingPong] != want.Values[param.DelayPingPong] {
		t.Fatalf("discrete fields altered: %v", s)
	}
}

func TestApplyCurvedOffset(t *testing.T) {
	e := NewEngine()
	e.SetMappings(0, []Target{
		{Field: param.FiltCutoff, Weight: 0.5, Curve: param.CurveExponential},
	})

	s := param.DefaultScene()
	base := s.Values[param.FiltCutoff]

	e.Apply(&s, [NumMacros]float64{0.5, 0, 0, 0})

	// curved = 0.25, offset = 0.25 * 0.5 * 19980 = 2497.5
	want := math.Min(base+2497.5, 20000)
	if got := s.Values[param.FiltCutoff]; math.Abs(got-want) > 1e-9 {
		t.Fatalf("cutoff = %g, want %g", got, want)
	}
}

func TestApplyClampsToRange(t *testing.T) {
	e := NewEngine()
	e.SetMappings(0, []Target{
		{Field: param.DriveAmt, Weight: 1},
		{Field: param.DelayFeedback, Weight: -1},
	})

	s := param.DefaultScene()
	s.Values[param.DriveAmt] = 0.9

	e.Apply(&s, [NumMacros]float64{1, 0, 0, 0})

	if got := s.Values[param.DriveAmt]; got != 1 {
		t.Errorf("driveAmt = %g, want clamp at 1", got)
	}
	if got := s.Values[param.DelayFeedback]; got != 0 {
		t.Errorf("delayFeedback = %g, want clamp at 0", got)
	}
}

func TestApplyAccumulatesInListOrder(t *testing.T) {
	e := NewEngine()
	e.SetMappings(0, []Target{
		{Field: param.DriveAmt, Weight: 1},
		{Field: param.DriveAmt, Weight: -0.25},
	})

	s := param.DefaultScene()
	s.Values[param.DriveAmt] = 0.5

	e.Apply(&s, [NumMacros]float64{1, 0, 0, 0})

	// First target saturates at 1.0, second pulls back by 0.25.
	if got := s.Values[param.DriveAmt]; math.Abs(got-0.75) > 1e-12 {
		t.Fatalf("driveAmt = %g, want 0.75 (accumulate-then-clamp per target)", got)
	}
}

func TestApplyBelowThresholdSkipsMacro(t *testing.T) {
	e := NewEngine()
	s := param.DefaultScene()
	want := s

	e.Apply(&s, [NumMacros]float64{0.0009, 0.0009, 0.0009, 0.0009})

	if s != want {
		t.Fatalf("sub-threshold macros changed the scene")
	}
}

func TestResultStaysInRangeForRandomishConfigs(t *testing.T) {
	e := NewEngine()
	e.SetMappings(1, []Target{
		{Field: param.FiltCutoff, Weight: -1, Curve: param.CurveLogarithmic},
		{Field: param.RevPreDelay, Weight: 1, Curve: param.CurveSCurve},
		{Field: param.DelayFeedback, Weight: 1},
	})

	for _, v := range []float64{0, 0.1, 0.33, 0.5, 0.77, 1} {
		s := param.DefaultScene()
		e.Apply(&s, [NumMacros]float64{v, v, v, v})

		for i := range param.Fields {
			f := param.Fields[i]
			if s.Values[i] < f.Min || s.Values[i] > f.Max {
				t.Fatalf("macro=%g: %s = %g outside [%g, %g]", v, f.ID, s.Values[i], f.Min, f.Max)
			}
		}
	}
}

func TestSetMappingsCopiesAndSwaps(t *testing.T) {
	e := NewEngine()
	targets := []Target{{Field: param.RevSize, Weight: 0.5}}
	e.SetMappings(2, targets)

	targets[0].Weight = -1 // caller mutation must not leak in

	got := e.Mappings(2)
	if len(got) != 1 || got[0].Weight != 0.5 {
		t.Fatalf("mappings = %v, want isolated copy with weight 0.5", got)
	}

	if e.TargetCount(2) != 1 {
		t.Fatalf("target count = %d", e.TargetCount(2))
	}

	e.SetMappings(-1, targets) // ignored
	e.SetMappings(99, targets) // ignored
	if e.Mappings(-1) != nil || e.Mappings(99) != nil {
		t.Fatal("out-of-range macro index not ignored")
	}
}

func TestClearAll(t *testing.T) {
	e := NewEngine()
	e.ClearAll()
	for m := 0; m < NumMacros; m++ {
		if e.TargetCount(m) != 0 {
			t.Fatalf("macro %d still has %d targets", m, e.TargetCount(m))
		}
	}
}

func TestDefaultMappingsTouchOnlyContinuousFields(t *testing.T) {
	for m, targets := range DefaultMappings() {
		for _, target := range targets {
			if param.Fields[target.Field].Discrete {
				t.Errorf("macro %d maps to discrete field %s", m, param.Fields[target.Field].ID)
			}
			if target.Weight < -1 || target.Weight > 1 {
				t.Errorf("macro %d weight %g outside [-1,1]", m, target.Weight)
			}
		}
	}
}
