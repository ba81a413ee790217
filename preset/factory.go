package preset

import (
	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/cwbudde/algo-morphfx/engine"
	"github.com/cwbudde/algo-morphfx/macro"
	"github.com/cwbudde/algo-morphfx/param"
)

// NumFactory is the number of built-in presets.
const NumFactory = 8

// Factory bundles a named scene bank with its macro assignments.
type Factory struct {
	Name   string
	Scenes [param.NumScenes]param.Scene
	Macros [macro.NumMacros][]macro.Target
}

// FactoryNames lists the built-in presets in program order.
func FactoryNames() [NumFactory]string {
	return [NumFactory]string{
		"Init",
		"Dark Ambience",
		"Rhythmic Delay",
		"Lo-Fi",
		"Shimmer Pad",
		"Dub Station",
		"Distortion Box",
		"Wide Stereo",
	}
}

// baseScenes builds the eight stock scenes every factory preset starts
// from: clean, dark drive, bright echo, wide space, crushed, dub,
// shimmer and telephone.
func baseScenes() [param.NumScenes]param.Scene {
	var s [param.NumScenes]param.Scene
	for i := range s {
		s[i] = param.DefaultScene()
	}

	set := func(scene int, field int, value float64) {
		s[scene].Values[field] = value
	}

	// Dark drive
	set(1, param.FiltCutoff, 2000)
	set(1, param.FiltReso, 0.5)
	set(1, param.DriveAmt, 0.4)
	set(1, param.DriveTone, 0.3)
	set(1, param.RevSize, 0.7)

	// Bright echo
	set(2, param.FiltMode, 2)
	set(2, param.FiltCutoff, 500)
	set(2, param.DelaySync, 4)
	set(2, param.DelayFeedback, 0.6)
	set(2, param.DelayWidth, 1)

	// Wide space
	set(3, param.RevSize, 0.85)
	set(3, param.RevWidth, 1)
	set(3, param.RevPreDelay, 50)
	set(3, param.DelayWidth, 1)
	set(3, param.DelayPingPong, 1)

	// Crushed
	set(4, param.FiltMode, 1)
	set(4, param.FiltCutoff, 1200)
	set(4, param.FiltReso, 0.7)
	set(4, param.DriveAmt, 0.8)
	set(4, param.DriveTone, 0.7)

	// Dub
	set(5, param.DelaySync, 3)
	set(5, param.DelayFeedback, 0.7)
	set(5, param.DelayTone, 0.25)
	set(5, param.DelayPingPong, 1)
	set(5, param.RevSize, 0.5)

	// Shimmer
	set(6, param.FiltCutoff, 12000)
	set(6, param.RevSize, 0.9)
	set(6, param.RevDamp, 0.2)
	set(6, param.RevWidth, 1)
	set(6, param.RevPreDelay, 30)

	// Telephone
	set(7, param.FiltMode, 1)
	set(7, param.FiltCutoff, 1500)
	set(7, param.FiltReso, 0.6)
	set(7, param.DriveAmt, 0.2)
	set(7, param.DelayFeedback, 0)
	set(7, param.RevSize, 0.1)

	return s
}

// transformScenes rewrites one field across a bank as value·mul + add,
// clamped to the field's range.
func transformScenes(scenes *[param.NumScenes]param.Scene, field int, add, mul float64) {
	f := param.Fields[field]
	for i := range scenes {
		scenes[i].Values[field] = core.Clamp(scenes[i].Values[field]*mul+add, f.Min, f.Max)
	}
}

// FactoryPresets builds the eight built-in presets.
func FactoryPresets() [NumFactory]Factory {
	names := FactoryNames()

	var presets [NumFactory]Factory
	for i := range presets {
		presets[i] = Factory{
			Name:   names[i],
			Scenes: baseScenes(),
			Macros: macro.DefaultMappings(),
		}
	}

	// Dark Ambience: everything darker and wetter.
	p := &presets[1]
	transformScenes(&p.Scenes, param.FiltCutoff, 0, 0.35)
	transformScenes(&p.Scenes, param.RevSize, 0.3, 1)
	transformScenes(&p.Scenes, param.RevDamp, 0.15, 1)
	transformScenes(&p.Scenes, param.DriveTone, 0, 0.5)
	transformScenes(&p.Scenes, param.DelayTone, 0, 0.5)
	p.Macros[0] = []macro.Target{
		{Field: param.FiltCutoff, Weight: 0.8},
		{Field: param.RevDamp, Weight: -0.3},
	}
	p.Macros[2] = []macro.Target{
		{Field: param.RevSize, Weight: 0.6},
		{Field: param.RevPreDelay, Weight: 0.4},
	}

	// Rhythmic Delay: feedback forward, reverb tucked away.
	p = &presets[2]
	transformScenes(&p.Scenes, param.DelayFeedback, 0.2, 1)
	transformScenes(&p.Scenes, param.DelayWidth, 0.15, 1)
	transformScenes(&p.Scenes, param.RevSize, 0, 0.5)
	p.Macros[2] = []macro.Target{
		{Field: param.DelayFeedback, Weight: 0.5},
		{Field: param.DelayWidth, Weight: 0.3},
		{Field: param.DelayTone, Weight: -0.4},
	}

	// Lo-Fi: closed-down filter with grit.
	p = &presets[3]
	transformScenes(&p.Scenes, param.FiltCutoff, 0, 0.5)
	transformScenes(&p.Scenes, param.DriveAmt, 0.25, 1)
	transformScenes(&p.Scenes, param.FiltReso, 0.1, 1)
	p.Macros[1] = []macro.Target{
		{Field: param.DriveAmt, Weight: 0.5},
		{Field: param.DriveTone, Weight: -0.4},
		{Field: param.FiltCutoff, Weight: -0.3},
	}

	// Shimmer Pad: open top end, long bright tails.
	p = &presets[4]
	transformScenes(&p.Scenes, param.FiltCutoff, 0, 1.5)
	transformScenes(&p.Scenes, param.RevSize, 0.4, 1)
	transformScenes(&p.Scenes, param.RevDamp, 0, 0.3)
	transformScenes(&p.Scenes, param.RevWidth, 0.2, 1)
	transformScenes(&p.Scenes, param.DriveAmt, 0, 0.3)
	p.Macros[0] = []macro.Target{
		{Field: param.FiltCutoff, Weight: 0.4},
		{Field: param.RevSize, Weight: 0.3},
	}

	// Dub Station: heavy filtered repeats.
	p = &presets[5]
	transformScenes(&p.Scenes, param.DelayFeedback, 0.25, 1)
	transformScenes(&p.Scenes, param.DelayTone, 0, 0.4)
	transformScenes(&p.Scenes, param.RevSize, 0.15, 1)
	p.Macros[2] = []macro.Target{
		{Field: param.DelayFeedback, Weight: 0.3},
		{Field: param.RevSize, Weight: 0.4},
		{Field: param.DelayTone, Weight: -0.3},
	}

	// Distortion Box: drive up, space down.
	p = &presets[6]
	transformScenes(&p.Scenes, param.DriveAmt, 0.4, 1)
	transformScenes(&p.Scenes, param.FiltCutoff, 0, 0.6)
	transformScenes(&p.Scenes, param.RevSize, 0, 0.3)
	transformScenes(&p.Scenes, param.DelayFeedback, 0, 0.5)
	p.Macros[1] = []macro.Target{
		{Field: param.DriveAmt, Weight: 0.4},
		{Field: param.DriveTone, Weight: 0.5},
	}

	// Wide Stereo: spread everything, ping-pong audible repeats.
	p = &presets[7]
	transformScenes(&p.Scenes, param.DelayWidth, 0.2, 1)
	transformScenes(&p.Scenes, param.RevWidth, 0.2, 1)
	transformScenes(&p.Scenes, param.RevPreDelay, 15, 1)
	for i := range p.Scenes {
		if p.Scenes[i].Values[param.DelayFeedback] > 0.1 {
			p.Scenes[i].Values[param.DelayPingPong] = 1
		}
	}
	p.Macros[3] = []macro.Target{
		{Field: param.DelayWidth, Weight: 0.4},
		{Field: param.RevWidth, Weight: 0.3},
		{Field: param.RevPreDelay, Weight: 0.3},
	}

	return presets
}

// ApplyFactory loads a factory preset onto the engine and resets the
// performance controls to their defaults. Out-of-range indices are
// ignored.
func ApplyFactory(index int, e *engine.Engine) {
	if index < 0 || index >= NumFactory {
		return
	}

	presets := FactoryPresets()
	p := presets[index]

	e.SetScenes(p.Scenes)
	for m := 0; m < macro.NumMacros; m++ {
		e.Macros().SetMappings(m, p.Macros[m])
	}

	e.SetSceneSelection(0, 1)
	e.SetMorph(0)
	for m := 0; m < macro.NumMacros; m++ {
		e.SetMacroValue(m, 0)
	}
	e.SetMix(1)
	e.SetInputGainDB(0)
	e.SetOutputGainDB(0)
	e.SetBypassed(false)
}
