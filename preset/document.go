// Package preset persists and restores the full engine state: the
// performance controls, the 8-scene bank and the macro mapping table.
//
// Documents are JSON. Loading is entry-wise tolerant: unknown control
// names, field names and out-of-range indices are skipped rather than
// rejected, so documents from newer or older versions still restore
// everything they share with this one. A legacy document holding only
// the control section is also accepted.
package preset

import (
	"encoding/json"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-morphfx/engine"
	"github.com/cwbudde/algo-morphfx/macro"
	"github.com/cwbudde/algo-morphfx/param"
)

// Control names used in the document's control section.
const (
	ControlBypass       = "bypass"
	ControlInputGainDB  = "inputGainDb"
	ControlOutputGainDB = "outputGainDb"
	ControlMix          = "mix"
	ControlSceneA       = "sceneA"
	ControlSceneB       = "sceneB"
	ControlMorph        = "morph"
	ControlMacro1       = "macro1"
	ControlMacro2       = "macro2"
	ControlMacro3       = "macro3"
	ControlMacro4       = "macro4"
)

// Document is the persisted-state shape.
type Document struct {
	Controls map[string]float64 `json:"controls"`
	Scenes   []SceneDoc         `json:"scenes,omitempty"`
	Macros   []MacroDoc         `json:"macros,omitempty"`
}

// SceneDoc stores one scene slot by bank index and field name.
type SceneDoc struct {
	Index  int                `json:"index"`
	Values map[string]float64 `json:"values"`
}

// MacroDoc stores one macro's ordered target list.
type MacroDoc struct {
	Index   int         `json:"index"`
	Targets []TargetDoc `json:"targets"`
}

// TargetDoc stores one mapping target. Field is the persisted field
// name, Curve the numeric curve tag.
type TargetDoc struct {
	Field  string  `json:"field"`
	Weight float64 `json:"weight"`
	Curve  int     `json:"curve"`
}

// Capture builds a document from the engine's current state.
func Capture(e *engine.Engine) *Document {
	c := e.ControlValues()

	doc := &Document{
		Controls: map[string]float64{
			ControlBypass:       boolToFloat(c.Bypassed),
			ControlInputGainDB:  c.InputGainDB,
			ControlOutputGainDB: c.OutputGainDB,
			ControlMix:          c.Mix,
			ControlSceneA:       float64(c.SceneA),
			ControlSceneB:       float64(c.SceneB),
			ControlMorph:        c.Morph,
			ControlMacro1:       c.Macros[0],
			ControlMacro2:       c.Macros[1],
			ControlMacro3:       c.Macros[2],
			ControlMacro4:       c.Macros[3],
		},
	}

	scenes := e.Scenes()
	for i := range scenes {
		values := make(map[string]float64, param.NumFields)
		for f := range param.Fields {
			values[param.Fields[f].ID] = scenes[i].Values[f]
		}
		doc.Scenes = append(doc.Scenes, SceneDoc{Index: i, Values: values})
	}

	for m := 0; m < macro.NumMacros; m++ {
		md := MacroDoc{Index: m}
		for _, target := range e.Macros().Mappings(m) {
			if target.Field < 0 || target.Field >= param.NumFields {
				continue
			}
			md.Targets = append(md.Targets, TargetDoc{
				Field:  param.Fields[target.Field].ID,
				Weight: target.Weight,
				Curve:  int(target.Curve),
			})
		}
		doc.Macros = append(doc.Macros, md)
	}

	return doc
}

// Apply restores a document onto the engine.
//
// Sections work independently: a document without a scene or macro
// section leaves the engine's current scenes or mappings alone, which
// is how legacy control-only documents restore. Within each section,
// unrecognized entries are skipped one by one.
func Apply(doc *Document, e *engine.Engine) {
	if doc == nil {
		return
	}

	applyControls(doc.Controls, e)

	for _, sd := range doc.Scenes {
		if sd.Index < 0 || sd.Index >= param.NumScenes {
			continue
		}
		for name, value := range sd.Values {
			if !isFinite(value) {
				continue
			}
			if idx, ok := param.FieldByID(name); ok {
				e.SetSceneValue(sd.Index, idx, value)
			}
		}
	}

	if doc.Macros != nil {
		e.Macros().ClearAll()
		for _, md := range doc.Macros {
			if md.Index < 0 || md.Index >= macro.NumMacros {
				continue
			}

			var targets []macro.Target
			for _, td := range md.Targets {
				idx, ok := param.FieldByID(td.Field)
				if !ok || !isFinite(td.Weight) {
					continue
				}
				targets = append(targets, macro.Target{
					Field:  idx,
					Weight: td.Weight,
					Curve:  param.ClampCurve(td.Curve),
				})
			}
			e.Macros().SetMappings(md.Index, targets)
		}
	}
}

func applyControls(controls map[string]float64, e *engine.Engine) {
	for name, value := range controls {
		if !isFinite(value) {
			continue
		}

		switch name {
		case ControlBypass:
			e.SetBypassed(value > 0.5)
		case ControlInputGainDB:
			e.SetInputGainDB(value)
		case ControlOutputGainDB:
			e.SetOutputGainDB(value)
		case ControlMix:
			e.SetMix(value)
		case ControlSceneA:
			e.SetSceneSelection(int(value), e.ControlValues().SceneB)
		case ControlSceneB:
			e.SetSceneSelection(e.ControlValues().SceneA, int(value))
		case ControlMorph:
			e.SetMorph(value)
		case ControlMacro1:
			e.SetMacroValue(0, value)
		case ControlMacro2:
			e.SetMacroValue(1, value)
		case ControlMacro3:
			e.SetMacroValue(2, value)
		case ControlMacro4:
			e.SetMacroValue(3, value)
		}
	}
}

// Save writes the document as indented JSON.
func Save(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("preset: encode: %w", err)
	}
	return nil
}

// Load parses a document from JSON.
//
// Besides the full three-section shape, a flat object of control names
// to values is accepted as a legacy control-only document.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("preset: read: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err == nil {
		if doc.Controls != nil || doc.Scenes != nil || doc.Macros != nil {
			return &doc, nil
		}
	}

	var legacy map[string]float64
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("preset: unrecognized document: %w", err)
	}
	return &Document{Controls: legacy}, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
