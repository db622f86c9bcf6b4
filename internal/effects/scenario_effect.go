package effects

import (
	"github.com/ivlev/excalidraw-animate/internal/director"
	"github.com/ivlev/excalidraw-animate/internal/renderer"
	"github.com/ivlev/excalidraw-animate/internal/scene"
)

// ScenarioEffect applies per-element timing from a YAML script on top of
// another effect. Script entries win over customData in the diagram.
type ScenarioEffect struct {
	Script *director.Script
	Base   Effect
}

// NewScenarioEffect creates a ScenarioEffect over DefaultEffect.
func NewScenarioEffect(script *director.Script) *ScenarioEffect {
	return &ScenarioEffect{
		Script: script,
		Base:   &DefaultEffect{},
	}
}

func (e *ScenarioEffect) Animate(doc *renderer.Document, elements []scene.Element, opts Options) (Result, error) {
	if e.Script == nil || len(e.Script.Elements) == 0 {
		return e.Base.Animate(doc, elements, opts)
	}

	timed := make([]scene.Element, len(elements))
	for i, el := range elements {
		t, ok := e.Script.Elements[el.ID]
		if ok && (t.Order != nil || t.DurationMs != nil) {
			custom := make(map[string]any, len(el.CustomData)+2)
			for k, v := range el.CustomData {
				custom[k] = v
			}
			if t.Order != nil {
				custom["animateOrder"] = *t.Order
			}
			if t.DurationMs != nil {
				custom["animateDuration"] = float64(*t.DurationMs)
			}
			el.CustomData = custom
		}
		timed[i] = el
	}
	return e.Base.Animate(doc, timed, opts)
}
