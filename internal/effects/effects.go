package effects

import (
	"fmt"
	"strconv"

	"github.com/ivlev/excalidraw-animate/internal/director"
	"github.com/ivlev/excalidraw-animate/internal/renderer"
	"github.com/ivlev/excalidraw-animate/internal/scene"
)

const (
	DefaultPointerSize    = "24"
	easeInOutCubicSplines = "0.65 0 0.35 1"
)

// Options are the per-diagram animation settings. Pointer fields are
// passed through from the playback link; empty means absent.
type Options struct {
	StartMs       int64
	PointerImg    string
	PointerWidth  string
	PointerHeight string
}

type Result struct {
	// FinishedMs is absolute: StartMs plus the diagram's own duration.
	FinishedMs int64
}

// Effect embeds a timed animation into an exported document in place.
type Effect interface {
	Animate(doc *renderer.Document, elements []scene.Element, opts Options) (Result, error)
}

type DefaultEffect struct{}

func (e *DefaultEffect) Animate(doc *renderer.Document, elements []scene.Element, opts Options) (Result, error) {
	if doc.Len() != len(elements) {
		return Result{}, fmt.Errorf("document has %d element groups, got %d elements", doc.Len(), len(elements))
	}

	steps, total := director.Plan(elements)
	var pointer *renderer.Node
	if opts.PointerImg != "" {
		pointer = newPointer(opts)
	}

	for _, s := range steps {
		g, _ := doc.GroupAt(s.Index)
		begin := opts.StartMs + s.OffsetMs
		drawIn(g, begin, s.DurationMs)

		el := elements[s.Index]
		if pointer != nil && el.Linear() && len(el.Points) > 1 {
			pointer.Append(renderer.NewTimedNode("animateMotion", begin,
				"path", renderer.PathData(el, doc.OffsetX, doc.OffsetY),
				"dur", msAttr(s.DurationMs),
				"fill", "freeze",
			))
		}
	}

	if pointer != nil && len(steps) > 0 {
		pointer.Append(renderer.NewTimedNode("set", opts.StartMs,
			"attributeName", "visibility", "to", "visible", "fill", "freeze"))
		doc.Append(pointer)
	}

	return Result{FinishedMs: opts.StartMs + total}, nil
}

// drawIn hides g until begin, then draws strokes and fades in fills,
// text and images over dur.
func drawIn(g *renderer.Node, begin, dur int64) {
	g.Set("visibility", "hidden")
	g.Append(renderer.NewTimedNode("set", begin,
		"attributeName", "visibility", "to", "visible", "fill", "freeze"))

	for _, c := range g.Children {
		switch c.Name {
		case "rect", "polygon", "ellipse", "path":
			if stroke, ok := c.Get("stroke"); ok && stroke != "none" {
				c.Set("pathLength", "1").Set("stroke-dasharray", "1").Set("stroke-dashoffset", "1")
				c.Append(timedAnimate("stroke-dashoffset", "1", "0", begin, dur))
			}
			if fill, ok := c.Get("fill"); ok && fill != "none" {
				c.Set("fill-opacity", "0")
				c.Append(timedAnimate("fill-opacity", "0", "1", begin, dur))
			}
		case "text", "image":
			c.Set("opacity", "0")
			c.Append(timedAnimate("opacity", "0", "1", begin, dur))
		}
	}
}

func timedAnimate(attr, from, to string, begin, dur int64) *renderer.Node {
	return renderer.NewTimedNode("animate", begin,
		"attributeName", attr,
		"from", from,
		"to", to,
		"dur", msAttr(dur),
		"calcMode", "spline",
		"keyTimes", "0;1",
		"keySplines", easeInOutCubicSplines,
		"fill", "freeze",
	)
}

func newPointer(opts Options) *renderer.Node {
	w, h := opts.PointerWidth, opts.PointerHeight
	if w == "" {
		w = DefaultPointerSize
	}
	if h == "" {
		h = DefaultPointerSize
	}
	return renderer.NewNode("image",
		"class", "pointer",
		"href", opts.PointerImg,
		"width", w,
		"height", h,
		"visibility", "hidden",
	)
}

// msAttr formats a SMIL duration; zero durations are not valid SMIL.
func msAttr(ms int64) string {
	if ms < 1 {
		ms = 1
	}
	return strconv.FormatInt(ms, 10) + "ms"
}
