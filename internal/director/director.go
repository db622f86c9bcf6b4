package director

import (
	"math"
	"sort"

	"github.com/ivlev/excalidraw-animate/internal/scene"
)

const (
	DefaultElementMs   = 500
	FreedrawMsPerPoint = 8
	MaxFreedrawMs      = 3000
	ScriptVersion      = "1.0"
	TimelineVersion    = "1.0"
)

// Step is the timing of one element relative to the diagram start
type Step struct {
	Index      int
	Group      int
	OffsetMs   int64
	DurationMs int64
}

// Plan orders elements by customData.animateOrder (default: their index,
// stable) and returns each element's offset and duration together with
// the diagram's total duration. Elements sharing an order play together;
// such a group lasts as long as its longest member.
func Plan(elements []scene.Element) ([]Step, int64) {
	type keyed struct {
		index int
		order float64
	}
	keys := make([]keyed, len(elements))
	for i, el := range elements {
		order := float64(i)
		if v, ok := el.CustomNumber("animateOrder"); ok {
			order = v
		}
		keys[i] = keyed{index: i, order: order}
	}
	sort.SliceStable(keys, func(a, b int) bool {
		return keys[a].order < keys[b].order
	})

	steps := make([]Step, 0, len(elements))
	var offset, groupDur int64
	group := 0
	for i, k := range keys {
		if i > 0 && k.order != keys[i-1].order {
			offset += groupDur
			groupDur = 0
			group++
		}
		d := ElementDuration(elements[k.index])
		steps = append(steps, Step{Index: k.index, Group: group, OffsetMs: offset, DurationMs: d})
		if d > groupDur {
			groupDur = d
		}
	}
	return steps, offset + groupDur
}

// ElementDuration is customData.animateDuration when set, else a default
// by type: freedraw scales with its point count.
func ElementDuration(el scene.Element) int64 {
	if v, ok := el.CustomNumber("animateDuration"); ok && v >= 0 {
		return int64(math.Round(v))
	}
	if el.Type == scene.TypeFreedraw {
		d := int64(len(el.Points)) * FreedrawMsPerPoint
		return min(max(d, DefaultElementMs), MaxFreedrawMs)
	}
	return DefaultElementMs
}

// Director turns plans into scripts and results into timelines
type Director struct {
	Source string
}

// NewDirector creates a Director for the given source description
func NewDirector(source string) *Director {
	return &Director{Source: source}
}

// GenerateScript writes out the planned timing of every element so it
// can be edited and fed back through ScenarioEffect
func (d *Director) GenerateScript(elements []scene.Element) *Script {
	steps, _ := Plan(elements)

	script := &Script{
		Version:  ScriptVersion,
		Source:   d.Source,
		Elements: make(map[string]ElementTiming, len(steps)),
	}

	for _, s := range steps {
		o, dur := float64(s.Group), s.DurationMs
		el := elements[s.Index]
		script.Elements[el.ID] = ElementTiming{Type: el.Type, Order: &o, DurationMs: &dur}
	}
	return script
}

// BuildTimeline describes a published result set. files[i] names the
// output of spans[i]; missing names are left empty.
func (d *Director) BuildTimeline(spans []Span, files []string, sequential, autoplayDisabled bool) *Timeline {
	tl := &Timeline{
		Version:          TimelineVersion,
		Source:           d.Source,
		Sequential:       sequential,
		AutoplayDisabled: autoplayDisabled,
		Items:            make([]TimelineItem, 0, len(spans)),
	}
	for i, s := range spans {
		item := TimelineItem{
			Index:      i,
			StartMs:    s.StartMs,
			FinishedMs: s.FinishedMs,
			DurationMs: s.FinishedMs - s.StartMs,
			SeekMs:     s.SeekMs,
		}
		if i < len(files) {
			item.File = files[i]
		}
		if s.FinishedMs > tl.TotalMs {
			tl.TotalMs = s.FinishedMs
		}
		tl.Items = append(tl.Items, item)
	}
	return tl
}
