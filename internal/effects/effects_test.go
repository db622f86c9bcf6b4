package effects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/excalidraw-animate/internal/director"
	"github.com/ivlev/excalidraw-animate/internal/renderer"
	"github.com/ivlev/excalidraw-animate/internal/scene"
)

func sample() []scene.Element {
	return []scene.Element{
		{ID: "box", Type: scene.TypeRectangle, Width: 40, Height: 20, StrokeColor: "#000", BackgroundColor: "#ff0000", Opacity: 100, StrokeWidth: 1},
		{ID: "line", Type: scene.TypeLine, X: 50, Width: 10, Height: 10, StrokeColor: "#000", Opacity: 100, StrokeWidth: 1,
			Points: [][2]float64{{0, 0}, {10, 10}}},
		{ID: "label", Type: scene.TypeText, Y: 30, Width: 30, Height: 20, Text: "hi", FontSize: 16, StrokeColor: "#000", Opacity: 100},
	}
}

func export(t *testing.T, elements []scene.Element) *renderer.Document {
	t.Helper()
	doc, err := renderer.ExportToSVG(elements, nil, renderer.ExportOptions{Padding: 10})
	require.NoError(t, err)
	return doc
}

func svg(t *testing.T, doc *renderer.Document) string {
	t.Helper()
	out, err := doc.Bytes()
	require.NoError(t, err)
	return string(out)
}

func TestDefaultEffect_FinishedIsStartPlusTotal(t *testing.T) {
	elements := sample()
	doc := export(t, elements)

	res, err := (&DefaultEffect{}).Animate(doc, elements, Options{StartMs: 700})
	require.NoError(t, err)
	assert.Equal(t, int64(700+3*director.DefaultElementMs), res.FinishedMs)
}

func TestDefaultEffect_BeginTimes(t *testing.T) {
	elements := sample()
	doc := export(t, elements)

	_, err := (&DefaultEffect{}).Animate(doc, elements, Options{StartMs: 100})
	require.NoError(t, err)

	var begins []int64
	for i := 0; i < doc.Len(); i++ {
		g, ok := doc.GroupAt(i)
		require.True(t, ok)
		v, _ := g.Get("visibility")
		assert.Equal(t, "hidden", v)

		set := g.Children[len(g.Children)-1]
		require.Equal(t, "set", set.Name)
		b, ok := set.BeginMs()
		require.True(t, ok)
		begins = append(begins, b)
	}
	assert.Equal(t, []int64{100, 600, 1100}, begins)
}

func TestDefaultEffect_DrawsStrokesAndFadesFills(t *testing.T) {
	elements := sample()[:1]
	doc := export(t, elements)

	_, err := (&DefaultEffect{}).Animate(doc, elements, Options{})
	require.NoError(t, err)

	out := svg(t, doc)
	assert.Contains(t, out, `pathLength="1"`)
	assert.Contains(t, out, `attributeName="stroke-dashoffset"`)
	assert.Contains(t, out, `attributeName="fill-opacity"`)
	assert.Contains(t, out, `keySplines="0.65 0 0.35 1"`)
	assert.Contains(t, out, `begin="0ms"`)
}

func TestDefaultEffect_SeekShiftsBegins(t *testing.T) {
	elements := sample()
	doc := export(t, elements)

	res, err := (&DefaultEffect{}).Animate(doc, elements, Options{})
	require.NoError(t, err)
	doc.SetCurrentTime(res.FinishedMs)

	out := svg(t, doc)
	assert.Contains(t, out, `begin="-1500ms"`)
	assert.Contains(t, out, `begin="-500ms"`)
	assert.NotContains(t, out, `begin="0ms"`)
}

func TestDefaultEffect_Pointer(t *testing.T) {
	elements := sample()
	doc := export(t, elements)

	_, err := (&DefaultEffect{}).Animate(doc, elements, Options{PointerImg: "hand.png", PointerHeight: "40"})
	require.NoError(t, err)

	out := svg(t, doc)
	assert.Contains(t, out, `class="pointer"`)
	assert.Contains(t, out, `href="hand.png"`)
	assert.Contains(t, out, `width="24"`)
	assert.Contains(t, out, `height="40"`)
	// only the line moves the pointer
	assert.Equal(t, 1, strings.Count(out, "<animateMotion"))
}

func TestDefaultEffect_NoPointerByDefault(t *testing.T) {
	elements := sample()
	doc := export(t, elements)

	_, err := (&DefaultEffect{}).Animate(doc, elements, Options{})
	require.NoError(t, err)
	assert.NotContains(t, svg(t, doc), "pointer")
}

func TestDefaultEffect_LengthMismatch(t *testing.T) {
	elements := sample()
	doc := export(t, elements)

	_, err := (&DefaultEffect{}).Animate(doc, elements[:2], Options{})
	assert.Error(t, err)
}

func TestDefaultEffect_Empty(t *testing.T) {
	doc := export(t, nil)

	res, err := (&DefaultEffect{}).Animate(doc, nil, Options{StartMs: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.FinishedMs)
}

func TestScenarioEffect_Overrides(t *testing.T) {
	elements := sample()
	doc := export(t, elements)

	zero, dur := 0.0, int64(2000)
	script := &director.Script{Elements: map[string]director.ElementTiming{
		"label": {Order: &zero, DurationMs: &dur},
		"box":   {Order: &zero},
		"line":  {Order: &zero},
	}}

	res, err := NewScenarioEffect(script).Animate(doc, elements, Options{StartMs: 10})
	require.NoError(t, err)
	// one group, as long as its longest member
	assert.Equal(t, int64(2010), res.FinishedMs)
	// inputs are not modified
	assert.Nil(t, elements[2].CustomData)
}

func TestScenarioEffect_EmptyScriptFallsThrough(t *testing.T) {
	elements := sample()
	doc := export(t, elements)

	res, err := NewScenarioEffect(&director.Script{}).Animate(doc, elements, Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(3*director.DefaultElementMs), res.FinishedMs)
}

func TestMsAttr(t *testing.T) {
	assert.Equal(t, "1ms", msAttr(0))
	assert.Equal(t, "250ms", msAttr(250))
}
