package director

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/excalidraw-animate/internal/scene"
)

func TestPlan_DefaultOrderIsIndex(t *testing.T) {
	elements := []scene.Element{
		{ID: "a", Type: scene.TypeRectangle},
		{ID: "b", Type: scene.TypeText},
		{ID: "c", Type: scene.TypeEllipse},
	}

	steps, total := Plan(elements)

	require.Len(t, steps, 3)
	for i, s := range steps {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, i, s.Group)
		assert.Equal(t, int64(i*DefaultElementMs), s.OffsetMs)
		assert.Equal(t, int64(DefaultElementMs), s.DurationMs)
	}
	assert.Equal(t, int64(3*DefaultElementMs), total)
}

func TestPlan_CustomOrderAndDuration(t *testing.T) {
	elements := []scene.Element{
		{ID: "late", Type: scene.TypeRectangle, CustomData: map[string]any{"animateOrder": 10.0}},
		{ID: "first", Type: scene.TypeRectangle, CustomData: map[string]any{"animateOrder": 0.0, "animateDuration": 200.0}},
		{ID: "with-first", Type: scene.TypeRectangle, CustomData: map[string]any{"animateOrder": 0.0, "animateDuration": 800.0}},
	}

	steps, total := Plan(elements)

	require.Len(t, steps, 3)
	assert.Equal(t, Step{Index: 1, Group: 0, OffsetMs: 0, DurationMs: 200}, steps[0])
	assert.Equal(t, Step{Index: 2, Group: 0, OffsetMs: 0, DurationMs: 800}, steps[1])
	assert.Equal(t, Step{Index: 0, Group: 1, OffsetMs: 800, DurationMs: DefaultElementMs}, steps[2])
	assert.Equal(t, int64(800+DefaultElementMs), total)
}

func TestPlan_Empty(t *testing.T) {
	steps, total := Plan(nil)
	assert.Empty(t, steps)
	assert.Zero(t, total)
}

func TestElementDuration_Freedraw(t *testing.T) {
	short := scene.Element{Type: scene.TypeFreedraw, Points: make([][2]float64, 10)}
	mid := scene.Element{Type: scene.TypeFreedraw, Points: make([][2]float64, 100)}
	long := scene.Element{Type: scene.TypeFreedraw, Points: make([][2]float64, 1000)}

	assert.Equal(t, int64(DefaultElementMs), ElementDuration(short))
	assert.Equal(t, int64(800), ElementDuration(mid))
	assert.Equal(t, int64(MaxFreedrawMs), ElementDuration(long))
}

func TestElementDuration_NegativeOverrideIgnored(t *testing.T) {
	el := scene.Element{Type: scene.TypeRectangle, CustomData: map[string]any{"animateDuration": -5.0}}
	assert.Equal(t, int64(DefaultElementMs), ElementDuration(el))
}

func TestGenerateScript(t *testing.T) {
	d := NewDirector("test.excalidraw")
	elements := []scene.Element{
		{ID: "a", Type: scene.TypeRectangle},
		{ID: "b", Type: scene.TypeArrow, CustomData: map[string]any{"animateOrder": 0.0}},
		{ID: "c", Type: scene.TypeText},
	}

	script := d.GenerateScript(elements)

	assert.Equal(t, ScriptVersion, script.Version)
	assert.Equal(t, "test.excalidraw", script.Source)
	require.Len(t, script.Elements, 3)
	assert.Equal(t, 0.0, *script.Elements["a"].Order)
	assert.Equal(t, 0.0, *script.Elements["b"].Order)
	assert.Equal(t, 1.0, *script.Elements["c"].Order)
	assert.Equal(t, "arrow", script.Elements["b"].Type)
	assert.Equal(t, int64(DefaultElementMs), *script.Elements["c"].DurationMs)
}

func TestBuildTimeline(t *testing.T) {
	d := NewDirector("lib.excalidrawlib")
	spans := []Span{
		{StartMs: 0, FinishedMs: 1000, SeekMs: 1000},
		{StartMs: 1000, FinishedMs: 2500, SeekMs: 2500},
	}

	tl := d.BuildTimeline(spans, []string{"diagram_01.svg"}, true, true)

	assert.Equal(t, int64(2500), tl.TotalMs)
	require.Len(t, tl.Items, 2)
	assert.Equal(t, "diagram_01.svg", tl.Items[0].File)
	assert.Equal(t, "", tl.Items[1].File)
	assert.Equal(t, int64(1500), tl.Items[1].DurationMs)
	assert.True(t, tl.Sequential)
	assert.True(t, tl.AutoplayDisabled)
}

func TestScriptWriteRead(t *testing.T) {
	order, dur := 2.0, int64(750)
	script := &Script{
		Version: ScriptVersion,
		Elements: map[string]ElementTiming{
			"el1": {Type: "rectangle", Order: &order, DurationMs: &dur},
			"el2": {},
		},
	}

	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, WriteScript(script, path))

	read, err := ReadScript(path)
	require.NoError(t, err)
	assert.Equal(t, script.Version, read.Version)
	require.NotNil(t, read.Elements["el1"].Order)
	assert.Equal(t, 2.0, *read.Elements["el1"].Order)
	assert.Equal(t, int64(750), *read.Elements["el1"].DurationMs)
	assert.Nil(t, read.Elements["el2"].Order)
}

func TestTimelineWriteRead(t *testing.T) {
	tl := NewDirector("x").BuildTimeline([]Span{{StartMs: 0, FinishedMs: 10}}, []string{"a.svg"}, false, false)

	path := filepath.Join(t.TempDir(), TimelineFile)
	require.NoError(t, WriteTimeline(tl, path))

	read, err := ReadTimeline(path)
	require.NoError(t, err)
	assert.Equal(t, tl, read)
}

func TestReadScript_Missing(t *testing.T) {
	_, err := ReadScript(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFindLatestTimeline(t *testing.T) {
	outDir := t.TempDir()
	runs := []string{"a_2026-02-12", "b_2026-02-13", "c_2026-02-11"}
	for i, run := range runs {
		dir := filepath.Join(outDir, run)
		require.NoError(t, os.MkdirAll(dir, 0755))
		f := filepath.Join(dir, TimelineFile)
		require.NoError(t, os.WriteFile(f, []byte("version: \"1.0\"\n"), 0644))
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(f, modTime, modTime))
	}
	// directories without a manifest are ignored
	require.NoError(t, os.MkdirAll(filepath.Join(outDir, "empty"), 0755))

	latest, err := FindLatestTimeline(outDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "c_2026-02-11", TimelineFile), latest)
}

func TestFindLatestTimeline_None(t *testing.T) {
	_, err := FindLatestTimeline(t.TempDir())
	assert.Error(t, err)
}

func TestGenerateScriptPath(t *testing.T) {
	path := GenerateScriptPath("scripts")
	assert.Contains(t, path, "script_")
	assert.Equal(t, "scripts", filepath.Dir(path))
}

func TestSafeName(t *testing.T) {
	assert.Equal(t, "my_lib", SafeName("https://host/libs/my lib.excalidrawlib"))
	assert.Equal(t, "abc-1", SafeName("abc-1"))
	assert.Equal(t, "diagram", SafeName(""))
}
