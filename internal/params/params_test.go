package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SceneTargets(t *testing.T) {
	tests := []struct {
		fragment string
		want     []Target
	}{
		{"json=abc123,key1", []Target{SceneTarget{ID: "abc123", Key: "key1"}}},
		{"json=abc123", []Target{SceneTarget{ID: "abc123", Key: ""}}},
		{"#json=abc_1-2,k_e-y", []Target{SceneTarget{ID: "abc_1-2", Key: "k_e-y"}}},
		{"json=", nil},
		{"json=%21%21%21", nil},
		{"", nil},
		{"autoplay=no", nil},
	}

	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			req := Parse(tt.fragment)
			assert.Equal(t, tt.want, req.Targets)
		})
	}
}

func TestParse_Library(t *testing.T) {
	req := Parse("library=foo.excalidrawlib&sequence&autoplay=no")

	require.Len(t, req.Targets, 1)
	assert.Equal(t, LibraryTarget{URL: "foo.excalidrawlib"}, req.Targets[0])
	assert.True(t, req.Sequential)
	assert.True(t, req.AutoplayDisabled)
}

func TestParse_LibraryEncodedURL(t *testing.T) {
	req := Parse("library=https%3A%2F%2Flibraries.excalidraw.com%2Flibraries%2Fa%2Fb.excalidrawlib%3Fv%3D1")

	lib, ok := req.Library()
	require.True(t, ok)
	assert.Equal(t, "https://libraries.excalidraw.com/libraries/a/b.excalidrawlib", lib.URL)
}

func TestParse_LibraryWithoutExtension(t *testing.T) {
	req := Parse("library=foo.json")
	assert.True(t, req.Empty())
}

func TestParse_AutoplayValues(t *testing.T) {
	assert.True(t, Parse("autoplay=no").AutoplayDisabled)
	assert.False(t, Parse("autoplay=yes").AutoplayDisabled)
	assert.False(t, Parse("autoplay").AutoplayDisabled)
	assert.False(t, Parse("").AutoplayDisabled)
}

func TestParse_SequenceValueIgnored(t *testing.T) {
	assert.True(t, Parse("sequence=0").Sequential)
	assert.True(t, Parse("sequence").Sequential)
	assert.False(t, Parse("sequences").Sequential)
}

func TestParse_PointerVerbatim(t *testing.T) {
	req := Parse("json=abc&pointerImg=https%3A%2F%2Fx%2Fhand.png&pointerWidth=40")

	assert.Equal(t, "https://x/hand.png", req.Pointer.Img)
	assert.Equal(t, "40", req.Pointer.Width)
	assert.Empty(t, req.Pointer.Height)
}

func TestParse_BothTargets(t *testing.T) {
	req := Parse("json=abc,k&library=lib.excalidrawlib")

	require.Len(t, req.Targets, 2)
	_, isScene := req.Targets[0].(SceneTarget)
	_, isLib := req.Targets[1].(LibraryTarget)
	assert.True(t, isScene)
	assert.True(t, isLib)
}

func TestParse_MalformedEscapeKeepsOtherPairs(t *testing.T) {
	req := Parse("bad=%zz&json=abc")

	s, ok := req.Scene()
	require.True(t, ok)
	assert.Equal(t, "abc", s.ID)
}

func TestParse_SemicolonInPointerImg(t *testing.T) {
	req := Parse("json=abc,key&pointerImg=data:image/png;base64,iVBORw0KGgo=&pointerWidth=40")

	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", req.Pointer.Img)
	assert.Equal(t, "40", req.Pointer.Width)
	_, ok := req.Scene()
	assert.True(t, ok)
}

func TestParse_SemicolonInLibraryURL(t *testing.T) {
	req := Parse("library=https://host/a;v=2/lib.excalidrawlib&sequence")

	lib, ok := req.Library()
	require.True(t, ok)
	assert.Equal(t, "https://host/a;v=2/lib.excalidrawlib", lib.URL)
	assert.True(t, req.Sequential)
}

func TestParse_FirstValueWins(t *testing.T) {
	req := Parse("json=first&json=second&autoplay=no&autoplay=yes")

	s, ok := req.Scene()
	require.True(t, ok)
	assert.Equal(t, "first", s.ID)
	assert.True(t, req.AutoplayDisabled)
}

func TestParse_PlusIsSpaceAndBadEscapeIsRaw(t *testing.T) {
	req := Parse("pointerImg=a+b.png&pointerWidth=%zz")

	assert.Equal(t, "a b.png", req.Pointer.Img)
	assert.Equal(t, "%zz", req.Pointer.Width)
}

func TestShareLink_RoundTripDataURL(t *testing.T) {
	orig := Parse("json=abc,key&pointerImg=data:image/png;base64,AAAA")
	assert.Equal(t, orig, Parse(FragmentOf(orig.ShareLink("https://player/"))))
}

func TestFragmentOf(t *testing.T) {
	assert.Equal(t, "json=a,b", FragmentOf("https://host/app/#json=a,b"))
	assert.Equal(t, "", FragmentOf("https://host/app/"))
	assert.Equal(t, "x#y", FragmentOf("a#x#y"))
}

func TestShareLink_RoundTrip(t *testing.T) {
	orig := Parse("library=https%3A%2F%2Fh%2Fl.excalidrawlib&sequence&autoplay=no&pointerImg=p.png")
	link := orig.ShareLink("https://player/#stale")

	assert.Equal(t, orig, Parse(FragmentOf(link)))
	assert.Contains(t, link, "https://player/#")
}

func TestRequest_String(t *testing.T) {
	assert.Equal(t, "none", Request{}.String())
	assert.Equal(t, "scene(abc) autoplay=no", Parse("json=abc&autoplay=no").String())
}
