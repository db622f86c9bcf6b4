// Package params interprets the playback link fragment
// (everything after '#') into a Request.
package params

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	sceneIDKey  = regexp.MustCompile(`([a-zA-Z0-9_-]+),?([a-zA-Z0-9_-]*)`)
	libraryPath = regexp.MustCompile(`(.*\.excalidrawlib)`)
)

// Target is one thing to load. The set of variants is closed:
// SceneTarget and LibraryTarget.
type Target interface {
	target()
}

// SceneTarget addresses a single scene on the JSON backend.
type SceneTarget struct {
	ID  string
	Key string
}

// LibraryTarget addresses a .excalidrawlib file by URL.
type LibraryTarget struct {
	URL string
}

func (SceneTarget) target()   {}
func (LibraryTarget) target() {}

// Pointer holds the pointer decoration options verbatim. Empty means absent.
type Pointer struct {
	Img    string
	Width  string
	Height string
}

type Request struct {
	// Targets are ordered scene first, then library.
	Targets          []Target
	AutoplayDisabled bool
	// Sequential applies to library playback only.
	Sequential bool
	Pointer    Pointer
}

// Empty reports whether the request has nothing to load.
func (r Request) Empty() bool {
	return len(r.Targets) == 0
}

// Scene returns the scene target, if any.
func (r Request) Scene() (SceneTarget, bool) {
	for _, t := range r.Targets {
		if s, ok := t.(SceneTarget); ok {
			return s, true
		}
	}
	return SceneTarget{}, false
}

// Library returns the library target, if any.
func (r Request) Library() (LibraryTarget, bool) {
	for _, t := range r.Targets {
		if l, ok := t.(LibraryTarget); ok {
			return l, true
		}
	}
	return LibraryTarget{}, false
}

func (r Request) String() string {
	parts := make([]string, 0, len(r.Targets)+2)
	for _, t := range r.Targets {
		switch t := t.(type) {
		case SceneTarget:
			parts = append(parts, fmt.Sprintf("scene(%s)", t.ID))
		case LibraryTarget:
			parts = append(parts, fmt.Sprintf("library(%s)", t.URL))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "none")
	}
	if r.Sequential {
		parts = append(parts, "sequence")
	}
	if r.AutoplayDisabled {
		parts = append(parts, "autoplay=no")
	}
	return strings.Join(parts, " ")
}

// FragmentOf returns everything after the first '#' of link, or "" when
// link has no fragment.
func FragmentOf(link string) string {
	_, frag, ok := strings.Cut(link, "#")
	if !ok {
		return ""
	}
	return frag
}

// Parse maps a fragment to a Request. It performs no I/O and never fails:
// malformed input simply does not match.
func Parse(fragment string) Request {
	values := parseQuery(strings.TrimPrefix(fragment, "#"))

	var req Request
	if m := sceneIDKey.FindStringSubmatch(values.get("json")); m != nil {
		req.Targets = append(req.Targets, SceneTarget{ID: m[1], Key: m[2]})
	}
	if m := libraryPath.FindStringSubmatch(values.get("library")); m != nil {
		req.Targets = append(req.Targets, LibraryTarget{URL: m[1]})
	}

	req.Pointer = Pointer{
		Img:    values.get("pointerImg"),
		Width:  values.get("pointerWidth"),
		Height: values.get("pointerHeight"),
	}
	req.AutoplayDisabled = values.get("autoplay") == "no"
	_, req.Sequential = values["sequence"]
	return req
}

// query holds the first value of each key.
type query map[string]string

func (q query) get(key string) string {
	return q[key]
}

// parseQuery splits on '&' only. Unlike url.ParseQuery it keeps pairs
// containing ';' and keeps the raw text of values that fail to unescape.
func parseQuery(s string) query {
	q := query{}
	for _, part := range strings.Split(s, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		k, v = unescape(k), unescape(v)
		if _, seen := q[k]; !seen {
			q[k] = v
		}
	}
	return q
}

func unescape(s string) string {
	s = strings.ReplaceAll(s, "+", " ")
	if u, err := url.QueryUnescape(s); err == nil {
		return u
	}
	return s
}

// ShareLink rebuilds a link to the player at base carrying r.
func (r Request) ShareLink(base string) string {
	var pairs []string
	for _, t := range r.Targets {
		switch t := t.(type) {
		case SceneTarget:
			v := t.ID
			if t.Key != "" {
				v += "," + t.Key
			}
			pairs = append(pairs, "json="+v)
		case LibraryTarget:
			pairs = append(pairs, "library="+url.QueryEscape(t.URL))
		}
	}
	if r.Sequential {
		pairs = append(pairs, "sequence")
	}
	if r.AutoplayDisabled {
		pairs = append(pairs, "autoplay=no")
	}
	if r.Pointer.Img != "" {
		pairs = append(pairs, "pointerImg="+url.QueryEscape(r.Pointer.Img))
	}
	if r.Pointer.Width != "" {
		pairs = append(pairs, "pointerWidth="+url.QueryEscape(r.Pointer.Width))
	}
	if r.Pointer.Height != "" {
		pairs = append(pairs, "pointerHeight="+url.QueryEscape(r.Pointer.Height))
	}
	base = strings.SplitN(base, "#", 2)[0]
	if len(pairs) == 0 {
		return base
	}
	return base + "#" + strings.Join(pairs, "&")
}
