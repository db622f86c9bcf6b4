// Package scene holds the Excalidraw data model consumed by the renderer
// and the animation effects.
package scene

import (
	"encoding/json"
	"strconv"
)

// Element types understood by the renderer.
const (
	TypeRectangle = "rectangle"
	TypeDiamond   = "diamond"
	TypeEllipse   = "ellipse"
	TypeLine      = "line"
	TypeArrow     = "arrow"
	TypeFreedraw  = "freedraw"
	TypeText      = "text"
	TypeImage     = "image"
)

type Roundness struct {
	Type  int      `json:"type"`
	Value *float64 `json:"value,omitempty"`
}

type Element struct {
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	X               float64        `json:"x"`
	Y               float64        `json:"y"`
	Width           float64        `json:"width"`
	Height          float64        `json:"height"`
	Angle           float64        `json:"angle"`
	StrokeColor     string         `json:"strokeColor"`
	BackgroundColor string         `json:"backgroundColor"`
	FillStyle       string         `json:"fillStyle"`
	StrokeWidth     float64        `json:"strokeWidth"`
	Opacity         float64        `json:"opacity"`
	Roundness       *Roundness     `json:"roundness,omitempty"`
	Points          [][2]float64   `json:"points,omitempty"`
	Text            string         `json:"text,omitempty"`
	FontSize        float64        `json:"fontSize,omitempty"`
	FontFamily      int            `json:"fontFamily,omitempty"`
	TextAlign       string         `json:"textAlign,omitempty"`
	FileID          string         `json:"fileId,omitempty"`
	IsDeleted       bool           `json:"isDeleted"`
	CustomData      map[string]any `json:"customData,omitempty"`
}

// UnmarshalJSON fills Excalidraw defaults for fields missing from the input.
func (e *Element) UnmarshalJSON(data []byte) error {
	type plain Element
	p := plain{
		StrokeColor:     "#1e1e1e",
		BackgroundColor: "transparent",
		FillStyle:       "solid",
		StrokeWidth:     1,
		Opacity:         100,
		FontSize:        20,
		FontFamily:      1,
		TextAlign:       "left",
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Element(p)
	return nil
}

// Linear reports whether the element is drawn from its Points.
func (e Element) Linear() bool {
	return e.Type == TypeLine || e.Type == TypeArrow || e.Type == TypeFreedraw
}

// CustomNumber reads a numeric customData entry. Strings holding numbers
// are accepted since hand-edited files often carry them.
func (e Element) CustomNumber(key string) (float64, bool) {
	v, ok := e.CustomData[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

type BinaryFile struct {
	ID       string `json:"id"`
	MimeType string `json:"mimeType"`
	DataURL  string `json:"dataURL"`
}

type BinaryFiles map[string]BinaryFile

// Payload is one diagram: its elements plus the files they reference.
type Payload struct {
	Elements []Element
	Files    BinaryFiles
}

// Scene is the serialized .excalidraw document.
type Scene struct {
	Type     string         `json:"type,omitempty"`
	Version  int            `json:"version,omitempty"`
	Source   string         `json:"source,omitempty"`
	Elements []Element      `json:"elements"`
	AppState map[string]any `json:"appState,omitempty"`
	Files    BinaryFiles    `json:"files,omitempty"`
}

// Payload converts the scene into a restored Payload.
func (s *Scene) Payload() Payload {
	files := s.Files
	if files == nil {
		files = BinaryFiles{}
	}
	return Payload{Elements: RestoreElements(s.Elements), Files: files}
}

// NonDeletedElements returns the elements whose isDeleted flag is false,
// in their original order. The input slice is not modified.
func NonDeletedElements(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if !el.IsDeleted {
			out = append(out, el)
		}
	}
	return out
}
