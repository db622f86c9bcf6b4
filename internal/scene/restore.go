package scene

import (
	"math"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const lineHeight = 1.25

var knownTypes = map[string]bool{
	TypeRectangle: true,
	TypeDiamond:   true,
	TypeEllipse:   true,
	TypeLine:      true,
	TypeArrow:     true,
	TypeFreedraw:  true,
	TypeText:      true,
	TypeImage:     true,
}

// RestoreElements normalizes freshly decoded elements: unknown types are
// dropped, missing ids are generated and unmeasured text gets a size.
// Relative order is preserved.
func RestoreElements(elements []Element) []Element {
	out := make([]Element, 0, len(elements))
	for _, el := range elements {
		if !knownTypes[el.Type] {
			continue
		}
		if el.ID == "" {
			el.ID = uuid.NewString()
		}
		if el.Type == TypeText && (el.Width == 0 || el.Height == 0) {
			el.Width, el.Height = MeasureText(el.Text, el.FontSize)
		}
		if el.Linear() && (el.Width == 0 && el.Height == 0) && len(el.Points) > 1 {
			el.Width, el.Height = pointsExtent(el.Points)
		}
		out = append(out, el)
	}
	return out
}

// MeasureText estimates the box of a (possibly multi-line) text at the
// given font size, scaling the metrics of a fixed 13px face.
func MeasureText(text string, fontSize float64) (width, height float64) {
	if fontSize <= 0 {
		fontSize = 20
	}
	face := basicfont.Face7x13
	scale := fontSize / float64(face.Height)

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		w := float64(font.MeasureString(face, line).Ceil()) * scale
		width = math.Max(width, w)
	}
	height = float64(len(lines)) * fontSize * lineHeight
	return width, height
}

func pointsExtent(points [][2]float64) (float64, float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	return maxX - minX, maxY - minY
}
