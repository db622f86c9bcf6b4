package renderer

import (
	"math"

	"github.com/ivlev/excalidraw-animate/internal/scene"
)

type bounds struct {
	minX, maxX, minY, maxY float64
	isSet                  bool
}

func (b *bounds) updatePoint(x, y float64) {
	if !b.isSet {
		b.minX, b.maxX = x, x
		b.minY, b.maxY = y, y
		b.isSet = true
		return
	}
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

func (b *bounds) updateRect(x, y, width, height float64) {
	b.updatePoint(x, y)
	b.updatePoint(x+width, y+height)
}

// elementsBounds returns the unrotated scene extent. Linear elements use
// their points, everything else its box.
func elementsBounds(elements []scene.Element) bounds {
	var b bounds
	for _, el := range elements {
		if el.Linear() && len(el.Points) > 0 {
			for _, p := range el.Points {
				b.updatePoint(el.X+p[0], el.Y+p[1])
			}
			continue
		}
		b.updateRect(el.X, el.Y, el.Width, el.Height)
	}
	return b
}
