// Package renderer turns diagram elements into an in-memory SVG Document.
package renderer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/excalidraw-animate/internal/scene"
)

// ExportOptions controls the static SVG export.
type ExportOptions struct {
	Background      bool
	BackgroundColor string
	Padding         float64
}

var fontFamilies = map[int]string{
	1: "Virgil, Segoe UI Emoji",
	2: "Helvetica, Segoe UI Emoji",
	3: "Cascadia, Segoe UI Emoji",
	5: "Excalifont, Segoe UI Emoji",
	6: "Nunito, Segoe UI Emoji",
	8: "Comic Shanns, Segoe UI Emoji",
}

// SVGExporter adapts ExportToSVG to a context-aware collaborator.
type SVGExporter struct{}

func (SVGExporter) Export(ctx context.Context, elements []scene.Element, files scene.BinaryFiles, opts ExportOptions) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ExportToSVG(elements, files, opts)
}

// ExportToSVG renders elements into a Document sized to their bounds plus
// padding on every side. Each element becomes one <g data-element-id>,
// in input order, so GroupAt(i) belongs to elements[i].
func ExportToSVG(elements []scene.Element, files scene.BinaryFiles, opts ExportOptions) (*Document, error) {
	b := elementsBounds(elements)
	if !b.isSet {
		b = bounds{isSet: true}
	}
	pad := opts.Padding
	width := b.maxX - b.minX + 2*pad
	height := b.maxY - b.minY + 2*pad

	doc := newDocument(width, height)
	if opts.Background {
		color := opts.BackgroundColor
		if color == "" {
			color = "#ffffff"
		}
		doc.Append(NewNode("rect",
			"x", "0", "y", "0",
			"width", num(width), "height", num(height),
			"fill", color,
		))
	}

	dx, dy := pad-b.minX, pad-b.minY
	doc.OffsetX, doc.OffsetY = dx, dy
	for _, el := range elements {
		g, err := renderElement(el, files, dx, dy)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", el.ID, err)
		}
		if _, dup := doc.groups[el.ID]; !dup {
			doc.groups[el.ID] = g
		}
		doc.order = append(doc.order, g)
		doc.Append(g)
	}
	return doc, nil
}

func renderElement(el scene.Element, files scene.BinaryFiles, dx, dy float64) (*Node, error) {
	x, y := el.X+dx, el.Y+dy
	g := NewNode("g", "data-element-id", el.ID, "data-type", el.Type)
	if el.Opacity < 100 {
		g.Set("opacity", num(el.Opacity/100))
	}
	if el.Angle != 0 {
		cx, cy := x+el.Width/2, y+el.Height/2
		g.Set("transform", fmt.Sprintf("rotate(%s %s %s)", num(el.Angle*180/math.Pi), num(cx), num(cy)))
	}

	stroke := el.StrokeColor
	fill := "none"
	if el.BackgroundColor != "" && el.BackgroundColor != "transparent" {
		fill = el.BackgroundColor
	}
	sw := num(el.StrokeWidth)

	switch el.Type {
	case scene.TypeRectangle:
		r := NewNode("rect",
			"x", num(x), "y", num(y),
			"width", num(el.Width), "height", num(el.Height),
			"stroke", stroke, "stroke-width", sw, "fill", fill,
		)
		if el.Roundness != nil {
			rx := cornerRadius(el)
			r.Set("rx", num(rx)).Set("ry", num(rx))
		}
		g.Append(r)
	case scene.TypeDiamond:
		w, h := el.Width, el.Height
		pts := fmt.Sprintf("%s,%s %s,%s %s,%s %s,%s",
			num(x+w/2), num(y), num(x+w), num(y+h/2), num(x+w/2), num(y+h), num(x), num(y+h/2))
		g.Append(NewNode("polygon", "points", pts, "stroke", stroke, "stroke-width", sw, "fill", fill))
	case scene.TypeEllipse:
		g.Append(NewNode("ellipse",
			"cx", num(x+el.Width/2), "cy", num(y+el.Height/2),
			"rx", num(el.Width/2), "ry", num(el.Height/2),
			"stroke", stroke, "stroke-width", sw, "fill", fill,
		))
	case scene.TypeLine, scene.TypeFreedraw:
		if len(el.Points) == 0 {
			break
		}
		p := NewNode("path", "d", PathData(el, dx, dy), "stroke", stroke, "stroke-width", sw,
			"fill", "none", "stroke-linecap", "round", "stroke-linejoin", "round")
		if el.Type == scene.TypeLine && fill != "none" && closed(el.Points) {
			p.Set("fill", fill)
		}
		g.Append(p)
	case scene.TypeArrow:
		if len(el.Points) == 0 {
			break
		}
		g.Append(NewNode("path", "d", PathData(el, dx, dy), "stroke", stroke, "stroke-width", sw,
			"fill", "none", "stroke-linecap", "round"))
		if head := arrowhead(el, dx, dy); head != "" {
			g.Append(NewNode("path", "d", head, "stroke", stroke, "stroke-width", sw,
				"fill", "none", "stroke-linecap", "round"))
		}
	case scene.TypeText:
		g.Append(renderText(el, x, y))
	case scene.TypeImage:
		f, ok := files[el.FileID]
		if !ok || f.DataURL == "" {
			g.Append(NewNode("rect",
				"x", num(x), "y", num(y), "width", num(el.Width), "height", num(el.Height),
				"fill", "#e9ecef", "stroke", "#ced4da",
			))
			break
		}
		g.Append(NewNode("image",
			"x", num(x), "y", num(y), "width", num(el.Width), "height", num(el.Height),
			"href", f.DataURL, "preserveAspectRatio", "none",
		))
	default:
		return nil, fmt.Errorf("unsupported element type %q", el.Type)
	}
	return g, nil
}

const (
	proportionalRadius  = 0.25
	defaultAdaptiveSize = 32
	roundnessAdaptive   = 3
)

// cornerRadius follows the editor: adaptive roundness uses the fixed radius
// only once the shorter side passes fixed/0.25, proportional below that.
func cornerRadius(el scene.Element) float64 {
	side := math.Min(el.Width, el.Height)
	if el.Roundness.Type != roundnessAdaptive {
		return side * proportionalRadius
	}
	fixed := float64(defaultAdaptiveSize)
	if el.Roundness.Value != nil {
		fixed = *el.Roundness.Value
	}
	if side <= fixed/proportionalRadius {
		return side * proportionalRadius
	}
	return fixed
}

func renderText(el scene.Element, x, y float64) *Node {
	family, ok := fontFamilies[el.FontFamily]
	if !ok {
		family = fontFamilies[1]
	}
	anchor, tx := "start", x
	switch el.TextAlign {
	case "center":
		anchor, tx = "middle", x+el.Width/2
	case "right":
		anchor, tx = "end", x+el.Width
	}
	t := NewNode("text",
		"font-family", family,
		"font-size", num(el.FontSize)+"px",
		"fill", el.StrokeColor,
		"text-anchor", anchor,
		"dominant-baseline", "alphabetic",
	)
	lh := el.FontSize * 1.25
	for i, line := range strings.Split(el.Text, "\n") {
		span := NewNode("tspan", "x", num(tx), "y", num(y+float64(i)*lh+el.FontSize))
		span.Text = line
		t.Append(span)
	}
	return t
}

// PathData returns the "d" attribute for a linear element, offset by dx/dy.
func PathData(el scene.Element, dx, dy float64) string {
	var sb strings.Builder
	for i, p := range el.Points {
		if i == 0 {
			sb.WriteString("M")
		} else {
			sb.WriteString(" L")
		}
		sb.WriteString(num(el.X + p[0] + dx))
		sb.WriteString(" ")
		sb.WriteString(num(el.Y + p[1] + dy))
	}
	return sb.String()
}

func arrowhead(el scene.Element, dx, dy float64) string {
	n := len(el.Points)
	if n < 2 {
		return ""
	}
	tip, prev := el.Points[n-1], el.Points[n-2]
	vx, vy := tip[0]-prev[0], tip[1]-prev[1]
	length := math.Hypot(vx, vy)
	if length == 0 {
		return ""
	}
	size := math.Min(30, length/2)
	ux, uy := vx/length, vy/length
	const spread = math.Pi / 9
	tx, ty := el.X+tip[0]+dx, el.Y+tip[1]+dy
	ax := tx - size*(ux*math.Cos(spread)-uy*math.Sin(spread))
	ay := ty - size*(uy*math.Cos(spread)+ux*math.Sin(spread))
	bx := tx - size*(ux*math.Cos(spread)+uy*math.Sin(spread))
	by := ty - size*(uy*math.Cos(spread)-ux*math.Sin(spread))
	return fmt.Sprintf("M%s %s L%s %s L%s %s", num(ax), num(ay), num(tx), num(ty), num(bx), num(by))
}

func closed(points [][2]float64) bool {
	if len(points) < 3 {
		return false
	}
	first, last := points[0], points[len(points)-1]
	return math.Hypot(first[0]-last[0], first[1]-last[1]) < 1
}
