package renderer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
)

const svgNS = "http://www.w3.org/2000/svg"

// Node is an SVG element in an in-memory tree.
type Node struct {
	Name     string
	Attrs    []xml.Attr
	Children []*Node
	Text     string

	// timed nodes carry their begin offset in ms; it is written relative
	// to the owning document's current time
	timed   bool
	beginMs int64
}

// NewNode creates a node with attributes given as name/value pairs.
func NewNode(name string, kv ...string) *Node {
	n := &Node{Name: name}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Set(kv[i], kv[i+1])
	}
	return n
}

// NewTimedNode creates an animation node (animate, set, animateMotion...)
// that begins beginMs after the document timeline starts.
func NewTimedNode(name string, beginMs int64, kv ...string) *Node {
	n := NewNode(name, kv...)
	n.timed = true
	n.beginMs = beginMs
	return n
}

// Set replaces or adds an attribute.
func (n *Node) Set(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name.Local == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return n
}

// Get returns an attribute value.
func (n *Node) Get(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Append adds children and returns n.
func (n *Node) Append(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// BeginMs returns the begin offset of a timed node.
func (n *Node) BeginMs() (int64, bool) {
	return n.beginMs, n.timed
}

// Walk visits n and its descendants depth-first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Document is a rendered SVG. Element groups are indexed by element id.
type Document struct {
	Root   *Node
	Width  float64
	Height float64

	// OffsetX/OffsetY translate scene coordinates into document coordinates.
	OffsetX float64
	OffsetY float64

	groups        map[string]*Node
	order         []*Node
	currentTimeMs int64
}

func newDocument(width, height float64) *Document {
	root := NewNode("svg",
		"xmlns", svgNS,
		"version", "1.1",
		"viewBox", fmt.Sprintf("0 0 %s %s", num(width), num(height)),
		"width", num(width),
		"height", num(height),
	)
	return &Document{Root: root, Width: width, Height: height, groups: map[string]*Node{}}
}

// Group returns the <g> holding the element with the given id.
func (d *Document) Group(id string) (*Node, bool) {
	g, ok := d.groups[id]
	return g, ok
}

// GroupAt returns the <g> of the i-th exported element.
func (d *Document) GroupAt(i int) (*Node, bool) {
	if i < 0 || i >= len(d.order) {
		return nil, false
	}
	return d.order[i], true
}

// Len returns the number of exported element groups.
func (d *Document) Len() int {
	return len(d.order)
}

// Append adds top-level nodes after everything already in the document.
func (d *Document) Append(nodes ...*Node) {
	d.Root.Append(nodes...)
}

// SetCurrentTime seeks the animation timeline to ms. It is realized when
// the document is written: every begin is shifted back by ms.
func (d *Document) SetCurrentTime(ms int64) {
	d.currentTimeMs = ms
}

func (d *Document) CurrentTime() int64 {
	return d.currentTimeMs
}

// WriteTo serializes the document as standalone SVG.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if _, err := io.WriteString(cw, xml.Header); err != nil {
		return cw.n, err
	}
	enc := xml.NewEncoder(cw)
	if err := d.encode(enc, d.Root); err != nil {
		return cw.n, err
	}
	if err := enc.Flush(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d *Document) encode(enc *xml.Encoder, n *Node) error {
	attrs := n.Attrs
	if n.timed {
		attrs = append(make([]xml.Attr, 0, len(n.Attrs)+1), n.Attrs...)
		attrs = append(attrs, xml.Attr{
			Name:  xml.Name{Local: "begin"},
			Value: strconv.FormatInt(n.beginMs-d.currentTimeMs, 10) + "ms",
		})
	}
	start := xml.StartElement{Name: xml.Name{Local: n.Name}, Attr: attrs}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := d.encode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// num formats a coordinate rounded to 1/100 without trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
