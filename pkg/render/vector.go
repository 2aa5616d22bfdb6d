package render

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/text"
)

// Vector encodes a LayerSet as an SVG document with one group per layer
// kind and one path element per entry layer.
type Vector struct{}

// Format returns SVG.
func (Vector) Format() Format { return SVG }

// Encode plays the recorded set back into an SVG backend and writes it.
func (Vector) Encode(w io.Writer, set LayerSet) error {
	rec, err := Record(set, SVG)
	if err != nil {
		return err
	}
	b := newSVGBackend(rec.Groups)
	if err := rec.Playback(b); err != nil {
		return fmt.Errorf("svg playback: %w", err)
	}
	_, err = b.WriteTo(w)
	return err
}

// svgBackend is a recording.WriterBackend emitting SVG. Every Save opens a
// <g> named after the next entry of groups; paths are already in canvas
// coordinates, so transforms and clips are not tracked.
type svgBackend struct {
	buf    bytes.Buffer
	groups []LayerKind
	next   int
	open   []bool
}

var _ recording.WriterBackend = (*svgBackend)(nil)

func newSVGBackend(groups []LayerKind) *svgBackend {
	return &svgBackend{groups: groups}
}

func (b *svgBackend) Begin(width, height int) error {
	b.buf.Reset()
	b.next = 0
	b.open = b.open[:0]
	fmt.Fprintln(&b.buf, `<?xml version="1.0" encoding="UTF-8"?>`)
	fmt.Fprintf(&b.buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	return nil
}

func (b *svgBackend) End() error {
	for range b.open {
		b.Restore()
	}
	fmt.Fprintln(&b.buf, `</svg>`)
	return nil
}

func (b *svgBackend) Save() {
	if b.next >= len(b.groups) {
		b.open = append(b.open, false)
		return
	}
	fmt.Fprintf(&b.buf, `<g id="%s">`+"\n", b.groups[b.next])
	b.next++
	b.open = append(b.open, true)
}

func (b *svgBackend) Restore() {
	if len(b.open) == 0 {
		return
	}
	opened := b.open[len(b.open)-1]
	b.open = b.open[:len(b.open)-1]
	if opened {
		fmt.Fprintln(&b.buf, `</g>`)
	}
}

func (b *svgBackend) SetTransform(recording.Matrix) {}
func (b *svgBackend) SetClip(*gg.Path, recording.FillRule) {}
func (b *svgBackend) ClearClip() {}
func (b *svgBackend) DrawImage(image.Image, recording.Rect, recording.Rect, recording.ImageOptions) {}
func (b *svgBackend) DrawText(string, float64, float64, text.Face, recording.Brush) {}

func (b *svgBackend) FillPath(path *gg.Path, brush recording.Brush, rule recording.FillRule) {
	d := pathData(path)
	if d == "" {
		return
	}
	c := brushColor(brush)
	fillRule := "nonzero"
	if rule == recording.FillRuleEvenOdd {
		fillRule = "evenodd"
	}
	fmt.Fprintf(&b.buf, `<path d="%s" fill="%s"%s fill-rule="%s"/>`+"\n",
		d, hexColor(c), opacityAttr("fill-opacity", c.A), fillRule)
}

func (b *svgBackend) StrokePath(path *gg.Path, brush recording.Brush, stroke recording.Stroke) {
	d := pathData(path)
	if d == "" {
		return
	}
	c := brushColor(brush)
	fmt.Fprintf(&b.buf, `<path d="%s" fill="none" stroke="%s"%s stroke-width="%s" stroke-linejoin="%s" stroke-linecap="%s"/>`+"\n",
		d, hexColor(c), opacityAttr("stroke-opacity", c.A), num(stroke.Width),
		lineJoin(stroke.Join), lineCap(stroke.Cap))
}

func (b *svgBackend) FillRect(rect recording.Rect, brush recording.Brush) {
	c := brushColor(brush)
	fmt.Fprintf(&b.buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"%s/>`+"\n",
		num(rect.MinX), num(rect.MinY), num(rect.Width()), num(rect.Height()),
		hexColor(c), opacityAttr("fill-opacity", c.A))
}

func (b *svgBackend) WriteTo(w io.Writer) (int64, error) {
	return b.buf.WriteTo(w)
}

// pathData converts a gg path into SVG path data.
func pathData(path *gg.Path) string {
	if path == nil {
		return ""
	}
	var d strings.Builder
	for _, elem := range path.Elements() {
		if d.Len() > 0 {
			d.WriteByte(' ')
		}
		switch e := elem.(type) {
		case gg.MoveTo:
			d.WriteString("M" + num(e.Point.X) + " " + num(e.Point.Y))
		case gg.LineTo:
			d.WriteString("L" + num(e.Point.X) + " " + num(e.Point.Y))
		case gg.QuadTo:
			d.WriteString("Q" + num(e.Control.X) + " " + num(e.Control.Y) + " " +
				num(e.Point.X) + " " + num(e.Point.Y))
		case gg.CubicTo:
			d.WriteString("C" + num(e.Control1.X) + " " + num(e.Control1.Y) + " " +
				num(e.Control2.X) + " " + num(e.Control2.Y) + " " +
				num(e.Point.X) + " " + num(e.Point.Y))
		case gg.Close:
			d.WriteString("Z")
		}
	}
	return d.String()
}

// brushColor returns the colour of a solid brush. Gradients are not used
// by the layer styles and fall back to black.
func brushColor(brush recording.Brush) gg.RGBA {
	if s, ok := brush.(recording.SolidBrush); ok {
		return s.Color
	}
	return gg.Black
}

func opacityAttr(name string, alpha float64) string {
	if alpha >= 1 {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, num(alpha))
}

func lineJoin(j recording.LineJoin) string {
	switch j {
	case recording.LineJoinRound:
		return "round"
	case recording.LineJoinBevel:
		return "bevel"
	default:
		return "miter"
	}
}

func lineCap(c recording.LineCap) string {
	switch c {
	case recording.LineCapRound:
		return "round"
	case recording.LineCapSquare:
		return "square"
	default:
		return "butt"
	}
}

// num formats v with at most four decimals and no trailing zeros.
func num(v float64) string {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

func hexColor(c gg.RGBA) string {
	to8 := func(v float64) int {
		return int(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}
