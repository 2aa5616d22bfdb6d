package render

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
)

// Recorded is a LayerSet replayed onto a gg recording, ready to be played
// back to any recording backend.
type Recorded struct {
	*recording.Recording

	// Groups lists the layer kind of every Save/Restore pair in the
	// recording, in order. Empty kinds have no group.
	Groups []LayerKind
}

// Record draws set into a new recording: an opaque black background, then
// every layer stroked in its style colour with the style opacity carried in
// the stroke alpha. Format selects the per-format stroke widths.
func Record(set LayerSet, format Format) (*Recorded, error) {
	if err := set.Params.Validate(); err != nil {
		return nil, err
	}
	side := int(math.Round(set.Params.Size()))
	if side < 1 {
		return nil, fmt.Errorf("%w: canvas side %v rounds to zero", ErrInvalidParams, set.Params.Size())
	}

	rec := recording.NewRecorder(side, side)
	rec.ClearWithColor(gg.Black)
	rec.SetLineJoin(recording.LineJoinRound)

	out := &Recorded{}
	for _, g := range set.groups() {
		if len(g.layers) == 0 {
			continue
		}
		out.Groups = append(out.Groups, g.kind)
		rec.Push()
		for _, layer := range g.layers {
			recordLayer(rec, layer, set.Params, format)
		}
		rec.Pop()
	}
	out.Recording = rec.FinishRecording()
	return out, nil
}

func recordLayer(rec *recording.Recorder, layer Layer, params Params, format Format) {
	style := StyleFor(layer.Kind, format)
	c := gg.HSL(layer.Hue, style.Saturation, layer.Lightness/100)

	rec.SetStrokeRGBA(c.R, c.G, c.B, style.Opacity)
	rec.SetLineWidth(style.Width * params.Scale)
	for _, p := range layer.Paths {
		if len(p.Points) == 0 {
			continue
		}
		rec.MoveTo(p.Points[0].X, p.Points[0].Y)
		for _, pt := range p.Points[1:] {
			rec.LineTo(pt.X, pt.Y)
		}
		rec.ClosePath()
	}
	rec.Stroke()
}
