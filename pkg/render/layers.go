package render

import (
	"fmt"

	"github.com/bft-labs/ptflview/pkg/scan"
)

// LayerKind identifies one of the three per-entry layers.
type LayerKind int

const (
	Outline LayerKind = iota
	Signal
	Markers
)

func (k LayerKind) String() string {
	switch k {
	case Outline:
		return "outline"
	case Signal:
		return "signal"
	case Markers:
		return "markers"
	default:
		return "unknown"
	}
}

// Style is the stroke recipe of a layer. Width is in meters and is
// multiplied by the projection scale when drawn.
type Style struct {
	Saturation float64 // 0..1
	Opacity    float64 // 0..1
	Width      float64
}

// Stroke widths per layer. The raster encoder draws the signal layer
// thinner than the vector encoder.
const (
	OutlineWidth      = 0.0005
	SignalWidth       = 0.003
	SignalRasterWidth = 0.002
	MarkerWidth       = 0.002
)

// StyleFor returns the style of kind for the given output format.
func StyleFor(kind LayerKind, format Format) Style {
	switch kind {
	case Outline:
		return Style{Saturation: 0.4, Opacity: 0.3, Width: OutlineWidth}
	case Signal:
		w := SignalWidth
		if format == PNG {
			w = SignalRasterWidth
		}
		return Style{Saturation: 0.7, Opacity: 0.6, Width: w}
	default:
		return Style{Saturation: 1, Opacity: 0.8, Width: MarkerWidth}
	}
}

// Layer is one entry's contribution to one layer kind.
type Layer struct {
	Kind      LayerKind
	Source    scan.Key
	Hue       float64 // degrees, 0..360
	Lightness float64 // percent, 0..100
	Paths     []Path
}

// LayerSet holds the layers of one or more entries, grouped by kind.
type LayerSet struct {
	Params  Params
	Outline []Layer
	Signal  []Layer
	Markers []Layer
}

type layerGroup struct {
	kind   LayerKind
	layers []Layer
}

// groups returns the layers grouped by kind in drawing order.
func (s LayerSet) groups() []layerGroup {
	return []layerGroup{
		{Outline, s.Outline},
		{Signal, s.Signal},
		{Markers, s.Markers},
	}
}

// Combine concatenates the layers of b after those of a. The result keeps
// a's projection parameters.
func Combine(a, b LayerSet) LayerSet {
	return LayerSet{
		Params:  a.Params,
		Outline: append(append([]Layer(nil), a.Outline...), b.Outline...),
		Signal:  append(append([]Layer(nil), a.Signal...), b.Signal...),
		Markers: append(append([]Layer(nil), a.Markers...), b.Markers...),
	}
}

// Build projects entry into its three layers. The signal layer is left out
// when no sample has a return; marker layers are left out likewise.
func Build(entry scan.Entry, params Params, hue, lightness float64) (LayerSet, error) {
	if err := params.Validate(); err != nil {
		return LayerSet{}, err
	}
	if hue < 0 || hue > 360 {
		return LayerSet{}, fmt.Errorf("%w: hue must be within 0-360, got %v", ErrInvalidParams, hue)
	}
	if lightness < 0 || lightness > 100 {
		return LayerSet{}, fmt.Errorf("%w: lightness must be within 0-100, got %v", ErrInvalidParams, lightness)
	}
	if entry.Len() == 0 {
		return LayerSet{}, fmt.Errorf("%w: %s", ErrEmptyEntry, entry.Key)
	}

	layer := func(kind LayerKind, paths []Path) Layer {
		return Layer{Kind: kind, Source: entry.Key, Hue: hue, Lightness: lightness, Paths: paths}
	}

	outline := make([]Point, 0, entry.Len())
	signal := make([]Point, 0, entry.Len())
	var markers []Path
	half := params.Scale * MarkerHalfWidth
	for _, s := range entry.Samples {
		pt := params.Project(s)
		outline = append(outline, pt)
		if s.NoReturn() {
			continue
		}
		signal = append(signal, pt)
		markers = append(markers, square(pt, half))
	}

	set := LayerSet{
		Params:  params,
		Outline: []Layer{layer(Outline, []Path{{Points: outline}})},
	}
	if len(signal) > 0 {
		set.Signal = []Layer{layer(Signal, []Path{{Points: signal}})}
		set.Markers = []Layer{layer(Markers, markers)}
	}
	return set, nil
}

// SpreadHues returns n hues evenly spaced over [0, 360), starting at 0.
func SpreadHues(n int) []float64 {
	if n <= 0 {
		return nil
	}
	step := 360 / float64(n)
	hues := make([]float64, n)
	for i := range hues {
		hues[i] = float64(i) * step
	}
	return hues
}
