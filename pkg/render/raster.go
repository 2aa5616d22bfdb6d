package render

import (
	"fmt"
	"image"
	"io"
	"math"

	rasterbackend "github.com/gogpu/gg/recording/backends/raster"
)

// MaxRasterSide bounds the side of a raster canvas in pixels.
const MaxRasterSide = 16384

// Raster encodes a LayerSet as an anti-aliased PNG.
type Raster struct{}

// Format returns PNG.
func (Raster) Format() Format { return PNG }

// Encode draws set onto a fresh canvas and writes it as PNG.
func (r Raster) Encode(w io.Writer, set LayerSet) error {
	b, err := r.playback(set)
	if err != nil {
		return err
	}
	_, err = b.WriteTo(w)
	return err
}

// Draw renders set into a new image.
func (r Raster) Draw(set LayerSet) (image.Image, error) {
	b, err := r.playback(set)
	if err != nil {
		return nil, err
	}
	return b.Image(), nil
}

func (Raster) playback(set LayerSet) (*rasterbackend.Backend, error) {
	if err := set.Params.Validate(); err != nil {
		return nil, err
	}
	side := int(math.Round(set.Params.Size()))
	if side > MaxRasterSide {
		return nil, fmt.Errorf("%w: %d pixels", ErrCanvasTooLarge, side)
	}

	rec, err := Record(set, PNG)
	if err != nil {
		return nil, err
	}
	b := rasterbackend.NewBackend()
	if err := rec.Playback(b); err != nil {
		return nil, fmt.Errorf("raster playback: %w", err)
	}
	return b, nil
}
