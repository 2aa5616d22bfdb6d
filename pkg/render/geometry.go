package render

import (
	"fmt"
	"math"

	"github.com/bft-labs/ptflview/pkg/scan"
)

// Default projection parameters.
const (
	DefaultScale = 1000.0
	DefaultClip  = 2.0

	// MarkerHalfWidth is the half side of a marker square, in meters.
	MarkerHalfWidth = 0.004
)

// Params controls the projection.
type Params struct {
	Scale float64 // canvas units per meter
	Clip  float64 // half extent of the canvas, in meters
}

// DefaultParams returns scale 1000 and clip 2.
func DefaultParams() Params {
	return Params{Scale: DefaultScale, Clip: DefaultClip}
}

// Validate checks that both parameters are positive and finite.
func (p Params) Validate() error {
	if !(p.Scale > 0) || math.IsInf(p.Scale, 0) {
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidParams, p.Scale)
	}
	if !(p.Clip > 0) || math.IsInf(p.Clip, 0) {
		return fmt.Errorf("%w: clip must be positive, got %v", ErrInvalidParams, p.Clip)
	}
	return nil
}

// Size is the side of the square canvas.
func (p Params) Size() float64 {
	return 2 * p.Scale * p.Clip
}

// Point is a projected canvas position.
type Point struct {
	X, Y float64
}

// Project maps a polar sample onto the canvas.
func (p Params) Project(s scan.Sample) Point {
	return Point{
		X: p.Scale * (s.Range*math.Cos(s.Angle) + p.Clip),
		Y: p.Scale * (s.Range*math.Sin(s.Angle) + p.Clip),
	}
}

// Path is a closed polyline.
type Path struct {
	Points []Point
}

// square returns the closed marker square centered on c.
func square(c Point, half float64) Path {
	return Path{Points: []Point{
		{c.X - half, c.Y - half},
		{c.X + half, c.Y - half},
		{c.X + half, c.Y + half},
		{c.X - half, c.Y + half},
	}}
}
