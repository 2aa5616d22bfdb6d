// Package render turns scan entries into layered drawing paths and encodes
// them as PNG or SVG images.
//
// Geometry is produced once by Build and is identical for every backend:
//
//	x = scale * (r*cos(θ) + clip)
//	y = scale * (r*sin(θ) + clip)
//
// on a square canvas of side 2*scale*clip with an opaque black background.
// Each entry contributes three layers:
//
//   - outline: one closed path through every sample, zero-range ones included
//   - signal: one closed path through the samples that have a return
//   - markers: a small closed square around every sample that has a return
//
// LayerSets from several entries are merged with Combine and drawn outline
// layers first, then signal layers, then markers. Encoders only differ in how
// they apply opacity: the raster encoder composites each layer onto the
// canvas, the vector encoder writes a stroke alpha.
package render
