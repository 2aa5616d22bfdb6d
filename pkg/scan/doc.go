// Package scan contains the domain values shared by the parser, the catalog
// and the renderer.
//
// # Entities
//
//   - [Sample]: one polar measurement (angle in radians, range in meters)
//   - [Key]: the composite identity of a decoded block (label, sequence)
//   - [Entry]: an immutable, ordered run of samples under a Key
//
// A sample with zero range is a "no return" reading. It stays part of the
// entry but renderers exclude it from the signal and marker layers.
package scan
