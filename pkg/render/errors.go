package render

import "errors"

var (
	// ErrInvalidParams is returned for non-positive scale or clip, or
	// out-of-range hue or lightness.
	ErrInvalidParams = errors.New("render: invalid parameters")

	// ErrEmptyEntry is returned when an entry has no samples to draw.
	ErrEmptyEntry = errors.New("render: entry has no samples")

	// ErrUnknownFormat is returned by ParseFormat.
	ErrUnknownFormat = errors.New("render: unknown output format")

	// ErrCanvasTooLarge guards the raster encoder's pixel buffer.
	ErrCanvasTooLarge = errors.New("render: canvas too large")
)
