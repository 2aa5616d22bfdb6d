package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format selects an output backend.
type Format int

const (
	PNG Format = iota
	SVG
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case SVG:
		return "svg"
	default:
		return "unknown"
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	return "." + f.String()
}

// ParseFormat accepts "png" or "svg", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Encoder writes a LayerSet in one image format. Implementations hold no
// mutable state and may be shared between goroutines.
type Encoder interface {
	Format() Format
	Encode(w io.Writer, set LayerSet) error
}

// NewEncoder returns the encoder for f.
func NewEncoder(f Format) (Encoder, error) {
	switch f {
	case PNG:
		return Raster{}, nil
	case SVG:
		return Vector{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
}

// WriteFile encodes set into path. The image is written to a temporary file
// in the same directory and renamed into place, so a failed encode never
// leaves a partial image behind.
func WriteFile(path string, enc Encoder, set LayerSet) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := enc.Encode(tmp, set); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", enc.Format(), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
