package ptfl

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every error the parser returns.
var ErrFormat = errors.New("ptfl: format error")

// Specific causes wrapped inside a FormatError.
var (
	ErrBadHeader  = errors.New("expected a positive block length or an empty line")
	ErrZeroLength = errors.New("block length must be non-zero")
	ErrFieldCount = errors.New("expected 2 comma separated fields")
	ErrBadNumber  = errors.New("expected a floating point number")
	ErrTruncated  = errors.New("truncated block")
	ErrRead       = errors.New("failed reading file")
	ErrNilSink    = errors.New("nil sink")
)

// FormatError reports where a ptfl source stopped decoding.
// Line is 1-based and zero for errors not tied to a line.
type FormatError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	if e.Text == "" {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: %v (line %q)", e.Path, e.Line, e.Err, e.Text)
}

func (e *FormatError) Unwrap() []error {
	return []error{ErrFormat, e.Err}
}
