package ptfl

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bft-labs/ptflview/pkg/log"
	"github.com/bft-labs/ptflview/pkg/scan"
)

// StateKind tags the parser state.
type StateKind int

const (
	// Idle waits for a block header or blank lines.
	Idle StateKind = iota
	// Collecting consumes the sample lines of an open block.
	Collecting
)

// State is the parser state. Remaining is only meaningful while Collecting.
type State struct {
	Kind      StateKind
	Remaining uint64
}

func (s State) String() string {
	switch s.Kind {
	case Idle:
		return "Idle"
	case Collecting:
		return fmt.Sprintf("Collecting(%d)", s.Remaining)
	default:
		return "Unknown"
	}
}

// Sink receives every completed block. *catalog.Store satisfies it.
type Sink interface {
	Insert(entry scan.Entry)
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for per-block debug output.
func WithLogger(logger log.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithSpanning lets a block that is still open at the end of one source
// continue into the next Parse call. Without it, a source that ends inside
// a block is reported as truncated.
func WithSpanning() Option {
	return func(p *Parser) {
		p.spanning = true
	}
}

// Parser decodes ptfl sources into entries. It is not safe for concurrent use.
type Parser struct {
	state    State
	block    []scan.Sample
	spanning bool
	logger   log.Logger
}

// NewParser returns a parser in the Idle state.
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current state.
func (p *Parser) State() State {
	return p.state
}

// Renew drops any partially collected block and returns to Idle.
func (p *Parser) Renew() {
	p.state = State{Kind: Idle}
	p.block = nil
}

// Parse decodes the file at path, inserting every completed block into sink
// under (base name of path, block index). It returns the number of blocks
// completed by this call. On error the entries completed so far stay in
// sink and the parser state is left where decoding stopped; call Renew
// before parsing again.
func (p *Parser) Parse(path string, sink Sink) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, &FormatError{Path: path, Err: fmt.Errorf("%w: %w", ErrRead, err)}
	}
	return p.parse(path, filepath.Base(path), data, sink)
}

// ParseReader is Parse for an in-memory or streamed source. The whole
// source is read before any state changes.
func (p *Parser) ParseReader(label string, r io.Reader, sink Sink) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, &FormatError{Path: label, Err: fmt.Errorf("%w: %w", ErrRead, err)}
	}
	return p.parse(label, label, data, sink)
}

func (p *Parser) parse(path, label string, data []byte, sink Sink) (int, error) {
	if sink == nil {
		return 0, &FormatError{Path: path, Err: ErrNilSink}
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		completed int
		lineNo    int
	)
	fail := func(line string, err error) (int, error) {
		return completed, &FormatError{Path: path, Line: lineNo, Text: line, Err: err}
	}

	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")

		switch p.state.Kind {
		case Idle:
			if strings.TrimSpace(line) == "" {
				continue
			}
			n, err := strconv.ParseUint(strings.TrimSpace(line), 10, 64)
			if err != nil {
				return fail(line, fmt.Errorf("%w: %w", ErrBadHeader, err))
			}
			if n == 0 {
				return fail(line, ErrZeroLength)
			}
			p.block = make([]scan.Sample, 0, min(n, 1<<16))
			p.state = State{Kind: Collecting, Remaining: n}

		case Collecting:
			sample, err := parseSample(line)
			if err != nil {
				return fail(line, err)
			}
			p.block = append(p.block, sample)
			if p.state.Remaining > 1 {
				p.state.Remaining--
				continue
			}

			entry := scan.Entry{
				Key:     scan.Key{Label: label, Seq: uint32(completed)},
				Samples: p.block,
			}
			sink.Insert(entry)
			p.logger.Debug("block decoded",
				log.String("label", label),
				log.Uint32("seq", entry.Key.Seq),
				log.Int("samples", len(p.block)),
			)
			completed++
			p.block = nil
			p.state = State{Kind: Idle}
		}
	}
	if err := sc.Err(); err != nil {
		return fail("", fmt.Errorf("%w: %w", ErrRead, err))
	}

	if p.state.Kind == Collecting && !p.spanning {
		return completed, &FormatError{
			Path: path,
			Line: lineNo,
			Err:  fmt.Errorf("%w: source ended with %d sample lines missing", ErrTruncated, p.state.Remaining),
		}
	}
	return completed, nil
}

// parseSample decodes one "angle,range" line.
func parseSample(line string) (scan.Sample, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 2 {
		return scan.Sample{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(fields))
	}
	angle, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return scan.Sample{}, fmt.Errorf("%w: angle: %w", ErrBadNumber, err)
	}
	rng, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return scan.Sample{}, fmt.Errorf("%w: range: %w", ErrBadNumber, err)
	}
	return scan.Sample{Angle: angle, Range: rng}, nil
}
