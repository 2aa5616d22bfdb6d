// Package console implements the interactive command loop of ptflview.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bft-labs/ptflview/pkg/catalog"
	"github.com/bft-labs/ptflview/pkg/log"
	"github.com/bft-labs/ptflview/pkg/ptfl"
	"github.com/bft-labs/ptflview/pkg/render"
	"github.com/bft-labs/ptflview/pkg/scan"
)

// Prompt is printed before every command.
const Prompt = "> "

// Previewer opens rendered images in an external viewer.
// *previewer.Bridge satisfies it.
type Previewer interface {
	EnsureStarted(ctx context.Context) error
	OpenImage(ctx context.Context, path string) error
}

// Watcher queues files that changed on disk. *watch.Watcher satisfies it.
type Watcher interface {
	Add(path string) error
	Remove(path string) error
	Drain() []string
}

// Settings are the rendering defaults of a session.
type Settings struct {
	OutDir    string
	TempDir   string
	Params    render.Params
	TevParams render.Params
	Lightness float64
	Workers   int
}

// DefaultSettings mirrors the CLI defaults.
func DefaultSettings() Settings {
	return Settings{
		OutDir:    ".",
		TempDir:   os.TempDir(),
		Params:    render.DefaultParams(),
		TevParams: render.DefaultParams(),
		Lightness: 50,
	}
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPreviewer enables the tev command.
func WithPreviewer(p Previewer) Option {
	return func(d *Dispatcher) {
		d.previewer = p
	}
}

// WithWatcher enables the watch and unwatch commands.
func WithWatcher(w Watcher) Option {
	return func(d *Dispatcher) {
		d.watcher = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// Dispatcher runs commands against one catalog. It is not safe for
// concurrent use; everything happens on the goroutine calling Run.
type Dispatcher struct {
	store     *catalog.Store
	parser    *ptfl.Parser
	settings  Settings
	previewer Previewer
	watcher   Watcher
	logger    log.Logger

	out   io.Writer
	lines *bufio.Scanner
}

// New returns a dispatcher writing to out.
func New(store *catalog.Store, settings Settings, out io.Writer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		settings: settings,
		logger:   log.NewNoopLogger(),
		out:      out,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.parser = ptfl.NewParser(ptfl.WithLogger(d.logger))
	return d
}

// Run reads commands from in until exit, end of input or ctx is done.
func (d *Dispatcher) Run(ctx context.Context, in io.Reader) error {
	d.lines = bufio.NewScanner(in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.applyReloads()

		fmt.Fprint(d.out, Prompt)
		if !d.lines.Scan() {
			fmt.Fprintln(d.out)
			return d.lines.Err()
		}
		args := strings.Fields(d.lines.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}
		if err := d.Execute(ctx, args); err != nil {
			d.report(args[0], err)
		}
	}
}

// Execute runs one tokenized command.
func (d *Dispatcher) Execute(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "load":
		return d.cmdLoad(rest)
	case "list":
		return d.cmdList(rest)
	case "show":
		return d.cmdShow(rest)
	case "combine":
		return d.cmdCombine(rest)
	case "output":
		return d.cmdOutput(ctx, rest)
	case "tev":
		return d.cmdTev(ctx, rest)
	case "watch":
		return d.cmdWatch(rest)
	case "unwatch":
		return d.cmdUnwatch(rest)
	case "help":
		printHelp(d.out)
		return nil
	default:
		return usageErr("", fmt.Sprintf("unknown command %q", cmd))
	}
}

func (d *Dispatcher) report(cmd string, err error) {
	fmt.Fprintf(d.out, "error: %v\n", err)

	var ue *UsageError
	if errors.As(err, &ue) {
		if ue.Command == "" {
			printHelp(d.out)
			return
		}
		printUsage(d.out, ue.Command, d.settings)
		return
	}
	d.logger.Debug("command failed", log.String("command", cmd), log.Err(err))
}

// readBlock reads sub-prompt lines until a blank line or end of input.
func (d *Dispatcher) readBlock() [][]string {
	var block [][]string
	for {
		fmt.Fprint(d.out, "... ")
		if d.lines == nil || !d.lines.Scan() {
			fmt.Fprintln(d.out)
			return block
		}
		fields := strings.Fields(d.lines.Text())
		if len(fields) == 0 {
			return block
		}
		block = append(block, fields)
	}
}

// Load parses one file into the catalog and prints what was read. A failed
// parse keeps the entries completed before the error.
func (d *Dispatcher) Load(path string) (int, error) {
	n, err := d.parser.Parse(path, d.store)
	if err != nil {
		d.parser.Renew()
		if n > 0 {
			fmt.Fprintf(d.out, "Read %d from %s before the error.\n", n, path)
		}
		return n, err
	}
	fmt.Fprintf(d.out, "Read %d from %s.\n", n, path)
	d.logger.Info("loaded scan file",
		log.String("path", path),
		log.Int("blocks", n),
		log.Int("catalog", d.store.Len()),
	)
	return n, nil
}

// RenderAll writes every catalog entry to the output directory with the
// session defaults.
func (d *Dispatcher) RenderAll(ctx context.Context, enc render.Encoder) render.BatchResult {
	entries := d.store.Entries()
	jobs := make([]render.Job, len(entries))
	for i, e := range entries {
		jobs[i] = render.Job{
			Entry:     e,
			Lightness: d.settings.Lightness,
			Path:      d.entryPath(e.Key, enc.Format()),
		}
	}
	return d.fanOut(ctx, enc, d.settings.Params, jobs)
}

func (d *Dispatcher) applyReloads() {
	if d.watcher == nil {
		return
	}
	for _, path := range d.watcher.Drain() {
		fmt.Fprintf(d.out, "%s changed, reloading\n", path)
		if _, err := d.Load(path); err != nil {
			fmt.Fprintf(d.out, "error: %v\n", err)
		}
	}
}

func (d *Dispatcher) lookup(label, seq string, cmd string) (scan.Entry, error) {
	key, err := scan.ParseKey(label, seq)
	if err != nil {
		return scan.Entry{}, usageErr(cmd, err.Error())
	}
	e, ok := d.store.Get(key)
	if !ok {
		return scan.Entry{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, key)
	}
	return e, nil
}
