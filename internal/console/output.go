package console

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/pflag"

	"github.com/bft-labs/ptflview/pkg/catalog"
	"github.com/bft-labs/ptflview/pkg/render"
	"github.com/bft-labs/ptflview/pkg/scan"
)

type outputFlags struct {
	set       *pflag.FlagSet
	png       bool
	svg       bool
	help      bool
	scale     float64
	clip      float64
	lightness float64
}

func newOutputFlags(s Settings) *outputFlags {
	f := &outputFlags{set: pflag.NewFlagSet("output", pflag.ContinueOnError)}
	f.set.SetOutput(io.Discard)
	f.set.BoolVar(&f.png, "png", false, "write a PNG image (default)")
	f.set.BoolVar(&f.svg, "svg", false, "write an SVG image")
	f.set.Float64Var(&f.scale, "scale", s.Params.Scale, "pixels per meter")
	f.set.Float64Var(&f.clip, "clip", s.Params.Clip, "half the canvas side, in meters")
	f.set.Float64Var(&f.lightness, "lightness", s.Lightness, "stroke lightness, 0 to 100")
	f.set.BoolVarP(&f.help, "help", "h", false, "show this usage")
	return f
}

func (d *Dispatcher) cmdOutput(ctx context.Context, args []string) error {
	f := newOutputFlags(d.settings)
	if err := f.set.Parse(args); err != nil {
		return usageErr("output", err.Error())
	}
	if f.help {
		printUsage(d.out, "output", d.settings)
		return nil
	}
	if f.png && f.svg {
		return usageErr("output", "--png and --svg are mutually exclusive")
	}
	if f.lightness < 0 || f.lightness > 100 {
		return usageErr("output", "--lightness must be within 0..100")
	}

	format := render.PNG
	if f.svg {
		format = render.SVG
	}
	enc, err := render.NewEncoder(format)
	if err != nil {
		return err
	}
	params := render.Params{Scale: f.scale, Clip: f.clip}
	if err := params.Validate(); err != nil {
		return usageErr("output", err.Error())
	}

	pos := f.set.Args()
	switch len(pos) {
	case 1:
		return d.outputCombined(pos[0], enc, params, f.lightness)
	case 2, 3:
		var hue *float64
		if len(pos) == 3 {
			h, err := parseHue(pos[2])
			if err != nil {
				return err
			}
			hue = &h
		}
		if pos[1] == "*" {
			return d.outputMatching(ctx, pos[0], hue, enc, params, f.lightness)
		}
		return d.outputOne(pos[0], pos[1], hue, enc, params, f.lightness)
	default:
		return usageErr("output", "wrong number of arguments")
	}
}

func parseHue(s string) (float64, error) {
	h, err := strconv.ParseFloat(s, 64)
	if err != nil || h < 0 || h > 360 {
		return 0, usageErr("output", fmt.Sprintf("hue %q must be a number within 0..360", s))
	}
	return h, nil
}

func (d *Dispatcher) entryPath(key scan.Key, f render.Format) string {
	return filepath.Join(d.settings.OutDir, key.FileStem()+f.Ext())
}

func (d *Dispatcher) outputPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.settings.OutDir, name)
}

func (d *Dispatcher) outputOne(label, seq string, hue *float64, enc render.Encoder, params render.Params, lightness float64) error {
	e, err := d.lookup(label, seq, "output")
	if err != nil {
		return err
	}
	h := 0.0
	if hue != nil {
		h = *hue
	}

	set, err := render.Build(e, params, h, lightness)
	if err != nil {
		return err
	}
	path := d.entryPath(e.Key, enc.Format())
	if err := render.WriteFile(path, enc, set); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Wrote %s.\n", path)
	return nil
}

func (d *Dispatcher) outputMatching(ctx context.Context, pattern string, hue *float64, enc render.Encoder, params render.Params, lightness float64) error {
	entries, err := d.store.Match(pattern)
	if err != nil {
		return usageErr("output", err.Error())
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: no entries match %q", catalog.ErrNotFound, pattern)
	}

	hues := render.SpreadHues(len(entries))
	jobs := make([]render.Job, len(entries))
	for i, e := range entries {
		h := hues[i]
		if hue != nil {
			h = *hue
		}
		jobs[i] = render.Job{Entry: e, Hue: h, Lightness: lightness, Path: d.entryPath(e.Key, enc.Format())}
	}

	res := d.fanOut(ctx, enc, params, jobs)
	d.printBatch(res)
	return nil
}

func (d *Dispatcher) fanOut(ctx context.Context, enc render.Encoder, params render.Params, jobs []render.Job) render.BatchResult {
	fo := &render.FanOut{
		Encoder: enc,
		Params:  params,
		Workers: d.settings.Workers,
		Logger:  d.logger,
	}
	return fo.Run(ctx, jobs)
}

func (d *Dispatcher) printBatch(res render.BatchResult) {
	fmt.Fprintf(d.out, "Rendered %d of %d entries in %s.\n",
		len(res.Written()), len(res.Results), res.Duration.Round(time.Millisecond))
	for _, r := range res.Failed() {
		fmt.Fprintf(d.out, "  %s: %v\n", r.Job.Entry.Key, r.Err)
	}
}

type combinedItem struct {
	entry scan.Entry
	hue   *float64
}

// outputCombined reads "LABEL SEQ [HUE]" lines and draws every entry into one
// image. Entries without a hue share the circle evenly in the order read.
func (d *Dispatcher) outputCombined(name string, enc render.Encoder, params render.Params, lightness float64) error {
	var (
		items []combinedItem
		bad   error
	)
	for _, fields := range d.readBlock() {
		if bad != nil {
			continue
		}
		if len(fields) != 2 && len(fields) != 3 {
			bad = usageErr("output", fmt.Sprintf("entry line %q: expected LABEL SEQ [HUE]", fields))
			continue
		}
		e, err := d.lookup(fields[0], fields[1], "output")
		if err != nil {
			bad = err
			continue
		}
		item := combinedItem{entry: e}
		if len(fields) == 3 {
			h, err := parseHue(fields[2])
			if err != nil {
				bad = err
				continue
			}
			item.hue = &h
		}
		items = append(items, item)
	}
	if bad != nil {
		return bad
	}
	if len(items) == 0 {
		return usageErr("output", "no entries given")
	}

	explicit := make([]*float64, len(items))
	for i, it := range items {
		explicit[i] = it.hue
	}
	hues := assignHues(explicit)

	var combined render.LayerSet
	for i, it := range items {
		set, err := render.Build(it.entry, params, hues[i], lightness)
		if err != nil {
			return fmt.Errorf("%s: %w", it.entry.Key, err)
		}
		if i == 0 {
			combined = set
			continue
		}
		combined = render.Combine(combined, set)
	}

	path := d.outputPath(name)
	if err := render.WriteFile(path, enc, combined); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Wrote %d entries to %s.\n", len(items), path)
	return nil
}

// assignHues keeps explicit hues and spreads the rest evenly over the circle
// in order: step is 360 divided by the number of missing hues.
func assignHues(explicit []*float64) []float64 {
	missing := 0
	for _, h := range explicit {
		if h == nil {
			missing++
		}
	}
	spread := render.SpreadHues(missing)

	out := make([]float64, len(explicit))
	next := 0
	for i, h := range explicit {
		if h != nil {
			out[i] = *h
			continue
		}
		out[i] = spread[next]
		next++
	}
	return out
}
