package console

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/bft-labs/ptflview/pkg/render"
	"github.com/bft-labs/ptflview/pkg/scan"
)

// ErrUnavailable is returned by commands whose backend is not configured.
var ErrUnavailable = errors.New("not available in this session")

func (d *Dispatcher) cmdLoad(args []string) error {
	if len(args) == 0 {
		return usageErr("load", "expected at least one file")
	}
	for _, path := range args {
		if _, err := d.Load(path); err != nil {
			fmt.Fprintf(d.out, "error: %v\n", err)
		}
	}
	fmt.Fprintf(d.out, "Currently %d entries.\n", d.store.Len())
	return nil
}

func (d *Dispatcher) cmdList(args []string) error {
	if len(args) != 0 {
		return usageErr("list", "takes no arguments")
	}
	if d.store.Len() == 0 {
		fmt.Fprintln(d.out, "catalog is empty")
		return nil
	}
	for _, e := range d.store.Entries() {
		fmt.Fprintf(d.out, "%s\t%d samples\n", e.Key, e.Len())
	}
	return nil
}

func (d *Dispatcher) cmdShow(args []string) error {
	if len(args) != 2 {
		return usageErr("show", "expected LABEL SEQ")
	}
	key, err := scan.ParseKey(args[0], args[1])
	if err != nil {
		return usageErr("show", err.Error())
	}
	e, ok := d.store.Get(key)
	if !ok {
		fmt.Fprintf(d.out, "%s: not found\n", key)
		return nil
	}
	fmt.Fprintf(d.out, "%s: %d samples, %d returns\n", key, e.Len(), e.Returns())
	return nil
}

func (d *Dispatcher) cmdCombine(args []string) error {
	if len(args) != 2 {
		return usageErr("combine", "expected LABEL SEQ")
	}
	target, err := scan.ParseKey(args[0], args[1])
	if err != nil {
		return usageErr("combine", err.Error())
	}

	// The sub-prompt is always consumed so its lines are never run as commands.
	var sources []scan.Key
	var bad error
	for _, fields := range d.readBlock() {
		if bad != nil {
			continue
		}
		if len(fields) != 2 {
			bad = usageErr("combine", fmt.Sprintf("source line %q: expected LABEL SEQ", fields))
			continue
		}
		key, err := scan.ParseKey(fields[0], fields[1])
		if err != nil {
			bad = usageErr("combine", err.Error())
			continue
		}
		sources = append(sources, key)
	}
	if bad != nil {
		return bad
	}

	merged, err := d.store.Combine(target, sources)
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Combined %d entries into %s (%d samples).\n", len(sources), target, merged.Len())
	return nil
}

func (d *Dispatcher) cmdTev(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageErr("tev", "expected LABEL SEQ")
	}
	if d.previewer == nil {
		return fmt.Errorf("tev: %w", ErrUnavailable)
	}
	e, err := d.lookup(args[0], args[1], "tev")
	if err != nil {
		return err
	}
	if err := d.previewer.EnsureStarted(ctx); err != nil {
		return err
	}

	set, err := render.Build(e, d.settings.TevParams, 0, d.settings.Lightness)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(filepath.Join(d.settings.TempDir, "ptflview-"+e.Key.FileStem()+render.PNG.Ext()))
	if err != nil {
		return err
	}
	if err := render.WriteFile(path, render.Raster{}, set); err != nil {
		return err
	}
	if err := d.previewer.OpenImage(ctx, path); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Opened %s in previewer.\n", e.Key)
	return nil
}

func (d *Dispatcher) cmdWatch(args []string) error {
	if len(args) == 0 {
		return usageErr("watch", "expected at least one file")
	}
	if d.watcher == nil {
		return fmt.Errorf("watch: %w", ErrUnavailable)
	}
	for _, path := range args {
		if err := d.watcher.Add(path); err != nil {
			fmt.Fprintf(d.out, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(d.out, "Watching %s.\n", path)
	}
	return nil
}

func (d *Dispatcher) cmdUnwatch(args []string) error {
	if len(args) != 1 {
		return usageErr("unwatch", "expected one file")
	}
	if d.watcher == nil {
		return fmt.Errorf("unwatch: %w", ErrUnavailable)
	}
	if err := d.watcher.Remove(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "Stopped watching %s.\n", args[0])
	return nil
}
