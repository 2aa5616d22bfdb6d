package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/ptflview/internal/cliconfig"
	"github.com/bft-labs/ptflview/internal/console"
	"github.com/bft-labs/ptflview/internal/watch"
	"github.com/bft-labs/ptflview/pkg/catalog"
	"github.com/bft-labs/ptflview/pkg/log"
	"github.com/bft-labs/ptflview/pkg/previewer"
	"github.com/bft-labs/ptflview/pkg/render"
)

const helpBanner = `
       _    __ _        _               
 _ __ | |_ / _| |__   _(_) _____      __
| '_ \| __| |_| |\ \ / / |/ _ \ \ /\ / /
| |_) | |_|  _| | \ V /| |  __/\ V  V / 
| .__/ \__|_| |_|  \_/ |_|\___| \_/\_/  
|_|                                     
`

const helpDescription = `
Load polar lidar scans from ptfl files, combine them, and render them as
PNG or SVG images or straight into a running tev viewer.

Highlights:
  - Interactive console: load, list, show, combine, output, tev, watch.
  - Each scan is drawn as an outline, a signal trace and per-return markers.
  - Wildcard output renders every matching scan in parallel.
  - Configure via file, env (PTFLVIEW_*), or flags.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  ptflview scans/a.ptfl scans/b.ptfl
  ptflview --no-prompt --out-dir renders scans/*.ptfl
  ptflview --config $HOME/.ptflview/config.toml --previewer /opt/tev/tev
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()

	root := &cobra.Command{
		Use:          "ptflview [files...]",
		Short:        "Inspect and render polar lidar scans",
		Long:         longHelp,
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.ConfigPath == "" {
				cfg.ConfigPath = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfg.ConfigPath != "" && cliconfig.FileExists(cfg.ConfigPath) {
				fc, err := cliconfig.LoadFileConfig(cfg.ConfigPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Env overrides the file; explicit flags override both.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// Every path must exist before anything is parsed.
			for _, path := range args {
				if !cliconfig.FileExists(path) {
					return fmt.Errorf("%s: no such file", path)
				}
			}

			logger := log.NewZerologAdapter(os.Stderr, cfg.LogLevel)
			logger.Debug("configuration", log.Any("config", cfg))

			return run(cfg, args, logger)
		},
	}

	root.Flags().StringVar(&cfg.ConfigPath, "config", "", "path to config file (default: $HOME/.ptflview/config.toml)")
	root.Flags().BoolVar(&cfg.NoPrompt, "no-prompt", cfg.NoPrompt, "render every loaded scan to PNG and exit")
	root.Flags().StringVar(&cfg.OutDir, "out-dir", cfg.OutDir, "directory for rendered images")
	root.Flags().StringVar(&cfg.Previewer, "previewer", cfg.Previewer, "tev executable used by the tev command")
	root.Flags().Float64Var(&cfg.Scale, "scale", cfg.Scale, "default pixels per meter")
	root.Flags().Float64Var(&cfg.Clip, "clip", cfg.Clip, "default half canvas side in meters")
	root.Flags().IntVar(&cfg.Workers, "workers", cfg.Workers, "parallel renders for wildcard output")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error, disabled)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ptflview:", err)
		os.Exit(1)
	}
}

func run(cfg cliconfig.Config, files []string, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings := console.Settings{
		OutDir:    cfg.OutDir,
		TempDir:   os.TempDir(),
		Params:    render.Params{Scale: cfg.Scale, Clip: cfg.Clip},
		TevParams: render.Params{Scale: cfg.TevScale, Clip: cfg.TevClip},
		Lightness: cfg.Lightness,
		Workers:   cfg.Workers,
	}

	bridge := previewer.NewBridge(
		previewer.WithExecutable(cfg.Previewer),
		previewer.WithDialAttempts(cfg.DialAttempts),
		previewer.WithLogger(logger),
	)
	defer func() {
		if err := bridge.Close(); err != nil {
			logger.Warn("closing previewer", log.Err(err))
		}
	}()

	opts := []console.Option{
		console.WithLogger(logger),
		console.WithPreviewer(bridge),
	}
	if w, err := watch.New(watch.WithLogger(logger)); err != nil {
		logger.Warn("file watching disabled", log.Err(err))
	} else {
		defer w.Close()
		opts = append(opts, console.WithWatcher(w))
	}

	d := console.New(catalog.New(), settings, os.Stdout, opts...)
	for _, path := range files {
		if _, err := d.Load(path); err != nil {
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
		}
	}

	if cfg.NoPrompt {
		res := d.RenderAll(ctx, render.Raster{})
		for _, p := range res.Written() {
			fmt.Fprintf(os.Stdout, "Wrote %s.\n", p)
		}
		return res.Err()
	}

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, os.Stdin) }()

	select {
	case <-ctx.Done():
		logger.Info("received signal, stopping")
		return nil
	case err := <-done:
		return err
	}
}
