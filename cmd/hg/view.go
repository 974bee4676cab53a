package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/hubgraph/pkg/analytics"
	"github.com/vanderheijden86/hubgraph/pkg/config"
	"github.com/vanderheijden86/hubgraph/pkg/debug"
	"github.com/vanderheijden86/hubgraph/pkg/loader"
	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/ui"
	"github.com/vanderheijden86/hubgraph/pkg/watcher"
)

type viewOptions struct {
	focus   string
	watch   bool
	reduced bool
	motion  bool
}

func (a *app) viewCmd() *cobra.Command {
	var o viewOptions
	cmd := &cobra.Command{
		Use:   "view [source]",
		Short: "Show the graph in the terminal",
		Long: "Fetch the document (a file path or http(s) URL, default data_url) and\n" +
			"show the live layout. A document that fails to load shows a fallback\n" +
			"screen instead of exiting.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.reduced && o.motion {
				return fmt.Errorf("--reduced-motion and --motion are mutually exclusive")
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			switch {
			case o.reduced:
				cfg.ReducedMotion = config.MotionOn
			case o.motion:
				cfg.ReducedMotion = config.MotionOff
			}
			return runView(cmd.Context(), cfg, source(args, cfg), o, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&o.focus, "focus", "", "node id to focus on start, as a #fragment would")
	cmd.Flags().BoolVar(&o.watch, "watch", false, "reload when a local document changes")
	cmd.Flags().BoolVar(&o.reduced, "reduced-motion", false, "force reduced motion")
	cmd.Flags().BoolVar(&o.motion, "motion", false, "force full motion")
	return cmd
}

func runView(ctx context.Context, cfg config.Config, src string, o viewOptions, stderr io.Writer) error {
	restore, err := redirectDebug()
	if err != nil {
		return err
	}
	defer restore()

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}
	reduced := cfg.ReducedMotionFor(width, config.SystemEnv)
	debug.Log("view: source=%s width=%d reduced=%v", src, width, reduced)

	data, loadErr := fetch(ctx, cfg, src)

	sink, err := analytics.Open(cfg.Analytics, pageURL(cfg, src))
	if err != nil {
		return err
	}
	notifier := analytics.NewNotifier(sink)
	defer notifier.Close()

	var w *watcher.Watcher
	if o.watch {
		w, err = startWatcher(ctx, cfg, src, stderr)
		if err != nil {
			return err
		}
		if w != nil {
			defer w.Stop()
		}
	}

	return ui.Run(ctx, ui.Options{
		Data:          data,
		LoadErr:       loadErr,
		Width:         cfg.Viewport.Width,
		Height:        cfg.Viewport.Height,
		TickInterval:  time.Duration(cfg.UI.TickMS) * time.Millisecond,
		Glyphs:        cfg.UI.Glyphs,
		ReducedMotion: reduced,
		Focus:         o.focus,
		Sink:          notifier,
		Navigator:     ui.Navigator{BaseURL: cfg.BaseURL},
		Watcher:       w,
		Reload: func(ctx context.Context) (model.GraphData, error) {
			return fetch(ctx, cfg, src)
		},
	})
}

// startWatcher watches a local document. Remote sources cannot be watched
// and yield a nil watcher with a warning.
func startWatcher(ctx context.Context, cfg config.Config, src string, stderr io.Writer) (*watcher.Watcher, error) {
	path, ok := loader.Watchable(src, cfg.BaseURL)
	if !ok {
		warnColor.Fprintf(stderr, "hg: --watch ignored, %s is not a local file\n", src)
		return nil, nil
	}
	w, err := watcher.New(path, watcher.WithOnError(func(err error) {
		debug.Log("view: watch %s: %v", path, err)
	}))
	if err != nil {
		return nil, err
	}
	if err := w.Start(ctx); err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	return w, nil
}

// pageURL is the page the HTTP analytics sink reports events against.
func pageURL(cfg config.Config, src string) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	if target, remote, err := loader.Resolve(src, ""); err == nil && remote {
		return target
	}
	return "app://hubgraph/"
}

// redirectDebug sends debug output to HG_DEBUG_FILE, or to debug.log in the
// state dir, while the viewer owns the terminal.
func redirectDebug() (func(), error) {
	if !debug.Enabled() {
		return func() {}, nil
	}
	path := os.Getenv("HG_DEBUG_FILE")
	if path == "" {
		path = filepath.Join(config.StateDir(), "debug.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create debug log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	debug.SetOutput(f)
	return func() {
		debug.SetOutput(os.Stderr)
		f.Close()
	}, nil
}
