package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/hubgraph/pkg/config"
	"github.com/vanderheijden86/hubgraph/pkg/graph"
	"github.com/vanderheijden86/hubgraph/pkg/interact"
	"github.com/vanderheijden86/hubgraph/pkg/metrics"
	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/render"
	"github.com/vanderheijden86/hubgraph/pkg/sim"
)

type renderOptions struct {
	out        string
	format     string
	ticks      int
	elapsed    int // ms; negative means ticks x ui.tick_ms
	frames     int
	seed       uint64
	focus      string
	background string
	labels     bool
	reduced    bool
	stats      bool
}

func (a *app) renderCmd() *cobra.Command {
	o := renderOptions{ticks: 300, elapsed: -1, seed: 1, labels: true}
	cmd := &cobra.Command{
		Use:   "render [source]",
		Short: "Run the layout headless and write SVG or PNG frames",
		Long: "Run the simulation and animation passes for --ticks frames without a\n" +
			"terminal and write the final frame to -o. With --frames K, K evenly\n" +
			"spaced frames are written into the -o directory instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if o.reduced {
				cfg.ReducedMotion = config.MotionOn
			}
			metrics.ResetAll()
			src := source(args, cfg)
			data, err := fetch(cmd.Context(), cfg, src)
			if err != nil {
				return err
			}
			return runRender(cmd, cfg, data, o)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.out, "output", "o", "", "output file, or directory with --frames")
	f.StringVar(&o.format, "format", "", "svg or png (default from the output extension)")
	f.IntVar(&o.ticks, "ticks", o.ticks, "simulation ticks to run")
	f.IntVar(&o.elapsed, "elapsed", o.elapsed, "animation time at the last tick in ms (default ticks x ui.tick_ms)")
	f.IntVar(&o.frames, "frames", 0, "write this many evenly spaced frames")
	f.Uint64Var(&o.seed, "seed", o.seed, "random seed for placement jitter and motion")
	f.StringVar(&o.focus, "focus", "", "node id drawn focused")
	f.StringVar(&o.background, "background", "", "background color (SVG default transparent)")
	f.BoolVar(&o.labels, "labels", o.labels, "draw node labels")
	f.BoolVar(&o.reduced, "reduced-motion", false, "render with reduced motion")
	f.BoolVar(&o.stats, "stats", false, "print timing metrics")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runRender(cmd *cobra.Command, cfg config.Config, data model.GraphData, o renderOptions) error {
	if o.ticks < 0 || o.frames < 0 {
		return fmt.Errorf("--ticks and --frames must not be negative")
	}
	if o.frames > 0 && o.frames > max(1, o.ticks) {
		return fmt.Errorf("--frames %d exceeds --ticks %d", o.frames, o.ticks)
	}
	path := o.out
	if o.frames > 0 {
		path = ""
	}
	format, err := render.ParseFormat(o.format, path)
	if err != nil {
		return err
	}

	tick := time.Duration(cfg.UI.TickMS) * time.Millisecond
	total := time.Duration(o.ticks) * tick
	if o.elapsed >= 0 {
		total = time.Duration(o.elapsed) * time.Millisecond
	}

	// Headless output is reproducible: auto mode renders full motion.
	h, err := newHeadless(data, cfg, cfg.ReducedMotion == config.MotionOn, o.seed)
	if err != nil {
		return err
	}
	if o.focus != "" && !h.ctrl.FocusHash(o.focus, h.start) {
		warnColor.Fprintf(cmd.ErrOrStderr(), "hg: no node %q to focus\n", o.focus)
	}

	opts := render.Options{Background: o.background, Labels: o.labels}
	out := cmd.OutOrStdout()

	if o.frames == 0 {
		h.run(o.ticks, total, nil)
		if err := render.Save(o.out, format, h.frame(), opts); err != nil {
			return err
		}
		okColor.Fprintf(out, "wrote %s", o.out)
		dimColor.Fprintf(out, " (%d nodes, %d ticks, alpha %.4f)\n", len(h.g.Nodes), h.sim.Ticks(), h.sim.Alpha())
		return writeStats(out, o.stats)
	}

	frames := make([]render.Frame, 0, o.frames)
	every := max(1, o.ticks/o.frames)
	h.run(o.ticks, total, func(i int) {
		if i%every == 0 && len(frames) < o.frames {
			frames = append(frames, h.frame())
		}
	})
	if len(frames) == 0 {
		frames = append(frames, h.frame())
	}
	paths, err := render.ExportFrames(cmd.Context(), frames, o.out, format, opts)
	if err != nil {
		return err
	}
	okColor.Fprintf(out, "wrote %d frames", len(paths))
	dimColor.Fprintf(out, " to %s\n", o.out)
	return writeStats(out, o.stats)
}

func writeStats(w io.Writer, enabled bool) error {
	if !enabled {
		return nil
	}
	fmt.Fprintln(w)
	return metrics.WriteReport(w)
}

// headless drives the viewer's per-frame sequence without a terminal.
type headless struct {
	g     *graph.Graph
	sim   *sim.Simulation
	ctrl  *interact.Controller
	start time.Time

	width, height float64
}

func newHeadless(data model.GraphData, cfg config.Config, reduced bool, seed uint64) (*headless, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := graph.Build(data, graph.Options{ReducedMotion: reduced, Rand: rng})
	if g.Empty() {
		return nil, fmt.Errorf("document has no nodes")
	}
	s := sim.New(g, sim.Config{
		Width:         cfg.Viewport.Width,
		Height:        cfg.Viewport.Height,
		ReducedMotion: reduced,
		Rand:          rng,
	})
	width, height := s.Size()
	start := time.Unix(0, 0)
	ctrl := interact.New(g, interact.Options{
		Simulation:    s,
		ReducedMotion: reduced,
		Clock:         func() time.Time { return start },
	})
	return &headless{
		g:      g,
		sim:    s,
		ctrl:   ctrl,
		start:  start,
		width:  width,
		height: height,
	}, nil
}

// run advances ticks frames, spreading total animation time evenly over
// them. after is called with the 1-based tick number.
func (h *headless) run(ticks int, total time.Duration, after func(i int)) {
	for i := 1; i <= ticks; i++ {
		elapsed := time.Duration(int64(total) * int64(i) / int64(ticks))
		h.g.ApplyPhysics(elapsed)
		h.sim.Step()
		h.g.ApplyDisplay(elapsed)
		h.ctrl.Expire(h.start.Add(elapsed))
		if after != nil {
			after(i)
		}
	}
}

func (h *headless) frame() render.Frame {
	return render.Project(h.g, h.ctrl.State(), h.width, h.height)
}
