package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/hubgraph/pkg/graph"
	"github.com/vanderheijden86/hubgraph/pkg/model"
)

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [source]",
		Short: "Validate a graph document",
		Long: "Fetch the document and confirm that node ids are unique and every link\n" +
			"names existing nodes. Unknown types and kinds, and nodes no hub reaches,\n" +
			"are reported as warnings.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			src := source(args, cfg)
			data, err := fetch(cmd.Context(), cfg, src)
			if err != nil {
				return err
			}
			return check(cmd.OutOrStdout(), src, data)
		},
	}
}

func check(w io.Writer, src string, data model.GraphData) error {
	g := graph.Build(data, graph.Options{ReducedMotion: true})
	summarize(w, src, g)

	for _, msg := range warnings(g) {
		warnColor.Fprintf(w, "  ! %s\n", msg)
	}

	err := model.Validate(data)
	if err == nil {
		okColor.Fprintln(w, "ok")
		return nil
	}
	problems := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		problems = joined.Unwrap()
	}
	for _, p := range problems {
		errColor.Fprintf(w, "  x %v\n", p)
	}
	return fmt.Errorf("%s: %d problem(s)", src, len(problems))
}

func summarize(w io.Writer, src string, g *graph.Graph) {
	counts := make(map[model.NodeType]int)
	for _, n := range g.Nodes {
		counts[n.Type]++
	}

	fmt.Fprintln(w, src)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  nodes\t%d\n", len(g.Nodes))
	fmt.Fprintf(tw, "  links\t%d\n", len(g.Links))
	for _, t := range model.AllNodeTypes {
		if counts[t] > 0 {
			fmt.Fprintf(tw, "  %s\t%d\n", t, counts[t])
		}
	}
	if !g.Empty() {
		fmt.Fprintf(tw, "  components\t%d\n", len(g.Components()))
	}
	tw.Flush()
}

func warnings(g *graph.Graph) []string {
	var out []string
	for _, n := range g.Nodes {
		if !n.Type.IsValid() {
			out = append(out, fmt.Sprintf("node %q has unknown type %q", n.ID, n.Type))
		}
	}
	for i, l := range g.Links {
		if !l.Kind.IsValid() {
			out = append(out, fmt.Sprintf("links[%d] has unknown kind %q", i, l.Kind))
		}
	}

	hasHub := false
	for _, n := range g.Nodes {
		if n.Type == model.TypeHub {
			hasHub = true
			break
		}
	}
	if !hasHub {
		if !g.Empty() {
			out = append(out, "no hub node")
		}
		return out
	}
	unreachable := 0
	for _, d := range g.Depths() {
		if d < 0 {
			unreachable++
		}
	}
	if unreachable > 0 {
		out = append(out, fmt.Sprintf("%d node(s) not reachable from a hub", unreachable))
	}
	return out
}
