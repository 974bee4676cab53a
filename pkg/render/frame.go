// Package render projects the live graph onto drawable primitives and writes
// them out as SVG or PNG frames.
package render

import (
	"math"

	"github.com/vanderheijden86/hubgraph/pkg/graph"
	"github.com/vanderheijden86/hubgraph/pkg/metrics"
	"github.com/vanderheijden86/hubgraph/pkg/model"
)

// CSS classes carried by node primitives.
const (
	ClassNode    = "graph-node"
	ClassPinned  = "graph-node--pinned"
	ClassHover   = "graph-node--hover"
	ClassFocused = "graph-node--focused"
	ClassPulse   = "graph-node--pulse"
)

const (
	initialGlowScale = 1.25
	pulseGlowScale   = 1.12
	labelGap         = 14

	strokeWidth        = 1.1
	focusStrokeWidth   = 2
	blurredStrokeWidth = 1.5
)

// State is the interaction state a frame is drawn with. The zero value draws
// every node visible with nothing hovered or focused.
type State struct {
	Hidden  map[string]bool
	Hover   string
	Focus   string
	Blurred map[string]bool
	Pulse   map[string]bool

	ReducedMotion bool
}

// NodePrimitive is one drawable node.
type NodePrimitive struct {
	ID    string
	Label string
	Type  model.NodeType

	X, Y       float64
	Radius     float64
	GlowRadius float64 // zero when no glow ring is drawn
	Rotation   float64 // degrees
	LabelY     float64 // relative to the node center

	Color       string
	Stroke      string
	StrokeWidth float64
	Classes     []string
	Hidden      bool
	TabIndex    int
}

// HasClass reports whether the primitive carries class c.
func (p NodePrimitive) HasClass(c string) bool {
	for _, have := range p.Classes {
		if have == c {
			return true
		}
	}
	return false
}

// LinkPrimitive is one drawable link.
type LinkPrimitive struct {
	Source, Target string
	Kind           model.LinkKind

	X1, Y1, X2, Y2 float64
	Width          float64
	Color          string
	Hidden         bool
}

// Frame holds everything needed to draw one tick.
type Frame struct {
	Width, Height float64
	Nodes         []NodePrimitive
	Links         []LinkPrimitive
	ReducedMotion bool
}

// Project maps the current graph state onto primitives. It only reads the
// graph.
func Project(g *graph.Graph, st State, width, height float64) Frame {
	defer metrics.Timer(metrics.RenderFrame)()

	f := Frame{Width: width, Height: height, ReducedMotion: st.ReducedMotion}
	if g.Empty() {
		return f
	}

	f.Links = make([]LinkPrimitive, 0, len(g.Links))
	for _, l := range g.Links {
		f.Links = append(f.Links, projectLink(l, st))
	}
	f.Nodes = make([]NodePrimitive, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		f.Nodes = append(f.Nodes, projectNode(n, st))
	}
	return f
}

func projectNode(n *graph.Node, st State) NodePrimitive {
	x, y := position(n)
	radius := n.Radius
	if radius == 0 {
		radius = model.Radius(n.Type)
	}

	p := NodePrimitive{
		ID:          n.ID,
		Label:       n.Label,
		Type:        n.Type,
		X:           x,
		Y:           y,
		Radius:      radius,
		Rotation:    n.SpinAngle * 180 / math.Pi,
		LabelY:      -(radius + labelGap),
		Color:       n.Color,
		Stroke:      model.NodeStroke,
		StrokeWidth: strokeWidth,
		Hidden:      st.Hidden[n.ID],
		TabIndex:    -1,
	}
	if p.Color == "" {
		p.Color = model.NodeColor(n.ID, n.Type)
	}
	if model.Focusable(n.Type) {
		p.TabIndex = 0
	}

	if !st.ReducedMotion {
		if n.Motion.Pulse != nil {
			p.GlowRadius = radius * pulseGlowScale
		} else {
			p.GlowRadius = model.Radius(n.Type) * initialGlowScale
		}
	}

	p.Classes = append(p.Classes, ClassNode)
	if n.GraphNode.Pinned {
		p.Classes = append(p.Classes, ClassPinned)
	}
	if st.Hover == n.ID {
		p.Classes = append(p.Classes, ClassHover)
	}
	switch {
	case st.Focus == n.ID:
		p.Classes = append(p.Classes, ClassFocused)
		p.Stroke = model.FocusRing
		p.StrokeWidth = focusStrokeWidth
	case st.Blurred[n.ID]:
		p.Stroke = model.BlurStroke
		p.StrokeWidth = blurredStrokeWidth
	}
	if st.Pulse[n.ID] {
		p.Classes = append(p.Classes, ClassPulse)
	}
	return p
}

func projectLink(l *graph.Link, st State) LinkPrimitive {
	p := LinkPrimitive{
		Kind:  l.Kind,
		Width: model.LinkWidth(l.Kind),
		Color: model.LinkColor(l.Kind),
	}
	p.X1, p.Y1 = position(l.Source)
	p.X2, p.Y2 = position(l.Target)
	if l.Source != nil {
		p.Source = l.Source.ID
	}
	if l.Target != nil {
		p.Target = l.Target.ID
	}
	p.Hidden = st.Hidden[p.Source] || st.Hidden[p.Target]
	return p
}

// position tolerates missing endpoints and unset coordinates by falling back
// to the origin.
func position(n *graph.Node) (x, y float64) {
	if n == nil {
		return 0, 0
	}
	x, y = n.Position()
	if math.IsNaN(x) || math.IsInf(x, 0) {
		x = 0
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		y = 0
	}
	return x, y
}

// Visible returns the ids of the nodes drawn in f, in document order.
func (f Frame) Visible() []string {
	var ids []string
	for _, n := range f.Nodes {
		if !n.Hidden {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
