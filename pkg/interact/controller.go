// Package interact owns the mutable interaction state layered over a graph:
// legend and filter visibility, hover and focus, drag pins, activation and
// fragment deep links.
package interact

import (
	"strings"
	"time"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
	"github.com/vanderheijden86/hubgraph/pkg/graph"
	"github.com/vanderheijden86/hubgraph/pkg/links"
	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/render"
)

const (
	// PulseDuration is how long a deep-linked node keeps its highlight.
	PulseDuration = 2000 * time.Millisecond

	// Visibility changes reheat the layout to these alphas.
	ReheatAlpha        = 0.2
	ReheatAlphaReduced = 0.1

	tooltipOffset = 16
)

// Tooltip is the label card shown next to a hovered or focused node.
type Tooltip struct {
	Visible     bool
	NodeID      string
	Label       string
	Description string
	X, Y        float64
}

// Options wires a controller to its collaborators. Nil fields fall back to
// no-ops, and Clock defaults to time.Now.
type Options struct {
	Sink          Sink
	Navigator     Navigator
	Simulation    Simulation
	ReducedMotion bool
	Clock         func() time.Time
}

// Controller is the interaction state machine. It is not safe for
// concurrent use; callers drive it from the same loop that ticks the
// simulation.
type Controller struct {
	g       *graph.Graph
	sink    Sink
	nav     Navigator
	sim     Simulation
	clock   func() time.Time
	reduced bool

	legend  map[model.NodeType]bool
	term    string
	visible map[string]bool

	hover   string
	focus   string
	blurred map[string]bool
	drags   map[string]bool
	tooltip Tooltip
	pulses  map[string]time.Time
}

// New builds a controller with every legend type enabled and an empty
// filter, and computes the initial visible set.
func New(g *graph.Graph, opts Options) *Controller {
	c := &Controller{
		g:       g,
		sink:    opts.Sink,
		nav:     opts.Navigator,
		sim:     opts.Simulation,
		clock:   opts.Clock,
		reduced: opts.ReducedMotion,
		legend:  make(map[model.NodeType]bool, len(model.AllNodeTypes)),
		visible: make(map[string]bool),
		blurred: make(map[string]bool),
		drags:   make(map[string]bool),
		pulses:  make(map[string]time.Time),
	}
	if c.sink == nil {
		c.sink = nopSink{}
	}
	if c.nav == nil {
		c.nav = nopNavigator{}
	}
	if c.sim == nil {
		c.sim = nopSimulation{}
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	for _, t := range model.AllNodeTypes {
		c.legend[t] = true
	}
	c.RecomputeVisibility()
	return c
}

// Graph returns the graph the controller operates on.
func (c *Controller) Graph() *graph.Graph { return c.g }

// --- legend and filter -----------------------------------------------------

// LegendEnabled reports whether nodes of type t may be shown.
func (c *Controller) LegendEnabled(t model.NodeType) bool {
	return c.legend[t]
}

// Legend returns a copy of the legend state.
func (c *Controller) Legend() map[model.NodeType]bool {
	out := make(map[model.NodeType]bool, len(c.legend))
	for t, on := range c.legend {
		out[t] = on
	}
	return out
}

// ToggleLegend flips a legend type and recomputes visibility. Unknown types
// are ignored. It returns the new state of t.
func (c *Controller) ToggleLegend(t model.NodeType) bool {
	if !t.IsValid() {
		return false
	}
	c.legend[t] = !c.legend[t]
	c.RecomputeVisibility()
	return c.legend[t]
}

// ResetLegend enables every legend type.
func (c *Controller) ResetLegend() {
	for _, t := range model.AllNodeTypes {
		c.legend[t] = true
	}
	c.RecomputeVisibility()
}

// LegendResetDisabled reports whether a reset would be a no-op.
func (c *Controller) LegendResetDisabled() bool {
	for _, t := range model.AllNodeTypes {
		if !c.legend[t] {
			return false
		}
	}
	return true
}

// SetFilter reports the raw term to the sink, then filters on it.
func (c *Controller) SetFilter(term string) {
	c.sink.FilterUsed(term)
	c.term = term
	c.RecomputeVisibility()
}

// Filter returns the current filter term.
func (c *Controller) Filter() string { return c.term }

// RecomputeVisibility rebuilds the visible set from the legend and filter,
// then reheats the layout so space is redistributed.
func (c *Controller) RecomputeVisibility() {
	term := strings.ToLower(c.term)
	for _, n := range c.nodes() {
		c.visible[n.ID] = c.legend[n.Type] && matches(n, term)
	}

	if c.focus != "" && !c.visible[c.focus] {
		c.Blur()
	}
	if c.hover != "" && !c.visible[c.hover] {
		c.PointerLeave(c.hover)
	}

	if c.reduced {
		c.sim.Reheat(ReheatAlphaReduced)
	} else {
		c.sim.Reheat(ReheatAlpha)
	}
}

func matches(n *graph.Node, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(n.Label), term) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

// Visible reports whether node id is currently shown.
func (c *Controller) Visible(id string) bool { return c.visible[id] }

// VisibleIDs returns the shown node ids in document order.
func (c *Controller) VisibleIDs() []string {
	var ids []string
	for _, n := range c.nodes() {
		if c.visible[n.ID] {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// LinkVisible reports whether both endpoints of l are shown.
func (c *Controller) LinkVisible(l *graph.Link) bool {
	return l.Source != nil && l.Target != nil && c.visible[l.Source.ID] && c.visible[l.Target.ID]
}

// --- hover and focus -------------------------------------------------------

// PointerEnter marks id hovered, shows its tooltip near the pointer and
// reports the hover.
func (c *Controller) PointerEnter(id string, px, py float64) bool {
	n := c.g.Node(id)
	if n == nil || !c.visible[id] {
		return false
	}
	c.hover = id
	c.showTooltip(n, px, py)
	c.sink.NodeHovered(n.ID, n.Label)
	return true
}

// PointerLeave clears the hover and hides the tooltip.
func (c *Controller) PointerLeave(id string) {
	if c.hover != id {
		return
	}
	c.hover = ""
	c.hideTooltip()
}

// Hover returns the hovered node id.
func (c *Controller) Hover() string { return c.hover }

// Focus moves keyboard focus to id. Hidden and unknown nodes cannot take
// focus.
func (c *Controller) Focus(id string) bool {
	n := c.g.Node(id)
	if n == nil || !c.visible[id] {
		return false
	}
	if c.focus != "" && c.focus != id {
		c.blurred[c.focus] = true
	}
	c.focus = id
	delete(c.blurred, id)
	x, y := n.Position()
	c.showTooltip(n, x, y)
	return true
}

// Blur clears keyboard focus and hides the tooltip.
func (c *Controller) Blur() {
	if c.focus != "" {
		c.blurred[c.focus] = true
		c.focus = ""
	}
	c.hideTooltip()
}

// Focused returns the focused node id.
func (c *Controller) Focused() string { return c.focus }

// Tooltip returns the current tooltip.
func (c *Controller) Tooltip() Tooltip { return c.tooltip }

func (c *Controller) showTooltip(n *graph.Node, x, y float64) {
	c.tooltip = Tooltip{
		Visible:     true,
		NodeID:      n.ID,
		Label:       n.Label,
		Description: n.Description,
		X:           x + tooltipOffset,
		Y:           y + tooltipOffset,
	}
}

func (c *Controller) hideTooltip() {
	c.tooltip = Tooltip{}
}

// --- drag ------------------------------------------------------------------

// DragStart pins id for a pointer drag.
func (c *Controller) DragStart(id string) bool {
	if !c.sim.DragStart(id) {
		return false
	}
	c.drags[id] = true
	return true
}

// DragTo moves a dragged node's pin.
func (c *Controller) DragTo(id string, x, y float64) bool {
	if !c.drags[id] {
		return false
	}
	return c.sim.DragTo(id, x, y)
}

// DragEnd releases a drag.
func (c *Controller) DragEnd(id string) bool {
	if !c.drags[id] {
		return false
	}
	delete(c.drags, id)
	return c.sim.DragEnd(id)
}

// Dragging reports whether id is being dragged.
func (c *Controller) Dragging(id string) bool { return c.drags[id] }

// --- activation ------------------------------------------------------------

// Click activates id in response to a pointer click.
func (c *Controller) Click(id string) error {
	return c.Activate(id)
}

// Activate follows id's href and reports the click. External hrefs open
// with referral parameters; "#id" hrefs focus the target in place.
func (c *Controller) Activate(id string) error {
	n := c.g.Node(id)
	if n == nil {
		return nil
	}
	debug.Log("activate %s -> %q", n.ID, n.Href)

	var err error
	switch {
	case n.Href == "":
	case links.IsExternalLink(n.Href):
		err = c.nav.OpenExternal(links.ApplyUtmParams(n.Href))
	default:
		if frag, ok := links.Fragment(n.Href); ok {
			c.FocusHash(frag, c.clock())
		} else {
			err = c.nav.Navigate(n.Href)
		}
	}
	c.sink.NodeClicked(n.ID, n.Label)
	return err
}

// --- fragment deep links ---------------------------------------------------

// FocusHash focuses the node named by a URL fragment ("#id" or "id") and
// highlights it until now+PulseDuration. Unknown or hidden targets are a
// silent no-op.
func (c *Controller) FocusHash(fragment string, now time.Time) bool {
	id := strings.TrimPrefix(fragment, "#")
	if id == "" {
		return false
	}
	if !c.Focus(id) {
		debug.Log("hash target %q not found", id)
		return false
	}
	c.pulses[id] = now.Add(PulseDuration)
	return true
}

// Expire clears highlights whose time is up. It reports whether any were
// removed.
func (c *Controller) Expire(now time.Time) bool {
	removed := false
	for id, until := range c.pulses {
		if !now.Before(until) {
			delete(c.pulses, id)
			removed = true
		}
	}
	return removed
}

// Pulsing reports whether id currently carries the deep-link highlight.
func (c *Controller) Pulsing(id string) bool {
	_, ok := c.pulses[id]
	return ok
}

// --- projection ------------------------------------------------------------

// State returns the interaction state for render.Project.
func (c *Controller) State() render.State {
	st := render.State{
		Hidden:        make(map[string]bool),
		Hover:         c.hover,
		Focus:         c.focus,
		Blurred:       make(map[string]bool, len(c.blurred)),
		Pulse:         make(map[string]bool, len(c.pulses)),
		ReducedMotion: c.reduced,
	}
	for _, n := range c.nodes() {
		if !c.visible[n.ID] {
			st.Hidden[n.ID] = true
		}
	}
	for id := range c.blurred {
		st.Blurred[id] = true
	}
	for id := range c.pulses {
		st.Pulse[id] = true
	}
	return st
}

func (c *Controller) nodes() []*graph.Node {
	if c.g == nil {
		return nil
	}
	return c.g.Nodes
}
