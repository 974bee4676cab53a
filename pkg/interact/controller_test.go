package interact

import (
	"errors"
	"testing"
	"time"

	"github.com/vanderheijden86/hubgraph/pkg/graph"
	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/render"
	"pgregory.net/rapid"
)

type recordingSink struct {
	clicks  []string
	hovers  []string
	filters []string
}

func (r *recordingSink) NodeClicked(id, _ string) { r.clicks = append(r.clicks, id) }
func (r *recordingSink) NodeHovered(id, _ string) { r.hovers = append(r.hovers, id) }
func (r *recordingSink) FilterUsed(term string)   { r.filters = append(r.filters, term) }

type recordingNavigator struct {
	external []string
	internal []string
	err      error
}

func (r *recordingNavigator) OpenExternal(href string) error {
	r.external = append(r.external, href)
	return r.err
}

func (r *recordingNavigator) Navigate(href string) error {
	r.internal = append(r.internal, href)
	return r.err
}

type fakeSim struct {
	reheats []float64
	drags   map[string]bool
	pins    map[string][2]float64
}

func (f *fakeSim) Reheat(alpha float64) { f.reheats = append(f.reheats, alpha) }

func (f *fakeSim) DragStart(id string) bool {
	if f.drags == nil {
		f.drags = map[string]bool{}
		f.pins = map[string][2]float64{}
	}
	f.drags[id] = true
	return true
}

func (f *fakeSim) DragTo(id string, x, y float64) bool {
	f.pins[id] = [2]float64{x, y}
	return f.drags[id]
}

func (f *fakeSim) DragEnd(id string) bool {
	delete(f.drags, id)
	return true
}

func searchGraph() *graph.Graph {
	return graph.Build(model.GraphData{
		Nodes: []model.GraphNode{
			{ID: "a", Label: "Alpha", Type: model.TypeHub, Tags: []string{"x"}},
			{ID: "b", Label: "Beta", Type: model.TypeAsset, Tags: []string{"alpha-tag"}},
		},
		Links: []model.GraphLink{{Source: "b", Target: "a", Kind: model.KindBelongsTo}},
	}, graph.Options{ReducedMotion: true})
}

// TestSetFilter_MatchesLabelAndTag verifies case-insensitive label and tag
// matching
func TestSetFilter_MatchesLabelAndTag(t *testing.T) {
	sink := &recordingSink{}
	c := New(searchGraph(), Options{Sink: sink})

	c.SetFilter("alpha")
	if !c.Visible("a") || !c.Visible("b") {
		t.Errorf("alpha: a=%v b=%v, want both visible", c.Visible("a"), c.Visible("b"))
	}

	c.SetFilter("zzz")
	if c.Visible("a") || c.Visible("b") {
		t.Errorf("zzz: a=%v b=%v, want none visible", c.Visible("a"), c.Visible("b"))
	}

	c.SetFilter("")
	if len(c.VisibleIDs()) != 2 {
		t.Errorf("empty term should show all, got %v", c.VisibleIDs())
	}

	if len(sink.filters) != 3 || sink.filters[0] != "alpha" || sink.filters[1] != "zzz" || sink.filters[2] != "" {
		t.Errorf("filter notifications = %q", sink.filters)
	}
}

// TestSetFilter_ReportsRawTerm verifies the sink sees the term as typed
func TestSetFilter_ReportsRawTerm(t *testing.T) {
	sink := &recordingSink{}
	c := New(searchGraph(), Options{Sink: sink})
	c.SetFilter("ALPHA")
	if sink.filters[0] != "ALPHA" {
		t.Errorf("got %q", sink.filters[0])
	}
	if !c.Visible("a") {
		t.Error("uppercase term should still match")
	}
}

// TestRecomputeVisibility_Reheats verifies each recompute reheats the layout
func TestRecomputeVisibility_Reheats(t *testing.T) {
	sim := &fakeSim{}
	c := New(searchGraph(), Options{Simulation: sim})
	c.SetFilter("beta")
	c.ToggleLegend(model.TypeHub)
	if len(sim.reheats) != 3 {
		t.Fatalf("reheats = %v, want 3 (init, filter, legend)", sim.reheats)
	}
	for _, a := range sim.reheats {
		if a != ReheatAlpha {
			t.Errorf("reheat alpha %v, want %v", a, ReheatAlpha)
		}
	}

	reduced := &fakeSim{}
	New(searchGraph(), Options{Simulation: reduced, ReducedMotion: true})
	if reduced.reheats[0] != ReheatAlphaReduced {
		t.Errorf("reduced reheat = %v", reduced.reheats[0])
	}
}

// TestLegend_DefaultsResetAndToggle verifies the legend lifecycle
func TestLegend_DefaultsResetAndToggle(t *testing.T) {
	c := New(searchGraph(), Options{})
	for _, typ := range model.AllNodeTypes {
		if !c.LegendEnabled(typ) {
			t.Errorf("%s disabled by default", typ)
		}
	}
	if !c.LegendResetDisabled() {
		t.Error("reset should be disabled when every type is enabled")
	}

	if c.ToggleLegend(model.TypeAsset) {
		t.Error("toggle should disable asset")
	}
	c.ToggleLegend(model.TypeEvent)
	if c.Visible("b") {
		t.Error("asset node should be hidden")
	}
	if c.LegendResetDisabled() {
		t.Error("reset should be enabled after a toggle")
	}

	c.ResetLegend()
	for _, typ := range model.AllNodeTypes {
		if !c.LegendEnabled(typ) {
			t.Errorf("%s still disabled after reset", typ)
		}
	}
	if !c.Visible("b") {
		t.Error("asset node should be visible after reset")
	}

	if c.ToggleLegend(model.NodeType("bogus")) {
		t.Error("unknown type should be ignored")
	}
}

// TestVisibility_Properties verifies idempotence and the link endpoint rule
// over random legend and filter states
func TestVisibility_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "nodes")
		data := model.GraphData{}
		for i := 0; i < n; i++ {
			data.Nodes = append(data.Nodes, model.GraphNode{
				ID:    string(rune('a' + i)),
				Label: rapid.SampledFrom([]string{"Alpha", "Beta", "Gamma", "alpine"}).Draw(t, "label"),
				Type:  rapid.SampledFrom(model.AllNodeTypes).Draw(t, "type"),
				Tags:  []string{rapid.SampledFrom([]string{"", "al", "zzz"}).Draw(t, "tag")},
			})
		}
		links := rapid.IntRange(0, 20).Draw(t, "links")
		for i := 0; i < links; i++ {
			data.Links = append(data.Links, model.GraphLink{
				Source: data.Nodes[rapid.IntRange(0, n-1).Draw(t, "src")].ID,
				Target: data.Nodes[rapid.IntRange(0, n-1).Draw(t, "dst")].ID,
				Kind:   rapid.SampledFrom(model.AllLinkKinds).Draw(t, "kind"),
			})
		}
		g := graph.Build(data, graph.Options{ReducedMotion: true})
		c := New(g, Options{})

		for _, typ := range model.AllNodeTypes {
			if rapid.Bool().Draw(t, "toggle") {
				c.ToggleLegend(typ)
			}
		}
		c.SetFilter(rapid.SampledFrom([]string{"", "al", "ALP", "zzz", "a"}).Draw(t, "term"))

		first := c.VisibleIDs()
		c.RecomputeVisibility()
		second := c.VisibleIDs()
		if len(first) != len(second) {
			t.Fatalf("recompute changed visible set: %v -> %v", first, second)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("recompute changed visible set: %v -> %v", first, second)
			}
		}

		frame := render.Project(g, c.State(), 960, 560)
		for i, l := range frame.Links {
			want := c.Visible(l.Source) && c.Visible(l.Target)
			if l.Hidden == want {
				t.Fatalf("link %d (%s-%s) hidden=%v with endpoints %v/%v", i, l.Source, l.Target,
					l.Hidden, c.Visible(l.Source), c.Visible(l.Target))
			}
			if c.LinkVisible(g.Links[i]) != want {
				t.Fatalf("LinkVisible disagrees for link %d", i)
			}
		}
	})
}

// TestHover_TooltipAndNotification verifies pointer enter and leave
func TestHover_TooltipAndNotification(t *testing.T) {
	sink := &recordingSink{}
	g := searchGraph()
	g.Node("a").Description = "the hub"
	c := New(g, Options{Sink: sink})

	if !c.PointerEnter("a", 40, 50) {
		t.Fatal("PointerEnter failed")
	}
	tip := c.Tooltip()
	if !tip.Visible || tip.Label != "Alpha" || tip.Description != "the hub" || tip.X != 56 || tip.Y != 66 {
		t.Errorf("tooltip = %+v", tip)
	}
	if c.Hover() != "a" || len(sink.hovers) != 1 || sink.hovers[0] != "a" {
		t.Errorf("hover=%q hovers=%v", c.Hover(), sink.hovers)
	}
	if !render.Project(g, c.State(), 960, 560).Nodes[0].HasClass(render.ClassHover) {
		t.Error("hovered node should carry the hover class")
	}

	c.PointerLeave("a")
	if c.Tooltip().Visible || c.Hover() != "" {
		t.Error("leave should hide tooltip and clear hover")
	}

	c.SetFilter("beta")
	if c.PointerEnter("a", 0, 0) {
		t.Error("hidden node should not take hover")
	}
}

// TestFocusAndEscape verifies focus, escape and the post-blur stroke
func TestFocusAndEscape(t *testing.T) {
	g := searchGraph()
	c := New(g, Options{})
	if !c.Focus("a") {
		t.Fatal("focus a")
	}
	if !c.Tooltip().Visible {
		t.Error("focus should show the tooltip")
	}
	if handled, _ := c.Key(KeyEscape); !handled {
		t.Error("escape not handled")
	}
	if c.Focused() != "" || c.Tooltip().Visible {
		t.Error("escape should clear focus and tooltip")
	}
	p := render.Project(g, c.State(), 960, 560).Nodes[0]
	if p.Stroke != model.BlurStroke {
		t.Errorf("blurred stroke = %s", p.Stroke)
	}

	c.SetFilter("beta")
	if c.Focus("a") {
		t.Error("hidden node should not take focus")
	}
	c.Focus("b")
	c.SetFilter("alpha-nothing")
	if c.Focused() != "" {
		t.Error("hiding the focused node should blur it")
	}
}

// spokeGraph puts four leaves around a center at the given offsets.
func spokeGraph(offsets [][2]float64) *graph.Graph {
	data := model.GraphData{Nodes: []model.GraphNode{{ID: "c", Label: "Center", Type: model.TypeHub}}}
	for i := range offsets {
		id := string(rune('n' + i))
		data.Nodes = append(data.Nodes, model.GraphNode{ID: id, Label: id, Type: model.TypeTopic})
		data.Links = append(data.Links, model.GraphLink{Source: id, Target: "c", Kind: model.KindRelates})
	}
	g := graph.Build(data, graph.Options{ReducedMotion: true})
	center := g.Node("c")
	center.X, center.Y = 500, 500
	for i, off := range offsets {
		n := g.Nodes[i+1]
		n.X, n.Y = center.X+off[0], center.Y+off[1]
	}
	return g
}

// TestMove_PicksAlignedNeighbor verifies arrow traversal scoring
func TestMove_PicksAlignedNeighbor(t *testing.T) {
	g := spokeGraph([][2]float64{{100, 0}, {0, 100}, {-100, 0}})
	c := New(g, Options{})
	c.Focus("c")

	if handled, _ := c.Key(KeyArrowRight); !handled {
		t.Fatal("arrow not handled")
	}
	if c.Focused() != "n" {
		t.Errorf("ArrowRight focused %q, want n (+100,0)", c.Focused())
	}

	cases := map[Key]string{KeyArrowDown: "o", KeyArrowLeft: "p"}
	for k, want := range cases {
		got, ok := c.Nearest("c", k)
		if !ok || got != want {
			t.Errorf("Nearest(%s) = %q,%v want %q", k, got, ok, want)
		}
	}
	if _, ok := c.Nearest("c", KeyArrowUp); ok {
		t.Error("no neighbor lies above the center")
	}
}

// TestMove_NoEligibleNeighbor verifies focus is unchanged without a
// candidate in the pressed direction
func TestMove_NoEligibleNeighbor(t *testing.T) {
	g := spokeGraph([][2]float64{{0, 100}, {-100, 0}, {0, -40}})
	c := New(g, Options{})
	c.Focus("c")
	c.Key(KeyArrowRight)
	if c.Focused() != "c" {
		t.Errorf("focus moved to %q", c.Focused())
	}
}

// TestMove_PrefersAlignment verifies the perpendicular penalty
func TestMove_PrefersAlignment(t *testing.T) {
	// (120, 90) scores 75, (80, 0) scores 80.
	g := spokeGraph([][2]float64{{120, 90}, {80, 0}})
	c := New(g, Options{})
	if got, _ := c.Nearest("c", KeyArrowRight); got != "o" {
		t.Errorf("got %q, want o", got)
	}
}

// TestMove_SkipsHiddenNeighbors verifies hidden nodes are not candidates
func TestMove_SkipsHiddenNeighbors(t *testing.T) {
	g := spokeGraph([][2]float64{{100, 0}})
	c := New(g, Options{})
	c.Focus("c")
	c.ToggleLegend(model.TypeTopic)
	c.Key(KeyArrowRight)
	if c.Focused() != "c" {
		t.Errorf("focused hidden neighbor %q", c.Focused())
	}
}

// TestTabCycle_FocusableOnly verifies tab order skips vendor/library/event
func TestTabCycle_FocusableOnly(t *testing.T) {
	g := graph.Build(model.GraphData{Nodes: []model.GraphNode{
		{ID: "h", Type: model.TypeHub},
		{ID: "v", Type: model.TypeVendor},
		{ID: "t", Type: model.TypeTopic},
		{ID: "e", Type: model.TypeEvent},
		{ID: "s", Type: model.TypeAsset},
	}}, graph.Options{ReducedMotion: true})
	c := New(g, Options{})

	var got []string
	for i := 0; i < 4; i++ {
		c.Key(KeyTab)
		got = append(got, c.Focused())
	}
	want := []string{"h", "t", "s", "h"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tab order %v, want %v", got, want)
		}
	}
	c.Key(KeyShiftTab)
	if c.Focused() != "s" {
		t.Errorf("shift+tab wrapped to %q, want s", c.Focused())
	}
}

// TestActivate_Routes verifies external, internal and fragment hrefs
func TestActivate_Routes(t *testing.T) {
	g := graph.Build(model.GraphData{Nodes: []model.GraphNode{
		{ID: "ext", Label: "Ext", Type: model.TypeHub, Href: "https://example.com"},
		{ID: "int", Label: "Int", Type: model.TypeTopic, Href: "/internal"},
		{ID: "frag", Label: "Frag", Type: model.TypeAsset, Href: "#int"},
		{ID: "none", Label: "None", Type: model.TypeAsset},
	}}, graph.Options{ReducedMotion: true})
	sink := &recordingSink{}
	nav := &recordingNavigator{}
	now := time.Unix(100, 0)
	c := New(g, Options{Sink: sink, Navigator: nav, Clock: func() time.Time { return now }})

	if err := c.Click("ext"); err != nil {
		t.Fatal(err)
	}
	if len(nav.external) != 1 || nav.external[0] != "https://example.com?utm_source=hub&utm_medium=referral&utm_campaign=global_menu" {
		t.Errorf("external = %v", nav.external)
	}

	c.Focus("int")
	if handled, err := c.Key(KeyEnter); !handled || err != nil {
		t.Fatalf("enter: %v %v", handled, err)
	}
	if len(nav.internal) != 1 || nav.internal[0] != "/internal" {
		t.Errorf("internal = %v", nav.internal)
	}

	c.Activate("frag")
	if len(nav.internal) != 1 {
		t.Error("fragment href should not navigate")
	}
	if c.Focused() != "int" || !c.Pulsing("int") {
		t.Error("fragment href should focus and pulse its target")
	}

	c.Activate("none")
	want := []string{"ext", "int", "frag", "none"}
	if len(sink.clicks) != len(want) {
		t.Fatalf("clicks = %v, want %v", sink.clicks, want)
	}
	for i := range want {
		if sink.clicks[i] != want[i] {
			t.Errorf("clicks = %v, want %v", sink.clicks, want)
		}
	}
}

// TestActivate_PropagatesNavigatorError verifies failures surface
func TestActivate_PropagatesNavigatorError(t *testing.T) {
	g := graph.Build(model.GraphData{Nodes: []model.GraphNode{
		{ID: "x", Type: model.TypeHub, Href: "/x"},
	}}, graph.Options{ReducedMotion: true})
	boom := errors.New("boom")
	c := New(g, Options{Navigator: &recordingNavigator{err: boom}})
	if err := c.Activate("x"); !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if err := c.Activate("missing"); err != nil {
		t.Errorf("unknown id should be a no-op, got %v", err)
	}
}

// TestFocusHash_PulseExpires verifies deep-link focus and highlight expiry
func TestFocusHash_PulseExpires(t *testing.T) {
	g := searchGraph()
	c := New(g, Options{})
	start := time.Unix(0, 0)

	if !c.FocusHash("#a", start) {
		t.Fatal("FocusHash(#a) failed")
	}
	if c.Focused() != "a" || !c.Pulsing("a") {
		t.Fatal("a should be focused and pulsing")
	}
	if !render.Project(g, c.State(), 960, 560).Nodes[0].HasClass(render.ClassPulse) {
		t.Error("pulse class missing from frame")
	}

	if c.Expire(start.Add(1999 * time.Millisecond)) {
		t.Error("pulse expired early")
	}
	if !c.Expire(start.Add(PulseDuration)) || c.Pulsing("a") {
		t.Error("pulse should clear at 2000ms")
	}
	if c.Focused() != "a" {
		t.Error("expiry should not move focus")
	}
}

// TestFocusHash_MissingTarget verifies unknown fragments are a no-op
func TestFocusHash_MissingTarget(t *testing.T) {
	c := New(searchGraph(), Options{})
	c.Focus("b")
	if c.FocusHash("#nope", time.Now()) {
		t.Error("missing id reported success")
	}
	if c.FocusHash("", time.Now()) || c.FocusHash("#", time.Now()) {
		t.Error("empty fragment reported success")
	}
	if c.Focused() != "b" {
		t.Errorf("focus changed to %q", c.Focused())
	}
}

// TestDrag_PassesThrough verifies drag bookkeeping and forwarding
func TestDrag_PassesThrough(t *testing.T) {
	sim := &fakeSim{}
	c := New(searchGraph(), Options{Simulation: sim})
	if c.DragTo("a", 1, 1) {
		t.Error("DragTo before DragStart should fail")
	}
	if !c.DragStart("a") || !c.Dragging("a") {
		t.Fatal("DragStart failed")
	}
	c.DragTo("a", 12, 34)
	if sim.pins["a"] != [2]float64{12, 34} {
		t.Errorf("pin = %v", sim.pins["a"])
	}
	if !c.DragEnd("a") || c.Dragging("a") {
		t.Error("DragEnd failed")
	}
	if c.DragEnd("a") {
		t.Error("second DragEnd should fail")
	}
}

// TestNilGraph verifies a controller over a missing graph stays inert
func TestNilGraph(t *testing.T) {
	c := New(nil, Options{})
	c.SetFilter("x")
	c.ToggleLegend(model.TypeHub)
	if c.Focus("a") || c.FocusHash("a", time.Now()) || c.PointerEnter("a", 0, 0) {
		t.Error("nil graph should reject everything")
	}
	if handled, _ := c.Key(KeyTab); handled {
		t.Error("tab on empty graph should not be handled")
	}
	if err := c.Activate("a"); err != nil {
		t.Error(err)
	}
}
