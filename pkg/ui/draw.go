package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/render"
)

const (
	maxLabelWidth   = 18
	tooltipMaxWidth = 36
	tooltipMaxLines = 6
)

var nodeGlyphs = map[model.NodeType]rune{
	model.TypeHub:     '◉',
	model.TypeTopic:   '●',
	model.TypeAsset:   '◆',
	model.TypeVendor:  '■',
	model.TypeLibrary: '▲',
	model.TypeEvent:   '★',
}

var linkDots = map[model.LinkKind]struct {
	r    rune
	step int
}{
	model.KindBelongsTo: {'·', 1},
	model.KindRelates:   {'·', 2},
	model.KindPoweredBy: {'.', 3},
}

func nodeGlyph(p render.NodePrimitive) rune {
	if p.HasClass(render.ClassPinned) {
		return '◎'
	}
	if r, ok := nodeGlyphs[p.Type]; ok {
		return r
	}
	return '•'
}

// drawFrame rasterizes links and nodes. Labels go on the row above a node
// for hubs and topics, and for the hovered or focused node.
func (m Model) drawFrame(c *Canvas, f render.Frame) {
	for _, l := range f.Links {
		if l.Hidden {
			continue
		}
		x0, y0 := m.toCell(l.X1, l.Y1)
		x1, y1 := m.toCell(l.X2, l.Y2)
		dot, ok := linkDots[l.Kind]
		if !ok {
			dot.r, dot.step = '·', 2
		}
		c.Line(x0, y0, x1, y1, dot.r, termColor(l.Color), dot.step)
	}

	for _, n := range f.Nodes {
		if n.Hidden {
			continue
		}
		cx, cy := m.toCell(n.X, n.Y)
		hot := n.HasClass(render.ClassHover) || n.HasClass(render.ClassFocused)
		c.Set(cx, cy, nodeGlyph(n), termColor(n.Color), hot)

		switch {
		case n.HasClass(render.ClassFocused):
			c.Set(cx-1, cy, '[', model.FocusRing, true)
			c.Set(cx+1, cy, ']', model.FocusRing, true)
		case n.HasClass(render.ClassPulse):
			c.Set(cx-1, cy, '(', termColor(n.Color), false)
			c.Set(cx+1, cy, ')', termColor(n.Color), false)
		}

		if hot || n.Type == model.TypeHub || n.Type == model.TypeTopic {
			label := runewidth.Truncate(n.Label, maxLabelWidth, "…")
			lw := runewidth.StringWidth(label)
			_, ly := m.toCell(n.X, n.Y+n.LabelY)
			if ly >= cy {
				ly = cy - 1
			}
			c.Text(cx-lw/2, ly, label, termColor(n.Color), hot)
		}
	}
}

// drawTooltip boxes the tooltip label and description at its anchor,
// kept inside the canvas.
func (m Model) drawTooltip(c *Canvas) {
	tip := m.ctrl.Tooltip()
	if !tip.Visible {
		return
	}
	lines := []string{runewidth.Truncate(tip.Label, tooltipMaxWidth, "…")}
	if tip.Description != "" {
		lines = append(lines, m.tips.plain(tip.Description, tooltipMaxWidth)...)
	}
	if len(lines) > tooltipMaxLines {
		lines = append(lines[:tooltipMaxLines-1], "…")
	}
	inner := 0
	for _, l := range lines {
		inner = max(inner, runewidth.StringWidth(l))
	}

	cw, ch := c.Size()
	bw, bh := inner+4, len(lines)+2
	x, y := m.toCell(tip.X, tip.Y)
	x = min(max(0, x), max(0, cw-bw))
	y = min(max(0, y), max(0, ch-bh))

	border := model.FocusRing
	for i := 0; i < bh; i++ {
		for j := 0; j < bw; j++ {
			c.Set(x+j, y+i, ' ', "", false)
		}
	}
	c.Set(x, y, '╭', border, false)
	c.Set(x+bw-1, y, '╮', border, false)
	c.Set(x, y+bh-1, '╰', border, false)
	c.Set(x+bw-1, y+bh-1, '╯', border, false)
	for j := 1; j < bw-1; j++ {
		c.Set(x+j, y, '─', border, false)
		c.Set(x+j, y+bh-1, '─', border, false)
	}
	for i := 1; i < bh-1; i++ {
		c.Set(x, y+i, '│', border, false)
		c.Set(x+bw-1, y+i, '│', border, false)
	}
	for i, l := range lines {
		c.Text(x+2, y+1+i, l, "#E6F1FF", i == 0)
	}
}

// drawGlyphs fills blank cells with the background clusters.
func (m Model) drawGlyphs(c *Canvas) {
	if m.field == nil {
		return
	}
	now := m.clock()
	cw, ch := c.Size()
	for _, cl := range m.field.Clusters() {
		o := cl.Opacity(now)
		if o < 0.1 {
			continue
		}
		fg := glyphColor(cl.HueAt(now), o*cl.FlickerAt(now))
		x := int(cl.Left / 100 * float64(cw))
		y := int(cl.Top / 100 * float64(ch))
		// Scale spreads the cluster over more rows.
		rows := max(1, int(math.Round(cl.Scale)))
		fields := strings.Fields(cl.Text)
		per := (len(fields) + rows - 1) / rows
		for r := 0; r < rows; r++ {
			lo := r * per
			if lo >= len(fields) {
				break
			}
			hi := min(len(fields), lo+per)
			gx := x
			for _, g := range fields[lo:hi] {
				for _, ru := range g {
					if c.At(gx, y+r) == ' ' && runewidth.RuneWidth(ru) == 1 {
						c.Set(gx, y+r, ru, fg, false)
					}
					gx++
				}
				gx++
			}
		}
	}
}

// tooltipRenderer turns markdown descriptions into wrapped plain lines.
type tooltipRenderer struct {
	cache map[string][]string
}

func newTooltipRenderer() *tooltipRenderer {
	return &tooltipRenderer{cache: make(map[string][]string)}
}

func (t *tooltipRenderer) plain(md string, width int) []string {
	if lines, ok := t.cache[md]; ok {
		return lines
	}
	var out string
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		out, err = r.Render(md)
	}
	if err != nil {
		debug.Log("ui: markdown render: %v", err)
		out = md
	}
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, runewidth.Truncate(l, width, "…"))
	}
	t.cache[md] = lines
	return lines
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}
