package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// cell is one terminal cell. A zero rune marks the trailing half of a wide
// character and is skipped when rendering.
type cell struct {
	r    rune
	fg   string
	bold bool
	wide bool
}

// Canvas is a fixed-size grid of styled cells.
type Canvas struct {
	w, h  int
	cells []cell
}

// NewCanvas returns a blank canvas.
func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{w: w, h: h, cells: make([]cell, w*h)}
	c.Clear()
	return c
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (w, h int) { return c.w, c.h }

// Clear blanks every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = cell{r: ' '}
	}
}

func (c *Canvas) in(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.w && y < c.h
}

// Set writes one narrow rune. Writes outside the canvas are dropped.
func (c *Canvas) Set(x, y int, r rune, fg string, bold bool) {
	if !c.in(x, y) {
		return
	}
	c.clearWide(x, y)
	c.cells[y*c.w+x] = cell{r: r, fg: fg, bold: bold}
}

// clearWide breaks up a wide character that x,y is part of.
func (c *Canvas) clearWide(x, y int) {
	i := y*c.w + x
	if c.cells[i].wide && x+1 < c.w {
		c.cells[i+1] = cell{r: ' '}
	}
	if c.cells[i].r == 0 && x > 0 {
		c.cells[i-1] = cell{r: ' '}
	}
}

// At returns the rune at x,y, or 0 outside the canvas.
func (c *Canvas) At(x, y int) rune {
	if !c.in(x, y) {
		return 0
	}
	return c.cells[y*c.w+x].r
}

// Line draws a dotted segment: every step-th cell of the rasterized line.
func (c *Canvas) Line(x0, y0, x1, y1 int, r rune, fg string, step int) {
	if step < 1 {
		step = 1
	}
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for i := 0; ; i++ {
		if i%step == 0 && c.At(x0, y0) == ' ' {
			c.Set(x0, y0, r, fg, false)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Text writes s starting at x,y, clipped at the right edge. Wide runes take
// two cells.
func (c *Canvas) Text(x, y int, s, fg string, bold bool) {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > c.w {
			return
		}
		if x >= 0 && c.in(x, y) {
			if rw == 2 {
				c.clearWide(x+1, y)
			}
			c.Set(x, y, r, fg, bold)
			if rw == 2 {
				c.cells[y*c.w+x].wide = true
				c.cells[y*c.w+x+1] = cell{}
			}
		}
		x += rw
	}
}

// Render returns the canvas as lines joined by newlines, with runs of equal
// style rendered by one lipgloss style.
func (c *Canvas) Render() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			b.WriteString(styleFor(cur.fg, cur.bold).Render(run.String()))
			run.Reset()
		}
		for x := 0; x < c.w; x++ {
			cl := c.cells[y*c.w+x]
			if cl.r == 0 {
				continue
			}
			if cl.fg != cur.fg || cl.bold != cur.bold {
				flush()
				cur = cl
			}
			run.WriteRune(cl.r)
		}
		flush()
	}
	return b.String()
}

// String returns the canvas without styling.
func (c *Canvas) String() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			if r := c.cells[y*c.w+x].r; r != 0 {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func styleFor(fg string, bold bool) lipgloss.Style {
	s := lipgloss.NewStyle()
	if fg != "" {
		s = s.Foreground(lipgloss.Color(fg))
	}
	if bold {
		s = s.Bold(true)
	}
	return s
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
