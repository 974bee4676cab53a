package interact

import (
	"math"

	"github.com/vanderheijden86/hubgraph/pkg/model"
)

// Key is a key the controller understands, named as a browser would report
// it.
type Key string

const (
	KeyArrowLeft  Key = "ArrowLeft"
	KeyArrowRight Key = "ArrowRight"
	KeyArrowUp    Key = "ArrowUp"
	KeyArrowDown  Key = "ArrowDown"
	KeyEnter      Key = "Enter"
	KeySpace      Key = " "
	KeyEscape     Key = "Escape"
	KeyTab        Key = "Tab"
	KeyShiftTab   Key = "Shift+Tab"
)

// perpendicularWeight discounts off-axis displacement when scoring a move.
const perpendicularWeight = 0.5

// Key handles a key press against the focused node. It reports whether the
// key was consumed, and returns any activation error.
func (c *Controller) Key(k Key) (bool, error) {
	switch k {
	case KeyArrowLeft, KeyArrowRight, KeyArrowUp, KeyArrowDown:
		if c.focus == "" {
			return false, nil
		}
		c.Move(k)
		return true, nil
	case KeyEnter, KeySpace:
		if c.focus == "" {
			return false, nil
		}
		return true, c.Activate(c.focus)
	case KeyEscape:
		c.Blur()
		return true, nil
	case KeyTab:
		return c.cycle(1), nil
	case KeyShiftTab:
		return c.cycle(-1), nil
	}
	return false, nil
}

// Move shifts focus to the visible neighbor that best matches the arrow
// direction and returns the newly focused id. Focus is unchanged when no
// neighbor lies in that direction.
func (c *Controller) Move(k Key) (string, bool) {
	id, ok := c.Nearest(c.focus, k)
	if !ok {
		return c.focus, false
	}
	c.Focus(id)
	return id, true
}

// Nearest returns the visible neighbor of from that an arrow key would move
// to. Candidates must be displaced strictly in the arrow direction; among
// them the score is the on-axis displacement minus half the off-axis one.
// Positions are simulated positions, not drifted display positions.
func (c *Controller) Nearest(from string, k Key) (string, bool) {
	cur := c.g.Node(from)
	if cur == nil {
		return "", false
	}

	best, bestScore := "", math.Inf(-1)
	for _, id := range c.g.NeighborsOf(from) {
		n := c.g.Node(id)
		if n == nil || !c.visible[id] {
			continue
		}
		score, ok := directionScore(k, n.X-cur.X, n.Y-cur.Y)
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = id, score
		}
	}
	return best, best != ""
}

func directionScore(k Key, dx, dy float64) (float64, bool) {
	switch k {
	case KeyArrowRight:
		return dx - math.Abs(dy)*perpendicularWeight, dx > 0
	case KeyArrowLeft:
		return -dx - math.Abs(dy)*perpendicularWeight, dx < 0
	case KeyArrowUp:
		return -dy - math.Abs(dx)*perpendicularWeight, dy < 0
	case KeyArrowDown:
		return dy - math.Abs(dx)*perpendicularWeight, dy > 0
	}
	return 0, false
}

// cycle moves focus through the visible focusable nodes in document order,
// wrapping at either end.
func (c *Controller) cycle(step int) bool {
	var order []string
	cur := -1
	for _, n := range c.nodes() {
		if !model.Focusable(n.Type) || !c.visible[n.ID] {
			continue
		}
		if n.ID == c.focus {
			cur = len(order)
		}
		order = append(order, n.ID)
	}
	if len(order) == 0 {
		return false
	}

	next := 0
	switch {
	case cur >= 0:
		next = (cur + step + len(order)) % len(order)
	case step < 0:
		next = len(order) - 1
	}
	return c.Focus(order[next])
}
