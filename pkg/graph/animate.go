package graph

import (
	"time"

	"github.com/vanderheijden86/hubgraph/pkg/anim"
	"github.com/vanderheijden86/hubgraph/pkg/metrics"
)

// The two passes below are kept separate. ApplyPhysics touches the only two
// fields the simulation reads back; ApplyDisplay touches fields the
// simulation never reads.

// ApplyPhysics writes the pulse radius and charge of every pulsing node.
func (g *Graph) ApplyPhysics(elapsed time.Duration) {
	defer metrics.Timer(metrics.AnimPass)()
	for _, n := range g.Nodes {
		if p := n.Motion.Pulse; p != nil {
			n.Radius, n.ChargeStrength = anim.PulseAt(*p, elapsed)
		}
	}
}

// ApplyDisplay writes drift display positions and spin angles.
func (g *Graph) ApplyDisplay(elapsed time.Duration) {
	for _, n := range g.Nodes {
		if d := n.Motion.Drift; d != nil {
			dx, dy := anim.DriftAt(*d, elapsed)
			n.DisplayX = n.X + dx
			n.DisplayY = n.Y + dy
			n.HasDisplay = true
		}
		if s := n.Motion.Spin; s != nil {
			n.SpinAngle = anim.SpinAt(*s, elapsed)
		}
	}
}
