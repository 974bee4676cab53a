package sim

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/vanderheijden86/hubgraph/pkg/graph"
)

const distanceMin2 = 1.0

// ChargeForce is the n-body repulsion between all nodes, approximated with a
// Barnes-Hut quadtree. Strengths are read from each node every tick.
type ChargeForce struct {
	Theta  float64
	jiggle func() float64
}

func (f *ChargeForce) Name() string { return "charge" }

// Strength returns the repulsion a node exerts.
func Strength(n *graph.Node) float64 {
	if n.ChargeStrength != 0 {
		return n.ChargeStrength * ChargeScale
	}
	return DefaultCharge
}

type body struct {
	node *graph.Node
	pos  r2.Vec
	mass float64
}

func (b *body) Coord2() r2.Vec { return b.pos }
func (b *body) Mass() float64  { return b.mass }

// repel is a Barnes-Hut interaction where mass holds the magnitude of a
// repulsive strength. v points from the affected body toward the source.
func repel(_, _ barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
	l := v.X*v.X + v.Y*v.Y
	if l == 0 {
		return r2.Vec{}
	}
	if l < distanceMin2 {
		l = math.Sqrt(distanceMin2 * l)
	}
	return r2.Scale(-m2/l, v)
}

func (f *ChargeForce) Apply(nodes []*graph.Node, alpha float64) {
	if len(nodes) < 2 {
		return
	}

	bodies := make([]*body, len(nodes))
	particles := make([]barneshut.Particle2, len(nodes))
	seen := make(map[r2.Vec]bool, len(nodes))
	uniform := true
	for i, n := range nodes {
		pos := r2.Vec{X: n.X, Y: n.Y}
		for seen[pos] {
			pos.X += f.jiggle()
			pos.Y += f.jiggle()
		}
		seen[pos] = true
		s := Strength(n)
		if s >= 0 {
			uniform = false
		}
		bodies[i] = &body{node: n, pos: pos, mass: -s}
		particles[i] = bodies[i]
	}

	// Barnes-Hut aggregates mass into tile centers, which only holds when
	// every body repels.
	if uniform {
		if plane, err := barneshut.NewPlane(particles); err == nil {
			for _, b := range bodies {
				v := plane.ForceOn(b, f.Theta, repel)
				b.node.VX += v.X * alpha
				b.node.VY += v.Y * alpha
			}
			return
		}
	}
	f.direct(bodies, alpha)
}

// direct sums every pair exactly.
func (f *ChargeForce) direct(bodies []*body, alpha float64) {
	for _, a := range bodies {
		for _, b := range bodies {
			if a == b {
				continue
			}
			v := repel(a, b, a.mass, b.mass, r2.Sub(b.pos, a.pos))
			a.node.VX += v.X * alpha
			a.node.VY += v.Y * alpha
		}
	}
}
