package sim

import (
	"math"

	"github.com/vanderheijden86/hubgraph/pkg/graph"
	"github.com/vanderheijden86/hubgraph/pkg/model"
)

const (
	LinkStrength = 0.65

	// ChargeScale multiplies each node's charge strength.
	ChargeScale = 2.2
	// DefaultCharge applies to nodes whose charge is unset.
	DefaultCharge = -160.0

	CollidePadding         = 28.0
	CollidePaddingReduced  = 18.0
	CollideStrength        = 1.5
	CollideStrengthReduced = 1.0

	PullStrength = 0.008
	TypeStrength = 0.035
)

// LinkForce pulls linked nodes toward a per-kind target distance.
type LinkForce struct {
	links     []*graph.Link
	distances []float64
	bias      []float64
	Strength  float64
	jiggle    func() float64
}

// NewLinkForce precomputes distances and the degree bias that lets the
// lower-degree endpoint move more.
func NewLinkForce(links []*graph.Link, jiggle func() float64) *LinkForce {
	f := &LinkForce{
		links:     links,
		distances: make([]float64, len(links)),
		bias:      make([]float64, len(links)),
		Strength:  LinkStrength,
		jiggle:    jiggle,
	}
	count := make(map[*graph.Node]int)
	for _, l := range links {
		if l.Source == nil || l.Target == nil {
			continue
		}
		count[l.Source]++
		count[l.Target]++
	}
	for i, l := range links {
		f.distances[i] = model.LinkDistance(l.Kind)
		if l.Source == nil || l.Target == nil {
			continue
		}
		cs, ct := count[l.Source], count[l.Target]
		f.bias[i] = float64(cs) / float64(cs+ct)
	}
	return f
}

func (f *LinkForce) Name() string { return "link" }

func (f *LinkForce) Apply(_ []*graph.Node, alpha float64) {
	for i, l := range f.links {
		src, tgt := l.Source, l.Target
		if src == nil || tgt == nil {
			continue
		}
		x := tgt.X + tgt.VX - src.X - src.VX
		if x == 0 {
			x = f.jiggle()
		}
		y := tgt.Y + tgt.VY - src.Y - src.VY
		if y == 0 {
			y = f.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - f.distances[i]) / d * alpha * f.Strength
		x *= k
		y *= k
		b := f.bias[i]
		tgt.VX -= x * b
		tgt.VY -= y * b
		src.VX += x * (1 - b)
		src.VY += y * (1 - b)
	}
}

// CenterForce translates the whole layout so its mean sits on a point.
type CenterForce struct {
	X, Y float64
}

func (f *CenterForce) Name() string { return "center" }

func (f *CenterForce) Apply(nodes []*graph.Node, _ float64) {
	if len(nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range nodes {
		sx += n.X
		sy += n.Y
	}
	sx = sx/float64(len(nodes)) - f.X
	sy = sy/float64(len(nodes)) - f.Y
	for _, n := range nodes {
		n.X -= sx
		n.Y -= sy
	}
}

// CollideForce keeps nodes at least radius+padding apart. Radii are read
// every tick so pulsing nodes push their neighbors.
type CollideForce struct {
	Padding  float64
	Strength float64
	jiggle   func() float64
}

func (f *CollideForce) Name() string { return "collision" }

func (f *CollideForce) radius(n *graph.Node) float64 {
	r := n.Radius
	if r == 0 {
		r = 10
	}
	return r + f.Padding
}

func (f *CollideForce) Apply(nodes []*graph.Node, _ float64) {
	for i, a := range nodes {
		ra := f.radius(a)
		ra2 := ra * ra
		xa := a.X + a.VX
		ya := a.Y + a.VY
		for _, b := range nodes[i+1:] {
			rb := f.radius(b)
			r := ra + rb
			x := xa - b.X - b.VX
			y := ya - b.Y - b.VY
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = f.jiggle()
				l += x * x
			}
			if y == 0 {
				y = f.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			l = (r - l) / l * f.Strength
			x *= l
			y *= l
			rb2 := rb * rb
			ratio := rb2 / (ra2 + rb2)
			a.VX += x * ratio
			a.VY += y * ratio
			b.VX -= x * (1 - ratio)
			b.VY -= y * (1 - ratio)
		}
	}
}

// Axis selects the coordinate an AxisForce acts on.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// AxisForce pulls each node toward a target coordinate on one axis.
type AxisForce struct {
	Axis     Axis
	Target   func(*graph.Node) float64
	Strength float64
	name     string
}

func (f *AxisForce) Name() string { return f.name }

func (f *AxisForce) Apply(nodes []*graph.Node, alpha float64) {
	for _, n := range nodes {
		t := f.Target(n)
		if f.Axis == AxisX {
			n.VX += (t - n.X) * f.Strength * alpha
		} else {
			n.VY += (t - n.Y) * f.Strength * alpha
		}
	}
}

// NewTypeForce stratifies node types vertically around centerY.
func NewTypeForce(centerY float64) *AxisForce {
	return &AxisForce{
		Axis: AxisY,
		Target: func(n *graph.Node) float64 {
			off, _ := model.TypeOffsetY(n.Type)
			return centerY + off
		},
		Strength: TypeStrength,
		name:     "type-position",
	}
}
