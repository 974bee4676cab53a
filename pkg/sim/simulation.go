// Package sim relaxes node positions with a velocity-Verlet style force
// layout: every tick applies each force to node velocities, damps them and
// integrates positions, while a cooling scalar (alpha) scales the forces down
// until the layout settles.
package sim

import (
	"math"
	"math/rand/v2"

	"github.com/vanderheijden86/hubgraph/pkg/graph"
	"github.com/vanderheijden86/hubgraph/pkg/metrics"
)

const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultTheta         = 0.9

	// AlphaDecay is the cooling rate; reduced motion settles faster.
	AlphaDecay        = 0.04
	AlphaDecayReduced = 0.08

	// DragAlphaTarget keeps the layout warm while a node is dragged.
	DragAlphaTarget = 0.3

	initialRadius = 10
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Config sizes the layout and picks the motion profile.
type Config struct {
	Width  float64
	Height float64

	ReducedMotion bool

	// Zero values take the defaults above.
	AlphaDecay    float64
	AlphaMin      float64
	VelocityDecay float64
	Theta         float64

	// Rand breaks exact coincidences. Nil uses a fixed seed.
	Rand *rand.Rand
}

// Force nudges node velocities for one tick.
type Force interface {
	Name() string
	Apply(nodes []*graph.Node, alpha float64)
}

// Simulation is a stepping force layout over a graph. It is not safe for
// concurrent use; drive it from one goroutine.
type Simulation struct {
	g   *graph.Graph
	cfg Config

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64
	running       bool
	ticks         int

	forces []Force
	links  *LinkForce

	drags map[string]bool
	rng   *rand.Rand
}

// New places every unplaced node and wires the standard force set.
func New(g *graph.Graph, cfg Config) *Simulation {
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 560
	}
	if cfg.AlphaDecay <= 0 {
		cfg.AlphaDecay = AlphaDecay
		if cfg.ReducedMotion {
			cfg.AlphaDecay = AlphaDecayReduced
		}
	}
	if cfg.AlphaMin <= 0 {
		cfg.AlphaMin = DefaultAlphaMin
	}
	if cfg.VelocityDecay <= 0 {
		cfg.VelocityDecay = DefaultVelocityDecay
	}
	if cfg.Theta <= 0 {
		cfg.Theta = DefaultTheta
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(1, 2))
	}

	s := &Simulation{
		g:             g,
		cfg:           cfg,
		alpha:         1,
		alphaMin:      cfg.AlphaMin,
		alphaDecay:    cfg.AlphaDecay,
		velocityDecay: 1 - cfg.VelocityDecay,
		running:       true,
		drags:         make(map[string]bool),
		rng:           rng,
	}
	s.place()

	cx, cy := cfg.Width/2, cfg.Height/2
	padding := CollidePadding
	strength := CollideStrength
	if cfg.ReducedMotion {
		padding = CollidePaddingReduced
		strength = CollideStrengthReduced
	}

	s.links = NewLinkForce(g.Links, s.jiggle)
	s.forces = []Force{
		s.links,
		&ChargeForce{Theta: cfg.Theta, jiggle: s.jiggle},
		&CenterForce{X: cx, Y: cy},
		&CollideForce{Padding: padding, Strength: strength, jiggle: s.jiggle},
		&AxisForce{Axis: AxisX, Target: func(*graph.Node) float64 { return cx }, Strength: PullStrength, name: "x"},
		&AxisForce{Axis: AxisY, Target: func(*graph.Node) float64 { return cy }, Strength: PullStrength, name: "y"},
		NewTypeForce(cy),
	}
	return s
}

// place spreads nodes that have no position yet on a phyllotaxis spiral.
func (s *Simulation) place() {
	for i, n := range s.g.Nodes {
		if n.FX != nil {
			n.X = *n.FX
		}
		if n.FY != nil {
			n.Y = *n.FY
		}
		if n.X != 0 || n.Y != 0 {
			continue
		}
		radius := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		n.X = radius * math.Cos(angle)
		n.Y = radius * math.Sin(angle)
	}
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// Tick advances the layout by one step regardless of alpha.
func (s *Simulation) Tick() {
	defer metrics.Timer(metrics.SimTick)()

	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay
	for _, f := range s.forces {
		f.Apply(s.g.Nodes, s.alpha)
	}
	for _, n := range s.g.Nodes {
		if n.FX == nil {
			n.VX *= s.velocityDecay
			n.X += n.VX
		} else {
			n.X = *n.FX
			n.VX = 0
		}
		if n.FY == nil {
			n.VY *= s.velocityDecay
			n.Y += n.VY
		} else {
			n.Y = *n.FY
			n.VY = 0
		}
	}
	s.ticks++
}

// Step ticks once if the simulation is running and stops it when alpha
// falls below the minimum. It reports whether a tick happened.
func (s *Simulation) Step() bool {
	if !s.running {
		return false
	}
	s.Tick()
	if s.alpha < s.alphaMin {
		s.running = false
	}
	return true
}

// Running reports whether Step will tick.
func (s *Simulation) Running() bool { return s.running }

// Ticks returns the number of ticks applied so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Alpha returns the current cooling scalar.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget returns the value alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// AlphaDecay returns the cooling rate in effect.
func (s *Simulation) AlphaDecay() float64 { return s.alphaDecay }

// SetAlpha overrides the cooling scalar.
func (s *Simulation) SetAlpha(a float64) { s.alpha = a }

// SetAlphaTarget sets the value alpha decays toward.
func (s *Simulation) SetAlphaTarget(t float64) { s.alphaTarget = t }

// Restart resumes stepping.
func (s *Simulation) Restart() { s.running = true }

// Stop halts stepping until the next Restart.
func (s *Simulation) Stop() { s.running = false }

// Reheat boosts alpha and resumes stepping.
func (s *Simulation) Reheat(alpha float64) {
	s.alpha = alpha
	s.running = true
}

// Forces returns the installed forces in application order.
func (s *Simulation) Forces() []Force { return s.forces }

// LinkDistances returns the target length of every link in document order.
func (s *Simulation) LinkDistances() []float64 {
	out := make([]float64, len(s.links.distances))
	copy(out, s.links.distances)
	return out
}

// Size returns the viewport the layout is centered in.
func (s *Simulation) Size() (width, height float64) {
	return s.cfg.Width, s.cfg.Height
}

// DragStart pins a node where it stands and warms the layout when it is the
// only active drag.
func (s *Simulation) DragStart(id string) bool {
	n := s.g.Node(id)
	if n == nil {
		return false
	}
	if len(s.drags) == 0 {
		s.alphaTarget = DragAlphaTarget
		s.Restart()
	}
	s.drags[id] = true
	x, y := n.X, n.Y
	n.FX, n.FY = &x, &y
	return true
}

// DragTo moves the pin of a dragged node.
func (s *Simulation) DragTo(id string, x, y float64) bool {
	n := s.g.Node(id)
	if n == nil || !s.drags[id] {
		return false
	}
	n.FX, n.FY = &x, &y
	return true
}

// DragEnd releases the pin and lets the layout cool once no drag remains.
func (s *Simulation) DragEnd(id string) bool {
	n := s.g.Node(id)
	if n == nil || !s.drags[id] {
		return false
	}
	delete(s.drags, id)
	if len(s.drags) == 0 {
		s.alphaTarget = 0
	}
	n.FX, n.FY = nil, nil
	return true
}

// Dragging reports whether any drag is active.
func (s *Simulation) Dragging() bool { return len(s.drags) > 0 }
