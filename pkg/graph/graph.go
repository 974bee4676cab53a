// Package graph builds the in-memory node-link model the simulation, the
// animation passes and the interaction controller share.
package graph

import (
	"math/rand/v2"
	"time"

	"github.com/vanderheijden86/hubgraph/pkg/anim"
	"github.com/vanderheijden86/hubgraph/pkg/model"
)

// Node is a document node plus every derived and mutable field.
type Node struct {
	model.GraphNode

	// Index is the node's position in document order.
	Index int

	// Simulation state. FX/FY pin the node while set.
	X, Y   float64
	VX, VY float64
	FX, FY *float64

	// Radius and ChargeStrength are read by the simulation every tick and
	// written by the pulse pass. A zero ChargeStrength means unset.
	Radius         float64
	ChargeStrength float64

	Color  string
	Motion anim.Motion

	// Render-only fields, never read by the simulation.
	DisplayX, DisplayY float64
	HasDisplay         bool
	SpinAngle          float64
}

// Position returns the position a frame should draw: the drift-offset
// display position when one has been computed, else the simulated one.
func (n *Node) Position() (x, y float64) {
	if n.HasDisplay {
		return n.DisplayX, n.DisplayY
	}
	return n.X, n.Y
}

// Fixed reports whether the node is currently held at a fixed point.
func (n *Node) Fixed() bool {
	return n.FX != nil || n.FY != nil
}

// Link is a document link with resolved endpoints.
type Link struct {
	model.GraphLink
	Index  int
	Source *Node
	Target *Node
}

// Graph is the built model. Nodes and Links keep document order.
type Graph struct {
	Nodes []*Node
	Links []*Link

	ByID      map[string]*Node
	Neighbors map[string][]string

	ReducedMotion bool
}

// Options controls construction.
type Options struct {
	ReducedMotion bool
	// Rand draws the motion descriptors. Nil uses a time-seeded source.
	Rand *rand.Rand
}

// Build derives the model from a document. Link endpoints must reference
// existing ids; a dangling link leaves the corresponding endpoint nil.
func Build(data model.GraphData, opts Options) *Graph {
	rng := opts.Rand
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}

	g := &Graph{
		Nodes:         make([]*Node, 0, len(data.Nodes)),
		Links:         make([]*Link, 0, len(data.Links)),
		ByID:          make(map[string]*Node, len(data.Nodes)),
		Neighbors:     make(map[string][]string, len(data.Nodes)),
		ReducedMotion: opts.ReducedMotion,
	}

	for i, doc := range data.Nodes {
		radius := model.Radius(doc.Type)
		charge := model.BaseCharge(doc.Type)
		n := &Node{
			GraphNode:      doc,
			Index:          i,
			Radius:         radius,
			ChargeStrength: charge,
			Color:          model.NodeColor(doc.ID, doc.Type),
		}
		if !opts.ReducedMotion {
			n.Motion = anim.NewMotion(rng, radius, charge, model.PulseScale(doc.Type))
		}
		g.Nodes = append(g.Nodes, n)
		g.ByID[doc.ID] = n
	}

	for i, doc := range data.Links {
		l := &Link{
			GraphLink: doc,
			Index:     i,
			Source:    g.ByID[doc.Source],
			Target:    g.ByID[doc.Target],
		}
		g.Links = append(g.Links, l)
		g.Neighbors[doc.Source] = append(g.Neighbors[doc.Source], doc.Target)
		g.Neighbors[doc.Target] = append(g.Neighbors[doc.Target], doc.Source)
	}

	return g
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	if g == nil {
		return nil
	}
	return g.ByID[id]
}

// NeighborsOf returns the undirected neighbor ids of a node.
func (g *Graph) NeighborsOf(id string) []string {
	if g == nil {
		return nil
	}
	return g.Neighbors[id]
}

// Empty reports whether there is nothing to draw.
func (g *Graph) Empty() bool {
	return g == nil || len(g.Nodes) == 0
}
