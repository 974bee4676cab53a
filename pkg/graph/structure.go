package graph

import (
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/vanderheijden86/hubgraph/pkg/model"
)

// Depths returns, for every node id, the number of links between it and the
// nearest hub when links are followed from target back to source. Hubs are
// depth 0; nodes no hub reaches are -1.
func (g *Graph) Depths() map[string]int {
	depths := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		depths[n.ID] = -1
	}

	dg := simple.NewDirectedGraph()
	for _, n := range g.Nodes {
		dg.AddNode(simple.Node(n.Index))
	}
	for _, l := range g.Links {
		if l.Source == nil || l.Target == nil || l.Source == l.Target {
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(l.Target.Index), simple.Node(l.Source.Index)))
	}

	for _, hub := range g.Nodes {
		if hub.Type != model.TypeHub {
			continue
		}
		var bf traverse.BreadthFirst
		bf.Walk(dg, simple.Node(hub.Index), func(n gonum.Node, d int) bool {
			id := g.Nodes[n.ID()].ID
			if cur := depths[id]; cur < 0 || d < cur {
				depths[id] = d
			}
			return false
		})
	}
	return depths
}

// Components returns the connected components of the undirected graph as id
// lists. Components and their members follow document order.
func (g *Graph) Components() [][]string {
	ug := simple.NewUndirectedGraph()
	for _, n := range g.Nodes {
		ug.AddNode(simple.Node(n.Index))
	}
	for _, l := range g.Links {
		if l.Source == nil || l.Target == nil || l.Source == l.Target {
			continue
		}
		ug.SetEdge(ug.NewEdge(simple.Node(l.Source.Index), simple.Node(l.Target.Index)))
	}

	raw := topo.ConnectedComponents(ug)
	indices := make([][]int, 0, len(raw))
	for _, comp := range raw {
		idx := make([]int, 0, len(comp))
		for _, n := range comp {
			idx = append(idx, int(n.ID()))
		}
		sort.Ints(idx)
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i][0] < indices[j][0] })

	out := make([][]string, 0, len(indices))
	for _, idx := range indices {
		ids := make([]string, 0, len(idx))
		for _, i := range idx {
			ids = append(ids, g.Nodes[i].ID)
		}
		out = append(out, ids)
	}
	return out
}
