// Package testutil provides deterministic graph document generators and
// small assertion helpers for tests.
package testutil

import (
	"fmt"
	"math/rand/v2"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/hubgraph/pkg/model"
)

// GeneratorConfig controls document generation.
type GeneratorConfig struct {
	Seed         uint64           // Random seed; equal seeds give equal documents
	IDPrefix     string           // Prefix for node ids (default: "n")
	TypeMix      []model.NodeType // Types assigned to non-root nodes (nil = all but hub)
	KindMix      []model.LinkKind // Kinds for cross links (nil = relates, poweredBy)
	IncludeHrefs bool             // Give every node an href
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42,
		IDPrefix: "n",
	}
}

// Generator creates documents with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = "n"
	}
	if len(cfg.TypeMix) == 0 {
		cfg.TypeMix = []model.NodeType{model.TypeTopic, model.TypeAsset, model.TypeVendor, model.TypeLibrary, model.TypeEvent}
	}
	if len(cfg.KindMix) == 0 {
		cfg.KindMix = []model.LinkKind{model.KindRelates, model.KindPoweredBy}
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x5bd1e995)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

// ID returns the id of the i-th generated node.
func (g *Generator) ID(i int) string {
	return fmt.Sprintf("%s%d", g.cfg.IDPrefix, i)
}

func (g *Generator) node(i int, t model.NodeType) model.GraphNode {
	n := model.GraphNode{
		ID:    g.ID(i),
		Label: fmt.Sprintf("Node %d", i),
		Type:  t,
	}
	if g.cfg.IncludeHrefs {
		n.Href = "/nodes/" + n.ID
	}
	return n
}

func (g *Generator) pickType() model.NodeType {
	return g.cfg.TypeMix[g.rng.IntN(len(g.cfg.TypeMix))]
}

func (g *Generator) pickKind() model.LinkKind {
	return g.cfg.KindMix[g.rng.IntN(len(g.cfg.KindMix))]
}

func (g *Generator) belongsTo(child, parent int) model.GraphLink {
	return model.GraphLink{Source: g.ID(child), Target: g.ID(parent), Kind: model.KindBelongsTo}
}

// Star creates a hub n0 with spokes n1..n{spokes} attached by belongsTo.
func (g *Generator) Star(spokes int) model.GraphData {
	data := model.GraphData{Nodes: []model.GraphNode{g.node(0, model.TypeHub)}}
	for i := 1; i <= spokes; i++ {
		data.Nodes = append(data.Nodes, g.node(i, g.pickType()))
		data.Links = append(data.Links, g.belongsTo(i, 0))
	}
	return data
}

// Chain creates n0 - n1 - ... - n{size-1}; n0 is the hub.
func (g *Generator) Chain(size int) model.GraphData {
	var data model.GraphData
	for i := 0; i < size; i++ {
		t := g.pickType()
		if i == 0 {
			t = model.TypeHub
		}
		data.Nodes = append(data.Nodes, g.node(i, t))
		if i > 0 {
			data.Links = append(data.Links, g.belongsTo(i, i-1))
		}
	}
	return data
}

// Tree creates a complete tree under hub n0 with the given depth and
// breadth. Node count is sum(breadth^k) for k in [0,depth].
func (g *Generator) Tree(depth, breadth int) model.GraphData {
	data := model.GraphData{Nodes: []model.GraphNode{g.node(0, model.TypeHub)}}
	level := []int{0}
	next := 1
	for d := 0; d < depth; d++ {
		var children []int
		for _, parent := range level {
			for b := 0; b < breadth; b++ {
				data.Nodes = append(data.Nodes, g.node(next, g.pickType()))
				data.Links = append(data.Links, g.belongsTo(next, parent))
				children = append(children, next)
				next++
			}
		}
		level = children
	}
	return data
}

// HubAndSpoke creates a hub, topics under it and leaves under each topic,
// plus cross links between random leaves. This is the shape of a typical
// site map.
func (g *Generator) HubAndSpoke(topics, leavesPerTopic, crossLinks int) model.GraphData {
	data := model.GraphData{Nodes: []model.GraphNode{g.node(0, model.TypeHub)}}
	next := 1
	var leaves []int
	for range topics {
		topic := next
		data.Nodes = append(data.Nodes, g.node(topic, model.TypeTopic))
		data.Links = append(data.Links, g.belongsTo(topic, 0))
		next++
		for range leavesPerTopic {
			t := g.pickType()
			if t == model.TypeTopic {
				t = model.TypeAsset
			}
			data.Nodes = append(data.Nodes, g.node(next, t))
			data.Links = append(data.Links, g.belongsTo(next, topic))
			leaves = append(leaves, next)
			next++
		}
	}
	for i := 0; i < crossLinks && len(leaves) > 1; i++ {
		a := leaves[g.rng.IntN(len(leaves))]
		b := leaves[g.rng.IntN(len(leaves))]
		if a == b {
			continue
		}
		data.Links = append(data.Links, model.GraphLink{Source: g.ID(a), Target: g.ID(b), Kind: g.pickKind()})
	}
	return data
}

// Disconnected creates the given number of stars with size-1 spokes each.
// Only the first star's center is a hub.
func (g *Generator) Disconnected(components, size int) model.GraphData {
	var data model.GraphData
	next := 0
	for c := 0; c < components; c++ {
		center := next
		t := model.TypeTopic
		if c == 0 {
			t = model.TypeHub
		}
		data.Nodes = append(data.Nodes, g.node(center, t))
		next++
		for s := 1; s < size; s++ {
			data.Nodes = append(data.Nodes, g.node(next, g.pickType()))
			data.Links = append(data.Links, g.belongsTo(next, center))
			next++
		}
	}
	return data
}

// Random creates size nodes where each pair is linked with probability
// density. n0 is the hub.
func (g *Generator) Random(size int, density float64) model.GraphData {
	var data model.GraphData
	for i := 0; i < size; i++ {
		t := g.pickType()
		if i == 0 {
			t = model.TypeHub
		}
		data.Nodes = append(data.Nodes, g.node(i, t))
	}
	for i := 0; i < size; i++ {
		for j := i + 1; j < size; j++ {
			if g.rng.Float64() < density {
				data.Links = append(data.Links, model.GraphLink{Source: g.ID(j), Target: g.ID(i), Kind: g.pickKind()})
			}
		}
	}
	return data
}

// ToJSON encodes a document the way it is served.
func ToJSON(data model.GraphData) string {
	b, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// QuickStar is a Star from the default generator.
func QuickStar(spokes int) model.GraphData { return NewDefault().Star(spokes) }

// QuickHubAndSpoke is a HubAndSpoke from the default generator.
func QuickHubAndSpoke(topics, leaves, cross int) model.GraphData {
	return NewDefault().HubAndSpoke(topics, leaves, cross)
}
