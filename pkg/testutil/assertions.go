package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/hubgraph/pkg/model"
)

// AssertValid fails the test if data has duplicate ids or dangling links.
func AssertValid(t testing.TB, data model.GraphData) {
	t.Helper()
	if err := model.Validate(data); err != nil {
		t.Fatalf("invalid document: %v", err)
	}
}

// AssertNodeCount checks the number of nodes.
func AssertNodeCount(t testing.TB, data model.GraphData, expected int) {
	t.Helper()
	if len(data.Nodes) != expected {
		t.Errorf("expected %d nodes, got %d", expected, len(data.Nodes))
	}
}

// WriteDocument writes data as graph.json under dir and returns the path.
func WriteDocument(t testing.TB, dir string, data model.GraphData) string {
	t.Helper()
	path := filepath.Join(dir, "graph.json")
	if err := os.WriteFile(path, []byte(ToJSON(data)), 0o644); err != nil {
		t.Fatalf("writing document: %v", err)
	}
	return path
}

// FindNode returns the node with the given id, or nil.
func FindNode(data model.GraphData, id string) *model.GraphNode {
	for i := range data.Nodes {
		if data.Nodes[i].ID == id {
			return &data.Nodes[i]
		}
	}
	return nil
}

// CountByType tallies nodes per type.
func CountByType(data model.GraphData) map[model.NodeType]int {
	counts := make(map[model.NodeType]int)
	for _, n := range data.Nodes {
		counts[n.Type]++
	}
	return counts
}
