//go:build ignore

// generate_testdata.go writes sample graph documents for trying the viewer
// and timing the layout.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/graphs/small.json   (hub, 4 topics, 40 leaves)
//	testdata/graphs/medium.json  (hub, 10 topics, 200 leaves)
//	testdata/graphs/large.json   (hub, 25 topics, 1000 leaves)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/testutil"
)

type datasetSpec struct {
	name   string
	topics int
	leaves int
	cross  int
}

var datasets = []datasetSpec{
	{"small", 4, 10, 8},
	{"medium", 10, 20, 60},
	{"large", 25, 40, 300},
}

var topicNames = []string{
	"Community", "Rules", "Spaces", "Moderators", "Tooling",
	"Events", "Guides", "Partners", "Libraries", "Archive",
}

func main() {
	outputDir := "testdata/graphs"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for i, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d topics x %d leaves)...\n", ds.name, ds.topics, ds.leaves)

		cfg := testutil.DefaultConfig()
		cfg.Seed = uint64(i + 1)
		cfg.IncludeHrefs = true
		gen := testutil.New(cfg)
		data := gen.HubAndSpoke(ds.topics, ds.leaves, ds.cross)
		addContent(data)

		outputPath := filepath.Join(outputDir, ds.name+".json")
		doc := testutil.ToJSON(data)
		if err := os.WriteFile(outputPath, []byte(doc), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes, %d nodes, %d links)\n", outputPath, len(doc), len(data.Nodes), len(data.Links))
	}

	fmt.Println("\nDone! Sample graphs created in", outputDir)
}

func addContent(data model.GraphData) {
	topic := 0
	for i := range data.Nodes {
		n := &data.Nodes[i]
		switch n.Type {
		case model.TypeHub:
			n.Label = "Hub"
			n.Href = "https://example.com/"
		case model.TypeTopic:
			n.Label = topicNames[topic%len(topicNames)]
			n.Description = fmt.Sprintf("Everything filed under **%s**.", n.Label)
			n.Tags = []string{"topic"}
			topic++
		default:
			n.Tags = []string{string(n.Type)}
		}
	}
}
