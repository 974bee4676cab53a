// Package model defines the graph document loaded by the viewer and the fixed
// style tables every other package keys off.
package model

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// NodeType categorizes a node. The set is fixed.
type NodeType string

const (
	TypeHub     NodeType = "hub"
	TypeTopic   NodeType = "topic"
	TypeAsset   NodeType = "asset"
	TypeVendor  NodeType = "vendor"
	TypeLibrary NodeType = "library"
	TypeEvent   NodeType = "event"
)

// AllNodeTypes lists every node type in legend order.
var AllNodeTypes = []NodeType{TypeHub, TypeTopic, TypeAsset, TypeVendor, TypeLibrary, TypeEvent}

// IsValid reports whether t is one of the known node types.
func (t NodeType) IsValid() bool {
	switch t {
	case TypeHub, TypeTopic, TypeAsset, TypeVendor, TypeLibrary, TypeEvent:
		return true
	}
	return false
}

// LinkKind categorizes a link.
type LinkKind string

const (
	KindBelongsTo LinkKind = "belongsTo"
	KindRelates   LinkKind = "relates"
	KindPoweredBy LinkKind = "poweredBy"
)

// AllLinkKinds lists every link kind from shortest to longest target distance.
var AllLinkKinds = []LinkKind{KindBelongsTo, KindRelates, KindPoweredBy}

// IsValid reports whether k is one of the known link kinds.
func (k LinkKind) IsValid() bool {
	switch k {
	case KindBelongsTo, KindRelates, KindPoweredBy:
		return true
	}
	return false
}

// GraphNode is a node as it appears in the document.
type GraphNode struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Type        NodeType `json:"type"`
	Href        string   `json:"href"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Pinned      bool     `json:"pinned,omitempty"`
}

// GraphLink connects two nodes by id. Direction is nominal.
type GraphLink struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Kind   LinkKind `json:"kind"`
}

// GraphData is the root document.
type GraphData struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// Validation errors. The viewer itself never checks for these; they are
// reported by the check command for the pipeline that produces documents.
var (
	ErrDuplicateID  = errors.New("duplicate node id")
	ErrDanglingLink = errors.New("link references unknown node")
)

// Decode reads a document from r.
func Decode(r io.Reader) (GraphData, error) {
	var data GraphData
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return GraphData{}, fmt.Errorf("decoding graph document: %w", err)
	}
	return data, nil
}

// Parse decodes a document held in memory.
func Parse(b []byte) (GraphData, error) {
	var data GraphData
	if err := json.Unmarshal(b, &data); err != nil {
		return GraphData{}, fmt.Errorf("decoding graph document: %w", err)
	}
	return data, nil
}

// Validate checks the upstream preconditions: unique ids and resolvable link
// endpoints. All violations are joined into one error.
func Validate(data GraphData) error {
	var errs []error
	seen := make(map[string]bool, len(data.Nodes))
	for _, n := range data.Nodes {
		if seen[n.ID] {
			errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateID, n.ID))
			continue
		}
		seen[n.ID] = true
	}
	for i, l := range data.Links {
		if !seen[l.Source] {
			errs = append(errs, fmt.Errorf("%w: links[%d].source %q", ErrDanglingLink, i, l.Source))
		}
		if !seen[l.Target] {
			errs = append(errs, fmt.Errorf("%w: links[%d].target %q", ErrDanglingLink, i, l.Target))
		}
	}
	return errors.Join(errs...)
}
