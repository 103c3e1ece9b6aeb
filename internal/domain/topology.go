package domain

import (
	"errors"
	"fmt"
)

// Topology is a complete or partial network graph. It is the unit handed to
// the store for batch insertion or hydration, and the payload of a scenario.
type Topology struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NewTopology creates an empty topology
func NewTopology() *Topology {
	return &Topology{
		Nodes: make([]Node, 0),
		Edges: make([]Edge, 0),
	}
}

// AddNode adds a node to the topology
func (t *Topology) AddNode(node Node) {
	t.Nodes = append(t.Nodes, node)
}

// AddEdge adds an edge to the topology
func (t *Topology) AddEdge(edge Edge) {
	t.Edges = append(t.Edges, edge)
}

// NodeIndex maps node IDs to their position in Nodes
func (t *Topology) NodeIndex() map[string]int {
	index := make(map[string]int, len(t.Nodes))
	for i, node := range t.Nodes {
		index[node.ID] = i
	}
	return index
}

// Normalize replaces nil slices with empty ones and re-applies the
// role/address invariant to every node.
func (t *Topology) Normalize() {
	if t.Nodes == nil {
		t.Nodes = make([]Node, 0)
	}
	if t.Edges == nil {
		t.Edges = make([]Edge, 0)
	}
	for i := range t.Nodes {
		t.Nodes[i].EnforceAddress()
	}
}

// Validate checks the structural invariants of a self-contained topology:
// node IDs are non-empty and unique, roles are known, and every edge
// endpoint resolves to a node in the same topology.
func (t *Topology) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(t.Nodes))

	for i, node := range t.Nodes {
		if node.ID == "" {
			errs = append(errs, fmt.Errorf("node %d: empty id", i))
			continue
		}
		if _, dup := seen[node.ID]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID))
		}
		seen[node.ID] = struct{}{}
		if !node.Type.Valid() {
			errs = append(errs, fmt.Errorf("node %s: %w: %q", node.ID, ErrUnknownRole, node.Type))
		}
	}

	for i, edge := range t.Edges {
		if _, ok := seen[edge.From]; !ok {
			errs = append(errs, fmt.Errorf("edge %d: %w: from %q", i, ErrDanglingEdgeReference, edge.From))
		}
		if _, ok := seen[edge.To]; !ok {
			errs = append(errs, fmt.Errorf("edge %d: %w: to %q", i, ErrDanglingEdgeReference, edge.To))
		}
	}

	return errors.Join(errs...)
}
