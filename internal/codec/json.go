package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"mccnet/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a topology from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Topology, error) {
	var topology domain.Topology
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&topology); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	topology.Normalize()
	return &topology, nil
}

// Export exports a topology to JSON
func (c *JSONCodec) Export(topology *domain.Topology, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(normalized(topology)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

// normalized returns a copy safe to serialize: empty lists are never null
func normalized(topology *domain.Topology) *domain.Topology {
	out := domain.NewTopology()
	if topology == nil {
		return out
	}
	for _, node := range topology.Nodes {
		out.AddNode(node.Clone())
	}
	out.Edges = append(out.Edges, topology.Edges...)
	out.Normalize()
	return out
}
