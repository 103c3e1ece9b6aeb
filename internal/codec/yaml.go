package codec

import (
	"errors"
	"fmt"
	"io"

	"mccnet/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse imports a topology from YAML. An empty document yields an empty
// topology.
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Topology, error) {
	var topology domain.Topology
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&topology); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	topology.Normalize()
	return &topology, nil
}

// Export exports a topology to YAML
func (c *YAMLCodec) Export(topology *domain.Topology, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(normalized(topology)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
