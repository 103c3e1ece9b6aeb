package codec

import (
	"fmt"
	"io"

	"mccnet/internal/domain"
)

// Importer interface for importing topologies from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Topology, error)
	Format() string
}

// Exporter interface for exporting topologies to various formats
type Exporter interface {
	Export(topology *domain.Topology, w io.Writer) error
	Format() string
}

// ExporterFor returns the exporter registered under format
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "scenario":
		return NewScenarioCodec(), nil
	case "ansible-inventory", "ansible":
		return NewAnsibleCodec(), nil
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}
