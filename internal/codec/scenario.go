package codec

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"mccnet/internal/domain"
)

// Header is the data-URL prefix every scenario carries
const Header = "data:application/json;base64,"

// HeaderLen is the exact length a scenario header must have
const HeaderLen = len(Header)

// ScenarioCodec converts topologies to and from the scenario transport
// string: a base64 data URL wrapping the JSON topology document.
type ScenarioCodec struct{}

// NewScenarioCodec creates a new scenario codec
func NewScenarioCodec() *ScenarioCodec {
	return &ScenarioCodec{}
}

// Format returns the codec format identifier
func (c *ScenarioCodec) Format() string {
	return "scenario"
}

// Decode recovers a topology from a scenario string. Any header whose length
// differs from HeaderLen, an undecodable payload, or a document that fails
// validation yields ErrMalformedScenario.
func (c *ScenarioCodec) Decode(scenario string) (*domain.Topology, error) {
	if err := checkHeader(scenario); err != nil {
		return nil, err
	}

	payload, err := base64.StdEncoding.DecodeString(scenario[HeaderLen:])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedScenario, err)
	}

	// Unmarshal rejects anything after the document
	var topology domain.Topology
	if err := json.Unmarshal(payload, &topology); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedScenario, err)
	}

	topology.Normalize()
	if err := topology.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedScenario, err)
	}

	return &topology, nil
}

// Encode serializes the topology and wraps it in the scenario header
func (c *ScenarioCodec) Encode(topology *domain.Topology) (string, error) {
	data, err := json.Marshal(normalized(topology))
	if err != nil {
		return "", fmt.Errorf("failed to encode scenario: %w", err)
	}
	return Header + base64.StdEncoding.EncodeToString(data), nil
}

// Parse reads a whole scenario string from r and decodes it. Surrounding
// whitespace, such as a trailing newline in a file, is ignored.
func (c *ScenarioCodec) Parse(r io.Reader) (*domain.Topology, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return c.Decode(strings.TrimSpace(string(data)))
}

// Export writes the scenario string for topology to w
func (c *ScenarioCodec) Export(topology *domain.Topology, w io.Writer) error {
	scenario, err := c.Encode(topology)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, scenario); err != nil {
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	return nil
}

// DataURL wraps raw file content the way a browser file reader does when
// asked for a data URL.
func DataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func checkHeader(scenario string) error {
	comma := strings.IndexByte(scenario, ',')
	if comma < 0 {
		return fmt.Errorf("%w: missing data URL header", domain.ErrMalformedScenario)
	}

	header := scenario[:comma+1]
	if !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64,") {
		return fmt.Errorf("%w: not a base64 data URL", domain.ErrMalformedScenario)
	}
	if len(header) != HeaderLen {
		return fmt.Errorf("%w: header %q is %d bytes, want %d", domain.ErrMalformedScenario, header, len(header), HeaderLen)
	}

	return nil
}
