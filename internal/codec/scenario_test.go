package codec

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mccnet/internal/domain"
)

func encodePayload(header, payload string) string {
	return header + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestHeaderLength(t *testing.T) {
	assert.Equal(t, 29, HeaderLen)
	assert.Len(t, Header, 29)
}

func TestDecodeEmptyScenario(t *testing.T) {
	c := NewScenarioCodec()

	topology, err := c.Decode(encodePayload(Header, `{"nodes":[],"edges":[]}`))
	require.NoError(t, err)
	assert.Empty(t, topology.Nodes)
	assert.Empty(t, topology.Edges)
	assert.NotNil(t, topology.Nodes)
	assert.NotNil(t, topology.Edges)
}

func TestDecodeMalformed(t *testing.T) {
	c := NewScenarioCodec()

	tests := []struct {
		name     string
		scenario string
	}{
		{"empty string", ""},
		{"no header", base64.StdEncoding.EncodeToString([]byte(`{"nodes":[],"edges":[]}`))},
		{"shorter header", encodePayload("data:text/json;base64,", `{"nodes":[],"edges":[]}`)},
		{"longer header", encodePayload("data:application/json;charset=utf-8;base64,", `{"nodes":[],"edges":[]}`)},
		{"not base64 header", "data:application/json;abcdef,e30="},
		{"invalid base64", Header + "!!!not-base64!!!"},
		{"invalid json", encodePayload(Header, `{"nodes": [`)},
		{"wrong shape", encodePayload(Header, `[1, 2, 3]`)},
		{"trailing text", encodePayload(Header, `{"nodes":[],"edges":[]} this is not json`)},
		{"second document", encodePayload(Header, `{"nodes":[],"edges":[]}{"nodes":[]}`)},
		{"unknown role", encodePayload(Header, `{"nodes":[{"id":"a","type":"router"}],"edges":[]}`)},
		{"duplicate node", encodePayload(Header, `{"nodes":[{"id":"a","type":"switch"},{"id":"a","type":"switch"}],"edges":[]}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topology, err := c.Decode(tt.scenario)
			assert.Nil(t, topology)
			assert.True(t, errors.Is(err, domain.ErrMalformedScenario), "got %v", err)
		})
	}
}

func TestDecodeDanglingEdge(t *testing.T) {
	c := NewScenarioCodec()

	_, err := c.Decode(encodePayload(Header, `{"nodes":[{"id":"a","type":"switch"}],"edges":[{"from":"a","to":"b","bandwidth":1,"delay":"1ms"}]}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedScenario))
	assert.True(t, errors.Is(err, domain.ErrDanglingEdgeReference))
}

func TestDecodeEnforcesAddressInvariant(t *testing.T) {
	c := NewScenarioCodec()

	payload := `{"nodes":[{"id":"sw","type":"switch","ip":"10.0.0.1"},{"id":"c","type":"client"}],"edges":[]}`
	topology, err := c.Decode(encodePayload(Header, payload))
	require.NoError(t, err)
	require.Len(t, topology.Nodes, 2)

	assert.False(t, topology.Nodes[0].HasAddress())
	assert.True(t, topology.Nodes[1].HasAddress())
	assert.Equal(t, "", topology.Nodes[1].Address())
}

func TestEncodeNilTopology(t *testing.T) {
	c := NewScenarioCodec()

	scenario, err := c.Encode(nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(scenario, Header))

	payload, err := base64.StdEncoding.DecodeString(scenario[HeaderLen:])
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, string(payload))
}

func TestParseIgnoresTrailingNewline(t *testing.T) {
	c := NewScenarioCodec()

	topology, err := c.Parse(strings.NewReader(encodePayload(Header, `{"nodes":[],"edges":[]}`) + "\n"))
	require.NoError(t, err)
	assert.Empty(t, topology.Nodes)
}

func TestDataURL(t *testing.T) {
	scenario := DataURL("application/json", []byte(`{"nodes":[],"edges":[]}`))
	_, err := NewScenarioCodec().Decode(scenario)
	require.NoError(t, err)

	_, err = NewScenarioCodec().Decode(DataURL("text/plain", []byte(`{"nodes":[],"edges":[]}`)))
	assert.True(t, errors.Is(err, domain.ErrMalformedScenario))
}

func sampleTopology() *domain.Topology {
	topology := domain.NewTopology()

	sw := domain.NewNode("sw1", domain.RoleSwitch, "sw1")
	sw.Image = "switch"
	sw.Title = domain.NodeTitle(sw)
	topology.AddNode(*sw)

	client := domain.NewNode("c1", domain.RoleClient, "alice")
	client.SetAddress("10.0.0.2")
	client.Image = "phone"
	client.DImage = "renanalves/android-22:vnc"
	client.Title = domain.GeneratedNodeTitle("alice", "10.0.0.2", client.DImage)
	topology.AddNode(*client)

	edge := domain.NewEdge("c1", "sw1")
	edge.Bandwidth = 10
	edge.Delay = "5ms"
	edge.Title = domain.EdgeTitle("5", 10)
	topology.AddEdge(*edge)

	return topology
}

func TestScenarioRoundTrip(t *testing.T) {
	c := NewScenarioCodec()
	original := sampleTopology()

	scenario, err := c.Encode(original)
	require.NoError(t, err)

	decoded, err := c.Decode(scenario)
	require.NoError(t, err)

	if diff := cmp.Diff(original, decoded, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestScenarioRoundTripProperty(t *testing.T) {
	c := NewScenarioCodec()
	properties := gopter.NewProperties(nil)

	properties.Property("decode inverts encode", prop.ForAll(
		func(roles []int, label string, bandwidth uint16) bool {
			topology := domain.NewTopology()
			for i, r := range roles {
				node := domain.NewNode(fmt.Sprintf("n%d", i), domain.Roles[r], label)
				if node.HasAddress() {
					node.SetAddress(fmt.Sprintf("10.0.0.%d", i))
				}
				node.Title = domain.NodeTitle(node)
				topology.AddNode(*node)
				if i > 0 {
					edge := domain.NewEdge(node.ID, "n0")
					edge.Bandwidth = float64(bandwidth)
					edge.Delay = domain.FormatDelay("1")
					topology.AddEdge(*edge)
				}
			}

			scenario, err := c.Encode(topology)
			if err != nil {
				return false
			}
			decoded, err := c.Decode(scenario)
			if err != nil {
				return false
			}
			return cmp.Equal(topology, decoded, cmpopts.EquateEmpty())
		},
		gen.SliceOf(gen.IntRange(0, len(domain.Roles)-1)),
		gen.AlphaString(),
		gen.UInt16(),
	))

	properties.TestingRun(t)
}
