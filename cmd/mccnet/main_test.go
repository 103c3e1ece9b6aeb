package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mccnet/internal/codec"
	"mccnet/internal/config"
	"mccnet/internal/domain"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "error"
	cfg.Generation.MaxQuantity = 20
	require.NoError(t, cfg.Save(path))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", writeConfig(t)}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateJSON(t *testing.T) {
	out, err := execute(t, "", "generate", "--anchor", "sw1", "--count", "3", "--role", "client", "--bandwidth", "10", "--delay", "5ms", "--seed", "7")
	require.NoError(t, err)

	var topology domain.Topology
	require.NoError(t, json.Unmarshal([]byte(out), &topology))
	require.NoError(t, topology.Validate())

	require.Len(t, topology.Nodes, 4)
	require.Len(t, topology.Edges, 3)

	assert.Equal(t, "sw1", topology.Nodes[0].ID)
	assert.Equal(t, domain.RoleSwitch, topology.Nodes[0].Type)
	for _, node := range topology.Nodes[1:] {
		assert.Equal(t, domain.RoleClient, node.Type)
		assert.NotEmpty(t, node.Address())
	}
	for _, edge := range topology.Edges {
		assert.Equal(t, "sw1", edge.To)
		assert.Equal(t, "5ms", edge.Delay)
		assert.Equal(t, 10.0, edge.Bandwidth)
	}
}

func TestGenerateUsesConfiguredDefaultCount(t *testing.T) {
	out, err := execute(t, "", "generate", "--anchor", "sw1", "--role", "server")
	require.NoError(t, err)

	var topology domain.Topology
	require.NoError(t, json.Unmarshal([]byte(out), &topology))
	assert.Len(t, topology.Edges, config.DefaultQuantity)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing anchor", []string{"generate", "--count", "2"}},
		{"unknown role", []string{"generate", "--anchor", "sw1", "--role", "router"}},
		{"over max", []string{"generate", "--anchor", "sw1", "--count", "21"}},
		{"bad delay", []string{"generate", "--anchor", "sw1", "--delay", "soon"}},
		{"bad format", []string{"generate", "--anchor", "sw1", "--format", "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestGenerateScenarioDecodes(t *testing.T) {
	out, err := execute(t, "", "generate", "--anchor", "core", "--count", "2", "--format", "scenario")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, codec.Header))

	decoded, err := execute(t, out, "decode")
	require.NoError(t, err)

	var topology domain.Topology
	require.NoError(t, json.Unmarshal([]byte(decoded), &topology))
	assert.Len(t, topology.Nodes, 3)
}

func TestGenerateKeepsHyphenatedAnchor(t *testing.T) {
	out, err := execute(t, "", "generate", "--anchor", "sw-1", "--count", "2", "--format", "scenario")
	require.NoError(t, err)

	decoded, err := execute(t, out, "decode")
	require.NoError(t, err)

	var topology domain.Topology
	require.NoError(t, json.Unmarshal([]byte(decoded), &topology))
	require.NoError(t, topology.Validate())
	require.Len(t, topology.Nodes, 3)
	assert.Equal(t, "sw-1", topology.Nodes[0].ID)
	assert.Equal(t, "sw-1", topology.Nodes[0].Label)
	for _, edge := range topology.Edges {
		assert.Equal(t, "sw-1", edge.To)
	}
}

func TestEncodeDecodeFile(t *testing.T) {
	dir := t.TempDir()
	topologyPath := filepath.Join(dir, "topology.json")
	input := `{"nodes":[{"id":"sw1","type":"switch","label":"sw1"},{"id":"c1","type":"client","label":"alice","ip":"10.0.0.2"}],"edges":[{"id":"e1","from":"c1","to":"sw1","bandwidth":10,"delay":"5ms"}]}`
	require.NoError(t, os.WriteFile(topologyPath, []byte(input), 0644))

	scenario, err := execute(t, "", "encode", topologyPath)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(scenario, codec.Header))

	scenarioPath := filepath.Join(dir, "scenario.txt")
	require.NoError(t, os.WriteFile(scenarioPath, []byte(scenario), 0644))

	out, err := execute(t, "", "decode", scenarioPath, "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "10.0.0.2")
}

func TestEncodeRejectsDanglingEdge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.json")
	input := `{"nodes":[{"id":"c1","type":"client"}],"edges":[{"id":"e1","from":"c1","to":"ghost"}]}`
	require.NoError(t, os.WriteFile(path, []byte(input), 0644))

	_, err := execute(t, "", "encode", path)
	assert.ErrorIs(t, err, domain.ErrDanglingEdgeReference)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := execute(t, "data:text/plain;base64,e30=", "decode", "-")
	assert.ErrorIs(t, err, domain.ErrMalformedScenario)
}
