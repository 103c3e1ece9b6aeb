package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mccnet/internal/codec"
)

func TestReadScenarioWrapsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"nodes":[],"edges":[]}`), 0o644))

	scenario, err := ReadScenario(path)
	require.NoError(t, err)

	topology, err := codec.NewScenarioCodec().Decode(scenario)
	require.NoError(t, err)
	assert.Empty(t, topology.Nodes)
}

func TestReadScenarioKeepsDataURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.txt")
	encoded := codec.DataURL("application/json", []byte(`{"nodes":[],"edges":[]}`))
	require.NoError(t, os.WriteFile(path, []byte(encoded+"\n"), 0o644))

	scenario, err := ReadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, encoded, scenario)
}

func TestReadScenarioMissingFile(t *testing.T) {
	_, err := ReadScenario(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestMIMEFor(t *testing.T) {
	assert.Equal(t, "application/json", MIMEFor("a.json"))
	assert.Equal(t, fallbackMIME, MIMEFor("a.unknownext"))
}
