package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mccnet/internal/builder"
	"mccnet/internal/codec"
	"mccnet/internal/device"
	"mccnet/internal/domain"
	"mccnet/internal/generator"
	"mccnet/internal/metrics"
	"mccnet/internal/mutation"
	"mccnet/internal/repository/sqlite"
	"mccnet/internal/service"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	gen := &generator.Sequence{}
	images := device.DefaultImages()
	collector := metrics.NewCollector()
	logger := zap.NewNop()

	svc := service.NewGraphService(repo, service.NewEventBus(), builder.New(gen, images, 10), mutation.New(gen, images), collector, logger)
	return NewRouter(NewGraphHandler(svc, logger), nil, collector, logger)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, reader))
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func TestNodeLifecycle(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/nodes", `{"type":"switch","id":"sw1-canvas","name":"ignored"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sw domain.Node
	decodeBody(t, rec, &sw)
	assert.Equal(t, "sw1", sw.ID)
	assert.Equal(t, "sw1", sw.Label)
	assert.Nil(t, sw.IP)

	rec = do(t, h, http.MethodPost, "/api/nodes", `{"type":"client","id":"c1","name":"my phone","ip":"10.0.0.2"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/nodes/c1", `{"name":"bob","ip":"10.0.0.3"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var edited domain.Node
	decodeBody(t, rec, &edited)
	assert.Equal(t, "bob", edited.Label)

	rec = do(t, h, http.MethodGet, "/api/nodes/c1/fields", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fields mutation.NodeFields
	decodeBody(t, rec, &fields)
	assert.Equal(t, "10.0.0.3", fields.Address)

	rec = do(t, h, http.MethodDelete, "/api/nodes/c1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/nodes/c1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateNodeFromDeviceKind(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		body string
		role domain.Role
		kind string
	}{
		{`{"image":"phone","id":"p1","name":"alice","ip":"10.0.0.9"}`, domain.RoleClient, "phone"},
		{`{"image":"server","id":"s1","name":"web"}`, domain.RoleServer, "server"},
		{`{"image":"router","id":"r1"}`, domain.RoleSwitch, "router"},
		{`{"type":"server","image":"phone","id":"x1"}`, domain.RoleServer, "phone"},
	}

	for _, tt := range tests {
		rec := do(t, h, http.MethodPost, "/api/nodes", tt.body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var node domain.Node
		decodeBody(t, rec, &node)
		assert.Equal(t, tt.role, node.Type, tt.body)
		assert.Equal(t, tt.kind, node.Image, tt.body)
	}

	rec := do(t, h, http.MethodGet, "/api/nodes/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var phone domain.Node
	decodeBody(t, rec, &phone)
	assert.Equal(t, "10.0.0.9", phone.Address())
	assert.Equal(t, "renanalves/android-22:vnc", phone.DImage)
}

func TestCreateNodeErrors(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/nodes", `{"name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/nodes", `{"type":"router"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "type", resp.Field)

	rec = do(t, h, http.MethodPost, "/api/nodes", `{"type":"switch","id":"sw1"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/nodes", `{"type":"switch","id":"sw1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/nodes", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEdgeLifecycle(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/nodes", `{"type":"switch","id":"sw1"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/nodes", `{"type":"server","id":"s1","name":"web"}`).Code)

	rec := do(t, h, http.MethodPost, "/api/edges", `{"from":"s1","to":"sw1","label":"a b","bandwidth":"100","delay":"20"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var edge domain.Edge
	decodeBody(t, rec, &edge)
	assert.Equal(t, "ab", edge.Label)
	assert.Equal(t, "20ms", edge.Delay)

	rec = do(t, h, http.MethodGet, "/api/edges/"+edge.ID+"/fields", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fields mutation.EdgeFields
	decodeBody(t, rec, &fields)
	assert.Equal(t, "20", fields.Delay)

	rec = do(t, h, http.MethodPut, "/api/edges/"+edge.ID, `{"label":"up","bandwidth":"abc","delay":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "bandwidth", resp.Field)

	rec = do(t, h, http.MethodPut, "/api/edges/"+edge.ID, `{"label":"up","bandwidth":"5","delay":"1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/edges", `{"from":"sw1","to":"s1","bandwidth":"1","delay":"1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/edges", `{"from":"ghost","to":"s1","bandwidth":"1","delay":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/edges", `{"from":"s1","to":"s1","bandwidth":"1","delay":"1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/edges/"+edge.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGenerate(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/nodes", `{"type":"switch","id":"sw1"}`).Code)

	rec := do(t, h, http.MethodPost, "/api/nodes/sw1/generate", `{"count":3,"edge":{"bandwidth":10,"delay":"5"},"node":{"type":"client"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result service.GenerateResult
	decodeBody(t, rec, &result)
	assert.Len(t, result.Topology.Nodes, 3)

	rec = do(t, h, http.MethodPost, "/api/nodes/sw1/generate", `{"count":11,"edge":{"bandwidth":10,"delay":"5"},"node":{"type":"client"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "exceeds the configured maximum")

	rec = do(t, h, http.MethodPost, "/api/nodes/sw1/generate", `{"count":2,"edge":{"bandwidth":1,"delay":"1"},"node":{"type":"router"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/nodes/ghost/generate", `{"count":2,"edge":{"bandwidth":1,"delay":"1"},"node":{"type":"server"}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/nodes/sw1/generate", `{"count":-1,"edge":{"bandwidth":1,"delay":"1"},"node":{"type":"server"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateZeroIsEmptyBatch(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/nodes", `{"type":"switch","id":"sw1"}`).Code)

	rec := do(t, h, http.MethodPost, "/api/nodes/sw1/generate", `{"count":0,"edge":{"bandwidth":1,"delay":"1"},"node":{"type":"client"}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result service.GenerateResult
	decodeBody(t, rec, &result)
	assert.Empty(t, result.Topology.Nodes)
	assert.Empty(t, result.Topology.Edges)

	rec = do(t, h, http.MethodGet, "/api/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var graph domain.Topology
	decodeBody(t, rec, &graph)
	assert.Len(t, graph.Nodes, 1)
}

func TestScenarioEndpoints(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/nodes", `{"type":"switch","id":"sw1"}`).Code)

	rec := do(t, h, http.MethodGet, "/api/export/scenario", "")
	require.Equal(t, http.StatusOK, rec.Code)
	scenario := rec.Body.String()
	assert.True(t, strings.HasPrefix(scenario, codec.Header))

	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/graph", "").Code)

	rec = do(t, h, http.MethodPost, "/api/import/scenario", scenario+"\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/graph", "")
	var graph domain.Topology
	decodeBody(t, rec, &graph)
	require.Len(t, graph.Nodes, 1)
	assert.Equal(t, "sw1", graph.Nodes[0].ID)

	rec = do(t, h, http.MethodPost, "/api/import/scenario", "data:text/json;base64,e30=")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportEndpoints(t *testing.T) {
	h := newTestServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/nodes", `{"type":"switch","id":"sw1"}`).Code)

	rec := do(t, h, http.MethodGet, "/api/export/json", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sw1"`)

	rec = do(t, h, http.MethodGet, "/api/export/yaml", "")
	assert.Equal(t, "application/x-yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "id: sw1")

	rec = do(t, h, http.MethodGet, "/api/export/ansible-inventory", "")
	assert.Contains(t, rec.Body.String(), "switches:")

	rec = do(t, h, http.MethodPost, "/api/import/yaml?strategy=merge", "nodes:\n  - id: s2\n    type: server\n    label: db\n")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodGet, "/api/graph", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mccnet_http_requests_total{method="GET",route="/api/graph",status="200"} 1`)
}

func TestRecover(t *testing.T) {
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	Chain(panicky, Recover(zap.NewNop())).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
