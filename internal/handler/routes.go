package handler

import (
	"net/http"

	"go.uber.org/zap"

	"mccnet/internal/metrics"
)

// NewRouter registers every API route on a new mux and wraps it with the
// standard middleware stack. events serves the SSE stream.
func NewRouter(graph *GraphHandler, events http.Handler, collector *metrics.Collector, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// Graph endpoints
	mux.HandleFunc("GET /api/graph", graph.GetGraph)
	mux.HandleFunc("DELETE /api/graph", graph.ClearGraph)

	// Node endpoints
	mux.HandleFunc("POST /api/nodes", graph.CreateNode)
	mux.HandleFunc("GET /api/nodes/{id}", graph.GetNode)
	mux.HandleFunc("PUT /api/nodes/{id}", graph.UpdateNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", graph.DeleteNode)
	mux.HandleFunc("GET /api/nodes/{id}/fields", graph.GetNodeFields)
	mux.HandleFunc("POST /api/nodes/{id}/generate", graph.GenerateNodes)

	// Edge endpoints
	mux.HandleFunc("POST /api/edges", graph.CreateEdge)
	mux.HandleFunc("GET /api/edges/{id}", graph.GetEdge)
	mux.HandleFunc("PUT /api/edges/{id}", graph.UpdateEdge)
	mux.HandleFunc("DELETE /api/edges/{id}", graph.DeleteEdge)
	mux.HandleFunc("GET /api/edges/{id}/fields", graph.GetEdgeFields)

	// Import endpoints
	mux.HandleFunc("POST /api/import/scenario", graph.ImportScenario)
	mux.HandleFunc("POST /api/import/yaml", graph.ImportYAML)
	mux.HandleFunc("POST /api/import/ansible-inventory", graph.ImportAnsibleInventory)

	// Export endpoints
	mux.HandleFunc("GET /api/export/scenario", graph.ExportScenario)
	mux.HandleFunc("GET /api/export/json", graph.ExportJSON)
	mux.HandleFunc("GET /api/export/yaml", graph.ExportYAML)
	mux.HandleFunc("GET /api/export/ansible-inventory", graph.ExportAnsibleInventory)

	// SSE events and metrics
	if events != nil {
		mux.Handle("GET /events", events)
	}
	mux.Handle("GET /metrics", collector.Handler())

	return Chain(mux,
		Recover(logger),
		Logger(logger),
		Metrics(collector),
	)
}
