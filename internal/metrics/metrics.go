// Package metrics exposes Prometheus counters for graph mutations, bulk
// generation, scenario imports, and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Collector captures application metrics on a private registry
type Collector struct {
	registry        *prometheus.Registry
	nodesCreated    *prometheus.CounterVec
	edgesCreated    prometheus.Counter
	entitiesEdited  *prometheus.CounterVec
	generatedNodes  *prometheus.CounterVec
	scenarioImports *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewCollector initializes a new metrics registry
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	c := &Collector{
		registry: registry,
		nodesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "mccnet_nodes_created_total", Help: "Nodes created, by role"},
			[]string{"role"},
		),
		edgesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "mccnet_edges_created_total", Help: "Edges created"},
		),
		entitiesEdited: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "mccnet_entities_edited_total", Help: "Nodes and edges edited"},
			[]string{"kind"},
		),
		generatedNodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "mccnet_generated_nodes_total", Help: "Nodes produced by bulk generation, by role"},
			[]string{"role"},
		),
		scenarioImports: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "mccnet_scenario_imports_total", Help: "Scenario imports, by result"},
			[]string{"result"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "mccnet_http_requests_total", Help: "HTTP requests served"},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mccnet_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		c.nodesCreated,
		c.edgesCreated,
		c.entitiesEdited,
		c.generatedNodes,
		c.scenarioImports,
		c.httpRequests,
		c.httpDuration,
	)
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// NodeCreated records a single node creation
func (c *Collector) NodeCreated(role string) {
	c.nodesCreated.WithLabelValues(role).Inc()
}

// EdgeCreated records a single edge creation
func (c *Collector) EdgeCreated() {
	c.edgesCreated.Inc()
}

// EntityEdited records an edit of a node or an edge
func (c *Collector) EntityEdited(kind string) {
	c.entitiesEdited.WithLabelValues(kind).Inc()
}

// NodesGenerated records a bulk generation batch
func (c *Collector) NodesGenerated(role string, count int) {
	c.generatedNodes.WithLabelValues(role).Add(float64(count))
}

// ScenarioImported records the outcome of a scenario import
func (c *Collector) ScenarioImported(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	c.scenarioImports.WithLabelValues(result).Inc()
}

// ObserveRequest records one served HTTP request
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
