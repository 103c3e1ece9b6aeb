package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"mccnet/internal/builder"
	"mccnet/internal/codec"
	"mccnet/internal/domain"
	"mccnet/internal/metrics"
	"mccnet/internal/mutation"
	"mccnet/internal/repository"
)

// Import strategies
const (
	StrategyReplace = "replace"
	StrategyMerge   = "merge"
)

// GraphService provides business logic for graph operations
type GraphService struct {
	repo     repository.GraphStore
	eventBus *EventBus
	builder  *builder.Builder
	mutator  *mutation.Mutator
	scenario *codec.ScenarioCodec
	metrics  *metrics.Collector
	logger   *zap.Logger

	// genMu serializes access to the random source shared by builder and mutator
	genMu sync.Mutex
}

// NewGraphService creates a new graph service
func NewGraphService(
	repo repository.GraphStore,
	eventBus *EventBus,
	b *builder.Builder,
	m *mutation.Mutator,
	collector *metrics.Collector,
	logger *zap.Logger,
) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewCollector()
	}
	return &GraphService{
		repo:     repo,
		eventBus: eventBus,
		builder:  b,
		mutator:  m,
		scenario: codec.NewScenarioCodec(),
		metrics:  collector,
		logger:   logger,
	}
}

// GetGraph returns the complete graph
func (s *GraphService) GetGraph(ctx context.Context) (*domain.Topology, error) {
	return s.repo.Topology(ctx)
}

// GetNode retrieves a single node by ID
func (s *GraphService) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	return s.repo.FindNode(ctx, id)
}

// GetEdge retrieves a single edge by ID
func (s *GraphService) GetEdge(ctx context.Context, id string) (*domain.Edge, error) {
	return s.repo.FindEdge(ctx, id)
}

// ============================================================================
// Single Entity Mutations
// ============================================================================

// CreateNode builds a node of the given role from a canvas draft and the
// submitted form, then stores it
func (s *GraphService) CreateNode(ctx context.Context, role domain.Role, draft domain.Node, f mutation.NodeFields) (*domain.Node, error) {
	s.genMu.Lock()
	node, err := s.mutator.BuildNewNode(role, draft, f)
	s.genMu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateNode(ctx, node); err != nil {
		return nil, err
	}

	s.metrics.NodeCreated(string(node.Type))
	s.logger.Debug("node created", zap.String("node_id", node.ID), zap.String("role", string(node.Type)))
	s.eventBus.Publish(Event{Type: EventNodeCreated, Payload: node})

	return node, nil
}

// EditNode applies the submitted form to an existing node
func (s *GraphService) EditNode(ctx context.Context, id string, f mutation.NodeFields) (*domain.Node, error) {
	existing, err := s.repo.FindNode(ctx, id)
	if err != nil {
		return nil, err
	}

	node, err := s.mutator.BuildEditedNode(*existing, f)
	if err != nil {
		return nil, err
	}

	if err := s.repo.EditNode(ctx, node); err != nil {
		return nil, err
	}

	s.metrics.EntityEdited("node")
	s.eventBus.Publish(Event{Type: EventNodeUpdated, Payload: node})

	return node, nil
}

// NodeFields loads the edit form for a node
func (s *GraphService) NodeFields(ctx context.Context, id string) (mutation.NodeFields, error) {
	node, err := s.repo.FindNode(ctx, id)
	if err != nil {
		return mutation.NodeFields{}, err
	}
	return mutation.NodeFieldsFrom(*node), nil
}

// CreateEdge builds an edge between the draft's endpoints from the
// submitted form, then stores it
func (s *GraphService) CreateEdge(ctx context.Context, draft domain.Edge, f mutation.EdgeFields) (*domain.Edge, error) {
	if err := s.validateEndpoints(&draft); err != nil {
		return nil, err
	}

	edge, err := s.mutator.BuildNewEdge(draft, f)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateEdge(ctx, edge); err != nil {
		return nil, err
	}

	s.metrics.EdgeCreated()
	s.logger.Debug("edge created", zap.String("edge_id", edge.ID), zap.String("from", edge.From), zap.String("to", edge.To))
	s.eventBus.Publish(Event{Type: EventEdgeCreated, Payload: edge})

	return edge, nil
}

// EditEdge applies the submitted form to an existing edge
func (s *GraphService) EditEdge(ctx context.Context, id string, f mutation.EdgeFields) (*domain.Edge, error) {
	existing, err := s.repo.FindEdge(ctx, id)
	if err != nil {
		return nil, err
	}

	edge, err := s.mutator.BuildEditedEdge(*existing, f)
	if err != nil {
		return nil, err
	}

	if err := s.repo.EditEdge(ctx, edge); err != nil {
		return nil, err
	}

	s.metrics.EntityEdited("edge")
	s.eventBus.Publish(Event{Type: EventEdgeUpdated, Payload: edge})

	return edge, nil
}

// EdgeFields loads the edit form for an edge, with the delay shown
// without its unit
func (s *GraphService) EdgeFields(ctx context.Context, id string) (mutation.EdgeFields, error) {
	edge, err := s.repo.FindEdge(ctx, id)
	if err != nil {
		return mutation.EdgeFields{}, err
	}
	return mutation.EdgeFieldsFrom(*edge), nil
}

// DeleteNode removes a node and its edges
func (s *GraphService) DeleteNode(ctx context.Context, id string) error {
	if err := s.repo.DeleteNode(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeDeleted,
		Payload: map[string]string{"node_id": id},
	})

	return nil
}

// DeleteEdge removes an edge
func (s *GraphService) DeleteEdge(ctx context.Context, id string) error {
	if err := s.repo.DeleteEdge(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventEdgeDeleted,
		Payload: map[string]string{"edge_id": id},
	})

	return nil
}

// ============================================================================
// Bulk Generation
// ============================================================================

// GenerateResult summarizes a bulk generation
type GenerateResult struct {
	AnchorID string           `json:"anchor_id"`
	Topology *domain.Topology `json:"topology"`
}

// GenerateNodes synthesizes count nodes linked to an existing anchor and
// stores them as one batch
func (s *GraphService) GenerateNodes(ctx context.Context, anchorID string, count int, edge builder.EdgeTemplate, node builder.NodeTemplate) (*GenerateResult, error) {
	if _, err := s.repo.FindNode(ctx, anchorID); err != nil {
		return nil, err
	}

	delay, err := mutation.ParseDelay(edge.Delay)
	if err != nil {
		return nil, err
	}
	edge.Delay = delay

	s.genMu.Lock()
	topology, err := s.builder.Build(anchorID, count, edge, node)
	s.genMu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := s.repo.AddBatch(ctx, topology); err != nil {
		return nil, err
	}

	s.metrics.NodesGenerated(string(node.Type), len(topology.Nodes))
	s.logger.Info("nodes generated",
		zap.String("anchor_id", anchorID),
		zap.String("role", string(node.Type)),
		zap.Int("count", len(topology.Nodes)),
	)
	s.eventBus.Publish(Event{
		Type:    EventBatchGenerated,
		Payload: map[string]interface{}{"anchor_id": anchorID, "count": len(topology.Nodes)},
	})

	return &GenerateResult{AnchorID: anchorID, Topology: topology}, nil
}

// ============================================================================
// Import / Export
// ============================================================================

// ImportResult represents the result of an import operation
type ImportResult struct {
	Nodes    int    `json:"nodes"`
	Edges    int    `json:"edges"`
	Strategy string `json:"strategy"`
}

// ImportScenario decodes a scenario string and replaces the graph with it
func (s *GraphService) ImportScenario(ctx context.Context, scenario string) (*ImportResult, error) {
	topology, err := s.scenario.Decode(scenario)
	if err != nil {
		s.metrics.ScenarioImported(err)
		return nil, err
	}

	result, err := s.importTopology(ctx, topology, StrategyReplace)
	s.metrics.ScenarioImported(err)
	return result, err
}

// ExportScenario encodes the current graph as a scenario string
func (s *GraphService) ExportScenario(ctx context.Context) (string, error) {
	topology, err := s.repo.Topology(ctx)
	if err != nil {
		return "", err
	}
	return s.scenario.Encode(topology)
}

// ImportYAML imports a topology from YAML
func (s *GraphService) ImportYAML(ctx context.Context, data []byte, strategy string) (*ImportResult, error) {
	topology, err := codec.NewYAMLCodec().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	return s.importTopology(ctx, topology, strategy)
}

// ImportAnsibleInventory imports hosts from an Ansible inventory
func (s *GraphService) ImportAnsibleInventory(ctx context.Context, data []byte, strategy string) (*ImportResult, error) {
	topology, err := codec.NewAnsibleCodec().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	return s.importTopology(ctx, topology, strategy)
}

// importTopology stores a parsed topology with the specified strategy.
// Replace hydrates the store; merge adds the topology as one batch.
func (s *GraphService) importTopology(ctx context.Context, topology *domain.Topology, strategy string) (*ImportResult, error) {
	if strategy == "" {
		strategy = StrategyReplace
	}

	switch strategy {
	case StrategyReplace:
		if err := s.repo.Hydrate(ctx, topology); err != nil {
			return nil, err
		}
	case StrategyMerge:
		if err := s.repo.AddBatch(ctx, topology); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: invalid strategy %s, must be 'merge' or 'replace'", domain.ErrInvalidRequest, strategy)
	}

	result := &ImportResult{
		Nodes:    len(topology.Nodes),
		Edges:    len(topology.Edges),
		Strategy: strategy,
	}

	s.logger.Info("topology imported",
		zap.String("strategy", strategy),
		zap.Int("nodes", result.Nodes),
		zap.Int("edges", result.Edges),
	)
	s.eventBus.Publish(Event{
		Type:    EventGraphHydrated,
		Payload: result,
	})

	return result, nil
}

// ExportJSON exports the graph as JSON
func (s *GraphService) ExportJSON(ctx context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.export(ctx, codec.NewJSONCodec(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportYAML exports the graph as YAML
func (s *GraphService) ExportYAML(ctx context.Context, w io.Writer) error {
	return s.export(ctx, codec.NewYAMLCodec(), w)
}

// ExportAnsibleInventory exports the graph as Ansible inventory
func (s *GraphService) ExportAnsibleInventory(ctx context.Context, w io.Writer) error {
	return s.export(ctx, codec.NewAnsibleCodec(), w)
}

func (s *GraphService) export(ctx context.Context, exporter codec.Exporter, w io.Writer) error {
	topology, err := s.repo.Topology(ctx)
	if err != nil {
		return err
	}
	return exporter.Export(topology, w)
}

// ClearGraph removes all nodes and edges
func (s *GraphService) ClearGraph(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventGraphCleared,
		Payload: map[string]string{"action": "cleared"},
	})

	return nil
}

// Validation helpers

func (s *GraphService) validateEndpoints(edge *domain.Edge) error {
	if edge.From == "" {
		return fmt.Errorf("%w: edge from required", domain.ErrInvalidRequest)
	}
	if edge.To == "" {
		return fmt.Errorf("%w: edge to required", domain.ErrInvalidRequest)
	}
	if edge.From == edge.To {
		return fmt.Errorf("%w: edge from and to cannot be the same", domain.ErrInvalidRequest)
	}
	return nil
}
