package repository

import (
	"context"

	"mccnet/internal/domain"
)

// GraphStore defines the interface for topology persistence
type GraphStore interface {
	// Single entity writes
	CreateNode(ctx context.Context, node *domain.Node) error
	CreateEdge(ctx context.Context, edge *domain.Edge) error
	EditNode(ctx context.Context, node *domain.Node) error
	EditEdge(ctx context.Context, edge *domain.Edge) error

	// Bulk operations
	AddBatch(ctx context.Context, topology *domain.Topology) error
	Hydrate(ctx context.Context, topology *domain.Topology) error

	// Read operations
	FindNode(ctx context.Context, id string) (*domain.Node, error)
	FindEdge(ctx context.Context, id string) (*domain.Edge, error)
	Topology(ctx context.Context) (*domain.Topology, error)

	// Removal
	DeleteNode(ctx context.Context, id string) error
	DeleteEdge(ctx context.Context, id string) error
	Clear(ctx context.Context) error

	// Close releases resources
	Close() error
}
