package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mccnet/internal/domain"
	"mccnet/internal/repository"

	_ "modernc.org/sqlite"
)

var _ repository.GraphStore = (*Repository)(nil)

// Repository implements repository.GraphStore using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository. Use ":memory:" for a throwaway store.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	repo := &Repository{db: db}
	if err := repo.configure(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) configure(dbPath string) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := r.db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		image TEXT,
		dimage TEXT,
		ip TEXT,
		title TEXT NOT NULL DEFAULT '',
		shape TEXT NOT NULL DEFAULT 'image',
		size INTEGER NOT NULL DEFAULT 15,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS edges (
		id TEXT PRIMARY KEY,
		from_id TEXT NOT NULL,
		to_id TEXT NOT NULL,
		label TEXT,
		bandwidth REAL NOT NULL DEFAULT 0,
		delay TEXT NOT NULL DEFAULT '',
		title TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (from_id) REFERENCES nodes(id) ON DELETE CASCADE,
		FOREIGN KEY (to_id) REFERENCES nodes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_id);
	CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn inside a transaction, committing only if fn succeeds
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ============================================================================
// Node Operations
// ============================================================================

const nodeColumns = `id, type, label, image, dimage, ip, title, shape, size`

// CreateNode inserts a new node
func (r *Repository) CreateNode(ctx context.Context, node *domain.Node) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertNode(ctx, tx, node)
	})
}

func insertNode(ctx context.Context, q querier, node *domain.Node) error {
	if node.ID == "" {
		return fmt.Errorf("%w: node id is empty", domain.ErrInvalidRequest)
	}
	if !node.Type.Valid() {
		return fmt.Errorf("node %s: %w: %q", node.ID, domain.ErrUnknownRole, node.Type)
	}

	exists, err := rowExists(ctx, q, `SELECT 1 FROM nodes WHERE id = ?`, node.ID)
	if err != nil {
		return fmt.Errorf("failed to check node %s: %w", node.ID, err)
	}
	if exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateNode, node.ID)
	}

	stored := node.Clone()
	stored.EnforceAddress()

	_, err = q.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, stored.ID, string(stored.Type), stored.Label, stringToNull(stored.Image), stringToNull(stored.DImage),
		addressToNull(stored.IP), stored.Title, stored.Shape, stored.Size)
	if err != nil {
		return fmt.Errorf("failed to insert node %s: %w", node.ID, err)
	}
	return nil
}

// EditNode replaces the stored fields of an existing node
func (r *Repository) EditNode(ctx context.Context, node *domain.Node) error {
	stored := node.Clone()
	stored.EnforceAddress()

	result, err := r.db.ExecContext(ctx, `
		UPDATE nodes SET
			type = ?, label = ?, image = ?, dimage = ?, ip = ?,
			title = ?, shape = ?, size = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(stored.Type), stored.Label, stringToNull(stored.Image), stringToNull(stored.DImage),
		addressToNull(stored.IP), stored.Title, stored.Shape, stored.Size, stored.ID)
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}
	return requireAffected(result, "node", node.ID)
}

// FindNode retrieves a single node by ID
func (r *Repository) FindNode(ctx context.Context, id string) (*domain.Node, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+nodeColumns+` FROM nodes WHERE id = ?`, id)

	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: node %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query node: %w", err)
	}
	return node, nil
}

// DeleteNode removes a node; its edges are removed by CASCADE
func (r *Repository) DeleteNode(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM nodes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	return requireAffected(result, "node", id)
}

// ============================================================================
// Edge Operations
// ============================================================================

const edgeColumns = `id, from_id, to_id, label, bandwidth, delay, title`

// CreateEdge inserts a new edge. An empty ID is derived from the endpoints
// and written back to edge.
func (r *Repository) CreateEdge(ctx context.Context, edge *domain.Edge) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertEdge(ctx, tx, edge)
	})
}

func insertEdge(ctx context.Context, q querier, edge *domain.Edge) error {
	for _, endpoint := range []string{edge.From, edge.To} {
		exists, err := rowExists(ctx, q, `SELECT 1 FROM nodes WHERE id = ?`, endpoint)
		if err != nil {
			return fmt.Errorf("failed to check node %s: %w", endpoint, err)
		}
		if !exists {
			return fmt.Errorf("%w: %q", domain.ErrDanglingEdgeReference, endpoint)
		}
	}

	if edge.ID == "" {
		edge.ID = edge.GenerateID()
	}

	exists, err := rowExists(ctx, q, `SELECT 1 FROM edges WHERE id = ?`, edge.ID)
	if err != nil {
		return fmt.Errorf("failed to check edge %s: %w", edge.ID, err)
	}
	if exists {
		return fmt.Errorf("%w: %s (%s-%s)", domain.ErrDuplicateEdge, edge.ID, edge.From, edge.To)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO edges (`+edgeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, edge.ID, edge.From, edge.To, stringToNull(edge.Label), edge.Bandwidth, edge.Delay, stringToNull(edge.Title))
	if err != nil {
		return fmt.Errorf("failed to insert edge %s: %w", edge.ID, err)
	}
	return nil
}

// EditEdge replaces the attributes of an existing edge. Endpoints are
// never changed by an edit.
func (r *Repository) EditEdge(ctx context.Context, edge *domain.Edge) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE edges SET
			label = ?, bandwidth = ?, delay = ?, title = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, stringToNull(edge.Label), edge.Bandwidth, edge.Delay, stringToNull(edge.Title), edge.ID)
	if err != nil {
		return fmt.Errorf("failed to update edge: %w", err)
	}
	return requireAffected(result, "edge", edge.ID)
}

// FindEdge retrieves a single edge by ID
func (r *Repository) FindEdge(ctx context.Context, id string) (*domain.Edge, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+edgeColumns+` FROM edges WHERE id = ?`, id)

	edge, err := scanEdge(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: edge %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query edge: %w", err)
	}
	return edge, nil
}

// DeleteEdge removes an edge
func (r *Repository) DeleteEdge(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM edges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}
	return requireAffected(result, "edge", id)
}

// ============================================================================
// Bulk Operations
// ============================================================================

// AddBatch inserts every node and edge of topology in one transaction.
// Edges may reference nodes already stored or nodes from the same batch.
// Assigned edge IDs are written back into topology.
func (r *Repository) AddBatch(ctx context.Context, topology *domain.Topology) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return insertTopology(ctx, tx, topology)
	})
}

// Hydrate replaces the whole graph with topology. The topology must be
// self-contained; it is validated before anything is removed.
func (r *Repository) Hydrate(ctx context.Context, topology *domain.Topology) error {
	if err := topology.Validate(); err != nil {
		return err
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := clearAll(ctx, tx); err != nil {
			return err
		}
		if err := insertTopology(ctx, tx, topology); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO metadata (key, value, updated_at) VALUES ('last_hydrate', ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		`, time.Now().UTC().Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to store hydrate timestamp: %w", err)
		}
		return nil
	})
}

// LastHydrated returns when the graph was last replaced by Hydrate. The
// boolean is false when it never has been.
func (r *Repository) LastHydrated(ctx context.Context) (time.Time, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'last_hydrate'`).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read hydrate timestamp: %w", err)
	}

	stamp, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to parse hydrate timestamp: %w", err)
	}
	return stamp, true, nil
}

func insertTopology(ctx context.Context, q querier, topology *domain.Topology) error {
	for i := range topology.Nodes {
		if err := insertNode(ctx, q, &topology.Nodes[i]); err != nil {
			return err
		}
	}
	for i := range topology.Edges {
		if err := insertEdge(ctx, q, &topology.Edges[i]); err != nil {
			return err
		}
	}
	return nil
}

// Topology loads the complete graph in insertion order
func (r *Repository) Topology(ctx context.Context) (*domain.Topology, error) {
	topology := domain.NewTopology()

	rows, err := r.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		topology.AddNode(*node)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	rows.Close()

	edgeRows, err := r.db.QueryContext(ctx, `SELECT `+edgeColumns+` FROM edges ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		edge, err := scanEdge(edgeRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		topology.AddEdge(*edge)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating edges: %w", err)
	}

	return topology, nil
}

// Clear removes every node and edge
func (r *Repository) Clear(ctx context.Context) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		return clearAll(ctx, tx)
	})
}

func clearAll(ctx context.Context, q querier) error {
	// Order matters due to foreign keys
	if _, err := q.ExecContext(ctx, `DELETE FROM edges`); err != nil {
		return fmt.Errorf("failed to clear edges: %w", err)
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}
	return nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
