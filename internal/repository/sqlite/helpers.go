package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"mccnet/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// addressToNull keeps the difference between a missing address (NULL) and
// an empty one ('')
func addressToNull(ip *string) sql.NullString {
	if ip == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *ip, Valid: true}
}

// nullToAddress is the inverse of addressToNull
func nullToAddress(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	addr := ns.String
	return &addr
}

// ============================================================================
// Row Scanning Helpers
// ============================================================================

// rowScanner is satisfied by both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// scanNode reads the columns listed in nodeColumns
func scanNode(row rowScanner) (*domain.Node, error) {
	var (
		node          domain.Node
		role          string
		image, dimage sql.NullString
		ip            sql.NullString
	)

	if err := row.Scan(&node.ID, &role, &node.Label, &image, &dimage, &ip, &node.Title, &node.Shape, &node.Size); err != nil {
		return nil, err
	}

	node.Type = domain.Role(role)
	node.Image = nullToString(image)
	node.DImage = nullToString(dimage)
	node.IP = nullToAddress(ip)
	return &node, nil
}

// scanEdge reads the columns listed in edgeColumns
func scanEdge(row rowScanner) (*domain.Edge, error) {
	var (
		edge         domain.Edge
		label, title sql.NullString
	)

	if err := row.Scan(&edge.ID, &edge.From, &edge.To, &label, &edge.Bandwidth, &edge.Delay, &title); err != nil {
		return nil, err
	}

	edge.Label = nullToString(label)
	edge.Title = nullToString(title)
	return &edge, nil
}

// ============================================================================
// Query Helpers
// ============================================================================

// rowExists reports whether query returns at least one row
func rowExists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// requireAffected maps an update or delete that touched nothing to ErrNotFound
func requireAffected(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
	}
	return nil
}
