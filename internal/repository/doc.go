// Package repository defines the graph store contract for mccnet.
//
// The store is the single mutable resource of the application. Everything
// the builder, mutation and codec packages produce is a complete value that
// is handed to the store in one call; the store either applies it entirely
// or not at all.
//
// # GraphStore Interface
//
// GraphStore covers single-entity writes (CreateNode, CreateEdge, EditNode,
// EditEdge), batch insertion of generated topologies (AddBatch), wholesale
// replacement from an imported scenario (Hydrate), lookups, and removal.
//
// # Preconditions
//
// Every edge endpoint must name a node that exists in the store, or in the
// same batch, at write time. Violations are reported as
// domain.ErrDanglingEdgeReference and nothing is written. Edge IDs left
// empty are derived from the endpoints, so a second edge between the same
// pair of nodes is rejected with domain.ErrDuplicateEdge.
//
// # SQLite Implementation
//
// The sqlite subpackage implements GraphStore on the pure-Go modernc.org
// driver with foreign keys enforced, so deleting a node removes its edges.
package repository
