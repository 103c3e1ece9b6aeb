// Package domain defines the core types of the mccnet scenario composer.
//
// # Core Types
//
// Node is a device in the topology. Its Role (client, server or switch)
// decides whether it carries a network address: switches never do, every
// other role always does, even if the address is empty.
//
// Edge is a link between two nodes carrying a bandwidth (a number) and a
// delay (a string that always ends in "ms" once persisted).
//
// Topology is the {nodes, edges} document produced by bulk generation and by
// scenario import, and consumed by the graph store.
//
// # Presentation Metadata
//
// Every node and edge carries a Title tooltip derived from its other fields.
// Titles are recomputed on every create and edit and are never edited by hand.
//
// # Errors
//
// The sentinel errors in this package form the error taxonomy shared by the
// builder, mutation, codec and repository packages. Callers match them with
// errors.Is.
package domain
