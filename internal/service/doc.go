// Package service implements business logic for the mccnet application.
//
// GraphService sits between the HTTP handlers, the CLI and the watcher on
// one side and the graph store on the other. It turns form values into
// complete nodes and edges through the mutation package, expands bulk
// generation requests through the builder package, and moves whole
// topologies in and out through the codec package. Each of these produces a
// finished value first; the store is called once per operation.
//
// # Event System
//
// Every successful write publishes an Event on the EventBus. The server
// forwards them to connected browsers over Server-Sent Events.
package service
