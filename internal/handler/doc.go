// Package handler implements the HTTP API for mccnet.
//
// # API Design
//
// All handlers follow REST conventions:
// - GET for retrieval
// - POST for creation, generation and imports
// - PUT for edits
// - DELETE for removal
//
// Node and edge writes accept the editor form values (name, ip, label,
// bandwidth, delay) rather than finished entities; the service derives
// everything else. Request bodies are validated before processing.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details, field}; field names the
// offending form field when there is one. Status codes follow the error
// kind: 404 not found, 409 duplicate, 422 invalid field or dangling edge,
// 400 malformed request or scenario.
//
// # Server-Sent Events
//
// The /events endpoint streams graph change events so that open editors
// stay in sync.
package handler
