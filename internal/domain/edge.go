package domain

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"strings"
)

// DelayUnit is appended to every persisted delay value
const DelayUnit = "ms"

// Edge represents a link between two nodes. The model is direction-agnostic.
type Edge struct {
	ID        string  `json:"id,omitempty" yaml:"id,omitempty"`
	From      string  `json:"from" yaml:"from"`
	To        string  `json:"to" yaml:"to"`
	Label     string  `json:"label,omitempty" yaml:"label,omitempty"`
	Bandwidth float64 `json:"bandwidth" yaml:"bandwidth"`
	Delay     string  `json:"delay" yaml:"delay"`
	Title     string  `json:"title,omitempty" yaml:"title,omitempty"`
}

// NewEdge creates an edge between two nodes with its ID derived from the endpoints
func NewEdge(from, to string) *Edge {
	edge := &Edge{
		From: from,
		To:   to,
	}
	edge.ID = edge.GenerateID()
	return edge
}

// GenerateID creates a deterministic ID for the edge based on endpoints
func (e *Edge) GenerateID() string {
	// Normalize endpoints for consistent ID
	from, to := e.From, e.To
	if from > to {
		from, to = to, from
	}

	hash := sha256.Sum256([]byte(from + "-" + to))
	return fmt.Sprintf("%x", hash[:8])
}

// TrimDelay returns the bare delay number as typed, without surrounding
// whitespace or a trailing unit.
func TrimDelay(delay string) string {
	delay = strings.TrimSpace(delay)
	delay = strings.TrimSuffix(delay, DelayUnit)
	return strings.TrimSpace(delay)
}

// FormatDelay returns the persisted form of a delay, which always carries
// exactly one unit suffix.
func FormatDelay(delay string) string {
	return TrimDelay(delay) + DelayUnit
}

// FormatBandwidth renders a bandwidth the way it was typed (100, not 1e+02)
func FormatBandwidth(bandwidth float64) string {
	return strconv.FormatFloat(bandwidth, 'f', -1, 64)
}

// EdgeTitle derives the tooltip for an edge
func EdgeTitle(delay string, bandwidth float64) string {
	return fmt.Sprintf("<p>Delay: %s<br>Bandwidth: %s</p>", FormatDelay(delay), FormatBandwidth(bandwidth))
}
