// Package builder synthesizes batches of leaf nodes attached to an existing
// anchor node.
package builder

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"mccnet/internal/device"
	"mccnet/internal/domain"
	"mccnet/internal/generator"
	"mccnet/internal/naming"
)

// DefaultMaxCount bounds a single batch when no limit is configured
const DefaultMaxCount = 500

// maxIDAttempts bounds retries when the id source repeats itself
const maxIDAttempts = 8

var validate = validator.New()

// EdgeTemplate holds the fields copied onto every generated edge
type EdgeTemplate struct {
	Bandwidth float64 `json:"bandwidth" validate:"gte=0"`
	Delay     string  `json:"delay"`
}

// NodeTemplate holds the fields copied onto every generated node
type NodeTemplate struct {
	Type  domain.Role `json:"type" validate:"required,oneof=client server switch"`
	Image string      `json:"image,omitempty"`
	Shape string      `json:"shape,omitempty"`
	Size  int         `json:"size,omitempty" validate:"gte=0"`
}

type request struct {
	AnchorID string `validate:"required"`
	Count    int    `validate:"gte=0"`
	Edge     EdgeTemplate
	Node     NodeTemplate
}

// Builder generates topologies. It holds no per-batch state.
type Builder struct {
	gen      generator.Generator
	images   *device.ImageResolver
	maxCount int
}

// New creates a builder. A maxCount of zero selects DefaultMaxCount.
func New(gen generator.Generator, images *device.ImageResolver, maxCount int) *Builder {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	return &Builder{
		gen:      gen,
		images:   images,
		maxCount: maxCount,
	}
}

// Build synthesizes count new nodes, each connected by one edge to anchorID.
// The anchor itself is not checked against any store.
func (b *Builder) Build(anchorID string, count int, edge EdgeTemplate, node NodeTemplate) (*domain.Topology, error) {
	req := request{AnchorID: anchorID, Count: count, Edge: edge, Node: node}
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if count > b.maxCount {
		return nil, fmt.Errorf("%w: Count: must not exceed %d, got %d", domain.ErrInvalidRequest, b.maxCount, count)
	}

	topo := &domain.Topology{
		Nodes: make([]domain.Node, 0, count),
		Edges: make([]domain.Edge, 0, count),
	}
	used := map[string]struct{}{anchorID: {}}

	for i := 0; i < count; i++ {
		id, err := b.nextID(used)
		if err != nil {
			return nil, err
		}
		n := b.buildNode(id, node)
		topo.AddNode(n)
		topo.AddEdge(buildEdge(n.ID, anchorID, edge))
	}

	return topo, nil
}

func (b *Builder) buildNode(id string, tmpl NodeTemplate) domain.Node {
	role := tmpl.Type
	name := naming.NameFor(b.gen, role)
	dimage := b.images.ImageFor(role)
	addr := b.gen.NextAddress()

	n := domain.Node{
		ID:     id,
		Type:   role,
		Label:  name,
		Image:  tmpl.Image,
		DImage: dimage,
		Title:  domain.GeneratedNodeTitle(name, addr, dimage),
		Shape:  tmpl.Shape,
		Size:   tmpl.Size,
	}
	if n.Image == "" {
		n.Image = device.KindFor(role)
	}
	if n.Shape == "" {
		n.Shape = domain.NodeShape
	}
	if n.Size == 0 {
		n.Size = domain.NodeSize
	}
	n.SetAddress(addr)
	n.EnforceAddress()
	return n
}

func buildEdge(from, to string, tmpl EdgeTemplate) domain.Edge {
	return domain.Edge{
		From:      from,
		To:        to,
		Bandwidth: tmpl.Bandwidth,
		Delay:     domain.FormatDelay(tmpl.Delay),
		Title:     domain.EdgeTitle(tmpl.Delay, tmpl.Bandwidth),
	}
}

func (b *Builder) nextID(used map[string]struct{}) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := b.gen.NextID()
		if _, taken := used[id]; !taken && id != "" {
			used[id] = struct{}{}
			return id, nil
		}
	}
	return "", fmt.Errorf("no unique node id after %d attempts", maxIDAttempts)
}

// formatValidationError converts validator errors to a field-level message
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	e := validationErrs[0]
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Errorf("%w: %s: field is required", domain.ErrInvalidRequest, field)
	case "gte":
		return fmt.Errorf("%w: %s: must be at least %s", domain.ErrInvalidRequest, field, e.Param())
	case "oneof":
		return fmt.Errorf("%w: %s: must be one of %s, got %q", domain.ErrInvalidRequest, field, e.Param(), e.Value())
	default:
		return fmt.Errorf("%w: %s: validation failed (%s)", domain.ErrInvalidRequest, field, e.Tag())
	}
}
