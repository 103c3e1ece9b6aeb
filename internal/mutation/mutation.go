// Package mutation derives complete nodes and edges from editor form values.
//
// Every Build function is a pure transform: it takes the current entity (or
// a draft from the canvas) plus the submitted form and returns a new value
// ready for a single store write. Nothing here touches the store.
package mutation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"mccnet/internal/device"
	"mccnet/internal/domain"
	"mccnet/internal/generator"
	"mccnet/internal/naming"
)

// NodeFields is the node form as submitted. A fresh value is built for every
// submission; nothing carries over between operations.
type NodeFields struct {
	Name    string `json:"name"`
	Address string `json:"ip"`
	// Image optionally overrides the device icon kind
	Image string `json:"image,omitempty"`
}

// EdgeFields is the edge form as submitted. Bandwidth and Delay hold the
// raw text typed by the user.
type EdgeFields struct {
	Label     string `json:"label"`
	Bandwidth string `json:"bandwidth"`
	Delay     string `json:"delay"`
}

// Mutator builds nodes and edges
type Mutator struct {
	ids    generator.IDSource
	images *device.ImageResolver
}

// New creates a Mutator. ids supplies identifiers for drafts that arrive
// without one.
func New(ids generator.IDSource, images *device.ImageResolver) *Mutator {
	return &Mutator{
		ids:    ids,
		images: images,
	}
}

// BuildNewNode derives a node of the given role from a canvas draft and the
// submitted form. Switches are labelled with their own id and carry no
// address; other roles take the typed name and address plus a deployment
// image.
func (m *Mutator) BuildNewNode(role domain.Role, draft domain.Node, f NodeFields) (*domain.Node, error) {
	if !role.Valid() {
		return nil, &domain.FieldError{Field: "type", Value: string(role), Err: domain.ErrUnknownRole}
	}

	node := draft.Clone()
	node.ID = m.nodeID(draft.ID)
	node.Type = role
	node.Shape = domain.NodeShape
	node.Size = domain.NodeSize
	node.Image = firstNonEmpty(f.Image, draft.Image, device.KindFor(role))

	if role.HasAddress() {
		node.Label = naming.StripSpaces(f.Name)
		node.SetAddress(strings.TrimSpace(f.Address))
		node.DImage = m.images.ImageFor(role)
	} else {
		node.Label = node.ID
		node.ClearAddress()
		node.DImage = ""
	}

	node.Title = domain.NodeTitle(&node)
	return &node, nil
}

// BuildEditedNode applies the form to an existing node. The role never
// changes; the label is always overwritten and the address invariant is
// re-applied.
func (m *Mutator) BuildEditedNode(existing domain.Node, f NodeFields) (*domain.Node, error) {
	if !existing.Type.Valid() {
		return nil, &domain.FieldError{Field: "type", Value: string(existing.Type), Err: domain.ErrUnknownRole}
	}

	node := existing.Clone()
	node.Label = naming.StripSpaces(f.Name)
	if f.Image != "" {
		node.Image = f.Image
	}

	if node.Type.HasAddress() {
		node.SetAddress(strings.TrimSpace(f.Address))
		if node.DImage == "" {
			node.DImage = m.images.ImageFor(node.Type)
		}
	} else {
		node.ClearAddress()
		if node.Label == "" {
			node.Label = node.ID
		}
	}

	node.Title = domain.NodeTitle(&node)
	return &node, nil
}

// BuildNewEdge derives an edge from a canvas draft holding its endpoints
func (m *Mutator) BuildNewEdge(draft domain.Edge, f EdgeFields) (*domain.Edge, error) {
	return applyEdgeFields(draft, f)
}

// BuildEditedEdge applies the form to an existing edge. Identical inputs
// always produce identical output.
func (m *Mutator) BuildEditedEdge(existing domain.Edge, f EdgeFields) (*domain.Edge, error) {
	return applyEdgeFields(existing, f)
}

func applyEdgeFields(edge domain.Edge, f EdgeFields) (*domain.Edge, error) {
	bandwidth, err := ParseBandwidth(f.Bandwidth)
	if err != nil {
		return nil, err
	}
	delay, err := ParseDelay(f.Delay)
	if err != nil {
		return nil, err
	}

	edge.Label = naming.StripSpaces(f.Label)
	edge.Bandwidth = bandwidth
	edge.Delay = domain.FormatDelay(delay)
	edge.Title = domain.EdgeTitle(delay, bandwidth)
	return &edge, nil
}

// ParseBandwidth coerces the bandwidth field to a non-negative number
func ParseBandwidth(raw string) (float64, error) {
	value, err := parseNumber(raw)
	if err != nil {
		return 0, &domain.FieldError{Field: "bandwidth", Value: raw, Err: fmt.Errorf("%w: %v", domain.ErrInvalidNumericField, err)}
	}
	return value, nil
}

// ParseDelay validates the delay field and returns it without its unit
func ParseDelay(raw string) (string, error) {
	delay := domain.TrimDelay(raw)
	if _, err := parseNumber(delay); err != nil {
		return "", &domain.FieldError{Field: "delay", Value: raw, Err: fmt.Errorf("%w: %v", domain.ErrInvalidNumericField, err)}
	}
	return delay, nil
}

func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	if value < 0 {
		return 0, fmt.Errorf("negative value")
	}
	return value, nil
}

// NodeFieldsFrom loads the edit form for an existing node
func NodeFieldsFrom(node domain.Node) NodeFields {
	return NodeFields{
		Name:    node.Label,
		Address: node.Address(),
		Image:   node.Image,
	}
}

// EdgeFieldsFrom loads the edit form for an existing edge. The delay is shown
// without its unit; it is re-suffixed on save.
func EdgeFieldsFrom(edge domain.Edge) EdgeFields {
	return EdgeFields{
		Label:     edge.Label,
		Bandwidth: domain.FormatBandwidth(edge.Bandwidth),
		Delay:     domain.TrimDelay(edge.Delay),
	}
}

// nodeID keeps the first hyphen segment of a canvas-assigned id, or draws a
// new one when the draft has none.
func (m *Mutator) nodeID(draftID string) string {
	if i := strings.IndexByte(draftID, '-'); i > 0 {
		return draftID[:i]
	}
	if draftID != "" {
		return draftID
	}
	return m.ids.NextID()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
