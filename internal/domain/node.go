package domain

import "fmt"

// Presentation constants shared by every node
const (
	NodeShape = "image"
	NodeSize  = 15
)

// Node represents a device in the topology
type Node struct {
	ID    string `json:"id" yaml:"id"`
	Type  Role   `json:"type" yaml:"type"`
	Label string `json:"label" yaml:"label"`
	// Image is the device icon kind (phone, server, switch)
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
	// DImage is the deployment image the node runs
	DImage string `json:"dimage,omitempty" yaml:"dimage,omitempty"`
	// IP is nil for switches and set, possibly empty, for every other role
	IP    *string `json:"ip,omitempty" yaml:"ip,omitempty"`
	Title string  `json:"title" yaml:"title"`
	Shape string  `json:"shape" yaml:"shape"`
	Size  int     `json:"size" yaml:"size"`
}

// NewNode creates a node with the presentation defaults applied
func NewNode(id string, role Role, label string) *Node {
	node := &Node{
		ID:    id,
		Type:  role,
		Label: label,
		Shape: NodeShape,
		Size:  NodeSize,
	}
	if role.HasAddress() {
		node.SetAddress("")
	}
	return node
}

// Address returns the node address, or "" when none is set
func (n *Node) Address() string {
	if n.IP == nil {
		return ""
	}
	return *n.IP
}

// HasAddress reports whether the address field is present
func (n *Node) HasAddress() bool {
	return n.IP != nil
}

// SetAddress stores a copy of addr as the node address
func (n *Node) SetAddress(addr string) {
	n.IP = &addr
}

// ClearAddress removes the address field
func (n *Node) ClearAddress() {
	n.IP = nil
}

// EnforceAddress applies the role/address invariant: switches carry no
// address, every other role carries one (possibly empty).
func (n *Node) EnforceAddress() {
	if !n.Type.HasAddress() {
		n.ClearAddress()
		return
	}
	if n.IP == nil {
		n.SetAddress("")
	}
}

// Clone returns a deep copy of the node
func (n Node) Clone() Node {
	if n.IP != nil {
		n.SetAddress(*n.IP)
	}
	return n
}

// GeneratedNodeTitle is the tooltip for a node synthesized by bulk generation
func GeneratedNodeTitle(name, addr, dimage string) string {
	return fmt.Sprintf("Name: %s<br>Ip: %s<br>Image: %s", name, addr, dimage)
}

// NodeTitle derives the tooltip for a node created or edited by hand
func NodeTitle(n *Node) string {
	title := "Name: " + n.Label
	if n.Type.HasAddress() {
		title += "<br>IP: " + n.Address()
		title += "<br>Image: " + n.DImage
	}
	return title
}
