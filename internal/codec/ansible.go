package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"mccnet/internal/device"
	"mccnet/internal/domain"

	"gopkg.in/yaml.v3"
)

// AnsibleCodec handles Ansible inventory import/export
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Hosts    map[string]ansibleHost     `yaml:"hosts,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
}

type ansibleHost struct {
	AnsibleHost string         `yaml:"ansible_host,omitempty"`
	Vars        map[string]any `yaml:",inline"`
}

// groupFor names the inventory group a role is exported under
func groupFor(role domain.Role) string {
	switch role {
	case domain.RoleSwitch:
		return "switches"
	default:
		return string(role) + "s"
	}
}

// Parse imports nodes from an Ansible inventory. Each non-switch host is
// linked to the first switch found, mirroring a star topology.
func (c *AnsibleCodec) Parse(r io.Reader) (*domain.Topology, error) {
	var inv ansibleInventory
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse Ansible inventory: %w", err)
	}

	topology := domain.NewTopology()
	seen := make(map[string]bool)

	groupNames := make([]string, 0, len(inv.All.Children))
	for name := range inv.All.Children {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	for _, groupName := range groupNames {
		c.addHosts(topology, seen, groupName, inv.All.Children[groupName].Hosts)
	}
	c.addHosts(topology, seen, "all", inv.All.Hosts)

	var switchID string
	for _, node := range topology.Nodes {
		if node.Type == domain.RoleSwitch {
			switchID = node.ID
			break
		}
	}
	if switchID != "" {
		for _, node := range topology.Nodes {
			if node.Type == domain.RoleSwitch {
				continue
			}
			edge := domain.NewEdge(node.ID, switchID)
			edge.Delay = domain.FormatDelay("0")
			edge.Title = domain.EdgeTitle(edge.Delay, 0)
			topology.AddEdge(*edge)
		}
	}

	topology.Normalize()
	return topology, nil
}

func (c *AnsibleCodec) addHosts(topology *domain.Topology, seen map[string]bool, groupName string, hosts map[string]ansibleHost) {
	hostIDs := make([]string, 0, len(hosts))
	for id := range hosts {
		hostIDs = append(hostIDs, id)
	}
	sort.Strings(hostIDs)

	for _, hostID := range hostIDs {
		if seen[hostID] {
			continue
		}
		seen[hostID] = true
		topology.AddNode(c.hostToNode(hostID, groupName, hosts[hostID]))
	}
}

// hostToNode converts an Ansible host to a domain.Node
func (c *AnsibleCodec) hostToNode(hostID, groupName string, host ansibleHost) domain.Node {
	role := c.inferRole(groupName, host.Vars)
	label := hostID
	if v, ok := host.Vars["label"].(string); ok && v != "" {
		label = v
	}

	node := domain.NewNode(hostID, role, label)
	node.Image = device.KindFor(role)
	if v, ok := host.Vars["device_type"].(string); ok {
		node.Image = v
	}
	if role.HasAddress() {
		node.SetAddress(host.AnsibleHost)
		if v, ok := host.Vars["image"].(string); ok {
			node.DImage = v
		}
	}
	node.Title = domain.NodeTitle(node)
	return *node
}

// inferRole infers the node role, checking device_type first, then the
// role var, then the group name. Unknown hosts are treated as servers.
func (c *AnsibleCodec) inferRole(groupName string, vars map[string]any) domain.Role {
	if kind, ok := vars["device_type"].(string); ok {
		if role, err := device.ParseKind(kind); err == nil {
			return role
		}
	}

	if v, ok := vars["role"].(string); ok {
		if role, err := domain.ParseRole(v); err == nil {
			return role
		}
	}

	group := strings.ToLower(groupName)
	switch {
	case strings.Contains(group, "switch"):
		return domain.RoleSwitch
	case strings.Contains(group, "client"), strings.Contains(group, "phone"):
		return domain.RoleClient
	}

	return domain.RoleServer
}

// Export exports a topology to Ansible inventory format, grouped by role.
// Switches carry no address and are listed without ansible_host.
func (c *AnsibleCodec) Export(topology *domain.Topology, w io.Writer) error {
	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
		},
	}

	for _, node := range normalized(topology).Nodes {
		groupName := groupFor(node.Type)
		group, ok := inv.All.Children[groupName]
		if !ok {
			group = ansibleGroupDef{Hosts: make(map[string]ansibleHost)}
			inv.All.Children[groupName] = group
		}

		host := ansibleHost{
			AnsibleHost: node.Address(),
			Vars: map[string]any{
				"label": node.Label,
				"role":  string(node.Type),
			},
		}
		if node.Image != "" {
			host.Vars["device_type"] = node.Image
		}
		if node.DImage != "" {
			host.Vars["image"] = node.DImage
		}

		group.Hosts[node.ID] = host
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}
