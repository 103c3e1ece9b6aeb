package domain

import (
	"fmt"
	"strings"
)

// Role is the functional kind of a device node
type Role string

const (
	RoleClient Role = "client"
	RoleServer Role = "server"
	RoleSwitch Role = "switch"
)

// Roles lists every known role in presentation order
var Roles = []Role{RoleClient, RoleServer, RoleSwitch}

// ParseRole converts a role token into a Role. Unknown tokens are rejected.
func ParseRole(token string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(token))) {
	case RoleClient:
		return RoleClient, nil
	case RoleServer:
		return RoleServer, nil
	case RoleSwitch:
		return RoleSwitch, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, token)
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleServer, RoleSwitch:
		return true
	}
	return false
}

// HasAddress reports whether nodes of this role carry a network address.
// Switches never do.
func (r Role) HasAddress() bool {
	return r != RoleSwitch
}

func (r Role) String() string {
	return string(r)
}
