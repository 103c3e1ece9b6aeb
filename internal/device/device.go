// Package device maps device kinds picked in the editor to node roles and
// resolves the deployment image each role runs.
package device

import (
	"fmt"
	"strings"

	"mccnet/internal/domain"
)

// Device kinds offered by the editor
const (
	KindPhone  = "phone"
	KindServer = "server"
	KindSwitch = "switch"
)

// Default deployment images
const (
	DefaultClientImage = "renanalves/android-22:vnc"
	DefaultServerImage = "renanalves/server-testbed"
)

// Classify maps a device kind to a role. Anything that is not a phone or a
// server is treated as a switch.
func Classify(kind string) domain.Role {
	switch normalizeKind(kind) {
	case KindPhone:
		return domain.RoleClient
	case KindServer:
		return domain.RoleServer
	default:
		return domain.RoleSwitch
	}
}

// ParseKind is the strict form of Classify: unrecognized kinds are an error
// instead of a switch.
func ParseKind(kind string) (domain.Role, error) {
	switch normalizeKind(kind) {
	case KindPhone:
		return domain.RoleClient, nil
	case KindServer:
		return domain.RoleServer, nil
	case KindSwitch:
		return domain.RoleSwitch, nil
	}
	return "", fmt.Errorf("%w: device kind %q", domain.ErrUnknownRole, kind)
}

// KindFor returns the icon kind for a role
func KindFor(role domain.Role) string {
	switch role {
	case domain.RoleClient:
		return KindPhone
	case domain.RoleServer:
		return KindServer
	default:
		return KindSwitch
	}
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

// ImageResolver maps roles to deployment images
type ImageResolver struct {
	Client string
	Server string
}

// DefaultImages returns the resolver used when no images are configured
func DefaultImages() *ImageResolver {
	return &ImageResolver{
		Client: DefaultClientImage,
		Server: DefaultServerImage,
	}
}

// ImageFor returns the image for a role. Clients run the mobile emulator;
// servers and switches share the server testbed image.
func (r *ImageResolver) ImageFor(role domain.Role) string {
	if role == domain.RoleClient {
		return r.client()
	}
	return r.server()
}

func (r *ImageResolver) client() string {
	if r == nil || r.Client == "" {
		return DefaultClientImage
	}
	return r.Client
}

func (r *ImageResolver) server() string {
	if r == nil || r.Server == "" {
		return DefaultServerImage
	}
	return r.Server
}
