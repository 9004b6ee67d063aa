// Package hcloud provides a wrapper around the Hetzner Cloud API.
package hcloud

import (
	"context"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ResizeOpts holds the requested compute size. A nil field keeps the
// server's current value.
type ResizeOpts struct {
	Cores    *int
	MemoryGB *int
}

// ServerManager defines the interface for reading and adjusting live servers.
type ServerManager interface {
	// GetServerByName returns the full server object by name, or nil if not found.
	GetServerByName(ctx context.Context, name string) (*hcloud.Server, error)
	// ResizeServer moves the server to a server type matching opts.
	// Returns false when the server already has the requested size.
	ResizeServer(ctx context.Context, server *hcloud.Server, opts ResizeOpts) (bool, error)
	// SetServerLabel sets one label on the server.
	// Returns false when the label already had that value.
	SetServerLabel(ctx context.Context, server *hcloud.Server, key, value string) (bool, error)
}

// VolumeManager defines the interface for managing additional disks.
type VolumeManager interface {
	// ServerVolumes returns the volumes added by fittings that are attached to the server.
	ServerVolumes(ctx context.Context, server *hcloud.Server) ([]*hcloud.Volume, error)
	// AddVolume creates a volume of sizeGB and attaches it to the server.
	AddVolume(ctx context.Context, server *hcloud.Server, sizeGB int, speed string) (*hcloud.Volume, error)
}

// NetworkManager defines the interface for network membership.
type NetworkManager interface {
	// AttachServerToNetwork attaches the server to the named network.
	// Returns false when the server is already a member.
	AttachServerToNetwork(ctx context.Context, server *hcloud.Server, networkName string) (bool, error)
}

// NodeAPI combines everything the polisher needs from the control plane.
type NodeAPI interface {
	ServerManager
	VolumeManager
	NetworkManager
}
