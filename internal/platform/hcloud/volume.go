package hcloud

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/fittings/internal/util/labels"
	"github.com/imamik/fittings/internal/util/naming"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// ServerVolumes returns the volumes added for the server by fittings that
// are still attached to it.
func (c *RealClient) ServerVolumes(ctx context.Context, server *hcloud.Server) ([]*hcloud.Volume, error) {
	volumes, err := c.nodeVolumes(ctx, server.Name)
	if err != nil {
		return nil, err
	}

	attached := make([]*hcloud.Volume, 0, len(volumes))
	for _, v := range volumes {
		if v.Server != nil && v.Server.ID == server.ID {
			attached = append(attached, v)
		}
	}
	return attached, nil
}

// AddVolume creates a volume of sizeGB, attached to the server and labelled
// with the node name and declared speed. The volume is not formatted or
// mounted.
//
// A volume of the same size and speed that is labelled for the node but not
// attached is left over from an attempt whose attach failed; it is attached
// instead of creating another one.
//
// The call is not retried here: a locked server surfaces as an error that
// IsResourceBusy recognises, and the caller owns the retry policy.
func (c *RealClient) AddVolume(ctx context.Context, server *hcloud.Server, sizeGB int, speed string) (*hcloud.Volume, error) {
	existing, err := c.nodeVolumes(ctx, server.Name)
	if err != nil {
		return nil, err
	}
	if leftover := detachedVolume(existing, sizeGB, speed); leftover != nil {
		return c.attachVolume(ctx, server, leftover)
	}

	taken := make([]string, 0, len(existing))
	for _, v := range existing {
		taken = append(taken, v.Name)
	}

	opts := hcloud.VolumeCreateOpts{
		Name:      naming.NextVolume(server.Name, taken),
		Size:      sizeGB,
		Server:    server,
		Labels:    labels.NewLabelBuilder().WithNode(server.Name).WithSpeed(speed).Build(),
		Automount: hcloud.Ptr(false),
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Action)
	defer cancel()

	result, _, err := c.client.Volume.Create(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create volume %s: %w", opts.Name, err)
	}

	actions := append([]*hcloud.Action{result.Action}, result.NextActions...)
	if err := waitForActions(ctx, c.client, actions...); err != nil {
		return nil, fmt.Errorf("failed to wait for volume %s: %w", opts.Name, err)
	}

	return result.Volume, nil
}

// attachVolume attaches an existing volume of the node to the server.
func (c *RealClient) attachVolume(ctx context.Context, server *hcloud.Server, volume *hcloud.Volume) (*hcloud.Volume, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Action)
	defer cancel()

	action, _, err := c.client.Volume.AttachWithOpts(ctx, volume, hcloud.VolumeAttachOpts{
		Server:    server,
		Automount: hcloud.Ptr(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach volume %s: %w", volume.Name, err)
	}
	if err := waitForActions(ctx, c.client, action); err != nil {
		return nil, fmt.Errorf("failed to wait for volume %s attach: %w", volume.Name, err)
	}

	volume.Server = server
	return volume, nil
}

// detachedVolume returns the first unattached volume with the given size and
// speed, or nil.
func detachedVolume(volumes []*hcloud.Volume, sizeGB int, speed string) *hcloud.Volume {
	want := strings.ToLower(speed)
	for _, v := range volumes {
		if v.Server == nil && v.Size == sizeGB && v.Labels[labels.KeySpeed] == want {
			return v
		}
	}
	return nil
}

// nodeVolumes lists every volume labelled for the node, attached or not.
func (c *RealClient) nodeVolumes(ctx context.Context, node string) ([]*hcloud.Volume, error) {
	volumes, err := c.client.Volume.AllWithOpts(ctx, hcloud.VolumeListOpts{
		ListOpts: hcloud.ListOpts{LabelSelector: labels.SelectorForNode(node)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes of %s: %w", node, err)
	}
	return volumes, nil
}
