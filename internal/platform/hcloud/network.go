package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// AttachServerToNetwork attaches the server to the named network and lets
// HCloud pick the private IP. A server that is already a member is left alone.
func (c *RealClient) AttachServerToNetwork(ctx context.Context, server *hcloud.Server, networkName string) (bool, error) {
	network, _, err := c.client.Network.Get(ctx, networkName)
	if err != nil {
		return false, fmt.Errorf("failed to get network %s: %w", networkName, err)
	}
	if network == nil {
		return false, fmt.Errorf("network not found: %s", networkName)
	}

	for _, pn := range server.PrivateNet {
		if pn.Network != nil && pn.Network.ID == network.ID {
			return false, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Action)
	defer cancel()

	action, _, err := c.client.Server.AttachToNetwork(ctx, server, hcloud.ServerAttachToNetworkOpts{
		Network: network,
	})
	if err != nil {
		return false, fmt.Errorf("failed to attach server to network %s: %w", networkName, err)
	}
	if err := waitForActions(ctx, c.client, action); err != nil {
		return false, fmt.Errorf("failed to wait for network attach: %w", err)
	}

	server.PrivateNet = append(server.PrivateNet, hcloud.ServerPrivateNet{Network: network})
	return true, nil
}
