package hcloud

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// GetServerByName returns the full server object by name, or nil if not found.
func (c *RealClient) GetServerByName(ctx context.Context, name string) (*hcloud.Server, error) {
	server, _, err := c.client.Server.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %s: %w", name, err)
	}
	return server, nil
}

// ResizeServer moves the server to the server type matching the requested
// cores and memory. Unset fields keep the current value, and the server's
// architecture is preserved. Running servers are powered off for the change
// and powered on again afterwards, also when the change fails. The root disk
// is never upgraded so the change stays reversible.
func (c *RealClient) ResizeServer(ctx context.Context, server *hcloud.Server, opts ResizeOpts) (changed bool, err error) {
	if opts.Cores == nil && opts.MemoryGB == nil {
		return false, nil
	}
	if server.ServerType == nil {
		return false, fmt.Errorf("server %s has no server type", server.Name)
	}

	current := server.ServerType
	cores := current.Cores
	memory := current.Memory
	if opts.Cores != nil {
		cores = *opts.Cores
	}
	if opts.MemoryGB != nil {
		memory = float32(*opts.MemoryGB)
	}
	if current.Cores == cores && current.Memory == memory {
		return false, nil
	}

	serverTypes, err := c.client.ServerType.All(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list server types: %w", err)
	}
	target := pickServerType(serverTypes, current, cores, memory)
	if target == nil {
		return false, fmt.Errorf("no %s server type with %d cores and %gGB memory", current.Architecture, cores, memory)
	}

	parent := ctx
	ctx, cancel := context.WithTimeout(ctx, c.timeouts.Action)
	defer cancel()

	if server.Status == hcloud.ServerStatusRunning {
		offAction, _, offErr := c.client.Server.Poweroff(ctx, server)
		if offErr != nil {
			return false, fmt.Errorf("failed to power off server: %w", offErr)
		}
		// the server may be off from here on, whatever happens next
		defer func() {
			if onErr := c.powerOn(parent, server); onErr != nil {
				changed = false
				err = errors.Join(err, onErr)
			}
		}()
		if waitErr := waitForActions(ctx, c.client, offAction); waitErr != nil {
			return false, fmt.Errorf("failed to wait for power off: %w", waitErr)
		}
	}

	action, _, err := c.client.Server.ChangeType(ctx, server, hcloud.ServerChangeTypeOpts{
		ServerType:  target,
		UpgradeDisk: false,
	})
	if err != nil {
		return false, fmt.Errorf("failed to change server type to %s: %w", target.Name, err)
	}
	if err := waitForActions(ctx, c.client, action); err != nil {
		return false, fmt.Errorf("failed to wait for server type change: %w", err)
	}

	server.ServerType = target
	return true, nil
}

// powerOn starts the server and waits for it under a fresh action timeout.
// Cancellation of ctx is ignored.
func (c *RealClient) powerOn(ctx context.Context, server *hcloud.Server) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeouts.Action)
	defer cancel()

	action, _, err := c.client.Server.Poweron(ctx, server)
	if err != nil {
		return fmt.Errorf("failed to power on server: %w", err)
	}
	if err := waitForActions(ctx, c.client, action); err != nil {
		return fmt.Errorf("failed to wait for power on: %w", err)
	}
	return nil
}

// pickServerType returns the server type with exactly the requested cores
// and memory on the current architecture. Types sharing the current CPU
// type win; ties are broken by name so the choice is stable.
func pickServerType(types []*hcloud.ServerType, current *hcloud.ServerType, cores int, memory float32) *hcloud.ServerType {
	var candidates []*hcloud.ServerType
	for _, st := range types {
		if st.Cores == cores && st.Memory == memory && st.Architecture == current.Architecture {
			candidates = append(candidates, st)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		si := candidates[i].CPUType == current.CPUType
		sj := candidates[j].CPUType == current.CPUType
		if si != sj {
			return si
		}
		return candidates[i].Name < candidates[j].Name
	})
	return candidates[0]
}

// SetServerLabel sets one label on the server, keeping all others.
func (c *RealClient) SetServerLabel(ctx context.Context, server *hcloud.Server, key, value string) (bool, error) {
	if current, ok := server.Labels[key]; ok && current == value {
		return false, nil
	}

	labels := make(map[string]string, len(server.Labels)+1)
	for k, v := range server.Labels {
		labels[k] = v
	}
	labels[key] = value

	updated, _, err := c.client.Server.Update(ctx, server, hcloud.ServerUpdateOpts{Labels: labels})
	if err != nil {
		return false, fmt.Errorf("failed to set label %s on server %s: %w", key, server.Name, err)
	}
	if updated != nil {
		server.Labels = updated.Labels
	} else {
		server.Labels = labels
	}
	return true, nil
}

// waitForActions waits for one or more actions to complete.
func waitForActions(ctx context.Context, client *hcloud.Client, actions ...*hcloud.Action) error {
	var pending []*hcloud.Action
	for _, a := range actions {
		if a != nil {
			pending = append(pending, a)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	return client.Action.WaitFor(ctx, pending...)
}
