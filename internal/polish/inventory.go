package polish

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/rs/zerolog"
)

// ServerLookup finds live servers by name.
type ServerLookup interface {
	GetServerByName(ctx context.Context, name string) (*hcloud.Server, error)
}

// Inventory resolves plan node names to live nodes.
type Inventory struct {
	lookup ServerLookup
	logger zerolog.Logger
}

// NewInventory creates an Inventory.
func NewInventory(lookup ServerLookup, logger zerolog.Logger) *Inventory {
	return &Inventory{lookup: lookup, logger: logger}
}

// Resolve returns the nodes that exist, in the order of names. Missing
// servers are logged and left out; fittings never creates servers.
func (i *Inventory) Resolve(ctx context.Context, names []string) ([]Node, error) {
	nodes := make([]Node, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nodes, err
		}

		server, err := i.lookup.GetServerByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to look up node %s: %w", name, err)
		}
		if server == nil {
			i.logger.Warn().Str("node", name).Msg("node not found, skipping")
			continue
		}
		nodes = append(nodes, Node{Name: name, Server: server})
	}
	return nodes, nil
}
