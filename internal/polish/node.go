package polish

import (
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// Node is a live server resolved from the plan.
type Node struct {
	Name   string
	Server *hcloud.Server
}
