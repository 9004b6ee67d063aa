// Package naming provides consistent naming functions for Hetzner Cloud resources.
//
// Volumes added by the polisher are named {node}-disk-{index}, the index
// being the first one not already taken by a volume of the same node.
package naming
