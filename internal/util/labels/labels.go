// Package labels provides consistent labeling utilities for Hetzner Cloud resources.
//
// Volumes created by the polisher carry the node they were added for and
// their declared speed, so later runs can tell which declared disks are
// already in place. Servers carry their monitoring level.
//
// Standard label keys use the fittings.io domain prefix for namespacing.
package labels

import "strings"

// Standard label keys for Hetzner Cloud resources.
const (
	// KeyNode identifies the node a volume was added for
	KeyNode = "fittings.io/node"

	// KeySpeed records the declared speed of a volume
	KeySpeed = "fittings.io/speed"

	// KeyMonitoring records the monitoring level of a server
	KeyMonitoring = "fittings.io/monitoring"

	// KeyManagedBy identifies the management system
	KeyManagedBy = "fittings.io/managed-by"
)

// ManagedByFittings is the KeyManagedBy value for resources we create.
const ManagedByFittings = "fittings"

// LabelBuilder provides a fluent interface for building Hetzner Cloud resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the manager pre-set.
func NewLabelBuilder() *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyManagedBy: ManagedByFittings,
		},
	}
}

// WithNode adds the owning node name.
func (lb *LabelBuilder) WithNode(node string) *LabelBuilder {
	lb.labels[KeyNode] = node
	return lb
}

// WithSpeed adds the disk speed, lowercased to match label conventions.
func (lb *LabelBuilder) WithSpeed(speed string) *LabelBuilder {
	lb.labels[KeySpeed] = strings.ToLower(speed)
	return lb
}

// Build returns a copy of the labels map.
// Returns a copy to prevent external mutations.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// SelectorForNode returns a label selector string for all volumes added for a node.
func SelectorForNode(node string) string {
	return KeyNode + "=" + node
}
