// Package labels provides consistent labeling for Hetzner Cloud resources.
//
// All labels use the fittings.io domain prefix and follow a builder pattern
// for constructing label sets with node, disk speed, monitoring level and
// manager identification.
package labels
