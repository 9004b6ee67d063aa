// Package hcloud provides a wrapper around the Hetzner Cloud API client for
// adjusting live servers to a fittings plan.
//
// # Architecture
//
//   - client.go: NodeAPI and its parts (servers, volumes, networks)
//   - real_client.go: client initialization and configuration
//   - server.go: server lookup, resize through server type change, labels
//   - volume.go: additional disks as attached volumes
//   - network.go: network membership
//   - errors.go: error classification for retry decisions
//   - mock_client.go: function-field mock for tests
//
// # Idempotency
//
// Every mutating call first checks whether the server is already in the
// requested state and reports false without touching it if so. AddVolume is
// the exception: volumes are additive, so callers compare against
// ServerVolumes before adding. AddVolume does reattach a matching volume
// that an earlier failed attach left detached.
//
// ResizeServer powers a running server back on on every exit path once it
// has powered it off.
//
// # Retries
//
// This package never retries. Transient contention (locked servers,
// conflicts, rate limits, RESOURCE_BUSY messages) is recognised by
// IsResourceBusy so the caller can apply its own policy.
//
// # Timeouts
//
// Each mutating call waits for its actions under HCLOUD_TIMEOUT_ACTION
// (default: 5m).
package hcloud
