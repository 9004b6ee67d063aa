// Package polish adjusts live nodes to their declared settings.
//
// A run walks the nodes of a fittings plan and polishes each one through
// four phases, always in this order:
//
//  1. cpu and memory, applied as a single resize
//  2. additional disks, in declaration order
//  3. monitoring level
//  4. glue (network membership)
//
// Each phase is independent: a rejected or failed setting is logged and
// the remaining phases still run. Every change that was actually applied is
// recorded as a spit in the run's report.
//
// Only disk attachment is retried, and only while the control plane reports
// the node as busy. See RetryPolicy.
package polish
