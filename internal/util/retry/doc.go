// Package retry provides fixed-interval retry logic for transient failures.
//
// The [Do] function retries an operation while a predicate accepts its
// error, waiting a fixed interval between attempts. Attempts and total wait
// can both be capped, and the wait honours context cancellation. The sleep
// implementation is pluggable so callers can simulate time in tests.
package retry
