package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout and retry values.
// These values can be customized via environment variables.
type Timeouts struct {
	Action           time.Duration // Timeout for waiting on a single control-plane action
	RetryInterval    time.Duration // Fixed wait between disk-attach attempts while the resource is busy
	RetryMaxAttempts int           // Maximum disk-attach attempts, 0 means no cap
	RetryMaxElapsed  time.Duration // Maximum time spent retrying one disk, 0 means no cap
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - HCLOUD_TIMEOUT_ACTION (default: 5m)
//   - FITTINGS_RETRY_INTERVAL (default: 10s)
//   - FITTINGS_RETRY_MAX_ATTEMPTS (default: 0, unbounded)
//   - FITTINGS_RETRY_MAX_ELAPSED (default: 30m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Action:           parseDuration("HCLOUD_TIMEOUT_ACTION", 5*time.Minute),
		RetryInterval:    parseDuration("FITTINGS_RETRY_INTERVAL", 10*time.Second),
		RetryMaxAttempts: parseInt("FITTINGS_RETRY_MAX_ATTEMPTS", 0),
		RetryMaxElapsed:  parseDuration("FITTINGS_RETRY_MAX_ELAPSED", 30*time.Minute),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a non-negative integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}
