package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timing values.
// These values can be customized via environment variables.
type Timeouts struct {
	Request           time.Duration // Timeout for a single store request
	SettleDelay       time.Duration // Fixed wait before deleting a target after its refs were removed
	RetryMaxAttempts  int           // Maximum number of retries for idempotent reads
	RetryInitialDelay time.Duration // Initial delay between retries
	RateLimit         float64       // Store requests per second, 0 disables limiting
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - RTCTL_TIMEOUT_REQUEST (default: 30s)
//   - RTCTL_SETTLE_DELAY (default: 3s)
//   - RTCTL_RETRY_MAX_ATTEMPTS (default: 3)
//   - RTCTL_RETRY_INITIAL_DELAY (default: 500ms)
//   - RTCTL_RATE_LIMIT (default: 0, unlimited)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Request:           parseDuration("RTCTL_TIMEOUT_REQUEST", 30*time.Second),
		SettleDelay:       parseDuration("RTCTL_SETTLE_DELAY", 3*time.Second),
		RetryMaxAttempts:  parseInt("RTCTL_RETRY_MAX_ATTEMPTS", 3),
		RetryInitialDelay: parseDuration("RTCTL_RETRY_INITIAL_DELAY", 500*time.Millisecond),
		RateLimit:         parseFloat("RTCTL_RATE_LIMIT", 0),
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

// parseInt parses an integer from an environment variable.
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

func parseFloat(envVar string, defaultVal float64) float64 {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return defaultVal
	}

	return f
}

// TestTimeouts returns short timeouts for use in tests.
func TestTimeouts() *Timeouts {
	return &Timeouts{
		Request:           5 * time.Second,
		SettleDelay:       0,
		RetryMaxAttempts:  2,
		RetryInitialDelay: time.Millisecond,
		RateLimit:         0,
	}
}
