package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RetryConfig defines provider-level retry behavior for rate-limit handling.
// Configured around Gemini's per-minute quota window; Claude overload
// responses follow the same curve.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (default: 5)
	MaxRetries int

	// InitialBackoff is the initial wait time before first retry (default: 45s)
	InitialBackoff time.Duration

	// MaxBackoff is the maximum wait time between retries (default: 90s)
	MaxBackoff time.Duration

	// BackoffMultiplier is applied to backoff on each retry (default: 1.5)
	BackoffMultiplier float64
}

const (
	defaultMaxRetries        = 5
	defaultInitialBackoff    = 45 * time.Second
	defaultMaxBackoff        = 90 * time.Second
	defaultBackoffMultiplier = 1.5
)

// NewDefaultRetryConfig returns a RetryConfig with sensible defaults for
// provider rate limits.
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        defaultMaxRetries,
		InitialBackoff:    defaultInitialBackoff,
		MaxBackoff:        defaultMaxBackoff,
		BackoffMultiplier: defaultBackoffMultiplier,
	}
}

// IsRateLimitError checks if an error is a provider rate limit error.
// Matches 429 status codes, RESOURCE_EXHAUSTED and quota markers.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate_limit") ||
		strings.Contains(errStr, "quota")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from a rate-limit
// error. Returns 0 if no delay is found in the error message.
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff computes the backoff duration for a given attempt.
// If apiDelay > 0 (from ExtractRetryDelay), it's used as the base.
// The result is capped at MaxBackoff.
func (c *RetryConfig) CalculateBackoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.InitialBackoff
	if apiDelay > 0 {
		// Use API-provided delay plus small buffer
		base = apiDelay + 5*time.Second
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	backoff := time.Duration(float64(base) * multiplier)
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}

	return backoff
}
