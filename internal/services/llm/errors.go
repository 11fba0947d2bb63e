// -----------------------------------------------------------------------
// LLM error taxonomy - typed kinds for transient-vs-fatal classification
// -----------------------------------------------------------------------

package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorKind classifies a content-generation failure
type ErrorKind string

const (
	// KindRateLimited is an explicit rate-limit signal from the provider
	KindRateLimited ErrorKind = "rate_limited"
	// KindTimeout is a client-side deadline or abort
	KindTimeout ErrorKind = "timeout"
	// KindProvider is a provider-reported error carrying an HTTP status
	KindProvider ErrorKind = "provider"
	// KindParse is a failure to parse model output into the expected shape
	KindParse ErrorKind = "parse"
	// KindFatal is a non-retryable condition (bad credentials, bad request)
	KindFatal ErrorKind = "fatal"
)

// Error wraps a generation failure with its taxonomy kind
type Error struct {
	Kind   ErrorKind
	Status int // HTTP status when Kind == KindProvider, 0 otherwise
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("llm %s (status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("llm %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with an explicit kind
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// NewProviderError wraps a provider failure with its HTTP status
func NewProviderError(status int, err error) *Error {
	return &Error{Kind: KindProvider, Status: status, Err: err}
}

// KindOf returns the taxonomy kind of an error, classifying untyped errors
// by shape (context deadlines, rate-limit markers, status codes).
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}
	if IsRateLimitError(err) {
		return KindRateLimited
	}
	if status := statusOf(err); status >= 500 {
		return KindProvider
	}
	return KindFatal
}

// IsRetryable reports whether an error is transient per the batch
// orchestrator's retry contract: rate limits, timeouts/aborts, 5xx-class
// provider responses, transient network failures, and parse failures.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	switch KindOf(err) {
	case KindRateLimited, KindTimeout, KindParse:
		return true
	case KindProvider:
		var typed *Error
		if errors.As(err, &typed) && typed.Status > 0 {
			return typed.Status >= 500
		}
		return true
	}
	// Untyped transient network failures
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "unexpected EOF") ||
		strings.Contains(msg, "no such host")
}

// statusOf extracts an HTTP status code mentioned in an untyped error
func statusOf(err error) int {
	msg := err.Error()
	for _, status := range []int{500, 502, 503, 504, 529} {
		if strings.Contains(msg, fmt.Sprintf("%d", status)) {
			return status
		}
	}
	return 0
}
