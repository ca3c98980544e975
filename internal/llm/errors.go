package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredential indicates no API key is configured.
	ErrMissingCredential = errors.New("missing api credential")

	// ErrMalformedResponse indicates a 2xx response without the expected
	// choices[0].message.content. It is always wrapped in an *UpstreamError.
	ErrMalformedResponse = errors.New("malformed completion response")
)

// UpstreamError is a failure reported by the remote service.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("upstream status %d: %v", e.StatusCode, e.Err)
	case e.Message != "":
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// TransportError is a network-level failure: no usable HTTP response was
// received. Context cancellation and deadlines surface here too.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// Retryable reports whether a caller-level retry could succeed: transport
// failures, rate limiting and 5xx responses. A cancelled call is never
// retryable. A deadline is, since it may be the per-request timeout.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.StatusCode == http.StatusTooManyRequests || ue.StatusCode >= 500
	}
	return false
}

// ErrorCode is a stable label for logs and metrics.
func ErrorCode(err error) string {
	var ue *UpstreamError
	var te *TransportError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "MISSING_CREDENTIAL"
	case errors.Is(err, ErrMalformedResponse):
		return "MALFORMED_RESPONSE"
	case errors.As(err, &ue):
		return "UPSTREAM"
	case errors.As(err, &te):
		return "TRANSPORT"
	default:
		return "UNKNOWN"
	}
}
