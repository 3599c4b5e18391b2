// status.go
// Utility functions for categorizing HTTP responses from the appliance
// management API.
package status

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
)

// IsTransientStatusCode reports whether the status code indicates a condition
// worth retrying: contention (409, 423), throttling (429) or server-side
// failure (500, 502, 503, 504). Other 4xx responses are never retried.
func IsTransientStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusConflict,
		http.StatusLocked,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsTransientError reports whether a transport-level error is retryable.
// Timeouts and connection failures qualify; anything the server actually
// answered does not pass through here.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// http.Client.Do wraps everything in *url.Error; unwrap so dial and
	// reset failures are still recognized as connection errors.
	var opErr *net.OpError
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout() || errors.As(urlErr.Err, &opErr)
	}

	return errors.As(err, &opErr)
}

// IsAuthorizationFailure reports whether the response is an authorization
// challenge that the request-time retry policy may act on.
func IsAuthorizationFailure(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}

// IsSuccess reports whether the status code is in the 2xx range. The
// appliance answers 201 on token endpoints and 200 elsewhere, so both must
// be accepted.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
