// status/status_test.go
package status

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransientStatusCode(t *testing.T) {
	transient := []int{
		http.StatusConflict,
		http.StatusLocked,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}
	for _, code := range transient {
		assert.True(t, IsTransientStatusCode(code), "status %d", code)
	}

	terminal := []int{
		http.StatusOK,
		http.StatusBadRequest,
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusNotFound,
		http.StatusUnprocessableEntity,
		http.StatusNotImplemented,
	}
	for _, code := range terminal {
		assert.False(t, IsTransientStatusCode(code), "status %d", code)
	}
}

type timeoutErr struct{ timeout bool }

func (e *timeoutErr) Error() string   { return "fake network error" }
func (e *timeoutErr) Timeout() bool   { return e.timeout }
func (e *timeoutErr) Temporary() bool { return false }

func TestIsTransientError(t *testing.T) {
	assert.True(t, IsTransientError(context.DeadlineExceeded))
	assert.True(t, IsTransientError(&timeoutErr{timeout: true}))
	assert.True(t, IsTransientError(&url.Error{Op: "Get", URL: "https://x", Err: &timeoutErr{timeout: true}}))
	assert.True(t, IsTransientError(&net.OpError{Op: "dial", Err: errors.New("connection refused")}))

	// The shape http.Client.Do actually produces for a refused connection.
	refused := &url.Error{
		Op:  "Get",
		URL: "http://127.0.0.1:1",
		Err: &net.OpError{Op: "dial", Err: errors.New("connect: connection refused")},
	}
	assert.True(t, IsTransientError(refused))

	assert.False(t, IsTransientError(nil))
	assert.False(t, IsTransientError(errors.New("parse failure")))
	assert.False(t, IsTransientError(context.Canceled))
}

func TestIsAuthorizationFailure(t *testing.T) {
	assert.True(t, IsAuthorizationFailure(http.StatusUnauthorized))
	assert.True(t, IsAuthorizationFailure(http.StatusForbidden))
	assert.False(t, IsAuthorizationFailure(http.StatusNotFound))
	assert.False(t, IsAuthorizationFailure(http.StatusOK))
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(http.StatusOK))
	assert.True(t, IsSuccess(http.StatusCreated))
	assert.True(t, IsSuccess(http.StatusAccepted))
	assert.True(t, IsSuccess(http.StatusNoContent))
	assert.False(t, IsSuccess(http.StatusMovedPermanently))
	assert.False(t, IsSuccess(http.StatusBadRequest))
}
