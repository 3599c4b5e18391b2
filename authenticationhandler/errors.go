// authenticationhandler/errors.go
package authenticationhandler

import "fmt"

// AuthError reports a failed acquisition of the base token pair: bad
// credentials, a network failure or a malformed login response. It is never
// retried internally.
type AuthError struct {
	Status int
	Body   string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return fmt.Sprintf("authentication failed: status=%d body=%s", e.Status, e.Body)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// ExchangeErrorKind classifies a failed token exchange.
type ExchangeErrorKind int

const (
	// ExchangeRejected marks a non-retryable 4xx answer; surfaced
	// immediately to the orchestrator.
	ExchangeRejected ExchangeErrorKind = iota
	// ExchangeExhausted marks a transient condition that survived all
	// retry attempts.
	ExchangeExhausted
)

func (k ExchangeErrorKind) String() string {
	if k == ExchangeExhausted {
		return "exhausted"
	}
	return "rejected"
}

// ExchangeError reports a failed token-exchange call.
type ExchangeError struct {
	Kind     ExchangeErrorKind
	Status   int
	Body     string
	Attempts int
	Err      error
}

func (e *ExchangeError) Error() string {
	if e.Kind == ExchangeExhausted {
		return fmt.Sprintf("token exchange %s after %d attempts: status=%d err=%v", e.Kind, e.Attempts, e.Status, e.Err)
	}
	return fmt.Sprintf("token exchange %s: status=%d body=%s", e.Kind, e.Status, e.Body)
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}
