// Package gateway is the single point of contact with the Leaf-Lens backend.
// It owns the request and response shapes of the REST contract and normalizes
// failures into a small error taxonomy; it performs no business logic.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
)

// AuthErrorKind distinguishes a rejected login from an unreachable server.
type AuthErrorKind int

const (
	// AuthInvalid means the backend rejected the credential pair.
	AuthInvalid AuthErrorKind = iota
	// AuthUnreachable means the backend could not be contacted at all.
	AuthUnreachable
)

// AuthError reports an authentication failure.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	switch {
	case e.Kind == AuthUnreachable && e.Err != nil:
		return fmt.Sprintf("authentication server unreachable: %v", e.Err)
	case e.Kind == AuthUnreachable:
		return "authentication server unreachable"
	case e.Message != "":
		return fmt.Sprintf("authentication failed: %s", e.Message)
	default:
		return "authentication failed"
	}
}

func (e *AuthError) Unwrap() error { return e.Err }

// RequestErrorKind classifies a failed non-auth request.
type RequestErrorKind int

const (
	// RequestRejected means the backend answered with a non-2xx status.
	RequestRejected RequestErrorKind = iota
	// RequestServerUnavailable means the connection could not be established.
	RequestServerUnavailable
	// RequestTimeout means the request exceeded its deadline.
	RequestTimeout
)

// RequestError reports a failed backend request.
type RequestError struct {
	Kind    RequestErrorKind
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case RequestServerUnavailable:
		return fmt.Sprintf("backend unavailable: %v", e.Err)
	case RequestTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	default:
		if e.Message != "" {
			return fmt.Sprintf("request rejected (%d): %s", e.Status, e.Message)
		}
		return fmt.Sprintf("request rejected (%d)", e.Status)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// classifyTransport maps a transport-level error to a RequestErrorKind.
// Connection refused and friends count as the server being unavailable;
// deadline and net timeouts count as timeouts.
func classifyTransport(err error) RequestErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return RequestTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return RequestTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return RequestServerUnavailable
	}
	return RequestServerUnavailable
}

// Unreachable reports whether err means the backend could not be reached,
// regardless of which taxonomy branch carried it.
func Unreachable(err error) bool {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Kind == AuthUnreachable
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind == RequestServerUnavailable || reqErr.Kind == RequestTimeout
	}
	return false
}
