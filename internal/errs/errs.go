// Package errs defines the tagged-variant error shape shared across the
// gateway pipeline, the evaluator, and the dispatchers, plus the 1:1 HTTP
// status mapping the gateway middleware translates it to.
package errs

import (
	"fmt"
	"net/http"
)

// Kind is the closed set of error categories every collaborator returns,
// instead of raw sentinel errors or string matching.
type Kind string

const (
	KindUnauthenticated      Kind = "unauthenticated"
	KindUnauthorized         Kind = "unauthorized"
	KindBadRequest           Kind = "bad_request"
	KindNotFound             Kind = "not_found"
	KindConflict             Kind = "conflict"
	KindPreconditionFailed   Kind = "precondition_failed"
	KindRateLimited          Kind = "rate_limited"
	KindUpstream             Kind = "upstream"
	KindTimeout              Kind = "timeout"
	KindInternal             Kind = "internal"

	// KindMethodNotAllowed and KindServiceUnavailable extend the base
	// variant set for the Gateway Router (spec.md §4.2 steps 2 and 6),
	// which needs 405 and 503 and has no other path to them through the
	// closed set above.
	KindMethodNotAllowed Kind = "method_not_allowed"
	KindServiceUnavailable Kind = "service_unavailable"
)

// Error is the tagged-variant error carried across component boundaries.
// Expected distinguishes user-visible errors (logged at info) from system
// failures (logged at error with stack context).
type Error struct {
	Kind     Kind
	Message  string
	Code     *string
	Expected bool
	// UpstreamStatus is only meaningful for KindUpstream.
	UpstreamStatus int
	cause          error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an expected (user-visible) error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Expected: true}
}

// Wrap builds an unexpected (system) error of the given kind, carrying
// cause for %w-style unwrapping.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Expected: false, cause: cause}
}

// WithCode attaches a machine-readable code from the native code registry.
func (e *Error) WithCode(code string) *Error {
	e.Code = &code
	return e
}

// Unauthenticated builds a KindUnauthenticated error.
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }

// InsufficientPrivileges builds the Profile Evaluator's standard
// unauthorized failure (spec.md §4.1).
func InsufficientPrivileges(message string) *Error { return New(KindUnauthorized, message) }

// InvalidTenantBinding builds the Profile Evaluator's missing-tenant
// failure (spec.md §4.1).
func InvalidTenantBinding(message string) *Error { return New(KindBadRequest, message) }

// NotFound builds a KindNotFound error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// MethodNotAllowed builds the Gateway Router's route-method-mismatch
// failure (spec.md §4.2 step 2).
func MethodNotAllowed(message string) *Error { return New(KindMethodNotAllowed, message) }

// ServiceUnavailable builds the Gateway Router's no-healthy-host failure
// (spec.md §4.2 step 6).
func ServiceUnavailable(message string) *Error { return New(KindServiceUnavailable, message) }

// HTTPStatus maps a Kind to its HTTP status code, per spec.md §7.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindUnauthorized:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindPreconditionFailed:
		return http.StatusPreconditionFailed
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindUpstream:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// As extracts an *Error from err, falling back to a KindInternal wrapper
// for anything the caller didn't originate as an *Error.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return Wrap(KindInternal, "unexpected error", err)
}
