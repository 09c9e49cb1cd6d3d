package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors shared by all three services.
var (
	// ErrInvalidRequest marks malformed or empty input. Nothing was mutated.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound marks an unknown identifier.
	ErrNotFound = errors.New("not found")

	// ErrConsentNotApproved marks a consent that exists but is not APPROVED right now.
	ErrConsentNotApproved = errors.New("consent not approved")

	// ErrUpstreamUnavailable marks a transport failure or timeout talking to a collaborator.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamRejected marks a collaborator that answered with a failure.
	ErrUpstreamRejected = errors.New("upstream rejected")
)

// Kind is the machine-readable error category carried in error bodies.
type Kind string

const (
	KindInvalidRequest      Kind = "invalid_request"
	KindNotFound            Kind = "not_found"
	KindConsentNotApproved  Kind = "consent_not_approved"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindUpstreamRejected    Kind = "upstream_rejected"
	KindInternal            Kind = "internal"
)

// KindOf classifies err. Unknown errors are internal.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConsentNotApproved):
		return KindConsentNotApproved
	case errors.Is(err, ErrUpstreamUnavailable):
		return KindUpstreamUnavailable
	case errors.Is(err, ErrUpstreamRejected):
		return KindUpstreamRejected
	default:
		return KindInternal
	}
}

// Invalid wraps ErrInvalidRequest with a human-readable reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

// StatusError is a non-success HTTP reply received from a collaborator.
type StatusError struct {
	Service string
	Code    int
	Detail  string
}

func (e *StatusError) Error() string {
	detail := strings.TrimSpace(e.Detail)
	if detail == "" {
		detail = http.StatusText(e.Code)
	}
	return fmt.Sprintf("%s responded %d: %s", e.Service, e.Code, detail)
}

// Unwrap maps the reply code onto the shared taxonomy so errors.Is works across
// the network boundary.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidRequest
	case http.StatusForbidden:
		return ErrConsentNotApproved
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		// retryable: the collaborator is throttling or cannot reach its own dependency
		return ErrUpstreamUnavailable
	default:
		return ErrUpstreamRejected
	}
}
