package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "invalid", err: Invalid("data_types must not be empty"), want: KindInvalidRequest},
		{name: "wrapped not found", err: fmt.Errorf("consent abc: %w", ErrNotFound), want: KindNotFound},
		{name: "not approved", err: ErrConsentNotApproved, want: KindConsentNotApproved},
		{name: "unavailable", err: fmt.Errorf("%w: %v", ErrUpstreamUnavailable, context.DeadlineExceeded), want: KindUpstreamUnavailable},
		{name: "rejected", err: ErrUpstreamRejected, want: KindUpstreamRejected},
		{name: "other", err: errors.New("boom"), want: KindInternal},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}

func TestStatusErrorUnwrap(t *testing.T) {
	t.Parallel()

	cases := map[int]error{
		http.StatusBadRequest:          ErrInvalidRequest,
		http.StatusUnprocessableEntity: ErrInvalidRequest,
		http.StatusForbidden:           ErrConsentNotApproved,
		http.StatusNotFound:            ErrNotFound,
		http.StatusInternalServerError: ErrUpstreamRejected,
		http.StatusNotImplemented:      ErrUpstreamRejected,
		http.StatusTooManyRequests:     ErrUpstreamUnavailable,
		http.StatusBadGateway:          ErrUpstreamUnavailable,
		http.StatusServiceUnavailable:  ErrUpstreamUnavailable,
		http.StatusGatewayTimeout:      ErrUpstreamUnavailable,
	}
	for code, want := range cases {
		err := error(&StatusError{Service: "aa", Code: code})
		if !errors.Is(err, want) {
			t.Fatalf("code %d: expected errors.Is(%v)", code, want)
		}
	}
}

func TestStatusErrorMessage(t *testing.T) {
	err := &StatusError{Service: "lender", Code: http.StatusInternalServerError}
	if got := err.Error(); got != "lender responded 500: Internal Server Error" {
		t.Fatalf("unexpected message: %q", got)
	}
	err.Detail = "boom"
	if got := err.Error(); got != "lender responded 500: boom" {
		t.Fatalf("unexpected message: %q", got)
	}
}
