package consent

import (
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	p := DefaultPolicy()

	cases := []struct {
		name    string
		status  Status
		elapsed time.Duration
		decider Decider
		want    Status
	}{
		{name: "pending inside delay", status: StatusPending, elapsed: 2 * time.Second, decider: AlwaysApprove, want: StatusPending},
		{name: "pending exactly at delay", status: StatusPending, elapsed: 5 * time.Second, decider: AlwaysApprove, want: StatusPending},
		{name: "pending after delay approves", status: StatusPending, elapsed: 6 * time.Second, decider: AlwaysApprove, want: StatusApproved},
		{name: "pending after delay rejects", status: StatusPending, elapsed: 6 * time.Second, decider: AlwaysReject, want: StatusRejected},
		{name: "approved stays approved", status: StatusApproved, elapsed: 10 * time.Minute, decider: AlwaysReject, want: StatusApproved},
		{name: "rejected stays rejected", status: StatusRejected, elapsed: 10 * time.Minute, decider: AlwaysApprove, want: StatusRejected},
		{name: "exactly at expiry", status: StatusApproved, elapsed: 1800 * time.Second, decider: AlwaysApprove, want: StatusApproved},
		{name: "approved expires", status: StatusApproved, elapsed: 1801 * time.Second, decider: AlwaysApprove, want: StatusExpired},
		{name: "rejected expires", status: StatusRejected, elapsed: time.Hour, decider: AlwaysApprove, want: StatusExpired},
		{name: "pending expires directly", status: StatusPending, elapsed: time.Hour, decider: AlwaysApprove, want: StatusExpired},
		{name: "expired is terminal", status: StatusExpired, elapsed: 2 * time.Hour, decider: AlwaysApprove, want: StatusExpired},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := Consent{ID: "consent_x", Status: tc.status, CreatedAt: created}
			if got := Resolve(c, created.Add(tc.elapsed), p, tc.decider); got != tc.want {
				t.Fatalf("Resolve = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestResolveSkipsDeciderWhenExpired(t *testing.T) {
	called := false
	d := DeciderFunc(func(string) Status {
		called = true
		return StatusApproved
	})
	created := time.Unix(0, 0)
	c := Consent{ID: "consent_x", Status: StatusPending, CreatedAt: created}
	if got := Resolve(c, created.Add(time.Hour), DefaultPolicy(), d); got != StatusExpired {
		t.Fatalf("expected EXPIRED, got %s", got)
	}
	if called {
		t.Fatal("decider consulted for an expired consent")
	}
}

func TestRandomDeciderOnlyTerminalOutcomes(t *testing.T) {
	d := NewRandomDecider(42)
	var approved, rejected int
	for i := 0; i < 200; i++ {
		switch d.Decide("consent_x") {
		case StatusApproved:
			approved++
		case StatusRejected:
			rejected++
		default:
			t.Fatal("unexpected outcome")
		}
	}
	if approved == 0 || rejected == 0 {
		t.Fatalf("expected both outcomes, got approved=%d rejected=%d", approved, rejected)
	}
}
