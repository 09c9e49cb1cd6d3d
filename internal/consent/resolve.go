package consent

import "time"

// Policy holds the two lifecycle timings.
type Policy struct {
	// DecisionDelay is how long a consent stays PENDING before the next read resolves it.
	DecisionDelay time.Duration
	// ExpiryWindow is how long after creation any consent is forced to EXPIRED.
	ExpiryWindow time.Duration
}

// DefaultPolicy is 5s to decide and 30 minutes to expire.
func DefaultPolicy() Policy {
	return Policy{
		DecisionDelay: 5 * time.Second,
		ExpiryWindow:  1800 * time.Second,
	}
}

// Resolve computes the status c has when observed at now.
//
// A PENDING consent older than DecisionDelay takes the decider's outcome; any
// consent older than ExpiryWindow is EXPIRED whatever it was before. Both
// comparisons are strict. The decider is only consulted when its answer can
// survive, so an already expired PENDING record never draws an outcome.
func Resolve(c Consent, now time.Time, p Policy, d Decider) Status {
	elapsed := now.Sub(c.CreatedAt)
	if elapsed > p.ExpiryWindow {
		return StatusExpired
	}
	if c.Status == StatusPending && elapsed > p.DecisionDelay {
		return d.Decide(c.ID)
	}
	return c.Status
}
