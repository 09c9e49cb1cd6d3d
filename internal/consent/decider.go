package consent

import (
	"math/rand"
	"sync"
	"time"
)

// Decider stands in for the user's (external) approve/reject decision.
// Implementations must return StatusApproved or StatusRejected.
type Decider interface {
	Decide(consentID string) Status
}

// DeciderFunc adapts a plain function to Decider.
type DeciderFunc func(consentID string) Status

func (f DeciderFunc) Decide(consentID string) Status { return f(consentID) }

// AlwaysApprove and AlwaysReject are deterministic deciders.
var (
	AlwaysApprove Decider = DeciderFunc(func(string) Status { return StatusApproved })
	AlwaysReject  Decider = DeciderFunc(func(string) Status { return StatusRejected })
)

// RandomDecider picks APPROVED or REJECTED with equal probability.
type RandomDecider struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomDecider seeds from the clock when seed is 0.
func NewRandomDecider(seed int64) *RandomDecider {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomDecider{rnd: rand.New(rand.NewSource(seed))}
}

func (d *RandomDecider) Decide(string) Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rnd.Intn(2) == 0 {
		return StatusApproved
	}
	return StatusRejected
}
