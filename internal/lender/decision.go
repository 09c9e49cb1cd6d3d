package lender

// Decision is the lender's verdict on an application.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionPending  Decision = "pending"
)

// Default thresholds, in rupees. Both bounds approve.
const (
	DefaultMinAmount = 50_000
	DefaultMaxAmount = 1_000_000
)

// Policy is the amount window the lender accepts.
type Policy struct {
	MinAmount float64
	MaxAmount float64
}

// DefaultPolicy returns the 50,000 to 1,000,000 window.
func DefaultPolicy() Policy {
	return Policy{MinAmount: DefaultMinAmount, MaxAmount: DefaultMaxAmount}
}

// Evaluate never returns DecisionPending.
func (p Policy) Evaluate(amount float64) Decision {
	switch {
	case amount > p.MaxAmount:
		return DecisionRejected
	case amount < p.MinAmount:
		return DecisionRejected
	default:
		return DecisionApproved
	}
}

// Evaluate applies DefaultPolicy.
func Evaluate(amount float64) Decision {
	return DefaultPolicy().Evaluate(amount)
}
