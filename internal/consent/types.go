package consent

import (
	"strings"
	"time"
)

// Status is the lifecycle state of a consent.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusExpired  Status = "EXPIRED"
)

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// DataTypeBankStatement is the only data type the aggregator can synthesise.
const DataTypeBankStatement = "bank_statement"

// Consent is a time-bounded grant by UserID to release DataTypes.
// CreatedAt is set once on creation and never changes. It keeps the clock's
// monotonic reading so elapsed time is immune to wall-clock steps.
type Consent struct {
	ID        string    `json:"consent_id"`
	UserID    string    `json:"user_id"`
	DataTypes []string  `json:"data_types"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Covers reports whether the consent was requested for dataType.
func (c Consent) Covers(dataType string) bool {
	for _, dt := range c.DataTypes {
		if dt == dataType {
			return true
		}
	}
	return false
}

func (c Consent) clone() Consent {
	out := c
	out.DataTypes = append([]string(nil), c.DataTypes...)
	return out
}

// normalizeDataTypes trims entries, drops blanks and duplicates, keeps order.
func normalizeDataTypes(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, dt := range in {
		dt = strings.TrimSpace(dt)
		if dt == "" {
			continue
		}
		if _, ok := seen[dt]; ok {
			continue
		}
		seen[dt] = struct{}{}
		out = append(out, dt)
	}
	return out
}
