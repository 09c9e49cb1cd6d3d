package ids

import (
	mathrand "math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ConsentPrefix tags identifiers handed out by the account aggregator.
const ConsentPrefix = "consent_"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(mathrand.New(mathrand.NewSource(time.Now().UnixNano())), 0)
)

// New returns a lexicographically sortable identifier suitable for storage keys.
func New() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewConsentID returns a fresh consent identifier, e.g. consent_01hv3k....
func NewConsentID() string {
	return ConsentPrefix + strings.ToLower(New())
}
