package consent

import (
	"context"
	"time"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/ids"
	"ocenmock.org/internal/obs"
)

// Event describes one applied status transition.
type Event struct {
	ConsentID string    `json:"consent_id"`
	UserID    string    `json:"user_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	At        time.Time `json:"at"`
}

// Publisher receives transition events. Publish must not block.
type Publisher interface {
	Publish(Event)
}

// Manager owns the consent lifecycle. Status advances lazily: every read
// evaluates Resolve under the store's per-record lock and persists the result.
type Manager struct {
	store   Store
	policy  Policy
	decider Decider
	now     func() time.Time
	newID   func() string
	events  Publisher
}

// Option configures Manager.
type Option func(*Manager)

// WithPolicy overrides the decision delay and expiry window.
func WithPolicy(p Policy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithDecider replaces the random approve/reject source.
func WithDecider(d Decider) Option {
	return func(m *Manager) {
		if d != nil {
			m.decider = d
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(m *Manager) {
		if fn != nil {
			m.now = fn
		}
	}
}

// WithIDGenerator overrides consent id allocation.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithPublisher sends every applied transition to p.
func WithPublisher(p Publisher) Option {
	return func(m *Manager) { m.events = p }
}

// NewManager constructs a Manager over store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		policy:  DefaultPolicy(),
		decider: NewRandomDecider(0),
		now:     time.Now,
		newID:   ids.NewConsentID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the timings in force.
func (m *Manager) Policy() Policy { return m.policy }

// Create stores a new PENDING consent for userID over dataTypes.
func (m *Manager) Create(ctx context.Context, userID string, dataTypes []string) (Consent, error) {
	types := normalizeDataTypes(dataTypes)
	if len(types) == 0 {
		return Consent{}, apperr.Invalid("data_types must contain at least one entry")
	}
	c := Consent{
		ID:        m.newID(),
		UserID:    userID,
		DataTypes: types,
		Status:    StatusPending,
		CreatedAt: m.now(),
	}
	if err := m.store.Insert(ctx, c); err != nil {
		return Consent{}, err
	}
	obs.ConsentCreated()
	return c, nil
}

// Status returns the current status of the consent, applying any due transition.
func (m *Manager) Status(ctx context.Context, id string) (Status, error) {
	c, err := m.Refresh(ctx, id)
	if err != nil {
		return "", err
	}
	return c.Status, nil
}

// Refresh re-evaluates the consent at the current time and returns the record.
func (m *Manager) Refresh(ctx context.Context, id string) (Consent, error) {
	var from Status
	c, err := m.store.Update(ctx, id, func(c *Consent) error {
		from = c.Status
		c.Status = Resolve(*c, m.now(), m.policy, m.decider)
		return nil
	})
	if err != nil {
		return Consent{}, err
	}
	if c.Status != from {
		m.transitioned(c, from)
	}
	return c, nil
}

func (m *Manager) transitioned(c Consent, from Status) {
	obs.ConsentTransition(string(from), string(c.Status))
	obs.Info("consent_transition", map[string]any{
		"consent_id": c.ID,
		"from":       from,
		"to":         c.Status,
	})
	if m.events != nil {
		m.events.Publish(Event{
			ConsentID: c.ID,
			UserID:    c.UserID,
			From:      from,
			To:        c.Status,
			At:        m.now().UTC(),
		})
	}
}
