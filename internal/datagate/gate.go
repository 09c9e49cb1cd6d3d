// Package datagate releases synthetic financial artifacts for consents that are
// APPROVED at the moment of the request.
package datagate

import (
	"context"
	"fmt"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/consent"
	"ocenmock.org/internal/obs"
)

// ConsentSource re-evaluates a consent at call time.
type ConsentSource interface {
	Refresh(ctx context.Context, id string) (consent.Consent, error)
}

// Gate is the data fetch gate of the account aggregator.
type Gate struct {
	consents  ConsentSource
	generator *Generator
}

// New wires the gate to the lifecycle manager and a statement generator.
func New(consents ConsentSource, generator *Generator) *Gate {
	if generator == nil {
		generator = NewGenerator(0)
	}
	return &Gate{consents: consents, generator: generator}
}

// FetchData returns one artifact per supported data type the consent covers.
// Unsupported data types are left out of the result.
func (g *Gate) FetchData(ctx context.Context, consentID string) (map[string]BankStatement, error) {
	c, err := g.consents.Refresh(ctx, consentID)
	if err != nil {
		return nil, err
	}
	if c.Status != consent.StatusApproved {
		return nil, fmt.Errorf("%w: consent %s is %s", apperr.ErrConsentNotApproved, c.ID, c.Status)
	}

	out := make(map[string]BankStatement)
	if c.Covers(consent.DataTypeBankStatement) {
		out[consent.DataTypeBankStatement] = g.generator.BankStatement()
		obs.ArtifactReleased(consent.DataTypeBankStatement)
	}
	return out, nil
}
