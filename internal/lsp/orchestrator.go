// Package lsp drives a borrower's loan application across the account
// aggregator and the lender.
package lsp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/audit"
	"ocenmock.org/internal/lender"
	"ocenmock.org/internal/obs"
)

// ConsentProvider is the account aggregator as seen from the LSP.
type ConsentProvider interface {
	RequestConsent(ctx context.Context, userID string, dataTypes []string) (ConsentTicket, error)
	ConsentStatus(ctx context.Context, consentID string) (ConsentTicket, error)
	FetchData(ctx context.Context, consentID string) (FinancialData, error)
}

// LenderGateway submits applications to the lender. A transport failure must
// wrap apperr.ErrUpstreamUnavailable; any other error is a lender refusal.
type LenderGateway interface {
	Submit(ctx context.Context, app lender.Application) (LenderReply, error)
}

// Orchestrator is the loan service provider.
type Orchestrator struct {
	consents ConsentProvider
	lender   LenderGateway
	newID    func() string
}

// Option configures Orchestrator.
type Option func(*Orchestrator)

// WithApplicationIDs overrides application id allocation.
func WithApplicationIDs(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// New builds an orchestrator over its two collaborators.
func New(consents ConsentProvider, lenderGW LenderGateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		consents: consents,
		lender:   lenderGW,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Apply submits req to the lender under a freshly assigned application id.
//
// It does not talk to the account aggregator. Every failure of the lender call
// comes back as either ErrUpstreamUnavailable (transport) or ErrUpstreamRejected
// (the lender answered with a failure); callers surface both the same way.
func (o *Orchestrator) Apply(ctx context.Context, req LoanRequest) (ApplicationResult, error) {
	if err := req.Validate(); err != nil {
		return ApplicationResult{}, err
	}

	app := lender.Application{
		ApplicationID: o.newID(),
		BorrowerName:  req.BorrowerName,
		BusinessName:  req.BusinessName,
		LoanAmount:    req.LoanAmount,
		LoanPurpose:   req.LoanPurpose,
		PAN:           req.PAN,
		GSTIN:         req.GSTIN,
	}
	if hasFinancialData(req.FinancialData) {
		app.FinancialData = req.FinancialData
	}

	reply, err := o.lender.Submit(ctx, app)
	if err != nil {
		err = classifyLenderError(err)
		obs.Warn("lender_submission_failed", map[string]any{
			"application_id": app.ApplicationID,
			"kind":           apperr.KindOf(err),
			"error":          err.Error(),
		})
		return ApplicationResult{}, err
	}

	res := ApplicationResult{
		ApplicationID: app.ApplicationID,
		ConsentID:     valueOr(reply.ConsentID, DefaultConsentID),
		ConsentStatus: valueOr(reply.ConsentStatus, DefaultConsentStatus),
		LenderStatus:  valueOr(reply.Status, DefaultLenderStatus),
		Message:       valueOr(reply.Message, DefaultMessage),
	}
	_ = audit.LogEvent(ctx, "lsp.application.submitted", map[string]any{
		"application_id": res.ApplicationID,
		"lender_status":  res.LenderStatus,
	})
	return res, nil
}

// RequestConsent asks the AA for a consent on behalf of userID.
func (o *Orchestrator) RequestConsent(ctx context.Context, userID string, dataTypes []string) (ConsentTicket, error) {
	return o.consents.RequestConsent(ctx, userID, dataTypes)
}

// CheckConsentStatus polls the AA for the current status of a consent.
func (o *Orchestrator) CheckConsentStatus(ctx context.Context, consentID string) (ConsentTicket, error) {
	return o.consents.ConsentStatus(ctx, consentID)
}

// FetchFinancialData retrieves the artifacts released under an approved consent.
func (o *Orchestrator) FetchFinancialData(ctx context.Context, consentID string) (FinancialData, error) {
	return o.consents.FetchData(ctx, consentID)
}

func classifyLenderError(err error) error {
	if errors.Is(err, apperr.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: lender rejected application: %v", apperr.ErrUpstreamRejected, err)
}
