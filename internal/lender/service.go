package lender

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/obs"
)

// Application is the loan application as submitted to the lender.
type Application struct {
	ApplicationID string          `json:"application_id"`
	BorrowerName  string          `json:"borrower_name"`
	BusinessName  string          `json:"business_name"`
	LoanAmount    float64         `json:"loan_amount"`
	LoanPurpose   string          `json:"loan_purpose"`
	PAN           string          `json:"pan,omitempty"`
	GSTIN         string          `json:"gstin,omitempty"`
	FinancialData json.RawMessage `json:"financial_data,omitempty"`
}

// Validate checks the fields the decision depends on.
func (a Application) Validate() error {
	if strings.TrimSpace(a.ApplicationID) == "" {
		return apperr.Invalid("application_id is required")
	}
	if strings.TrimSpace(a.BorrowerName) == "" {
		return apperr.Invalid("borrower_name is required")
	}
	if strings.TrimSpace(a.BusinessName) == "" {
		return apperr.Invalid("business_name is required")
	}
	if math.IsNaN(a.LoanAmount) || math.IsInf(a.LoanAmount, 0) || a.LoanAmount <= 0 {
		return apperr.Invalid("loan_amount must be a positive number")
	}
	return nil
}

// Outcome is the lender's reply for one application.
type Outcome struct {
	ApplicationID string   `json:"application_id"`
	Status        Decision `json:"status"`
	Message       string   `json:"message"`
}

// Service is the lender. It keeps no application records.
type Service struct {
	policy Policy
}

// NewService returns a lender using policy.
func NewService(policy Policy) *Service {
	return &Service{policy: policy}
}

// Apply evaluates app and returns the decision.
func (s *Service) Apply(ctx context.Context, app Application) (Outcome, error) {
	if err := app.Validate(); err != nil {
		return Outcome{}, err
	}
	decision := s.policy.Evaluate(app.LoanAmount)
	obs.LenderDecision(string(decision))
	return Outcome{
		ApplicationID: app.ApplicationID,
		Status:        decision,
		Message:       "Loan application " + string(decision) + ".",
	}, nil
}

// Status is a placeholder until applications are tracked: always pending.
func (s *Service) Status(ctx context.Context, applicationID string) Outcome {
	return Outcome{
		ApplicationID: applicationID,
		Status:        DecisionPending,
		Message:       "Loan application is pending.",
	}
}
