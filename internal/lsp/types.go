package lsp

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/datagate"
)

// Defaults applied when the lender's reply omits a field.
const (
	DefaultConsentID     = "default-consent-id"
	DefaultConsentStatus = "approved"
	DefaultLenderStatus  = "Unknown"
	DefaultMessage       = "Application processed."
)

// LoanRequest is a borrower's application as received by the LSP.
// ApplicationID is accepted for compatibility and always replaced.
type LoanRequest struct {
	ApplicationID string          `json:"application_id,omitempty"`
	BorrowerName  string          `json:"borrower_name"`
	BusinessName  string          `json:"business_name"`
	LoanAmount    float64         `json:"loan_amount"`
	LoanPurpose   string          `json:"loan_purpose"`
	GSTIN         string          `json:"gstin,omitempty"`
	PAN           string          `json:"pan,omitempty"`
	FinancialData json.RawMessage `json:"financial_data,omitempty"`
}

// Validate rejects requests before anything is sent downstream.
func (r LoanRequest) Validate() error {
	if strings.TrimSpace(r.BorrowerName) == "" {
		return apperr.Invalid("borrower_name is required")
	}
	if strings.TrimSpace(r.BusinessName) == "" {
		return apperr.Invalid("business_name is required")
	}
	if math.IsNaN(r.LoanAmount) || math.IsInf(r.LoanAmount, 0) || r.LoanAmount <= 0 {
		return apperr.Invalid("loan_amount must be a positive number")
	}
	if hasFinancialData(r.FinancialData) {
		trimmed := bytes.TrimSpace(r.FinancialData)
		if !json.Valid(trimmed) || trimmed[0] != '{' {
			return apperr.Invalid("financial_data must be a JSON object")
		}
	}
	return nil
}

func hasFinancialData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// ApplicationResult aggregates the lender's answer for the caller.
type ApplicationResult struct {
	ApplicationID string `json:"application_id"`
	ConsentID     string `json:"consent_id"`
	ConsentStatus string `json:"consent_status"`
	LenderStatus  string `json:"lender_status"`
	Message       string `json:"message"`
}

// LenderReply is the lender's success body. Absent fields stay nil.
type LenderReply struct {
	ApplicationID string  `json:"application_id"`
	Status        *string `json:"status"`
	Message       *string `json:"message"`
	ConsentID     *string `json:"consent_id"`
	ConsentStatus *string `json:"consent_status"`
}

// ConsentTicket is the AA's view of one consent.
type ConsentTicket struct {
	ConsentID string `json:"consent_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

// FinancialData is what the AA released under a consent.
type FinancialData struct {
	ConsentID string                            `json:"consent_id"`
	Data      map[string]datagate.BankStatement `json:"data"`
}

// Payload encodes the released artifacts as a loan request's financial_data.
// It is nil when nothing was released.
func (d FinancialData) Payload() (json.RawMessage, error) {
	if len(d.Data) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func valueOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}
