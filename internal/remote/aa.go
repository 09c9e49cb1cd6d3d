package remote

import (
	"context"
	"net/http"
	"net/url"

	"ocenmock.org/internal/lsp"
)

// AA is the account aggregator client. It implements lsp.ConsentProvider.
type AA struct {
	c *Client
}

var _ lsp.ConsentProvider = (*AA)(nil)

// NewAA builds an AA client rooted at baseURL.
func NewAA(baseURL string, opts ...Option) *AA {
	return &AA{c: New("aa", baseURL, opts...)}
}

type consentRequest struct {
	UserID    string   `json:"user_id"`
	DataTypes []string `json:"data_types"`
}

func (a *AA) RequestConsent(ctx context.Context, userID string, dataTypes []string) (lsp.ConsentTicket, error) {
	var out lsp.ConsentTicket
	err := a.c.do(ctx, "consent_request", http.MethodPost, "/consent-request",
		consentRequest{UserID: userID, DataTypes: dataTypes}, &out)
	return out, err
}

func (a *AA) ConsentStatus(ctx context.Context, consentID string) (lsp.ConsentTicket, error) {
	var out lsp.ConsentTicket
	err := a.c.do(ctx, "consent_status", http.MethodGet, "/consent-status/"+url.PathEscape(consentID), nil, &out)
	return out, err
}

func (a *AA) FetchData(ctx context.Context, consentID string) (lsp.FinancialData, error) {
	var out lsp.FinancialData
	err := a.c.do(ctx, "fetch_data", http.MethodGet, "/fetch-data/"+url.PathEscape(consentID), nil, &out)
	return out, err
}
