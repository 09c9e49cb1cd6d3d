package remote

import (
	"context"
	"net/http"
	"net/url"

	"ocenmock.org/internal/lender"
	"ocenmock.org/internal/lsp"
)

// Lender is the lender client. It implements lsp.LenderGateway.
type Lender struct {
	c *Client
}

var _ lsp.LenderGateway = (*Lender)(nil)

// NewLender builds a lender client rooted at baseURL.
func NewLender(baseURL string, opts ...Option) *Lender {
	return &Lender{c: New("lender", baseURL, opts...)}
}

func (l *Lender) Submit(ctx context.Context, app lender.Application) (lsp.LenderReply, error) {
	var out lsp.LenderReply
	err := l.c.do(ctx, "apply", http.MethodPost, "/lender/apply", app, &out)
	return out, err
}

// Status asks the lender about a previously submitted application.
func (l *Lender) Status(ctx context.Context, applicationID string) (lender.Outcome, error) {
	var out lender.Outcome
	err := l.c.do(ctx, "status", http.MethodGet, "/lender/status/"+url.PathEscape(applicationID), nil, &out)
	return out, err
}
