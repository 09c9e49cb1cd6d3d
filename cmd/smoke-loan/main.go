package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/auth"
	"ocenmock.org/internal/config"
	"ocenmock.org/internal/lsp"
	"ocenmock.org/internal/remote"
)

// smoke-loan drives a running AA and lender through one borrower journey:
// consent request, polling until decided, data fetch, loan submission.
func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config (defaults to $OCEN_CONFIG)")
		user       = flag.String("user", "smoke-user", "user id for the consent")
		amount     = flag.Float64("amount", 75_000, "loan amount")
		wait       = flag.Duration("wait", 15*time.Second, "how long to poll for a consent decision")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	opts := []remote.Option{remote.WithTimeout(cfg.Upstream.Timeout)}
	if signer := auth.NewSigner(cfg.Auth.Secret, cfg.Auth.TokenTTL); signer != nil {
		opts = append(opts, remote.WithSigner(signer, "smoke-loan"))
	}
	orch := lsp.New(
		remote.NewAA(cfg.Upstream.AABaseURL, opts...),
		remote.NewLender(cfg.Upstream.LenderBaseURL, opts...),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *wait+30*time.Second)
	defer cancel()

	ticket, err := orch.RequestConsent(ctx, *user, []string{"bank_statement"})
	if err != nil {
		log.Fatalf("request consent: %v", err)
	}
	fmt.Printf("consent %s: %s\n", ticket.ConsentID, ticket.Status)

	deadline := time.Now().Add(*wait)
	for ticket.Status == "PENDING" && time.Now().Before(deadline) {
		time.Sleep(time.Second)
		if ticket, err = orch.CheckConsentStatus(ctx, ticket.ConsentID); err != nil {
			log.Fatalf("consent status: %v", err)
		}
	}
	fmt.Printf("consent %s: %s\n", ticket.ConsentID, ticket.Status)

	var financial json.RawMessage
	data, err := orch.FetchFinancialData(ctx, ticket.ConsentID)
	switch {
	case err == nil:
		stmt := data.Data["bank_statement"]
		fmt.Printf("bank statement: %d transactions, closing balance %d\n", len(stmt.Transactions), stmt.ClosingBalance)
		if financial, err = data.Payload(); err != nil {
			log.Fatalf("encode financial data: %v", err)
		}
	case errors.Is(err, apperr.ErrConsentNotApproved):
		fmt.Println("consent not approved, applying without financial data")
	default:
		log.Fatalf("fetch data: %v", err)
	}

	res, err := orch.Apply(ctx, lsp.LoanRequest{
		BorrowerName:  "Smoke Borrower",
		BusinessName:  "Smoke Traders",
		LoanAmount:    *amount,
		LoanPurpose:   "working capital",
		FinancialData: financial,
	})
	if err != nil {
		log.Fatalf("apply: %v", err)
	}
	if res.LenderStatus == lsp.DefaultLenderStatus {
		log.Fatalf("lender returned no decision: %+v", res)
	}
	fmt.Printf("✅ loan smoke test passed: application=%s lender_status=%s\n", res.ApplicationID, res.LenderStatus)
}
