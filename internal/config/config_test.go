package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(FileEnv, "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Consent.DecisionDelay != 5*time.Second || cfg.Consent.ExpiryWindow != 1800*time.Second {
		t.Fatalf("unexpected consent timings: %+v", cfg.Consent)
	}
	if cfg.Loan.MinAmount != 50000 || cfg.Loan.MaxAmount != 1000000 {
		t.Fatalf("unexpected loan thresholds: %+v", cfg.Loan)
	}
	if cfg.AA.Addr != ":7000" || cfg.Lender.Addr != ":9000" || cfg.LSP.Addr != ":8000" {
		t.Fatalf("unexpected addrs: %s %s %s", cfg.AA.Addr, cfg.Lender.Addr, cfg.LSP.Addr)
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "ocen.yaml")
	yml := `
consent:
  decision_delay: 2s
  expiry_window: 1m
loan:
  min_amount: 1000
  max_amount: 5000
upstream:
  lender_base_url: http://lender.internal:9000
  timeout: 3s
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("OCEN_LOAN_MAX_AMOUNT", "7500")
	t.Setenv("OCEN_AUTH_SECRET", "s3cret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Consent.DecisionDelay != 2*time.Second || cfg.Consent.ExpiryWindow != time.Minute {
		t.Fatalf("yaml timings not applied: %+v", cfg.Consent)
	}
	if cfg.Loan.MinAmount != 1000 || cfg.Loan.MaxAmount != 7500 {
		t.Fatalf("expected env override of max amount: %+v", cfg.Loan)
	}
	if cfg.Upstream.LenderBaseURL != "http://lender.internal:9000" || cfg.Upstream.Timeout != 3*time.Second {
		t.Fatalf("upstream not applied: %+v", cfg.Upstream)
	}
	if cfg.Upstream.AABaseURL != "http://127.0.0.1:7000" {
		t.Fatalf("default aa url lost: %s", cfg.Upstream.AABaseURL)
	}
	if cfg.Auth.Secret != "s3cret" {
		t.Fatalf("auth secret not applied")
	}
}

func TestValidateRejectsBadTimings(t *testing.T) {
	cfg := Default()
	cfg.Consent.ExpiryWindow = cfg.Consent.DecisionDelay
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}

	cfg = Default()
	cfg.Loan.MinAmount = 10
	cfg.Loan.MaxAmount = 5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for inverted thresholds")
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
