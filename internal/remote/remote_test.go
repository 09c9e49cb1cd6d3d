package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/audit"
	"ocenmock.org/internal/auth"
	"ocenmock.org/internal/lender"
)

func TestAARequestConsent(t *testing.T) {
	var got consentRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/consent-request" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		if rid := r.Header.Get("X-Request-ID"); rid != "req-42" {
			t.Errorf("request id = %q", rid)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"consent_id":"consent_1","status":"PENDING","message":"Consent request created."}`))
	}))
	defer srv.Close()

	aa := NewAA(srv.URL + "/")
	ctx := audit.WithRequestID(context.Background(), "req-42")
	ticket, err := aa.RequestConsent(ctx, "user-1", []string{"bank_statement"})
	if err != nil {
		t.Fatalf("RequestConsent: %v", err)
	}
	if ticket.ConsentID != "consent_1" || ticket.Status != "PENDING" {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}
	if got.UserID != "user-1" || len(got.DataTypes) != 1 || got.DataTypes[0] != "bank_statement" {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestAAStatusAndFetchPaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/consent-status/consent_1":
			_, _ = w.Write([]byte(`{"consent_id":"consent_1","status":"APPROVED","message":"Consent status retrieved."}`))
		case "/fetch-data/consent_1":
			_, _ = w.Write([]byte(`{"consent_id":"consent_1","data":{"bank_statement":{"account_number":"XXXX1234","bank_name":"Mock Bank","transactions":[{"date":"2024-05-01","description":"Salary","amount":500}],"closing_balance":10500}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	aa := NewAA(srv.URL)
	ticket, err := aa.ConsentStatus(context.Background(), "consent_1")
	if err != nil || ticket.Status != "APPROVED" {
		t.Fatalf("ConsentStatus = %+v, %v", ticket, err)
	}
	data, err := aa.FetchData(context.Background(), "consent_1")
	if err != nil {
		t.Fatalf("FetchData: %v", err)
	}
	stmt, ok := data.Data["bank_statement"]
	if !ok || stmt.ClosingBalance != 10500 || len(stmt.Transactions) != 1 {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestAAErrorMapping(t *testing.T) {
	cases := []struct {
		code int
		body string
		want error
	}{
		{http.StatusBadRequest, `{"error":"user_id is required"}`, apperr.ErrInvalidRequest},
		{http.StatusForbidden, `{"error":"consent not approved"}`, apperr.ErrConsentNotApproved},
		{http.StatusNotFound, `{"detail":"Consent not found"}`, apperr.ErrNotFound},
		{http.StatusInternalServerError, `oops`, apperr.ErrUpstreamRejected},
		{http.StatusTooManyRequests, `{"error":"rate limit exceeded","kind":"invalid_request"}`, apperr.ErrUpstreamUnavailable},
		{http.StatusServiceUnavailable, `{"error":"streaming disabled"}`, apperr.ErrUpstreamUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.code)
			_, _ = w.Write([]byte(tc.body))
		}))
		_, err := NewAA(srv.URL).FetchData(context.Background(), "consent_x")
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("code %d: got %v, want %v", tc.code, err, tc.want)
		}
		var se *apperr.StatusError
		if !errors.As(err, &se) || se.Code != tc.code {
			t.Fatalf("code %d: expected StatusError, got %v", tc.code, err)
		}
	}
}

func TestErrorDetail(t *testing.T) {
	if got := errorDetail([]byte(`{"error":"bad","kind":"invalid_request"}`)); got != "bad" {
		t.Fatalf("error field: %q", got)
	}
	if got := errorDetail([]byte(`{"detail":"Consent not found"}`)); got != "Consent not found" {
		t.Fatalf("detail field: %q", got)
	}
	if got := errorDetail([]byte(" plain text \n")); got != "plain text" {
		t.Fatalf("plain body: %q", got)
	}
}

func TestUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewLender(url).Submit(context.Background(), lender.Application{ApplicationID: "a"})
	if !errors.Is(err, apperr.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewAA(srv.URL, WithTimeout(50*time.Millisecond)).ConsentStatus(context.Background(), "consent_1")
	if !errors.Is(err, apperr.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestLenderSubmitAndStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/lender/apply":
			var app lender.Application
			if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
				t.Errorf("decode: %v", err)
			}
			_, _ = w.Write([]byte(`{"application_id":"` + app.ApplicationID + `","status":"approved","message":"Loan application approved."}`))
		case r.Method == http.MethodGet && r.URL.Path == "/lender/status/app-9":
			_, _ = w.Write([]byte(`{"application_id":"app-9","status":"pending","message":"Loan application is pending."}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLender(srv.URL)
	reply, err := l.Submit(context.Background(), lender.Application{ApplicationID: "app-9", LoanAmount: 75_000})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if reply.ApplicationID != "app-9" || reply.Status == nil || *reply.Status != "approved" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if reply.ConsentID != nil || reply.ConsentStatus != nil {
		t.Fatalf("absent consent fields decoded as present: %+v", reply)
	}

	out, err := l.Status(context.Background(), "app-9")
	if err != nil || out.Status != lender.DecisionPending {
		t.Fatalf("Status = %+v, %v", out, err)
	}
}

func TestMalformedReplyIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewLender(srv.URL).Submit(context.Background(), lender.Application{ApplicationID: "a"})
	if !errors.Is(err, apperr.ErrUpstreamRejected) {
		t.Fatalf("expected ErrUpstreamRejected, got %v", err)
	}
}

func TestSignerAddsBearerToken(t *testing.T) {
	signer := auth.NewSigner("s3cret", time.Minute)
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"consent_id":"c","status":"PENDING"}`))
	}))
	defer srv.Close()

	if _, err := NewAA(srv.URL, WithSigner(signer, "lsp")).ConsentStatus(context.Background(), "c"); err != nil {
		t.Fatalf("ConsentStatus: %v", err)
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		t.Fatalf("missing bearer header: %q", header)
	}
	claims, err := signer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Service != "lsp" {
		t.Fatalf("service = %q, want lsp", claims.Service)
	}
}
