package httpapi

import (
	"net/http"
	"strings"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/lsp"
)

type lspHandlers struct {
	orch *lsp.Orchestrator
}

// NewLSP builds the loan service provider surface.
func NewLSP(opts Options, orch *lsp.Orchestrator) *API {
	if opts.Service == "" {
		opts.Service = "ocen-lsp"
	}
	a := newAPI(opts)
	h := &lspHandlers{orch: orch}
	a.router.HandleFunc("/loan/apply", h.apply).Methods(http.MethodPost)
	a.router.HandleFunc("/loan/consent", h.requestConsent).Methods(http.MethodPost)
	a.router.HandleFunc("/loan/consent/{consent_id}", h.consentStatus).Methods(http.MethodGet)
	a.router.HandleFunc("/loan/consent/{consent_id}/data", h.financialData).Methods(http.MethodGet)
	return a
}

// apply reports every lender failure as 500; the kind field still tells
// transport errors from refusals.
func (h *lspHandlers) apply(w http.ResponseWriter, r *http.Request) {
	var req lsp.LoanRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	res, err := h.orch.Apply(r.Context(), req)
	if err != nil {
		kind := apperr.KindOf(err)
		if kind == apperr.KindInvalidRequest {
			handleError(w, r, err)
			return
		}
		writeError(w, r, http.StatusInternalServerError, kind, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *lspHandlers) requestConsent(w http.ResponseWriter, r *http.Request) {
	var req consentRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		handleError(w, r, apperr.Invalid("user_id is required"))
		return
	}
	if len(req.DataTypes) == 0 {
		handleError(w, r, apperr.Invalid("data_types must contain at least one entry"))
		return
	}
	ticket, err := h.orch.RequestConsent(r.Context(), req.UserID, req.DataTypes)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *lspHandlers) consentStatus(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.orch.CheckConsentStatus(r.Context(), pathParam(r, "consent_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (h *lspHandlers) financialData(w http.ResponseWriter, r *http.Request) {
	data, err := h.orch.FetchFinancialData(r.Context(), pathParam(r, "consent_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}
