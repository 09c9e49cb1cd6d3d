package httpapi

import (
	"net/http"

	"ocenmock.org/internal/audit"
	"ocenmock.org/internal/lender"
)

type lenderHandlers struct {
	svc *lender.Service
}

// NewLender builds the lender surface.
func NewLender(opts Options, svc *lender.Service) *API {
	if opts.Service == "" {
		opts.Service = "ocen-lender"
	}
	a := newAPI(opts)
	h := &lenderHandlers{svc: svc}
	a.router.HandleFunc("/lender/apply", h.apply).Methods(http.MethodPost)
	a.router.HandleFunc("/lender/status/{application_id}", h.status).Methods(http.MethodGet)
	return a
}

func (h *lenderHandlers) apply(w http.ResponseWriter, r *http.Request) {
	var app lender.Application
	if err := decodeJSON(r, &app); err != nil {
		handleError(w, r, err)
		return
	}
	out, err := h.svc.Apply(r.Context(), app)
	if err != nil {
		handleError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "lender.application.decided", map[string]any{
		"application_id": out.ApplicationID,
		"loan_amount":    app.LoanAmount,
		"decision":       out.Status,
	})
	writeJSON(w, http.StatusOK, out)
}

func (h *lenderHandlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status(r.Context(), pathParam(r, "application_id")))
}
