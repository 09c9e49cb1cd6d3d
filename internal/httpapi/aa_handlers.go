package httpapi

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ocenmock.org/internal/apperr"
	"ocenmock.org/internal/audit"
	"ocenmock.org/internal/consent"
	"ocenmock.org/internal/datagate"
	"ocenmock.org/internal/stream"
)

const (
	msgConsentCreated = "Consent request created successfully."
	msgConsentStatus  = "Consent status updated successfully."
)

type consentRequest struct {
	UserID    string   `json:"user_id"`
	DataTypes []string `json:"data_types"`
}

type consentResponse struct {
	ConsentID string         `json:"consent_id"`
	Status    consent.Status `json:"status"`
	Message   string         `json:"message"`
}

type fetchDataResponse struct {
	ConsentID string                            `json:"consent_id"`
	Data      map[string]datagate.BankStatement `json:"data"`
}

type aaHandlers struct {
	consents *consent.Manager
	gate     *datagate.Gate
	events   *stream.Stream
}

// NewAA builds the account aggregator surface. Routes are served both at the
// root and under /aa. events may be nil, which disables /consent-events.
func NewAA(opts Options, consents *consent.Manager, gate *datagate.Gate, events *stream.Stream) *API {
	if opts.Service == "" {
		opts.Service = "ocen-aa"
	}
	a := newAPI(opts)
	h := &aaHandlers{consents: consents, gate: gate, events: events}
	h.register(a.router)
	h.register(a.router.PathPrefix("/aa").Subrouter())
	return a
}

func (h *aaHandlers) register(r *mux.Router) {
	r.HandleFunc("/consent-request", h.createConsent).Methods(http.MethodPost)
	r.HandleFunc("/consent-status/{consent_id}", h.consentStatus).Methods(http.MethodGet)
	r.HandleFunc("/fetch-data/{consent_id}", h.fetchData).Methods(http.MethodGet)
	r.HandleFunc("/consent-events", h.consentEvents).Methods(http.MethodGet)
}

func (h *aaHandlers) createConsent(w http.ResponseWriter, r *http.Request) {
	var req consentRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		handleError(w, r, apperr.Invalid("user_id is required"))
		return
	}
	c, err := h.consents.Create(r.Context(), req.UserID, req.DataTypes)
	if err != nil {
		handleError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "aa.consent.created", map[string]any{
		"consent_id": c.ID,
		"user_id":    c.UserID,
		"data_types": c.DataTypes,
	})
	writeJSON(w, http.StatusOK, consentResponse{
		ConsentID: c.ID,
		Status:    c.Status,
		Message:   msgConsentCreated,
	})
}

func (h *aaHandlers) consentStatus(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "consent_id")
	status, err := h.consents.Status(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, consentResponse{
		ConsentID: id,
		Status:    status,
		Message:   msgConsentStatus,
	})
}

func (h *aaHandlers) fetchData(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "consent_id")
	data, err := h.gate.FetchData(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	types := make([]string, 0, len(data))
	for dt := range data {
		types = append(types, dt)
	}
	_ = audit.LogEvent(r.Context(), "aa.data.released", map[string]any{
		"consent_id": id,
		"data_types": types,
	})
	writeJSON(w, http.StatusOK, fetchDataResponse{ConsentID: id, Data: data})
}
