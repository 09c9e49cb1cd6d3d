package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ocenmock.org/internal/apperr"
)

// consentEvents streams consent transitions as Server-Sent Events.
func (h *aaHandlers) consentEvents(w http.ResponseWriter, r *http.Request) {
	if h.events == nil {
		writeError(w, r, http.StatusServiceUnavailable, apperr.KindUpstreamUnavailable, "streaming disabled")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, apperr.KindInternal, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.events.Subscribe(r.Context())

	_, _ = w.Write([]byte(": stream started\n\n"))
	flusher.Flush()

	for event := range ch {
		payload, err := json.Marshal(event)
		if err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "event: consent\ndata: %s\n\n", payload)
		flusher.Flush()
	}
}
