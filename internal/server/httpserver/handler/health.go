package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, NewResponse(getRequestID(r), map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}))
}

// handleReady handles GET /ready.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.status == nil || !h.status.Ready() {
		h.writeJSON(w, r, http.StatusServiceUnavailable,
			NewErrorResponse(getRequestID(r), "NOT_READY", "redis listener is not running"))
		return
	}
	h.writeJSON(w, r, http.StatusOK, NewResponse(getRequestID(r), map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	}))
}

// handleStatus handles GET /status.
func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := StatusResponse{
		Build:  buildinfo.Get(),
		Uptime: time.Since(h.started).Round(time.Second).String(),
	}
	if h.status != nil {
		st.Keys = h.status.KeyCount()
		st.ActiveConnections = h.status.ActiveConnections()
	}
	h.writeJSON(w, r, http.StatusOK, NewResponse(getRequestID(r), st))
}
