package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// StatusProvider reports the state of the RESP server.
type StatusProvider interface {
	Ready() bool
	KeyCount() int
	ActiveConnections() int
}

// Handler serves the admin endpoints.
type Handler struct {
	status  StatusProvider
	logger  *slog.Logger
	mux     *http.ServeMux
	started time.Time
}

// New creates a new Handler. status may be nil, in which case the server
// reports itself not ready.
func New(status StatusProvider, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		status:  status,
		logger:  logger,
		mux:     http.NewServeMux(),
		started: time.Now(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)
	h.mux.HandleFunc("GET /status", h.handleStatus)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, resp *Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode response", "error", err, "path", r.URL.Path)
	}
}

// getRequestID reads the request ID set by the request ID middleware.
func getRequestID(r *http.Request) string {
	return r.Header.Get("X-Request-ID")
}
