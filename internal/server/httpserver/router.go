package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/yndnr/respkv-go/internal/server/httpserver/handler"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Status reports readiness and keyspace statistics.
	Status handler.StatusProvider

	// Metrics is exposed at /metrics when set.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger *slog.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/", handler.New(cfg.Status, logger))
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	// Order: Recover -> RequestID -> AccessLog -> routes
	return Chain(mux,
		Recover(logger),
		RequestID(),
		AccessLog(logger),
	)
}
