package httpapi

import (
	"net/http"
	"time"

	"github.com/rhea-dev/fsindex/pkg/health"
	"github.com/rhea-dev/fsindex/pkg/metrics"
	"github.com/rhea-dev/fsindex/pkg/middleware"
)

// NewMux builds the full route table for the `serve` subcommand:
//
//	GET  /              → static index page
//	POST /query         → query.Engine, per §4.8
//	GET  /metrics       → Prometheus scrape endpoint
//	GET  /health/live   → liveness probe
//	GET  /health/ready  → readiness probe
//
// Middleware chain (outermost first): RequestID → Timeout → Metrics → mux.
func NewMux(h *Handler, m *metrics.Metrics, checker *health.Checker, timeout time.Duration) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", h.Index)
	mux.HandleFunc("/query", h.Query)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	if timeout > 0 {
		chain = middleware.Timeout(timeout)(chain)
	}
	chain = middleware.RequestID(chain)
	return chain
}
