// Package httpapi is a thin HTTP adapter over internal/query: two routes
// (GET / and POST /query) plus the ambient /metrics and /health endpoints
// serving the `serve` subcommand.
package httpapi

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/rhea-dev/fsindex/internal/query"
	"github.com/rhea-dev/fsindex/pkg/logger"
	"github.com/rhea-dev/fsindex/pkg/metrics"
)

// Handler serves the query API over one opened query.Engine.
type Handler struct {
	engine    *query.Engine
	defaultK  int
	maxBody   int64
	metrics   *metrics.Metrics
	indexPage []byte
	logger    *slog.Logger
}

// New builds a Handler. indexPage is served verbatim for GET /; pass nil
// to fall back to a minimal built-in page.
func New(engine *query.Engine, defaultK int, m *metrics.Metrics, indexPage []byte) *Handler {
	if defaultK <= 0 {
		defaultK = query.DefaultK
	}
	if indexPage == nil {
		indexPage = []byte(defaultIndexPage)
	}
	return &Handler{
		engine:    engine,
		defaultK:  defaultK,
		maxBody:   1 << 20,
		metrics:   m,
		indexPage: indexPage,
		logger:    slog.Default().With("component", "httpapi"),
	}
}

const defaultIndexPage = `<!DOCTYPE html>
<html><head><title>fsindex</title></head>
<body><h1>fsindex</h1>
<p>POST your query as the raw request body to <code>/query</code>.</p>
</body></html>
`

// Index serves GET /.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(h.indexPage); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// Query serves POST /query. The request body is the raw query text; the
// response is newline-separated paths ordered by descending score. With
// ?scores=1, each line additionally carries "\t<score>".
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody))
	if err != nil {
		http.Error(w, "error reading request body", http.StatusBadRequest)
		return
	}
	if !utf8.Valid(body) {
		http.Error(w, "request body is not valid UTF-8", http.StatusBadRequest)
		return
	}

	k := h.defaultK
	if countStr := r.URL.Query().Get("count"); countStr != "" {
		if parsed, err := strconv.Atoi(countStr); err == nil && parsed > 0 {
			k = parsed
		}
	}
	withScores := r.URL.Query().Get("scores") == "1"

	results, err := h.engine.Query(string(body), k)
	if err != nil {
		log.Error("query failed", "error", err)
		if h.metrics != nil {
			h.metrics.SearchQueriesTotal.WithLabelValues("error").Inc()
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, res := range results {
		if withScores {
			fmt.Fprintf(w, "%s\t%g\n", res.Path, res.Score)
		} else {
			fmt.Fprintf(w, "%s\n", res.Path)
		}
	}

	outcome := "ok"
	if len(results) == 0 {
		outcome = "empty"
	}
	if h.metrics != nil {
		h.metrics.SearchQueriesTotal.WithLabelValues(outcome).Inc()
		h.metrics.SearchLatency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		h.metrics.SearchResultsCount.Observe(float64(len(results)))
	}
	log.Info("query served", "results", len(results), "latency_ms", time.Since(start).Milliseconds())
}
