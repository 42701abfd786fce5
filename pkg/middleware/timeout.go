package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rhea-dev/fsindex/pkg/logger"
)

// Timeout bounds how long the `serve` subcommand spends on a single
// request. In practice the only handler slow enough to matter is
// POST /query running a full scan over every on-disk segment, so the
// timeout is sized against query latency rather than a generic request
// budget (see cfg.Server.WriteTimeout in cmd/fsindex).
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			done := make(chan struct{})
			tw := &timeoutWriter{ResponseWriter: w}
			go func() {
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()
			select {
			case <-done:
			case <-ctx.Done():
				if !tw.written {
					logger.FromContext(r.Context()).Warn("query timed out", "method", r.Method, "path", r.URL.Path, "timeout", timeout)
					http.Error(w, "query timed out", http.StatusGatewayTimeout)
				}
			}
		})
	}
}

type timeoutWriter struct {
	http.ResponseWriter
	written bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.written = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.written = true
	return tw.ResponseWriter.Write(b)
}
