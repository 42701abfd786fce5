package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rhea-dev/fsindex/pkg/logger"
)

type requestIDKey struct{}

// HeaderName is the header clients may set to supply their own request ID;
// when absent, one is generated.
const HeaderName = "X-Request-Id"

// RequestID assigns each request an ID (from the incoming header, or a
// fresh UUID), stores it in the request context and in the logger's
// context, and echoes it back on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		ctx = logger.WithRequestID(ctx, id)
		w.Header().Set(HeaderName, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID stored by RequestID, or "" if none.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
