package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/helixml/tasklist/internal/log"
)

// CorrelationHeader carries the correlation id on requests and responses.
const CorrelationHeader = "X-Correlation-ID"

// CorrelationID returns a middleware that adds a correlation id to the request context.
// The X-Correlation-ID header wins, otherwise chi's request id is used.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationHeader)
		if id == "" {
			id = middleware.GetReqID(r.Context())
		}

		w.Header().Set(CorrelationHeader, id)
		next.ServeHTTP(w, r.WithContext(log.WithCorrelationID(r.Context(), id)))
	})
}
