package middleware

import (
	"net/http"

	"fieldops/internal/logger"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestID takes the X-Request-ID header, or generates one, echoes it on
// the response and stores it in the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.WithRequestID(r.Context(), id)))
	})
}
