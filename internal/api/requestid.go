package api

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id echoed on every response.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns a correlation id to requests that arrive without one and
// echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
