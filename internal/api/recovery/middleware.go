package recovery

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/curionet/curio/internal/api/respond"
)

// Middleware intercepts panics from downstream handlers, logs them with the
// request id, and answers with the standard error payload.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("url", r.URL.String()).
					Str("remote", r.RemoteAddr).
					Str("request_id", r.Header.Get("X-Request-Id")).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				respond.WriteError(w, http.StatusInternalServerError, "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
