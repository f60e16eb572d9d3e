package mockhttp

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/vitalvas/faux/mock"
)

// requestIDMiddleware propagates or generates a request ID. The ID is
// echoed on the response and becomes the operation ID of the dispatch.
func requestIDMiddleware(headerName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(headerName)
			if id == "" {
				id = uuid.NewString()
				r.Header.Set(headerName, id)
			}

			w.Header().Set(headerName, id)
			r = r.WithContext(mock.ContextWithID(r.Context(), id))

			next.ServeHTTP(w, r)
		})
	}
}

// recoveryMiddleware turns handler panics into 500 responses. Handlers run
// after a latency are recovered by the server itself, see
// mock.Options.RecoverDelayed.
func recoveryMiddleware(logger zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error().
						Interface("panic", err).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Str("id", mock.IDFromContext(r.Context())).
						Msg("mockhttp: handler panic")

					writeJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
