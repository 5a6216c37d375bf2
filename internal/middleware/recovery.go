package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
)

// Recoverer converts handler panics into 500 responses instead of dropped
// connections. The panic value and stack are logged with the request ID; a
// panic caused by http.ErrAbortHandler is re-raised per its contract.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
						panic(rvr)
					}

					logger.Error("panic recovered",
						slog.String("request_id", GetRequestID(r.Context())),
						slog.Any("panic", rvr),
						slog.String("stack", string(debug.Stack())),
					)

					if os.Getenv("APP_ENV") == "development" {
						debug.PrintStack()
					}

					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
