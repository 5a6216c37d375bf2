package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// sensitiveQueryParams are query keys whose values are masked in logs.
// Provider secrets travel in request bodies, never in URLs, but a confused
// client pasting a key into a query string must not end up in log storage.
var sensitiveQueryParams = map[string]struct{}{
	"api_key":      {},
	"apikey":       {},
	"key":          {},
	"token":        {},
	"access_token": {},
	"secret":       {},
}

// secretTokenPattern matches credential-shaped values: provider API keys
// (sk-..., sk-ant-..., sk-proj-...) and bearer tokens.
var secretTokenPattern = regexp.MustCompile(`(?i)\bsk-[A-Za-z0-9_-]{2,}|\bBearer\s+\S+`)

// redactSecrets masks credential-shaped substrings in a logged value.
func redactSecrets(s string) string {
	return secretTokenPattern.ReplaceAllString(s, "[redacted]")
}

// redactedRequestPath renders the request target for logs with sensitive
// query values masked.
func redactedRequestPath(u *url.URL) string {
	if u.RawQuery == "" {
		return u.Path
	}

	q := u.Query()
	for k := range q {
		if _, ok := sensitiveQueryParams[strings.ToLower(k)]; ok {
			q.Set(k, "[redacted]")
		}
	}

	return u.Path + "?" + redactSecrets(q.Encode())
}

// Logger returns a middleware that logs one structured line per request.
// Request headers are never logged, and the URL and user agent pass through
// secret redaction first, so tokens cannot leak into log storage.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := wrapResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			requestID := GetRequestID(r.Context())
			traceID := GetTraceID(r.Context())

			attrs := []slog.Attr{
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", redactedRequestPath(r.URL)),
				slog.Int("status_code", wrapped.status),
				slog.Float64("duration_ms", float64(duration.Microseconds())/1000),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", redactSecrets(r.UserAgent())),
			}

			if traceID != "" {
				attrs = append(attrs, slog.String("trace_id", traceID))
			}

			level := slog.LevelInfo
			if wrapped.status >= 500 {
				level = slog.LevelError
			} else if wrapped.status >= 400 {
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "http request", attrs...)
		})
	}
}
