package middleware

import (
	"net/http"
	"strings"

	"github.com/MonkyMars/gecho"
)

// SetupLoggerMiddleware logs every request except event streams, which must
// reach the handler with a flushable writer
func (mw *Middleware) SetupLoggerMiddleware() func(http.Handler) http.Handler {
	logging := gecho.Handlers.CreateLoggingMiddleware(mw.logger)

	return func(next http.Handler) http.Handler {
		logged := logging(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsEventStream(r) {
				mw.logger.Debug("Event stream opened", gecho.Field("path", r.URL.Path))
				next.ServeHTTP(w, r)
				return
			}
			logged.ServeHTTP(w, r)
		})
	}
}

func IsEventStream(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
