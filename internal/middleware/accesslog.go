package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"sortrash/internal/logger"
)

// SlowRequest marks requests at or above this duration as warnings.
const SlowRequest = 5 * time.Second

// AccessLog logs method, path, status, elapsed time and bytes written for
// every request. Server errors go to the error log.
func AccessLog(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// keeps Hijack working for websocket upgrades
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			format := "%s %s -> %d (%s, %d bytes) [%s]"
			args := []interface{}{r.Method, r.URL.Path, status, elapsed, ww.BytesWritten(), chimw.GetReqID(r.Context())}
			switch {
			case status >= http.StatusInternalServerError:
				logger.Error(format, args...)
			case elapsed >= SlowRequest:
				logger.Warning(format, args...)
			default:
				logger.Info(format, args...)
			}
		})
	}
}
