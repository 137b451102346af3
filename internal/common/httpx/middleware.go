package httpx

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"cafe-orders/internal/app/metrics"
	"cafe-orders/internal/common/logger"
)

const RequestIDHeader = "X-Request-ID"

// Logging logs one line per request, tagged with the caller's request id or a
// fresh one echoed back in the response.
func Logging(lg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, rid)

			rec := &metrics.StatusRecorder{ResponseWriter: w, Status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r)

			fields := map[string]any{
				"request_id":  rid,
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      rec.Status,
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if rec.Status >= http.StatusInternalServerError {
				lg.Warn("http_request", nil, fields)
				return
			}
			lg.Debug("http_request", fields)
		})
	}
}
