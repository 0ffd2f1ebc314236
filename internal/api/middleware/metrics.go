package middleware

import (
	"net/http"
	"strconv"
	"time"
	"vehicletracker/internal/metrics"
)

// MetricsMiddleware records request counts and latency labelled by the
// matched route pattern. A nil collector disables it.
func MetricsMiddleware(c *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if c == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
			c.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		})
	}
}
