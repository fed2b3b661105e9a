package middleware

import (
	"net/http"
	"time"
)

// SimulatedLatency holds each request for d before serving it, the way the
// mock services of the console behave. A request whose client goes away
// during the wait is dropped.
func SimulatedLatency(d time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case <-timer.C:
				next.ServeHTTP(w, r)
			case <-r.Context().Done():
			}
		})
	}
}
