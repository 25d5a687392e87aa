package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker reports whether an external dependency is reachable.
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// HealthHandler reports liveness. With a checker it also probes the model
// server and answers 503 when it is down.
func HealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := checker.CheckHealth(ctx); err != nil {
				respondJSON(w, map[string]string{"status": "degraded", "inference": err.Error()}, http.StatusServiceUnavailable)
				return
			}
		}
		respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	}
}
