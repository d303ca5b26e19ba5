package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse represents the JSON response from the health check endpoint.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// HealthChecker is implemented by the search backend, the object store and
// the secret store.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// NamedCheck labels a dependency in the health response.
type NamedCheck struct {
	Name    string
	Checker HealthChecker
}

// NewHealthHandler creates an HTTP handler for the /health endpoint.
// Every dependency is checked; any failure returns 503.
func NewHealthHandler(checks []NamedCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Create context with 3-second timeout for health check
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		response := HealthResponse{
			Status:    "healthy",
			Checks:    make(map[string]string, len(checks)),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		code := http.StatusOK
		for _, c := range checks {
			if err := c.Checker.Health(ctx); err != nil {
				response.Checks[c.Name] = "disconnected"
				response.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			response.Checks[c.Name] = "connected"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(response)
	}
}
