package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/intellecta-dev/intellecta/pkg/server"
)

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
	Database  string  `json:"database"`
}

// RegisterHealthEndpoint registers the unauthenticated health check
func RegisterHealthEndpoint(s *server.Server) {
	s.API.HandleFunc("/health", handleHealth(s)).Methods("GET")
}

func handleHealth(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "OK",
			Uptime:    time.Since(s.StartedAt).Seconds(),
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Database:  "ok",
		}

		if s.HealthStore != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := s.HealthStore.CheckConnectivity(ctx); err != nil {
				resp.Status = "DEGRADED"
				resp.Database = "unreachable"
				respondWithJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}

		respondWithJSON(w, http.StatusOK, resp)
	}
}
