package endpoints

import (
	"net/http"

	"github.com/intellecta-dev/intellecta/pkg/server"
)

// RegisterStatusEndpoints registers the ticket status catalog endpoint
func RegisterStatusEndpoints(s *server.Server) {
	s.API.Handle("/status", s.Protect(handleListStatuses(s))).Methods("GET")
}

func handleListStatuses(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statuses, err := s.Workflow.ListStatuses(r.Context())
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, statuses)
	}
}
