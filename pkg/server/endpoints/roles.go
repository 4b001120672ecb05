package endpoints

import (
	"net/http"

	"github.com/intellecta-dev/intellecta/pkg/server"
)

// RegisterRolesEndpoints registers the role catalog endpoint
func RegisterRolesEndpoints(s *server.Server) {
	s.API.Handle("/roles", s.Protect(handleListRoles(s))).Methods("GET")
}

func handleListRoles(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := s.Workflow.ListRoles(r.Context())
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, roles)
	}
}
