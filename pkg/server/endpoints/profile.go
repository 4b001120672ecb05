package endpoints

import (
	"net/http"

	"github.com/intellecta-dev/intellecta/pkg/auth0"
	"github.com/intellecta-dev/intellecta/pkg/server"
)

// RegisterProfileEndpoints registers the caller's profile endpoints
func RegisterProfileEndpoints(s *server.Server) {
	s.API.Handle("/", s.Protect(handleProfile())).Methods("GET")
	s.API.Handle("/profile", s.Protect(handleUpdateProfile(s))).Methods("PATCH")
}

// handleProfile returns the claims of the caller's access token
func handleProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, caller(r).Claims)
	}
}

func handleUpdateProfile(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update auth0.UserUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			badRequest(w, err.Error())
			return
		}
		if update.IsEmpty() {
			badRequest(w, "no fields to update")
			return
		}

		if s.Directory == nil {
			unavailable(w, "identity provider")
			return
		}

		user, err := s.Directory.UpdateUser(r.Context(), caller(r).UserID, update)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}
