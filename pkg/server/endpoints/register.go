package endpoints

import (
	"github.com/intellecta-dev/intellecta/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterHealthEndpoint(srv)
	RegisterAuthEndpoints(srv)
	RegisterProfileEndpoints(srv)
	RegisterRolesEndpoints(srv)
	RegisterStatusEndpoints(srv)
	RegisterProjectsEndpoints(srv)
	RegisterTicketsEndpoints(srv)
	RegisterIntellectaEndpoints(srv)
}
