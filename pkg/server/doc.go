// Package server provides the HTTP server for the Intellecta API.
//
// It uses gorilla/mux for routing and gorilla/handlers for proxy headers,
// CORS and combined access logs. Dependencies are injected through Options;
// nothing here reaches for package-level clients.
//
// # Server Setup
//
//	srv := server.NewServer(server.Options{
//	    Config:        cfg,
//	    Workflow:      svc,
//	    HealthStore:   gormstore.NewHealthStore(db),
//	    Directory:     auth0Client,
//	    Assistant:     assistant,
//	    Authenticator: middleware.NewJWTAuthenticator(keys, issuer, audience, logger),
//	    Host:          "0.0.0.0",
//	    Port:          "8080",
//	})
//	endpoints.RegisterAll(srv)
//	go srv.Start()
//	...
//	srv.Shutdown(ctx)
//
// # Endpoints
//
// Every endpoint lives under /api and is registered by the endpoints
// subpackage. All but /api/health and /api/auth/* require a bearer token.
package server
