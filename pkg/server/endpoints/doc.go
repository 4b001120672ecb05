// Package endpoints registers the Intellecta REST API on a server.Server.
//
// Handlers decode JSON bodies, call the workflow service or the injected
// identity provider and assistant, and answer with JSON. Errors use the
// envelope {"error": {"code": ..., "message": ...}} with the status derived
// from the error: invalid input 400, not found 404, conflict 409, store
// unavailable 503 and upstream failures with the provider's status.
package endpoints
