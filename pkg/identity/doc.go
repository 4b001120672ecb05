// Package identity provides authenticated identity management for Intellecta
// requests.
//
// An Identity combines validated access token claims (subject, scopes,
// timestamps) with request-specific context such as the client IP.
//
// # Basic Usage
//
//	// Create identity from validated claims
//	id := identity.FromClaims(claims).WithRemoteIP(clientIP)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
package identity
