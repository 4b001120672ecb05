package identity

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated caller of a request.
// It combines access token claims with request-specific context.
type Identity struct {
	// Token claims
	UserID    string // identity provider subject, e.g. "auth0|64f1..."
	Scopes    []string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP

	// The full claim set of the access token
	Claims jwt.MapClaims
}

// FromClaims creates an Identity from validated access token claims.
func FromClaims(claims jwt.MapClaims) *Identity {
	id := &Identity{Claims: claims}
	id.UserID, _ = claims.GetSubject()
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	if scope, ok := claims["scope"].(string); ok {
		id.Scopes = strings.Fields(scope)
	}
	return id
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// HasScope reports whether the token was granted scope.
func (i *Identity) HasScope(scope string) bool {
	for _, s := range i.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ClientIP returns the remote IP as a string, or "" if unknown.
func (i *Identity) ClientIP() string {
	if i.RemoteIP == nil {
		return ""
	}
	return i.RemoteIP.String()
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
