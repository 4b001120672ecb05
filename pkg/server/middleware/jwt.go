package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/identity"
)

// JWTAuthenticator is middleware that validates RS256 bearer tokens issued
// by the identity provider
type JWTAuthenticator struct {
	Keys     *KeySet
	Issuer   string
	Audience string
	Logger   *zap.Logger
}

// NewJWTAuthenticator creates a new JWT authenticator middleware
func NewJWTAuthenticator(keys *KeySet, issuer, audience string, logger *zap.Logger) *JWTAuthenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JWTAuthenticator{
		Keys:     keys,
		Issuer:   issuer,
		Audience: audience,
		Logger:   logger,
	}
}

// Validate parses the token and checks its signature, issuer, audience and
// expiry
func (j *JWTAuthenticator) Validate(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	if j.Audience != "" {
		opts = append(opts, jwt.WithAudience(j.Audience))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("missing kid in token header")
		}
		return j.Keys.Key(ctx, kid)
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims format")
	}
	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, errors.New("missing sub claim")
	}
	return claims, nil
}

// Middleware returns an HTTP middleware that validates bearer tokens and
// stores the caller's identity in the request context
func (j *JWTAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization missing")
			return
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			unauthorized(w, "Malformed authorization header")
			return
		}

		claims, err := j.Validate(r.Context(), strings.TrimSpace(tokenString))
		if err != nil {
			j.Logger.Debug("rejected bearer token", zap.Error(err), zap.String("path", r.URL.Path))
			unauthorized(w, fmt.Sprintf("Invalid token: %s", tokenReason(err)))
			return
		}

		id := identity.FromClaims(claims).WithRemoteIP(remoteIP(r))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

func tokenReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token expired"
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return "invalid issuer"
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return "invalid audience"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed token"
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return "invalid signature"
	}
	return "verification failed"
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer`)
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// remoteIP extracts the client IP from the request. X-Forwarded-For is
// applied upstream by handlers.ProxyHeaders.
func remoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}
