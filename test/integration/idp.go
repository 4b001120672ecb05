package integration

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testKeyID = "integration-key-1"

// TestIdP stands in for the identity provider: it serves a JWKS and signs
// RS256 access tokens with the matching private key
type TestIdP struct {
	key    *rsa.PrivateKey
	server *httptest.Server
}

// NewTestIdP generates a key pair and starts serving its JWKS
func NewTestIdP() (*TestIdP, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	idp := &TestIdP{key: key}
	idp.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"keys": []map[string]string{{
				"kid": testKeyID,
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
			}},
		})
	}))
	return idp, nil
}

// JWKSURL is where the authenticator fetches signing keys
func (idp *TestIdP) JWKSURL() string {
	return idp.server.URL + "/.well-known/jwks.json"
}

// Token signs an access token for subject
func (idp *TestIdP) Token(subject string) (string, error) {
	return idp.sign(jwt.MapClaims{
		"sub":   subject,
		"iss":   testIssuer,
		"aud":   testAudience,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
		"scope": "openid profile email",
	})
}

// ExpiredToken signs a token for subject that expired an hour ago
func (idp *TestIdP) ExpiredToken(subject string) (string, error) {
	return idp.sign(jwt.MapClaims{
		"sub": subject,
		"iss": testIssuer,
		"aud": testAudience,
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
}

func (idp *TestIdP) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	return token.SignedString(idp.key)
}

// Close stops the JWKS server
func (idp *TestIdP) Close() {
	idp.server.Close()
}
