package middleware

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultJWKSTTL is how long fetched signing keys are trusted before refetching
const DefaultJWKSTTL = 5 * time.Minute

// KeySet fetches and caches the identity provider's RSA signing keys
type KeySet struct {
	url    string
	client *http.Client
	ttl    time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	expiresAt time.Time
}

// NewKeySet creates a KeySet for the JWKS at url. A nil client uses a
// client with a 10 second timeout.
func NewKeySet(url string, client *http.Client) *KeySet {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &KeySet{
		url:    url,
		client: client,
		ttl:    DefaultJWKSTTL,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// Key returns the public key for kid, refreshing the set when it is stale
// or kid is unknown
func (k *KeySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	key, ok := k.keys[kid]
	expired := time.Now().After(k.expiresAt)
	k.mu.RUnlock()
	if ok && !expired {
		return key, nil
	}

	if err := k.Refresh(ctx); err != nil {
		return nil, err
	}

	k.mu.RLock()
	key, ok = k.keys[kid]
	k.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("key %s not found", kid)
	}
	return key, nil
}

// Refresh fetches the JWKS
func (k *KeySet) Refresh(ctx context.Context) error {
	if k.url == "" {
		return errors.New("no JWKS URL configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return err
	}
	resp, err := k.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch JWKS: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read JWKS: %w", err)
	}
	return k.parseJWKSBody(body)
}

// parseJWKSBody parses JWKS JSON and replaces the cached keys
func (k *KeySet) parseJWKSBody(body []byte) error {
	var jwks struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(body, &jwks); err != nil {
		return fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey)
	for _, keyData := range jwks.Keys {
		var keyInfo struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			N   string `json:"n"`
			E   string `json:"e"`
		}
		if err := json.Unmarshal(keyData, &keyInfo); err != nil {
			continue
		}
		if keyInfo.Kty != "RSA" {
			continue
		}

		pubKey, err := parseRSAPublicKey(keyInfo.N, keyInfo.E)
		if err != nil {
			continue
		}
		keys[keyInfo.Kid] = pubKey
	}

	k.mu.Lock()
	k.keys = keys
	k.expiresAt = time.Now().Add(k.ttl)
	k.mu.Unlock()

	return nil
}

// parseRSAPublicKey parses an RSA public key from JWK components
func parseRSAPublicKey(nBase64, eBase64 string) (*rsa.PublicKey, error) {
	nBytes, err := jwt.NewParser().DecodeSegment(nBase64)
	if err != nil {
		return nil, err
	}

	eBytes, err := jwt.NewParser().DecodeSegment(eBase64)
	if err != nil {
		return nil, err
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 + int(b)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: e,
	}, nil
}
