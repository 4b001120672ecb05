package auth0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultConnection is the database connection users sign up and log in with
const DefaultConnection = "Username-Password-Authentication"

// tokenExpiryLeeway is subtracted from a management token's lifetime
const tokenExpiryLeeway = 60 * time.Second

// Config configures a Client
type Config struct {
	// Domain is the tenant domain, e.g. example.eu.auth0.com
	Domain string
	// BaseURL overrides https://<Domain>, used in tests
	BaseURL            string
	ClientID           string
	ClientSecret       string
	Audience           string
	ManagementAudience string
	Connection         string
	HTTPClient         *http.Client
	Logger             *zap.Logger
}

// Client talks to a single Auth0 tenant
type Client struct {
	baseURL            string
	clientID           string
	clientSecret       string
	audience           string
	managementAudience string
	connection         string
	http               *http.Client
	logger             *zap.Logger

	mu          sync.Mutex
	mgmtToken   string
	mgmtExpires time.Time
	now         func() time.Time
}

// NewClient creates a Client
func NewClient(cfg Config) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		if cfg.Domain == "" {
			return nil, errors.New("auth0 domain is required")
		}
		base = "https://" + strings.TrimSuffix(cfg.Domain, "/")
	}
	base = strings.TrimSuffix(base, "/")

	mgmtAudience := cfg.ManagementAudience
	if mgmtAudience == "" {
		mgmtAudience = base + "/api/v2/"
	}
	connection := cfg.Connection
	if connection == "" {
		connection = DefaultConnection
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:            base,
		clientID:           cfg.ClientID,
		clientSecret:       cfg.ClientSecret,
		audience:           cfg.Audience,
		managementAudience: mgmtAudience,
		connection:         connection,
		http:               httpClient,
		logger:             logger.Named("auth0"),
		now:                time.Now,
	}, nil
}

// LoginResult is the outcome of a successful password login
type LoginResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Login exchanges email and password for tokens and resolves the user id
// through /userinfo
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	form := url.Values{
		"grant_type":    {"password"},
		"username":      {email},
		"password":      {password},
		"audience":      {c.audience},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"scope":         {"openid profile email offline_access"},
		"connection":    {c.connection},
	}

	var tok tokenResponse
	if err := c.postForm(ctx, "/oauth/token", form, &tok); err != nil {
		return nil, err
	}

	var info struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
	}
	if err := c.do(ctx, http.MethodGet, "/userinfo", tok.AccessToken, nil, &info); err != nil {
		return nil, err
	}
	if info.Sub == "" {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Message: "userinfo did not return a subject"}
	}

	return &LoginResult{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		IDToken:      tok.IDToken,
		ExpiresIn:    tok.ExpiresIn,
		TokenType:    tok.TokenType,
		UserID:       info.Sub,
		Email:        info.Email,
	}, nil
}

// Signup creates a user on the configured database connection
func (c *Client) Signup(ctx context.Context, email, password string) (*User, error) {
	body := map[string]interface{}{
		"email":          email,
		"password":       password,
		"connection":     c.connection,
		"verify_email":   false,
		"email_verified": true,
	}

	var user User
	if err := c.management(ctx, http.MethodPost, "/api/v2/users", body, &user); err != nil {
		return nil, err
	}
	if user.UserID == "" {
		return nil, &UpstreamError{StatusCode: http.StatusBadGateway, Message: "signup did not return a user_id"}
	}
	return &user, nil
}

// managementToken returns a cached client-credentials token for the
// Management API
func (c *Client) managementToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mgmtToken != "" && c.now().Before(c.mgmtExpires) {
		return c.mgmtToken, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"audience":      {c.managementAudience},
	}
	var tok tokenResponse
	if err := c.postForm(ctx, "/oauth/token", form, &tok); err != nil {
		return "", fmt.Errorf("failed to obtain management token: %w", err)
	}

	c.mgmtToken = tok.AccessToken
	c.mgmtExpires = c.now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenExpiryLeeway)
	c.logger.Debug("obtained management token", zap.Int("expires_in", tok.ExpiresIn))
	return c.mgmtToken, nil
}

func (c *Client) management(ctx context.Context, method, path string, in, out interface{}) error {
	token, err := c.managementToken(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, method, path, token, in, out)
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{StatusCode: http.StatusBadGateway, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{StatusCode: http.StatusBadGateway, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		upstreamErr := newUpstreamError(resp.StatusCode, data)
		c.logger.Warn("auth0 request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", upstreamErr.Message))
		return upstreamErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{StatusCode: http.StatusBadGateway, Message: fmt.Sprintf("invalid response: %v", err)}
	}
	return nil
}
