package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/audit"
	"github.com/intellecta-dev/intellecta/pkg/auth0"
	"github.com/intellecta-dev/intellecta/pkg/config"
	"github.com/intellecta-dev/intellecta/pkg/server/middleware"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

// APIPrefix is the path prefix of every endpoint
const APIPrefix = "/api"

// Directory is the identity provider's login and user directory
type Directory interface {
	Login(ctx context.Context, email, password string) (*auth0.LoginResult, error)
	Signup(ctx context.Context, email, password string) (*auth0.User, error)
	ListUsers(ctx context.Context) ([]auth0.User, error)
	UsersByIDs(ctx context.Context, ids []string) ([]auth0.User, error)
	UpdateUser(ctx context.Context, userID string, update auth0.UserUpdate) (*auth0.User, error)
}

// Assistant answers questions for the intellecta endpoints
type Assistant interface {
	StreamChat(ctx context.Context, question string, onDelta func(delta string) error) (string, error)
	Ask(ctx context.Context, query string) (string, error)
}

// Authenticator guards protected routes
type Authenticator interface {
	Middleware(next http.Handler) http.Handler
}

// Options holds the dependencies of a Server
type Options struct {
	Config        *config.Config
	Workflow      *workflow.Service
	HealthStore   store.HealthStore
	Directory     Directory
	Assistant     Assistant
	Auditor       *audit.Auditor
	Authenticator Authenticator
	Logger        *zap.Logger

	// AccessLog receives combined-format access logs, stdout when nil
	AccessLog io.Writer

	Host string
	Port string
}

// Server holds the router and the dependencies shared by endpoints
type Server struct {
	Config        *config.Config
	Router        *mux.Router
	API           *mux.Router
	Workflow      *workflow.Service
	HealthStore   store.HealthStore
	Directory     Directory
	Assistant     Assistant
	Auditor       *audit.Auditor
	Authenticator Authenticator
	Logger        *zap.Logger
	StartedAt     time.Time

	srv *http.Server
}

// NewServer creates a Server. Endpoints are registered separately.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Get()
	}
	accessLog := opts.AccessLog
	if accessLog == nil {
		accessLog = os.Stdout
	}

	router := mux.NewRouter()
	s := &Server{
		Config:        cfg,
		Router:        router,
		API:           router.PathPrefix(APIPrefix).Subrouter(),
		Workflow:      opts.Workflow,
		HealthStore:   opts.HealthStore,
		Directory:     opts.Directory,
		Assistant:     opts.Assistant,
		Auditor:       opts.Auditor,
		Authenticator: opts.Authenticator,
		Logger:        logger,
		StartedAt:     time.Now(),
	}

	s.srv = &http.Server{
		Handler:           s.handler(accessLog),
		Addr:              net.JoinHostPort(opts.Host, opts.Port),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: assistant answers are streamed for as long as
		// the model produces them.
		IdleTimeout: 60 * time.Second,
	}
	return s
}

// handler wraps the router with the cross-cutting middleware
func (s *Server) handler(accessLog io.Writer) http.Handler {
	var h http.Handler = s.Router
	if len(s.Config.CORSAllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.Config.CORSAllowedOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Authorization", "Content-Type", middleware.RequestIDHeader}),
			handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
			handlers.AllowCredentials(),
		)(h)
	}
	h = handlers.CombinedLoggingHandler(accessLog, h)
	h = middleware.RequestID(h)
	h = handlers.ProxyHeaders(h)
	return h
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Protect wraps h with bearer token authentication. Without an
// authenticator every protected request is refused.
func (s *Server) Protect(h http.Handler) http.Handler {
	if s.Authenticator == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":"auth_unavailable","message":"Authentication is not configured"}}`))
		})
	}
	return s.Authenticator.Middleware(h)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start listens and serves until Shutdown
func (s *Server) Start() error {
	s.Logger.Info("server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
