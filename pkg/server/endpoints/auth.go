package endpoints

import (
	"net"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/intellecta-dev/intellecta/pkg/audit"
	"github.com/intellecta-dev/intellecta/pkg/server"
)

// CredentialsRequest is the body of the login and signup endpoints
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c CredentialsRequest) validate() string {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return "email and password are required"
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return "email is not a valid address"
	}
	return ""
}

// LoginResponse is the body of a successful login
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// SignupResponse is the body of a successful signup
type SignupResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// RegisterAuthEndpoints registers the unauthenticated login and signup endpoints
func RegisterAuthEndpoints(s *server.Server) {
	authRouter := s.API.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/login", handleLogin(s)).Methods("POST")
	authRouter.HandleFunc("/signup", handleSignup(s)).Methods("POST")
}

func requestIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func handleLogin(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
		if msg := req.validate(); msg != "" {
			badRequest(w, msg)
			return
		}

		if s.Directory == nil {
			unavailable(w, "identity provider")
			return
		}

		result, err := s.Directory.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			s.Auditor.Log(r.Context(), audit.LoginEvent{
				Email:        req.Email,
				ClientIP:     requestIP(r),
				ErrorMessage: errorMessage(err),
			})
			respondWithErr(w, s.Logger, r, err)
			return
		}

		// The local row may be missing for users created outside signup
		if err := s.Workflow.RegisterUser(r.Context(), result.UserID); err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}

		s.Auditor.Log(r.Context(), audit.LoginEvent{
			Email:    req.Email,
			UserID:   result.UserID,
			ClientIP: requestIP(r),
			Success:  true,
		})
		respondWithJSON(w, http.StatusOK, LoginResponse{
			AccessToken:  result.AccessToken,
			RefreshToken: result.RefreshToken,
			ExpiresIn:    result.ExpiresIn,
			TokenType:    result.TokenType,
		})
	}
}

func handleSignup(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CredentialsRequest
		if err := decodeJSON(w, r, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
		if msg := req.validate(); msg != "" {
			badRequest(w, msg)
			return
		}

		if s.Directory == nil {
			unavailable(w, "identity provider")
			return
		}

		user, err := s.Directory.Signup(r.Context(), req.Email, req.Password)
		if err != nil {
			respondWithErr(w, s.Logger, r, err)
			return
		}

		if err := s.Workflow.RegisterUser(r.Context(), user.UserID); err != nil {
			s.Logger.Error("user created in identity provider but not locally",
				zap.String("user_id", user.UserID), zap.Error(err))
			respondWithErr(w, s.Logger, r, err)
			return
		}

		respondWithJSON(w, http.StatusCreated, SignupResponse{UserID: user.UserID, Email: user.Email})
	}
}
