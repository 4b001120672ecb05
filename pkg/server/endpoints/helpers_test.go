package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/intellecta-dev/intellecta/pkg/audit"
	"github.com/intellecta-dev/intellecta/pkg/auth0"
	"github.com/intellecta-dev/intellecta/pkg/config"
	"github.com/intellecta-dev/intellecta/pkg/identity"
	"github.com/intellecta-dev/intellecta/pkg/model"
	"github.com/intellecta-dev/intellecta/pkg/server"
	"github.com/intellecta-dev/intellecta/pkg/server/store/storetest"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

const (
	testCaller = "auth0|alice"
	testToken  = "Bearer test-token"
)

// fakeAuthenticator accepts testToken and authenticates as testCaller
type fakeAuthenticator struct{}

func (fakeAuthenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != testToken {
			respondWithError(w, http.StatusUnauthorized, ErrorBody{Code: "unauthorized", Message: "Authorization missing"})
			return
		}
		id := identity.FromClaims(jwt.MapClaims{"sub": testCaller, "scope": "openid"}).
			WithRemoteIP(net.ParseIP("203.0.113.7"))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// mockDirectory implements server.Directory using testify/mock
type mockDirectory struct {
	mock.Mock
}

func (m *mockDirectory) Login(ctx context.Context, email, password string) (*auth0.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth0.LoginResult), args.Error(1)
}

func (m *mockDirectory) Signup(ctx context.Context, email, password string) (*auth0.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth0.User), args.Error(1)
}

func (m *mockDirectory) ListUsers(ctx context.Context) ([]auth0.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auth0.User), args.Error(1)
}

func (m *mockDirectory) UsersByIDs(ctx context.Context, ids []string) ([]auth0.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]auth0.User), args.Error(1)
}

func (m *mockDirectory) UpdateUser(ctx context.Context, userID string, update auth0.UserUpdate) (*auth0.User, error) {
	args := m.Called(ctx, userID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth0.User), args.Error(1)
}

// mockAssistant implements server.Assistant using testify/mock. Deltas
// returned by StreamChat's first value are fed to onDelta.
type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) StreamChat(ctx context.Context, question string, onDelta func(delta string) error) (string, error) {
	args := m.Called(ctx, question)
	deltas, _ := args.Get(0).([]string)
	var answer strings.Builder
	for _, d := range deltas {
		answer.WriteString(d)
		if err := onDelta(d); err != nil {
			return answer.String(), err
		}
	}
	return answer.String(), args.Error(1)
}

func (m *mockAssistant) Ask(ctx context.Context, query string) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}

type testEnv struct {
	srv       *server.Server
	uow       *storetest.UnitOfWork
	health    *storetest.MockHealthStore
	directory *mockDirectory
	assistant *mockAssistant
	auditLog  *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		uow:       storetest.NewUnitOfWork(),
		health:    &storetest.MockHealthStore{},
		directory: &mockDirectory{},
		assistant: &mockAssistant{},
		auditLog:  &bytes.Buffer{},
	}

	cfg := &config.Config{
		DefaultMemberRole: model.RoleNameMember,
		APIListLimitMax:   2,
	}
	env.srv = server.NewServer(server.Options{
		Config:        cfg,
		Workflow:      workflow.NewService(env.uow, nil, workflow.Options{DefaultMemberRole: cfg.DefaultMemberRole.String()}),
		HealthStore:   env.health,
		Directory:     env.directory,
		Assistant:     env.assistant,
		Auditor:       audit.NewAuditor(audit.Options{Enabled: true, Writer: env.auditLog}),
		Authenticator: fakeAuthenticator{},
		AccessLog:     io.Discard,
		Host:          "127.0.0.1",
		Port:          "0",
	})
	RegisterAll(env.srv)

	t.Cleanup(func() {
		env.uow.AssertExpectations(t)
		env.health.AssertExpectations(t)
		env.directory.AssertExpectations(t)
		env.assistant.AssertExpectations(t)
	})
	return env
}

// do sends a request through the full handler chain. body may be nil, a
// string or a value to encode as JSON.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "198.51.100.1:4242"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		req.Header.Set("Authorization", testToken)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

var anyCtx = mock.Anything
