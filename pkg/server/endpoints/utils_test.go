package endpoints

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellecta-dev/intellecta/pkg/assistant"
	"github.com/intellecta-dev/intellecta/pkg/auth0"
	"github.com/intellecta-dev/intellecta/pkg/server/store"
	"github.com/intellecta-dev/intellecta/pkg/workflow"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantName string
	}{
		{"invalid input", fmt.Errorf("bad: %w", workflow.ErrInvalidInput), http.StatusBadRequest, "invalid_input"},
		{"not found", fmt.Errorf("project 9: %w", store.ErrNotFound), http.StatusNotFound, "not_found"},
		{"role not found", fmt.Errorf("%w: %q", workflow.ErrRoleNotFound, "member"), http.StatusNotFound, "not_found"},
		{"conflict", store.ErrAlreadyExists, http.StatusConflict, "conflict"},
		{"store unavailable", fmt.Errorf("x: %w", store.ErrStoreUnavailable), http.StatusServiceUnavailable, "unavailable"},
		{"auth0 upstream", &auth0.UpstreamError{StatusCode: http.StatusForbidden, Message: "Wrong email or password."}, http.StatusForbidden, "upstream_error"},
		{"openai upstream without status", fmt.Errorf("ask: %w", &assistant.UpstreamError{}), http.StatusBadGateway, "upstream_error"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, name := statusForError(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		query   string
		max     int
		want    page
		wantErr bool
	}{
		{"", 0, page{}, false},
		{"", 50, page{limit: 50}, false},
		{"?limit=10&offset=5", 50, page{limit: 10, offset: 5}, false},
		{"?limit=500", 50, page{limit: 50}, false},
		{"?limit=0", 50, page{}, true},
		{"?limit=abc", 50, page{}, true},
		{"?offset=-1", 50, page{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/projects"+tt.query, nil)
			got, err := parsePage(r, tt.max)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, paginate(items, page{}))
	assert.Equal(t, []int{2, 3}, paginate(items, page{limit: 2, offset: 1}))
	assert.Equal(t, []int{5}, paginate(items, page{limit: 2, offset: 4}))
	assert.Equal(t, []int{}, paginate(items, page{offset: 9}))
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		env := newTestEnv(t)
		env.health.On("CheckConnectivity", anyCtx).Return(nil)

		rec := env.do(t, http.MethodGet, "/api/health", nil, false)

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody[HealthResponse](t, rec)
		assert.Equal(t, "OK", body.Status)
		assert.Equal(t, "ok", body.Database)
		assert.NotEmpty(t, body.Timestamp)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("database down", func(t *testing.T) {
		env := newTestEnv(t)
		env.health.On("CheckConnectivity", anyCtx).Return(store.ErrStoreUnavailable)

		rec := env.do(t, http.MethodGet, "/api/health", nil, false)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "unreachable", decodeBody[HealthResponse](t, rec).Database)
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/", "/api/roles", "/api/status", "/api/projects", "/api/tickets"} {
		rec := env.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestProtectWithoutAuthenticator(t *testing.T) {
	env := newTestEnv(t)
	env.srv.Authenticator = nil

	rec := httptest.NewRecorder()
	env.srv.Protect(http.NotFoundHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/roles", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
