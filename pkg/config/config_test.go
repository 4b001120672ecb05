package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intellecta-dev/intellecta/pkg/model"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("INTELLECTA_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, model.RoleNameMember, cfg.DefaultMemberRole)
	assert.Equal(t, 10*time.Second, cfg.UnitOfWorkTimeout)
	assert.Equal(t, 1000, cfg.APIListLimitMax)
	assert.Equal(t, "knowledge_base", cfg.KnowledgeBaseTable)
	assert.Equal(t, "default", cfg.Source("default_member_role"))
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	dir := writeConfigFile(t, `
default_member_role: developer
unit_of_work_timeout: 3s
api_list_limit_max: 50
cors_allowed_origins:
  - https://app.example.com
auth0_domain: tenant.eu.auth0.com
auth0_audience: https://api.example.com
log_level: debug
`)
	t.Setenv("INTELLECTA_CONFIG_PATH", dir)
	t.Setenv("INTELLECTA_API_LIST_LIMIT_MAX", "25")
	t.Setenv("AUTH0_AUDIENCE", "https://override.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, model.RoleNameDeveloper, cfg.DefaultMemberRole)
	assert.Equal(t, "file", cfg.Source("default_member_role"))
	assert.Equal(t, 3*time.Second, cfg.UnitOfWorkTimeout)
	assert.Equal(t, 25, cfg.APIListLimitMax)
	assert.Equal(t, "environment", cfg.Source("api_list_limit_max"))
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "https://override.example.com", cfg.Auth0Audience)
	assert.Equal(t, "environment", cfg.Source("auth0_audience"))
	assert.Equal(t, "https://tenant.eu.auth0.com/", cfg.Auth0Issuer())
	assert.Equal(t, "https://tenant.eu.auth0.com/.well-known/jwks.json", cfg.Auth0JWKSURL())
	assert.Equal(t, "https://tenant.eu.auth0.com/api/v2/", cfg.ManagementAudience())
	assert.True(t, cfg.AuthEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("INTELLECTA_CONFIG_PATH", t.TempDir())
	t.Setenv("AUTH0_DOMAIN", "plain.auth0.com")
	t.Setenv("INTELLECTA_AUTH0_DOMAIN", "prefixed.auth0.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed.auth0.com", cfg.Auth0Domain)
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := writeConfigFile(t, "default_member_role: [unterminated")
	t.Setenv("INTELLECTA_CONFIG_PATH", dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Setenv("INTELLECTA_CONFIG_PATH", t.TempDir())

	t.Setenv("INTELLECTA_DEFAULT_MEMBER_ROLE", "owner")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("INTELLECTA_DEFAULT_MEMBER_ROLE", "")
	t.Setenv("INTELLECTA_UNIT_OF_WORK_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"admin as default role", func(c *Config) { c.DefaultMemberRole = model.RoleNameAdmin }, true},
		{"unknown role", func(c *Config) { c.DefaultMemberRole = model.RoleName(9) }, true},
		{"zero timeout", func(c *Config) { c.UnitOfWorkTimeout = 0 }, true},
		{"zero list limit", func(c *Config) { c.APIListLimitMax = 0 }, true},
		{"domain with scheme", func(c *Config) { c.Auth0Domain = "https://tenant.auth0.com" }, true},
		{"bad base url", func(c *Config) { c.OpenAIBaseURL = "api.openai.com" }, true},
		{"wildcard origin", func(c *Config) { c.CORSAllowedOrigins = []string{"*"} }, false},
		{"bad origin", func(c *Config) { c.CORSAllowedOrigins = []string{"example.com"} }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAttributes_MasksSecrets(t *testing.T) {
	cfg := newDefault()
	cfg.OpenAIAPIKey = "sk-secret"
	cfg.Auth0ClientSecret = "shh"

	for _, attr := range cfg.Attributes() {
		assert.NotContains(t, attr.Value, "sk-secret")
		assert.NotContains(t, attr.Value, "shh")
	}

	text := cfg.FormatText()
	assert.Contains(t, text, "default_member_role")
	assert.Contains(t, text, "member")

	out, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "openai_api_key"`)
	assert.NotContains(t, out, "sk-secret")
}

func TestSplitAndTrim(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b ,"))
	assert.Empty(t, splitAndTrim(""))
}
