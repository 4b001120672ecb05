package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/intellecta-dev/intellecta/pkg/logger"
	"github.com/intellecta-dev/intellecta/pkg/model"
)

const (
	DefaultConfigPath = "/etc/intellecta/config"
	ConfigFileName    = "intellecta.yml"
)

// Config holds all Intellecta configuration settings
type Config struct {
	// DefaultMemberRole is the role granted when users are added to a project
	DefaultMemberRole model.RoleName `yaml:"default_member_role" json:"default_member_role"`

	// UnitOfWorkTimeout bounds every database transaction
	UnitOfWorkTimeout time.Duration `yaml:"unit_of_work_timeout" json:"unit_of_work_timeout"`

	// APIListLimitMax is the maximum number of results for listing requests
	APIListLimitMax int `yaml:"api_list_limit_max" json:"api_list_limit_max"`

	// CORSAllowedOrigins lists the origins allowed by the CORS middleware
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins" json:"cors_allowed_origins"`

	// Auth0Domain is the tenant domain, e.g. example.eu.auth0.com
	Auth0Domain string `yaml:"auth0_domain" json:"auth0_domain"`

	// Auth0Audience is the API audience access tokens are issued for
	Auth0Audience string `yaml:"auth0_audience" json:"auth0_audience"`

	Auth0ClientID     string `yaml:"auth0_client_id" json:"auth0_client_id"`
	Auth0ClientSecret string `yaml:"auth0_client_secret" json:"-"`

	// Auth0ManagementAudience defaults to https://<domain>/api/v2/
	Auth0ManagementAudience string `yaml:"auth0_management_audience" json:"auth0_management_audience"`

	OpenAIAPIKey         string `yaml:"openai_api_key" json:"-"`
	OpenAIBaseURL        string `yaml:"openai_base_url" json:"openai_base_url"`
	OpenAIChatModel      string `yaml:"openai_chat_model" json:"openai_chat_model"`
	OpenAIQueryModel     string `yaml:"openai_query_model" json:"openai_query_model"`
	OpenAIEmbeddingModel string `yaml:"openai_embedding_model" json:"openai_embedding_model"`

	// KnowledgeBaseTable is the pgvector table searched by the assistant
	KnowledgeBaseTable string `yaml:"knowledge_base_table" json:"knowledge_base_table"`

	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		DefaultMemberRole:    model.RoleNameMember,
		UnitOfWorkTimeout:    10 * time.Second,
		APIListLimitMax:      1000,
		CORSAllowedOrigins:   []string{},
		OpenAIBaseURL:        "https://api.openai.com/v1",
		OpenAIChatModel:      "gpt-4",
		OpenAIQueryModel:     "gpt-4o",
		OpenAIEmbeddingModel: "text-embedding-3-small",
		KnowledgeBaseTable:   "knowledge_base",
		LogLevel:             "info",
		sources:              make(map[string]string),
	}
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over file values.
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("INTELLECTA_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	if err := config.applyEnvConfig(); err != nil {
		return nil, err
	}

	return config, nil
}

func attributeNames() []string {
	return []string{
		"default_member_role", "unit_of_work_timeout", "api_list_limit_max",
		"cors_allowed_origins", "auth0_domain", "auth0_audience",
		"auth0_client_id", "auth0_client_secret", "auth0_management_audience",
		"openai_api_key", "openai_base_url", "openai_chat_model",
		"openai_query_model", "openai_embedding_model", "knowledge_base_table",
		"log_level", "log_file",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.DefaultMemberRole != 0 {
		c.DefaultMemberRole = file.DefaultMemberRole
		c.sources["default_member_role"] = "file"
	}
	if file.UnitOfWorkTimeout != 0 {
		c.UnitOfWorkTimeout = file.UnitOfWorkTimeout
		c.sources["unit_of_work_timeout"] = "file"
	}
	if file.APIListLimitMax != 0 {
		c.APIListLimitMax = file.APIListLimitMax
		c.sources["api_list_limit_max"] = "file"
	}
	if len(file.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = file.CORSAllowedOrigins
		c.sources["cors_allowed_origins"] = "file"
	}

	strs := []struct {
		name string
		dst  *string
		val  string
	}{
		{"auth0_domain", &c.Auth0Domain, file.Auth0Domain},
		{"auth0_audience", &c.Auth0Audience, file.Auth0Audience},
		{"auth0_client_id", &c.Auth0ClientID, file.Auth0ClientID},
		{"auth0_client_secret", &c.Auth0ClientSecret, file.Auth0ClientSecret},
		{"auth0_management_audience", &c.Auth0ManagementAudience, file.Auth0ManagementAudience},
		{"openai_api_key", &c.OpenAIAPIKey, file.OpenAIAPIKey},
		{"openai_base_url", &c.OpenAIBaseURL, file.OpenAIBaseURL},
		{"openai_chat_model", &c.OpenAIChatModel, file.OpenAIChatModel},
		{"openai_query_model", &c.OpenAIQueryModel, file.OpenAIQueryModel},
		{"openai_embedding_model", &c.OpenAIEmbeddingModel, file.OpenAIEmbeddingModel},
		{"knowledge_base_table", &c.KnowledgeBaseTable, file.KnowledgeBaseTable},
		{"log_level", &c.LogLevel, file.LogLevel},
		{"log_file", &c.LogFile, file.LogFile},
	}
	for _, s := range strs {
		if s.val != "" {
			*s.dst = s.val
			c.sources[s.name] = "file"
		}
	}
}

// envVars maps string attributes to the environment variables that set
// them. The first variable present wins.
var envVars = map[string][]string{
	"auth0_domain":              {"INTELLECTA_AUTH0_DOMAIN", "AUTH0_DOMAIN"},
	"auth0_audience":            {"INTELLECTA_AUTH0_AUDIENCE", "AUTH0_AUDIENCE"},
	"auth0_client_id":           {"INTELLECTA_AUTH0_CLIENT_ID", "AUTH0_CLIENT_ID"},
	"auth0_client_secret":       {"INTELLECTA_AUTH0_CLIENT_SECRET", "AUTH0_CLIENT_SECRET"},
	"auth0_management_audience": {"INTELLECTA_AUTH0_MANAGEMENT_AUDIENCE", "AUTH0_MANAGEMENT_AUDIENCE"},
	"openai_api_key":            {"INTELLECTA_OPENAI_API_KEY", "OPENAI_API_KEY"},
	"openai_base_url":           {"INTELLECTA_OPENAI_BASE_URL", "OPENAI_BASE_URL"},
	"openai_chat_model":         {"INTELLECTA_OPENAI_CHAT_MODEL"},
	"openai_query_model":        {"INTELLECTA_OPENAI_QUERY_MODEL"},
	"openai_embedding_model":    {"INTELLECTA_OPENAI_EMBEDDING_MODEL", "EMBEDDING_MODEL"},
	"knowledge_base_table":      {"INTELLECTA_KNOWLEDGE_BASE_TABLE"},
	"log_level":                 {"INTELLECTA_LOG_LEVEL"},
	"log_file":                  {"INTELLECTA_LOG_FILE"},
}

func (c *Config) stringField(name string) *string {
	switch name {
	case "auth0_domain":
		return &c.Auth0Domain
	case "auth0_audience":
		return &c.Auth0Audience
	case "auth0_client_id":
		return &c.Auth0ClientID
	case "auth0_client_secret":
		return &c.Auth0ClientSecret
	case "auth0_management_audience":
		return &c.Auth0ManagementAudience
	case "openai_api_key":
		return &c.OpenAIAPIKey
	case "openai_base_url":
		return &c.OpenAIBaseURL
	case "openai_chat_model":
		return &c.OpenAIChatModel
	case "openai_query_model":
		return &c.OpenAIQueryModel
	case "openai_embedding_model":
		return &c.OpenAIEmbeddingModel
	case "knowledge_base_table":
		return &c.KnowledgeBaseTable
	case "log_level":
		return &c.LogLevel
	case "log_file":
		return &c.LogFile
	}
	return nil
}

func (c *Config) applyEnvConfig() error {
	if val := os.Getenv("INTELLECTA_DEFAULT_MEMBER_ROLE"); val != "" {
		role, err := model.RoleNameString(val)
		if err != nil {
			return fmt.Errorf("invalid INTELLECTA_DEFAULT_MEMBER_ROLE: %w", err)
		}
		c.DefaultMemberRole = role
		c.sources["default_member_role"] = "environment"
	}
	if val := os.Getenv("INTELLECTA_UNIT_OF_WORK_TIMEOUT"); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid INTELLECTA_UNIT_OF_WORK_TIMEOUT: %w", err)
		}
		c.UnitOfWorkTimeout = d
		c.sources["unit_of_work_timeout"] = "environment"
	}
	if val := os.Getenv("INTELLECTA_API_LIST_LIMIT_MAX"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.APIListLimitMax = i
			c.sources["api_list_limit_max"] = "environment"
		}
	}
	if val := os.Getenv("INTELLECTA_CORS_ALLOWED_ORIGINS"); val != "" {
		c.CORSAllowedOrigins = splitAndTrim(val)
		c.sources["cors_allowed_origins"] = "environment"
	}

	for name, keys := range envVars {
		for _, key := range keys {
			if val := os.Getenv(key); val != "" {
				*c.stringField(name) = val
				c.sources[name] = "environment"
				break
			}
		}
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Auth0Issuer returns the token issuer for the configured tenant
func (c *Config) Auth0Issuer() string {
	if c.Auth0Domain == "" {
		return ""
	}
	return "https://" + strings.TrimSuffix(c.Auth0Domain, "/") + "/"
}

// Auth0JWKSURL returns the tenant's JWKS endpoint
func (c *Config) Auth0JWKSURL() string {
	if c.Auth0Domain == "" {
		return ""
	}
	return c.Auth0Issuer() + ".well-known/jwks.json"
}

// ManagementAudience returns the Management API audience
func (c *Config) ManagementAudience() string {
	if c.Auth0ManagementAudience != "" {
		return c.Auth0ManagementAudience
	}
	if c.Auth0Domain == "" {
		return ""
	}
	return c.Auth0Issuer() + "api/v2/"
}

// AuthEnabled reports whether bearer token authentication can be enforced
func (c *Config) AuthEnabled() bool {
	return c.Auth0Domain != "" && c.Auth0Audience != ""
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !c.DefaultMemberRole.IsARoleName() {
		return fmt.Errorf("invalid default_member_role: %d", c.DefaultMemberRole)
	}
	if c.DefaultMemberRole == model.RoleNameAdmin {
		return fmt.Errorf("default_member_role must not be %s", model.RoleNameAdmin)
	}
	if c.UnitOfWorkTimeout <= 0 {
		return fmt.Errorf("unit_of_work_timeout must be positive, got %s", c.UnitOfWorkTimeout)
	}
	if c.APIListLimitMax <= 0 {
		return fmt.Errorf("api_list_limit_max must be positive, got %d", c.APIListLimitMax)
	}
	if strings.Contains(c.Auth0Domain, "://") {
		return fmt.Errorf("auth0_domain must be a host name, got %s", c.Auth0Domain)
	}
	if c.OpenAIBaseURL != "" {
		if u, err := url.Parse(c.OpenAIBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid openai_base_url: %s", c.OpenAIBaseURL)
		}
	}
	for _, origin := range c.CORSAllowedOrigins {
		if origin == "*" {
			continue
		}
		if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid cors_allowed_origins value: %s", origin)
		}
	}
	if !logger.IsValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "default_member_role", Value: c.DefaultMemberRole.String(), Source: c.Source("default_member_role")},
		{Name: "unit_of_work_timeout", Value: c.UnitOfWorkTimeout.String(), Source: c.Source("unit_of_work_timeout")},
		{Name: "api_list_limit_max", Value: strconv.Itoa(c.APIListLimitMax), Source: c.Source("api_list_limit_max")},
		{Name: "cors_allowed_origins", Value: strings.Join(c.CORSAllowedOrigins, ","), Source: c.Source("cors_allowed_origins")},
		{Name: "auth0_domain", Value: c.Auth0Domain, Source: c.Source("auth0_domain")},
		{Name: "auth0_audience", Value: c.Auth0Audience, Source: c.Source("auth0_audience")},
		{Name: "auth0_client_id", Value: c.Auth0ClientID, Source: c.Source("auth0_client_id")},
		{Name: "auth0_client_secret", Value: mask(c.Auth0ClientSecret), Source: c.Source("auth0_client_secret")},
		{Name: "auth0_management_audience", Value: c.ManagementAudience(), Source: c.Source("auth0_management_audience")},
		{Name: "openai_api_key", Value: mask(c.OpenAIAPIKey), Source: c.Source("openai_api_key")},
		{Name: "openai_base_url", Value: c.OpenAIBaseURL, Source: c.Source("openai_base_url")},
		{Name: "openai_chat_model", Value: c.OpenAIChatModel, Source: c.Source("openai_chat_model")},
		{Name: "openai_query_model", Value: c.OpenAIQueryModel, Source: c.Source("openai_query_model")},
		{Name: "openai_embedding_model", Value: c.OpenAIEmbeddingModel, Source: c.Source("openai_embedding_model")},
		{Name: "knowledge_base_table", Value: c.KnowledgeBaseTable, Source: c.Source("knowledge_base_table")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "log_file", Value: c.LogFile, Source: c.Source("log_file")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
