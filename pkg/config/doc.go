// Package config provides configuration management for Intellecta.
//
// This package handles loading and validating server configuration from
// a YAML file and environment variables.
//
// # Configuration Sources
//
// Configuration is layered, later sources winning:
//
//   - Built-in defaults
//   - $INTELLECTA_CONFIG_PATH/intellecta.yml (default /etc/intellecta/config)
//   - Environment variables
//
// Every attribute records which source it came from, which is what
// "intellectactl configuration show" prints.
//
// # Key Configuration Options
//
//   - INTELLECTA_DEFAULT_MEMBER_ROLE: Role granted when users join a project
//   - INTELLECTA_UNIT_OF_WORK_TIMEOUT: Transaction timeout, e.g. 10s
//   - AUTH0_DOMAIN, AUTH0_AUDIENCE: Identity provider tenant and API audience
//   - OPENAI_API_KEY: Assistant credentials
//   - DATABASE_URL: Database connection
package config
