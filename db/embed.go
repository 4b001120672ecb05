// Package db holds the SQL migrations applied by intellectactl.
package db

import "embed"

// Migrations contains db/migrations for builds using the embed_migrations tag.
//
//go:embed migrations/*.sql
var Migrations embed.FS
