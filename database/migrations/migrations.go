// Package migrations contains all database migration files.
// Each migration file uses init() to call migration.Register().
// This package is imported by cmd/qrmenu so that every migration is
// registered at CLI startup, and by tests that need the schema.
package migrations
