// Package migrations contains all identity-store migration files.
// Each migration file uses init() to call migration.Register().
// This package is imported by cmd/dukaan/main.go to ensure all
// migrations are registered at CLI startup.
package migrations
