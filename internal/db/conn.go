package db

import "strings"

// Backend names a Repository implementation.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// ParseURL picks the backend for a database URL. postgres:// and
// postgresql:// go to PostgreSQL; anything else is a SQLite path, with an
// optional sqlite:// prefix stripped.
func ParseURL(databaseURL string) (Backend, string) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return BackendPostgres, databaseURL
	default:
		return BackendSQLite, strings.TrimPrefix(databaseURL, "sqlite://")
	}
}
