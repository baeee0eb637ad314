package db

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(ErrNoRows))
	assert.True(t, IsNoRows(sql.ErrNoRows))
	assert.True(t, IsNoRows(pgx.ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("lookup: %w", ErrNoRows)))
	assert.False(t, IsNoRows(nil))
	assert.False(t, IsNoRows(sql.ErrConnDone))
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		backend Backend
		dsn     string
	}{
		{"postgres://u:p@localhost/kyrlat", BackendPostgres, "postgres://u:p@localhost/kyrlat"},
		{"postgresql://localhost/kyrlat", BackendPostgres, "postgresql://localhost/kyrlat"},
		{"sqlite://history.db", BackendSQLite, "history.db"},
		{"/var/lib/kyrlat/history.db", BackendSQLite, "/var/lib/kyrlat/history.db"},
		{":memory:", BackendSQLite, ":memory:"},
	}
	for _, tt := range tests {
		backend, dsn := ParseURL(tt.url)
		assert.Equal(t, tt.backend, backend, tt.url)
		assert.Equal(t, tt.dsn, dsn, tt.url)
	}
}

func TestInputHashStable(t *testing.T) {
	assert.Equal(t, InputHash("Горбачёв"), InputHash("Горбачёв"))
	assert.NotEqual(t, InputHash("Горбачёв"), InputHash("Горбачев"))
	assert.Len(t, InputHash(""), 64)
}
