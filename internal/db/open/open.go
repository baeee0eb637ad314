// Package open connects to the history backend named by a database URL.
package open

import (
	"context"

	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/db/postgres"
	"github.com/jusunglee/kyrlat/internal/db/sqlite"
)

// Open returns a PostgreSQL repository for postgres:// URLs and a SQLite one
// for everything else.
func Open(ctx context.Context, databaseURL string) (db.Repository, error) {
	backend, dsn := db.ParseURL(databaseURL)
	if backend == db.BackendPostgres {
		repo, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}
	repo, err := sqlite.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
