package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jusunglee/kyrlat/internal/db"
)

//go:embed schema.sql
var schemaSQL string

// Repository implements db.Repository using PostgreSQL via pgx
type Repository struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and makes sure the history schema exists.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	config.MaxConns = 5
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 30 * time.Second
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Repository{pool: pool}, nil
}

func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// PoolStats exposes pgxpool statistics for the metrics exporter.
func (r *Repository) PoolStats() *pgxpool.Stat {
	return r.pool.Stat()
}

const selectRomanization = `
	SELECT id, language, ascii, input, output, source, hits, created_at, last_seen
	FROM romanizations
`

func (r *Repository) RecordRomanization(ctx context.Context, arg db.RecordRomanizationParams) (db.Romanization, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO romanizations (language, ascii, input_hash, input, output, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (language, ascii, input_hash) DO UPDATE SET
			hits = romanizations.hits + 1,
			output = EXCLUDED.output,
			last_seen = NOW()
		RETURNING id, language, ascii, input, output, source, hits, created_at, last_seen
	`, arg.Language, arg.ASCII, db.InputHash(arg.Input), arg.Input, arg.Output, arg.Source)
	return scanRomanization(row)
}

func (r *Repository) GetRomanization(ctx context.Context, arg db.GetRomanizationParams) (db.Romanization, error) {
	row := r.pool.QueryRow(ctx, selectRomanization+`
		WHERE language = $1 AND ascii = $2 AND input_hash = $3
	`, arg.Language, arg.ASCII, db.InputHash(arg.Input))
	return scanRomanization(row)
}

func (r *Repository) GetRomanizationByID(ctx context.Context, id int64) (db.Romanization, error) {
	row := r.pool.QueryRow(ctx, selectRomanization+`WHERE id = $1`, id)
	return scanRomanization(row)
}

func (r *Repository) ListRecentRomanizations(ctx context.Context, arg db.ListRecentParams) ([]db.Romanization, error) {
	rows, err := r.pool.Query(ctx, selectRomanization+`
		WHERE ($1 = '' OR language = $1)
		ORDER BY last_seen DESC, id DESC
		LIMIT $2 OFFSET $3
	`, arg.Language, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Romanization, error) {
		return scanInto(row)
	})
}

func (r *Repository) CountRomanizations(ctx context.Context, language string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM romanizations WHERE ($1 = '' OR language = $1)
	`, language).Scan(&count)
	return count, err
}

func (r *Repository) DeleteRomanizationsOlderThan(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM romanizations WHERE last_seen < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanInto(row pgx.Row) (db.Romanization, error) {
	var rom db.Romanization
	err := row.Scan(&rom.ID, &rom.Language, &rom.ASCII, &rom.Input, &rom.Output, &rom.Source, &rom.Hits, &rom.CreatedAt, &rom.LastSeen)
	return rom, err
}

func scanRomanization(row pgx.Row) (db.Romanization, error) {
	rom, err := scanInto(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return db.Romanization{}, db.ErrNoRows
	}
	return rom, err
}
