package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jusunglee/kyrlat/internal/db"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000Z"

// Repository implements db.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (and if needed creates) a SQLite history database.
func New(ctx context.Context, dbPath string) (*Repository, error) {
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	sqliteDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		sqliteDB.SetMaxOpenConns(1)
	}

	if _, err := sqliteDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	slog.Debug("opened SQLite history database", "path", dbPath)

	return &Repository{db: sqliteDB, now: time.Now}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) RecordRomanization(ctx context.Context, arg db.RecordRomanizationParams) (db.Romanization, error) {
	now := r.now().UTC().Format(timeFormat)
	hash := db.InputHash(arg.Input)

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO romanizations (language, ascii, input_hash, input, output, source, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (language, ascii, input_hash) DO UPDATE SET
			hits = hits + 1,
			output = excluded.output,
			last_seen = excluded.last_seen
	`, arg.Language, arg.ASCII, hash, arg.Input, arg.Output, arg.Source, now, now)
	if err != nil {
		return db.Romanization{}, err
	}

	return scanRomanization(r.db.QueryRowContext(ctx, selectRomanization+`
		WHERE language = ? AND ascii = ? AND input_hash = ?
	`, arg.Language, arg.ASCII, hash))
}

func (r *Repository) GetRomanization(ctx context.Context, arg db.GetRomanizationParams) (db.Romanization, error) {
	return scanRomanization(r.db.QueryRowContext(ctx, selectRomanization+`
		WHERE language = ? AND ascii = ? AND input_hash = ?
	`, arg.Language, arg.ASCII, db.InputHash(arg.Input)))
}

func (r *Repository) GetRomanizationByID(ctx context.Context, id int64) (db.Romanization, error) {
	return scanRomanization(r.db.QueryRowContext(ctx, selectRomanization+`
		WHERE id = ?
	`, id))
}

func (r *Repository) ListRecentRomanizations(ctx context.Context, arg db.ListRecentParams) ([]db.Romanization, error) {
	rows, err := r.db.QueryContext(ctx, selectRomanization+`
		WHERE (? = '' OR language = ?)
		ORDER BY last_seen DESC, id DESC
		LIMIT ? OFFSET ?
	`, arg.Language, arg.Language, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRomanizations(rows)
}

func (r *Repository) CountRomanizations(ctx context.Context, language string) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM romanizations WHERE (? = '' OR language = ?)
	`, language, language).Scan(&count)
	return count, err
}

func (r *Repository) DeleteRomanizationsOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM romanizations WHERE last_seen < ?
	`, before.UTC().Format(timeFormat))
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Helper functions

const selectRomanization = `
	SELECT id, language, ascii, input, output, source, hits, created_at, last_seen
	FROM romanizations
`

type scanner interface {
	Scan(dest ...any) error
}

func scanInto(s scanner) (db.Romanization, error) {
	var rom db.Romanization
	var createdAtStr, lastSeenStr string
	err := s.Scan(&rom.ID, &rom.Language, &rom.ASCII, &rom.Input, &rom.Output, &rom.Source, &rom.Hits, &createdAtStr, &lastSeenStr)
	if err != nil {
		return db.Romanization{}, err
	}
	rom.CreatedAt, _ = time.Parse(timeFormat, createdAtStr)
	rom.LastSeen, _ = time.Parse(timeFormat, lastSeenStr)
	return rom, nil
}

func scanRomanization(row *sql.Row) (db.Romanization, error) {
	rom, err := scanInto(row)
	if err == sql.ErrNoRows {
		return db.Romanization{}, db.ErrNoRows
	}
	return rom, err
}

func scanRomanizations(rows *sql.Rows) ([]db.Romanization, error) {
	var roms []db.Romanization
	for rows.Next() {
		rom, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		roms = append(roms, rom)
	}
	return roms, rows.Err()
}
