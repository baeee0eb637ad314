package db

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Romanization is one remembered engine result. Rows are unique per
// (language, ascii, input).
type Romanization struct {
	ID        int64
	Language  string
	ASCII     bool
	Input     string
	Output    string
	Source    string
	Hits      int64
	CreatedAt time.Time
	LastSeen  time.Time
}

type RecordRomanizationParams struct {
	Language string
	ASCII    bool
	Input    string
	Output   string
	Source   string
}

type GetRomanizationParams struct {
	Language string
	ASCII    bool
	Input    string
}

// ListRecentParams filters the history by language; an empty Language lists
// every language.
type ListRecentParams struct {
	Language string
	Limit    int32
	Offset   int32
}

// Repository defines the interface for the romanization history store.
type Repository interface {
	// RecordRomanization inserts a row or, for a known input, bumps hits and
	// last_seen and refreshes the output.
	RecordRomanization(ctx context.Context, arg RecordRomanizationParams) (Romanization, error)
	GetRomanization(ctx context.Context, arg GetRomanizationParams) (Romanization, error)
	GetRomanizationByID(ctx context.Context, id int64) (Romanization, error)
	ListRecentRomanizations(ctx context.Context, arg ListRecentParams) ([]Romanization, error)
	CountRomanizations(ctx context.Context, language string) (int64, error)
	DeleteRomanizationsOlderThan(ctx context.Context, before time.Time) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// InputHash keys inputs of any length in the unique index.
func InputHash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
