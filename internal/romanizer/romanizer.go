// Package romanizer runs the transliteration engine for the CLI, the web API
// and the bot, recording each result in the history store when one is
// configured.
package romanizer

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/metrics"
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchConcurrency bounds RomanizeBatch when no limit is configured.
const DefaultBatchConcurrency = 8

type Romanizer struct {
	repo  db.Repository
	log   *slog.Logger
	limit int
}

// Request describes one text to romanize. Source labels the caller in
// metrics and history ("cli", "web", "bot").
type Request struct {
	Language transliteration.Language
	Text     string
	ASCII    bool
	Source   string
}

type Result struct {
	Language transliteration.Language
	Input    string
	Output   string
	ASCII    bool
	// HistoryID and Hits are zero when no history store is configured.
	HistoryID int64
	Hits      int64
}

// New returns a Romanizer. repo may be nil to disable history.
func New(repo db.Repository, log *slog.Logger) *Romanizer {
	if log == nil {
		log = slog.Default()
	}
	return &Romanizer{repo: repo, log: log, limit: DefaultBatchConcurrency}
}

// WithBatchConcurrency sets how many texts RomanizeBatch processes at once.
func (r *Romanizer) WithBatchConcurrency(n int) *Romanizer {
	if n > 0 {
		r.limit = n
	}
	return r
}

func (r *Romanizer) Romanize(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	res := Result{Language: req.Language, Input: req.Text, ASCII: req.ASCII}
	if req.Text == "" {
		return res, nil
	}

	var opts []transliteration.Option
	if req.ASCII {
		opts = append(opts, transliteration.WithASCII())
	}

	start := time.Now()
	res.Output = transliteration.RomanizeWith(req.Language, req.Text, opts...)
	metrics.RomanizationDuration.Observe(time.Since(start).Seconds())
	metrics.RomanizationsTotal.WithLabelValues(req.Language.Code(), req.Source).Inc()
	metrics.RomanizedRunes.WithLabelValues(req.Language.Code()).Observe(float64(utf8.RuneCountInString(req.Text)))

	if r.repo == nil {
		return res, nil
	}

	rom, err := r.repo.RecordRomanization(ctx, db.RecordRomanizationParams{
		Language: req.Language.Code(),
		ASCII:    req.ASCII,
		Input:    req.Text,
		Output:   res.Output,
		Source:   req.Source,
	})
	if err != nil {
		// History is best effort; the romanization itself succeeded.
		metrics.HistoryWrites.WithLabelValues("error").Inc()
		r.log.WarnContext(ctx, "failed to record romanization", "language", req.Language.Code(), "error", err)
		return res, nil
	}

	if rom.Hits > 1 {
		metrics.HistoryWrites.WithLabelValues("repeat").Inc()
	} else {
		metrics.HistoryWrites.WithLabelValues("new").Inc()
	}
	res.HistoryID = rom.ID
	res.Hits = rom.Hits
	return res, nil
}

// RomanizeBatch romanizes texts concurrently. Results keep the order of texts.
func (r *Romanizer) RomanizeBatch(ctx context.Context, lang transliteration.Language, texts []string, ascii bool, source string) ([]Result, error) {
	results := make([]Result, len(texts))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.limit)
	for i, text := range texts {
		eg.Go(func() error {
			res, err := r.Romanize(ctx, Request{Language: lang, Text: text, ASCII: ascii, Source: source})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
