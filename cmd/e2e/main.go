package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/kyrlat/internal/bot"
	"github.com/jusunglee/kyrlat/internal/db/sqlite"
	"github.com/jusunglee/kyrlat/internal/logger"
	"github.com/jusunglee/kyrlat/internal/romanizer"
	"github.com/jusunglee/kyrlat/internal/samples"
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/jusunglee/kyrlat/internal/web"
	"github.com/samber/lo"
)

func main() {
	if err := run(); err != nil {
		logger.Error("E2E FAILED", "error", err)
		os.Exit(1)
	}
	logger.Info("E2E PASSED")
}

func run() error {
	_ = godotenv.Load()

	log := logger.New()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Phase 1: use E2E_BASE_URL when set, otherwise start a server on a temp SQLite
	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		log.Info("Phase 1: Starting local web server...")
		dbPath := fmt.Sprintf("%s/kyrlat-e2e-%d.db", os.TempDir(), time.Now().UnixNano())
		defer os.Remove(dbPath)

		repo, err := sqlite.New(ctx, dbPath)
		if err != nil {
			return fmt.Errorf("creating temp SQLite: %w", err)
		}
		defer repo.Close()

		router := web.NewRouter(romanizer.New(repo, log), repo, log, web.Config{RateLimit: 1000})
		defer router.Close()
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("listening: %w", err)
		}
		server := &http.Server{Handler: router.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go server.Serve(ln)
		defer server.Close()

		baseURL = "http://" + ln.Addr().String()
	}
	log.Info("using web server", "url", baseURL)

	// Phase 2: Romanize every sample one by one
	log.Info("Phase 2: Romanizing samples...", "count", len(samples.All))
	client := bot.NewAPIClient(baseURL)
	var failures []string
	for _, s := range samples.All {
		res, err := client.Romanize(ctx, romanizer.Request{Language: s.Language, Text: s.Input})
		if err != nil {
			return fmt.Errorf("romanizing %q: %w", s.Input, err)
		}
		if res.Output != s.Want {
			failures = append(failures, fmt.Sprintf("%s %q: got %q, want %q", s.Language.Code(), s.Input, res.Output, s.Want))
		}
	}
	if len(failures) > 0 {
		for _, f := range failures {
			log.Error("mismatch", "detail", f)
		}
		return fmt.Errorf("%d of %d samples mismatched", len(failures), len(samples.All))
	}

	// Phase 3: Romanize each language as one batch
	log.Info("Phase 3: Romanizing batches...")
	for lang, group := range samples.ByLanguage() {
		got, err := romanizeBatch(ctx, baseURL, lang, lo.Map(group, func(s samples.Sample, _ int) string { return s.Input }))
		if err != nil {
			return fmt.Errorf("batch %s: %w", lang.Code(), err)
		}
		want := lo.Map(group, func(s samples.Sample, _ int) string { return s.Want })
		if !slices.Equal(got, want) {
			return fmt.Errorf("batch %s: got %q, want %q", lang.Code(), got, want)
		}
	}

	// Phase 4: History holds every sample
	log.Info("Phase 4: Verifying history...")
	total, err := historyTotal(ctx, baseURL)
	if errors.Is(err, errNoHistory) {
		log.Warn("server has no history store, skipping history checks")
	} else if err != nil {
		return err
	} else if total < int64(len(samples.All)) {
		return fmt.Errorf("history has %d rows, want at least %d", total, len(samples.All))
	}

	log.Info("all verifications passed", "samples", len(samples.All), "history_rows", total)
	return nil
}

type batchResult struct {
	Romanized string `json:"romanized"`
}

func romanizeBatch(ctx context.Context, baseURL string, lang transliteration.Language, texts []string) ([]string, error) {
	body, err := json.Marshal(map[string]any{"language": lang.Code(), "texts": texts})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/v1/romanize/batch", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out struct {
		Results []batchResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return lo.Map(out.Results, func(r batchResult, _ int) string { return r.Romanized }), nil
}

var errNoHistory = errors.New("history disabled")

func historyTotal(ctx context.Context, baseURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/v1/romanizations?limit=1", nil)
	if err != nil {
		return 0, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return 0, errNoHistory
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("listing history: status %d", resp.StatusCode)
	}

	var out struct {
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decoding history: %w", err)
	}
	return out.Pagination.Total, nil
}
