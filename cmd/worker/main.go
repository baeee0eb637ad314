package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/db/open"
	"github.com/jusunglee/kyrlat/internal/db/postgres"
	"github.com/jusunglee/kyrlat/internal/health"
	"github.com/jusunglee/kyrlat/internal/logger"
	"github.com/jusunglee/kyrlat/internal/metrics"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("kyrlat-worker")
	var (
		databaseURL = fs.StringLong("database-url", "", "history store: sqlite path or PostgreSQL URL")
		retention   = fs.DurationLong("retention", 30*24*time.Hour, "delete history rows not seen for this long")
		interval    = fs.DurationLong("interval", 1*time.Hour, "pruning interval")
		healthPort  = fs.IntLong("health-port", 8081, "health check port")
		metricsAddr = fs.StringLong("metrics-addr", ":9090", "Prometheus metrics listen address")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if err := validateFlags(*databaseURL, *retention, *interval); err != nil {
		return err
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	log := logger.New()

	repo, err := open.Open(ctx, *databaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer repo.Close()

	go func() {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsServer := &http.Server{Addr: *metricsAddr, Handler: metricsMux, ReadHeaderTimeout: 5 * time.Second}
		log.InfoContext(ctx, "starting metrics server", "addr", *metricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ErrorContext(ctx, "metrics server error", "error", err)
		}
	}()

	healthServer := health.New(*healthPort, repo.Ping)
	go func() {
		if err := healthServer.Start(); err != nil {
			log.ErrorContext(ctx, "health server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		healthServer.Shutdown(shutdownCtx)
	}()

	go postgres.ExportPoolStats(ctx, repo, 15*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig)
		cancel(errors.New("signal received"))
	}()

	log.InfoContext(ctx, "worker starting", "interval", *interval, "retention", *retention)
	runPrune(ctx, repo, *retention, time.Now, log)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runPrune(ctx, repo, *retention, time.Now, log)
		case <-ctx.Done():
			log.Info("worker stopped")
			return nil
		}
	}
}

func validateFlags(databaseURL string, retention, interval time.Duration) error {
	if databaseURL == "" {
		return errors.New("database-url is required")
	}
	if retention <= 0 {
		return errors.New("retention must be positive")
	}
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	return nil
}

// runPrune deletes history rows whose last_seen is older than retention.
func runPrune(ctx context.Context, repo db.Repository, retention time.Duration, now func() time.Time, log *slog.Logger) int64 {
	pruneCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	cutoff := now().Add(-retention)
	deleted, err := repo.DeleteRomanizationsOlderThan(pruneCtx, cutoff)
	if err != nil {
		log.ErrorContext(ctx, "pruning history", "error", err)
		return 0
	}
	metrics.HistoryPruned.Add(float64(deleted))

	remaining, err := repo.CountRomanizations(pruneCtx, "")
	if err != nil {
		log.WarnContext(ctx, "counting history", "error", err)
	}
	log.InfoContext(ctx, "pruned history", "deleted", deleted, "remaining", remaining, "cutoff", cutoff)
	return deleted
}
