package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/db/open"
	"github.com/jusunglee/kyrlat/internal/db/postgres"
	"github.com/jusunglee/kyrlat/internal/health"
	"github.com/jusunglee/kyrlat/internal/logger"
	"github.com/jusunglee/kyrlat/internal/romanizer"
	"github.com/jusunglee/kyrlat/internal/web"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	_ = godotenv.Load()

	fs := ff.NewFlagSet("kyrlat-web")

	var (
		port           = fs.Int64Long("port", 3000, "HTTP server port")
		databaseURL    = fs.StringLong("database-url", "", "history store: sqlite path or PostgreSQL URL (empty disables history)")
		adminPassword  = fs.StringLong("admin-password", "", "password for the admin user on DELETE /api/v1/romanizations")
		allowedOrigins = fs.StringLong("allowed-origins", "", "comma-separated list of allowed CORS origins (empty allows all)")
		rateLimit      = fs.IntLong("rate-limit", 60, "romanize requests per IP per minute")
		batchLimit     = fs.IntLong("batch-concurrency", romanizer.DefaultBatchConcurrency, "texts romanized at once per batch request")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	var repo db.Repository
	if *databaseURL != "" {
		var err error
		repo, err = open.Open(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		defer repo.Close()
		backend, _ := db.ParseURL(*databaseURL)
		log.InfoContext(ctx, "connected to history store", "backend", backend)

		go postgres.ExportPoolStats(ctx, repo, 15*time.Second)
	} else {
		log.WarnContext(ctx, "no database-url, history routes disabled")
	}

	var origins []string
	if *allowedOrigins != "" {
		origins = lo.Compact(lo.Map(strings.Split(*allowedOrigins, ","), func(o string, _ int) string {
			return strings.TrimSpace(o)
		}))
	}

	r := romanizer.New(repo, log).WithBatchConcurrency(*batchLimit)
	router := web.NewRouter(r, repo, log, web.Config{
		AdminPassword:  *adminPassword,
		AllowedOrigins: origins,
		RateLimit:      *rateLimit,
	})
	defer router.Close()

	var check health.CheckFunc
	if repo != nil {
		check = repo.Ping
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("GET /health", health.New(0, check).Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.InfoContext(ctx, "received signal, shutting down gracefully", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting web server", "port", *port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
