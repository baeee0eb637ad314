package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/jusunglee/kyrlat/internal/bot"
	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/db/open"
	"github.com/jusunglee/kyrlat/internal/db/postgres"
	"github.com/jusunglee/kyrlat/internal/envsetup"
	"github.com/jusunglee/kyrlat/internal/health"
	"github.com/jusunglee/kyrlat/internal/logger"
	"github.com/jusunglee/kyrlat/internal/romanizer"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	if envsetup.NeedsSetup() && len(os.Args) == 1 {
		completed, err := envsetup.Run()
		if err != nil {
			return fmt.Errorf("running env setup: %w", err)
		}
		if !completed {
			return errors.New("env setup cancelled")
		}
	}
	_ = godotenv.Load()

	fs := ff.NewFlagSet("kyrlat-bot")
	var (
		discordToken = fs.StringLong("discord-token", "", "Discord bot token")
		guildID      = fs.StringLong("discord-guild-id", "", "register commands to this guild only")
		databaseURL  = fs.StringLong("database-url", "", "history store: sqlite path or PostgreSQL URL (empty disables history)")
		apiURL       = fs.StringLong("api-url", "", "romanize through this kyrlat web server instead of in process")
		healthPort   = fs.IntLong("health-port", 8080, "health check port")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *discordToken == "" {
		return errors.New("discord-token is required")
	}
	if *apiURL != "" && *databaseURL != "" {
		return errors.New("database-url and api-url are mutually exclusive; the web server owns history when api-url is set")
	}

	log := logger.New()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	var (
		repo      db.Repository
		rom       bot.Romanizer
		readiness health.CheckFunc
	)
	switch {
	case *apiURL != "":
		rom = bot.NewAPIClient(*apiURL)
		log.InfoContext(ctx, "romanizing through web API", "url", *apiURL)
	case *databaseURL != "":
		var err error
		repo, err = open.Open(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		defer repo.Close()
		go postgres.ExportPoolStats(ctx, repo, 15*time.Second)
		readiness = repo.Ping
		rom = romanizer.New(repo, log)
	default:
		rom = romanizer.New(nil, log)
	}

	session, err := discordgo.New("Bot " + *discordToken)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}

	healthServer := health.New(*healthPort, readiness)
	go func() {
		log.InfoContext(ctx, "starting health server", "port", *healthPort)
		if err := healthServer.Start(); err != nil {
			log.ErrorContext(ctx, "health server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		healthServer.Shutdown(shutdownCtx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig)
		cancel(errors.New("signal received"))
	}()

	b := bot.New(bot.NewLogger(log), bot.NewDiscordSession(session), rom, bot.Config{GuildID: *guildID})
	return b.Run(ctx)
}
