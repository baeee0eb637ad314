// kyrlat romanizes Cyrillic text with SFS 4900.
//
// Usage:
//
//	kyrlat --lang ru --text "Горбачёв"
//	kyrlat --lang uk notes.txt more.txt
//	echo "Магілёў" | kyrlat -l be --ascii
//	kyrlat -l mk -i
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jusunglee/kyrlat/internal/db/open"
	"github.com/jusunglee/kyrlat/internal/logger"
	"github.com/jusunglee/kyrlat/internal/romanizer"
	"github.com/jusunglee/kyrlat/internal/transliteration"
	"github.com/jusunglee/kyrlat/internal/tui"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// previewer is replaced in tests, which have no terminal.
var previewer = tui.Run

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := ff.NewFlagSet("kyrlat")
	var (
		lang        = fs.String('l', "lang", "", "source language: "+languageCodes())
		ascii       = fs.BoolLong("ascii", "fold the result to plain ASCII")
		interactive = fs.Bool('i', "interactive", "open the live previewer")
		text        = fs.String('t', "text", "", "romanize this text instead of files or stdin")
		databaseURL = fs.StringLong("database-url", "", "record results in this history store (sqlite path or postgres URL)")
		concurrency = fs.IntLong("concurrency", romanizer.DefaultBatchConcurrency, "files romanized at once")
	)

	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("KYRLAT")); err != nil {
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		if errors.Is(err, ff.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parsing flags: %w", err)
	}

	// The previewer cycles languages with Tab, so it can start without one.
	language := transliteration.Languages()[0]
	switch {
	case *lang != "":
		var err error
		if language, err = transliteration.ParseLanguage(*lang); err != nil {
			return err
		}
	case !*interactive:
		fmt.Fprintf(stderr, "%s\n", ffhelp.Flags(fs))
		return errors.New("lang is required")
	}

	if *interactive {
		last, err := previewer(language, *ascii)
		if err != nil {
			return fmt.Errorf("running previewer: %w", err)
		}
		if last != "" {
			fmt.Fprintln(stdout, last)
		}
		return nil
	}

	log := logger.NewWithWriter(stderr, os.Getenv("LOG_FORMAT"), logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	r := romanizer.New(nil, log)
	if *databaseURL != "" {
		repo, err := open.Open(ctx, *databaseURL)
		if err != nil {
			return fmt.Errorf("opening history store: %w", err)
		}
		defer repo.Close()
		r = romanizer.New(repo, log)
	}
	r.WithBatchConcurrency(*concurrency)

	switch {
	case *text != "":
		res, err := r.Romanize(ctx, romanizer.Request{Language: language, Text: *text, ASCII: *ascii, Source: "cli"})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, res.Output)
		return nil

	case len(fs.GetArgs()) > 0:
		return romanizeFiles(ctx, r, language, *ascii, fs.GetArgs(), *concurrency, stdout)

	default:
		return romanizeLines(ctx, r, language, *ascii, stdin, stdout)
	}
}

func languageCodes() string {
	return strings.Join(lo.Map(transliteration.Languages(), func(l transliteration.Language, _ int) string {
		return l.Code()
	}), ", ")
}

// romanizeFiles reads every file concurrently, romanizes them as one batch and
// writes the results in argument order.
func romanizeFiles(ctx context.Context, r *romanizer.Romanizer, lang transliteration.Language, ascii bool, paths []string, limit int, w io.Writer) error {
	contents := make([]string, len(paths))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(max(limit, 1))
	for i, path := range paths {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			contents[i] = string(b)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	results, err := r.RomanizeBatch(ctx, lang, contents, ascii, "cli")
	if err != nil {
		return err
	}
	for _, res := range results {
		if _, err := io.WriteString(w, res.Output); err != nil {
			return err
		}
	}
	return nil
}

// romanizeLines streams r line by line so pipes see output as soon as a line
// is complete.
func romanizeLines(ctx context.Context, r *romanizer.Romanizer, lang transliteration.Language, ascii bool, in io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		res, err := r.Romanize(ctx, romanizer.Request{Language: lang, Text: scanner.Text(), ASCII: ascii, Source: "cli"})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, res.Output); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
