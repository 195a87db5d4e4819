// Command ngramfreq builds the cleaned n-gram frequency tables.
//
// For every configured (language, n) pair it merges the partial per-file
// tables, runs the cleaning pipeline and writes the final CSV plus its
// diagnostic tables. Pairs are independent and run concurrently up to
// pipeline.concurrency. Finished tables are optionally published to
// PostgreSQL, Redis and Kafka.
//
// Usage:
//
//	go run ./cmd/ngramfreq [-config configs/ngramfreq.yaml] [-langs french,german] [-ns 1,2]
//
// The exit status is 1 when any pair failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/language"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run builds every configured pair and returns the process exit status.
func run(args []string) int {
	fs := flag.NewFlagSet("ngramfreq", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file (defaults when empty)")
	langs := fs.String("langs", "", "comma-separated languages to build (overrides pipeline.langs)")
	ns := fs.String("ns", "", "comma-separated n values to build (overrides pipeline.ns)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return 1
	}
	if err := applyFlags(cfg, *langs, *ns); err != nil {
		fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
		return 2
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := strconv.FormatInt(time.Now().Unix(), 36)
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx)
	log.Info("starting ngram table build",
		"langs", cfg.Pipeline.Langs,
		"ns", cfg.Pipeline.Ns,
		"concurrency", cfg.Pipeline.Concurrency,
	)

	m := metrics.New()
	checker := health.NewChecker()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, m, checker)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	runner, err := bootstrap.Runner(cfg, m)
	if err != nil {
		log.Error("failed to prepare pipeline", "error", err)
		return 1
	}
	publisher, closeSinks, err := bootstrap.Publisher(ctx, cfg, m, checker)
	if err != nil {
		log.Error("failed to connect sinks", "error", err)
		return 1
	}
	defer closeSinks()

	start := time.Now()
	all := pairs(cfg)
	failed := runAll(ctx, runner, publisher, all, cfg.Pipeline.Concurrency)
	log.Info("ngram table build finished",
		"pairs", len(all),
		"failed", failed,
		"duration", time.Since(start).Round(time.Millisecond),
	)
	if failed > 0 {
		return 1
	}
	return 0
}

type pairRunner interface {
	Run(ctx context.Context, pair pipeline.Pair) (*pipeline.Outcome, error)
}

// runAll runs every pair, at most limit at a time, and returns the number
// that failed. A failing pair never stops the others.
func runAll(ctx context.Context, runner pairRunner, publisher *pipeline.Publisher, all []pipeline.Pair, limit int) int64 {
	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(max(limit, 1))
	for _, pair := range all {
		g.Go(func() error {
			if ctx.Err() != nil {
				failed.Add(1)
				return nil
			}
			out, err := runner.Run(ctx, pair)
			if err != nil {
				failed.Add(1)
				return nil
			}
			if publisher != nil && publisher.Len() > 0 {
				if err := publisher.Publish(ctx, out); err != nil {
					slog.Warn("table written but not fully published", "pair", pair.String(), "error", err)
				}
			}
			return nil
		})
	}
	g.Wait()
	return failed.Load()
}

func pairs(cfg *config.Config) []pipeline.Pair {
	out := make([]pipeline.Pair, 0, len(cfg.Pipeline.Langs)*len(cfg.Pipeline.Ns))
	for _, lang := range cfg.Pipeline.Langs {
		for _, n := range cfg.Pipeline.Ns {
			out = append(out, pipeline.Pair{Lang: lang, N: n})
		}
	}
	return out
}

// applyFlags narrows the configured languages and ns and re-validates.
func applyFlags(cfg *config.Config, langs, ns string) error {
	if langs != "" {
		cfg.Pipeline.Langs = splitList(langs)
	}
	if ns != "" {
		cfg.Pipeline.Ns = nil
		for _, s := range splitList(ns) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("-ns: %q is not an integer", s)
			}
			cfg.Pipeline.Ns = append(cfg.Pipeline.Ns, n)
		}
	}
	for _, lang := range cfg.Pipeline.Langs {
		if _, err := language.Lookup(lang); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
