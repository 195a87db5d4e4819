// Command ngramworker rebuilds tables on request.
//
// It consumes {"lang": ..., "n": ...} run requests from the run-requests
// Kafka topic, runs the same cleaning pipeline as ngramfreq and publishes
// the result to the configured sinks. Duplicate requests for a pair already
// being rebuilt share its run. Metrics and health probes are always served.
//
// Usage:
//
//	go run ./cmd/ngramworker [-config configs/ngramfreq.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/bootstrap"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/worker"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ngram worker",
		"topic", cfg.Kafka.Topics.RunRequests,
		"group", cfg.Kafka.ConsumerGroup,
		"concurrency", cfg.Pipeline.Concurrency,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()
	shutdown := metrics.StartServer(cfg.Metrics.Port, m, checker)

	runner, err := bootstrap.Runner(cfg, m)
	if err != nil {
		slog.Error("failed to prepare pipeline", "error", err)
		os.Exit(1)
	}
	publisher, closeSinks, err := bootstrap.Publisher(ctx, cfg, m, checker)
	if err != nil {
		slog.Error("failed to connect sinks", "error", err)
		os.Exit(1)
	}
	defer closeSinks()

	w := worker.New(runner, publisher, cfg.Pipeline.Langs, cfg.Pipeline.Ns, m)

	// Consumers in one group split the topic's partitions; requests for the
	// same pair arriving on different partitions meet in the worker.
	g, gctx := errgroup.WithContext(ctx)
	consumers := make([]*kafka.Consumer, max(cfg.Pipeline.Concurrency, 1))
	for i := range consumers {
		consumers[i] = kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RunRequests, w.Handle)
		c := consumers[i]
		g.Go(func() error { return c.Start(gctx) })
	}
	checker.Register("kafka", func(ctx context.Context) health.ComponentHealth {
		var lag int64
		for _, c := range consumers {
			lag += c.Lag()
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("lag %d", lag)}
	})

	if err := g.Wait(); err != nil {
		slog.Error("consumer error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown error", "error", err)
	}
	processed, shared := w.Stats()
	slog.Info("ngram worker stopped", "processed", processed, "shared", shared)
}
