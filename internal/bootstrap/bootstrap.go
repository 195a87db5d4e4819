// Package bootstrap wires the pieces shared by the batch driver and the
// worker: exclusion lists, the pipeline runner and the publication sinks.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/events"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/exclusion"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/rankcache"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/store"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/redis"
)

// Runner loads the exclusion lists and creates the pipeline runner.
func Runner(cfg *config.Config, m *metrics.Metrics) (*pipeline.Runner, error) {
	lists, err := exclusion.Load(cfg.Paths.ExclusionDir, cfg.Pipeline.Ns)
	if err != nil {
		return nil, fmt.Errorf("loading exclusion lists: %w", err)
	}
	return pipeline.NewRunner(cfg, lists, m), nil
}

// Publisher connects every enabled sink and returns a Publisher over them
// together with a function that closes the connections. Connectivity checks
// for each backend are registered on checker.
func Publisher(ctx context.Context, cfg *config.Config, m *metrics.Metrics, checker *health.Checker) (*pipeline.Publisher, func(), error) {
	var (
		sinks   []pipeline.Sink
		closers []func() error
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				slog.Warn("closing sink connection", "error", err)
			}
		}
	}

	if cfg.Sinks.Postgres {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		s := store.New(db)
		if err := s.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		checker.Register("postgres", health.PingCheck(db.Ping))
		sinks = append(sinks, s)
		slog.Info("postgres sink enabled", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
	}

	if cfg.Sinks.Redis {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, client.Close)
		checker.Register("redis", health.PingCheck(client.Ping))
		sinks = append(sinks, rankcache.New(client, cfg.Redis.KeyPrefix, cfg.Redis.KeyTTL))
		slog.Info("redis sink enabled", "addr", cfg.Redis.Addr)
	}

	if cfg.Sinks.Kafka {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.TablePublished)
		closers = append(closers, producer.Close)
		sinks = append(sinks, events.NewSink(producer))
		slog.Info("kafka sink enabled", "topic", cfg.Kafka.Topics.TablePublished)
	}

	p := pipeline.NewPublisher(cfg.Sinks.Timeout, cfg.Sinks.RetryAttempts, m, sinks...)
	p.RegisterHealth(checker)
	return p, cleanup, nil
}
