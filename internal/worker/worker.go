// Package worker serves run requests from Kafka. Requests for a pair that is
// already being rebuilt join the running build instead of starting another.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/events"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/pipeline"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/metrics"
	"golang.org/x/sync/singleflight"
)

// Runner is satisfied by *pipeline.Runner.
type Runner interface {
	Run(ctx context.Context, pair pipeline.Pair) (*pipeline.Outcome, error)
}

// Publisher is satisfied by *pipeline.Publisher.
type Publisher interface {
	Publish(ctx context.Context, out *pipeline.Outcome) error
}

// Worker turns run requests into pipeline runs.
type Worker struct {
	runner    Runner
	publisher Publisher
	allowed   map[string]bool
	ns        map[int]bool
	group     singleflight.Group
	metrics   *metrics.Metrics
	logger    *slog.Logger

	processed atomic.Int64
	shared    atomic.Int64
}

// New creates a Worker. Only requests naming a language in langs and an n in
// ns are run; an empty langs or ns accepts every value. publisher and m may be
// nil.
func New(runner Runner, publisher Publisher, langs []string, ns []int, m *metrics.Metrics) *Worker {
	allowed := make(map[string]bool, len(langs))
	for _, l := range langs {
		allowed[l] = true
	}
	allowedNs := make(map[int]bool, len(ns))
	for _, n := range ns {
		allowedNs[n] = true
	}
	return &Worker{
		runner:    runner,
		publisher: publisher,
		allowed:   allowed,
		ns:        allowedNs,
		metrics:   m,
		logger:    slog.Default().With("component", "worker"),
	}
}

// Handle is the kafka.MessageHandler for the run-request topic. Malformed
// requests and pipeline failures are logged and committed, since replaying
// them gives the same result; only a cancelled context leaves the message
// uncommitted.
func (w *Worker) Handle(ctx context.Context, key []byte, value []byte) error {
	req, err := kafka.DecodeJSON[events.RunRequest](value)
	if err == nil {
		err = req.Validate()
	}
	if err == nil && len(w.allowed) > 0 && !w.allowed[req.Lang] {
		err = pkgerrors.Newf(pkgerrors.ErrUnknownLanguage, "%q is not served by this worker", req.Lang)
	}
	if err == nil && len(w.ns) > 0 && !w.ns[req.N] {
		err = pkgerrors.Newf(pkgerrors.ErrInvalidInput, "n=%d is not served by this worker", req.N)
	}
	if err != nil {
		w.count("rejected")
		w.logger.Warn("run request rejected", "key", string(key), "error", err)
		return nil
	}

	_, shared, err := w.Process(ctx, req.Pair())
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		w.logger.Error("run request failed", "pair", req.Pair().String(), "request_id", req.RequestID, "error", err)
		return nil
	}
	w.logger.Info("run request done", "pair", req.Pair().String(), "request_id", req.RequestID, "shared", shared)
	return nil
}

// Process runs pair and publishes its table. Concurrent calls for the same
// pair share one run; shared reports whether the result went to more than
// one caller.
func (w *Worker) Process(ctx context.Context, pair pipeline.Pair) (*pipeline.Outcome, bool, error) {
	v, err, shared := w.group.Do(pair.String(), func() (any, error) {
		out, err := w.runner.Run(ctx, pair)
		if err != nil {
			return nil, err
		}
		if w.publisher != nil {
			if err := w.publisher.Publish(ctx, out); err != nil {
				// The table is on disk; a sink failure does not fail the run.
				w.logger.Warn("table written but not fully published", "pair", pair.String(), "error", err)
			}
		}
		return out, nil
	})
	w.processed.Add(1)
	if shared {
		w.shared.Add(1)
	}

	switch {
	case err != nil:
		w.count("failed")
	case shared:
		w.count("shared")
	default:
		w.count("ok")
	}
	if err != nil {
		return nil, shared, err
	}
	out, ok := v.(*pipeline.Outcome)
	if !ok {
		return nil, shared, errors.New("worker: unexpected result type")
	}
	return out, shared, nil
}

// Stats returns the number of processed requests and how many of them were
// served by a shared run.
func (w *Worker) Stats() (processed, shared int64) {
	return w.processed.Load(), w.shared.Load()
}

func (w *Worker) count(result string) {
	if w.metrics != nil {
		w.metrics.RunRequestsTotal.WithLabelValues(result).Inc()
	}
}
