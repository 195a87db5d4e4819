package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/resilience"
)

// Sink receives finished tables after their CSV has been written. A sink
// never alters the table.
type Sink interface {
	Name() string
	Publish(ctx context.Context, out *Outcome) error
}

type guardedSink struct {
	Sink
	breaker *resilience.CircuitBreaker
}

// Publisher fans a finished table out to every configured sink.
type Publisher struct {
	sinks   []guardedSink
	timeout time.Duration
	retry   resilience.RetryConfig
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a Publisher. Each sink call is bounded by timeout and
// retried up to attempts times; a sink that keeps failing is skipped by its
// circuit breaker until it recovers. m may be nil.
func NewPublisher(timeout time.Duration, attempts int, m *metrics.Metrics, sinks ...Sink) *Publisher {
	p := &Publisher{
		timeout: timeout,
		retry:   resilience.RetryConfig{MaxAttempts: attempts},
		metrics: m,
		logger:  slog.Default().With("component", "publisher"),
	}
	for _, s := range sinks {
		p.sinks = append(p.sinks, guardedSink{
			Sink:    s,
			breaker: resilience.NewCircuitBreaker(s.Name(), resilience.CircuitBreakerConfig{FailureThreshold: 3}),
		})
	}
	return p
}

// Len returns the number of sinks.
func (p *Publisher) Len() int {
	return len(p.sinks)
}

// Publish delivers out to every sink. A failing sink does not stop the
// others; all failures are joined into the returned error.
func (p *Publisher) Publish(ctx context.Context, out *Outcome) error {
	var errs []error
	for _, sink := range p.sinks {
		name := fmt.Sprintf("%s publish %s", sink.Name(), out.Pair)
		err := resilience.Retry(ctx, name, p.retry, func() error {
			return sink.breaker.Execute(func() error {
				return resilience.WithTimeout(ctx, p.timeout, name, func(ctx context.Context) error {
					return sink.Publish(ctx, out)
				})
			})
		})
		status := "ok"
		switch {
		case errors.Is(err, resilience.ErrCircuitOpen):
			status = "skipped"
			errs = append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
			p.logger.Warn("sink skipped", "sink", sink.Name(), "pair", out.Pair.String(), "error", err)
		case err != nil:
			status = "failed"
			errs = append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
			p.logger.Error("publishing table failed", "sink", sink.Name(), "pair", out.Pair.String(), "error", err)
		default:
			p.logger.Debug("table published", "sink", sink.Name(), "pair", out.Pair.String())
		}
		if p.metrics != nil {
			p.metrics.SinkPublishTotal.WithLabelValues(sink.Name(), status).Inc()
		}
	}
	return errors.Join(errs...)
}

// RegisterHealth adds one check per sink to checker. A sink whose circuit is
// open reports degraded, since tables are still written to disk.
func (p *Publisher) RegisterHealth(checker *health.Checker) {
	for _, sink := range p.sinks {
		breaker := sink.breaker
		checker.Register("sink:"+sink.Name(), func(ctx context.Context) health.ComponentHealth {
			state := breaker.State()
			if state == resilience.StateClosed {
				return health.ComponentHealth{Status: health.StatusUp}
			}
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "circuit " + state.String()}
		})
	}
}
