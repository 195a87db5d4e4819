// Package events defines the Kafka messages exchanged with the downstream
// translate/plot tooling: table-published notifications going out and run
// requests coming in.
package events

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/pipeline"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/kafka"
)

// PreviewRows is the number of leading rows carried in a TablePublished event.
const PreviewRows = 10

// TablePublished announces that a pair's final table was written.
type TablePublished struct {
	Lang            string         `json:"lang"`
	N               int            `json:"n"`
	Code            string         `json:"code"`
	Path            string         `json:"path"`
	Rows            int            `json:"rows"`
	Cutoff          int64          `json:"cutoff"`
	CorpusTotal     int64          `json:"corpus_total,omitempty"`
	TruncationBound int64          `json:"truncation_bound"`
	FreqAdded       int64          `json:"freq_added"`
	FreqRemoved     int64          `json:"freq_removed"`
	Preview         []PreviewEntry `json:"preview"`
	TraceID         string         `json:"trace_id"`
	PublishedAt     time.Time      `json:"published_at"`
}

type PreviewEntry struct {
	Ngram string `json:"ngram"`
	Freq  int64  `json:"freq"`
}

// NewTablePublished builds the event for a finished pair.
func NewTablePublished(out *pipeline.Outcome, at time.Time) TablePublished {
	head := out.Table.Head(PreviewRows)
	preview := make([]PreviewEntry, len(head))
	for i, r := range head {
		preview[i] = PreviewEntry{Ngram: r.Ngram, Freq: r.Freq}
	}
	return TablePublished{
		Lang:            out.Pair.Lang,
		N:               out.Pair.N,
		Code:            out.Code,
		Path:            out.OutputPath,
		Rows:            len(out.Table),
		Cutoff:          out.Cutoff,
		CorpusTotal:     out.CorpusTotal,
		TruncationBound: out.Accounting.TruncationBound,
		FreqAdded:       out.Accounting.FreqAdded,
		FreqRemoved:     out.Accounting.FreqRemoved,
		Preview:         preview,
		TraceID:         out.TraceID,
		PublishedAt:     at.UTC(),
	}
}

// RunRequest asks a worker to rebuild one pair.
type RunRequest struct {
	Lang      string `json:"lang"`
	N         int    `json:"n"`
	RequestID string `json:"request_id,omitempty"`
}

// Pair returns the pair the request names.
func (r RunRequest) Pair() pipeline.Pair {
	return pipeline.Pair{Lang: r.Lang, N: r.N}
}

// Validate rejects requests that cannot name a pair.
func (r RunRequest) Validate() error {
	if r.Lang == "" {
		return pkgerrors.Newf(pkgerrors.ErrInvalidInput, "run request without lang")
	}
	if r.N < 1 {
		return pkgerrors.Newf(pkgerrors.ErrInvalidInput, "run request with n=%d", r.N)
	}
	return nil
}

// Producer is satisfied by *kafka.Producer.
type Producer interface {
	Publish(ctx context.Context, events ...kafka.Event) error
}

// Sink publishes a TablePublished event for every finished table. Events are
// keyed by pair so that consumers see one pair's tables in order.
type Sink struct {
	producer Producer
	now      func() time.Time
}

// NewSink creates a Sink writing through producer.
func NewSink(producer Producer) *Sink {
	return &Sink{producer: producer, now: time.Now}
}

func (s *Sink) Name() string { return "kafka" }

func (s *Sink) Publish(ctx context.Context, out *pipeline.Outcome) error {
	return s.producer.Publish(ctx, kafka.Event{
		Key:   out.Pair.String(),
		Value: NewTablePublished(out, s.now()),
	})
}
