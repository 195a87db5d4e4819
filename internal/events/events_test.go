package events

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/pipeline"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/kafka"
)

type recordingProducer struct {
	events []kafka.Event
}

func (p *recordingProducer) Publish(_ context.Context, events ...kafka.Event) error {
	p.events = append(p.events, events...)
	return nil
}

func TestSinkPublishesKeyedEvent(t *testing.T) {
	var table ngram.Table
	for i := 0; i < 15; i++ {
		table = append(table, ngram.Record{Ngram: fmt.Sprintf("w%d", i), Freq: int64(100 - i)})
	}
	out := &pipeline.Outcome{
		Pair:       pipeline.Pair{Lang: "german", N: 1},
		Code:       "ger",
		Table:      table,
		Cutoff:     86,
		OutputPath: "ngrams/1grams_german.csv",
		Accounting: pipeline.Accounting{TruncationBound: 20, FreqRemoved: 7},
		TraceID:    "abc",
	}
	producer := &recordingProducer{}
	sink := NewSink(producer)
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	sink.now = func() time.Time { return at }

	if err := sink.Publish(context.Background(), out); err != nil {
		t.Fatal(err)
	}
	if len(producer.events) != 1 {
		t.Fatalf("expected one event, got %d", len(producer.events))
	}
	ev := producer.events[0]
	if ev.Key != "german/1" {
		t.Errorf("expected key german/1, got %q", ev.Key)
	}
	msg, ok := ev.Value.(TablePublished)
	if !ok {
		t.Fatalf("unexpected value type %T", ev.Value)
	}
	if msg.Rows != 15 || len(msg.Preview) != PreviewRows || msg.Preview[0].Ngram != "w0" {
		t.Errorf("unexpected preview %+v", msg)
	}
	if msg.TruncationBound != 20 || msg.FreqRemoved != 7 || !msg.PublishedAt.Equal(at) || msg.Code != "ger" {
		t.Errorf("unexpected event %+v", msg)
	}
}

func TestRunRequestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{`{"lang":"french","n":2,"request_id":"r1"}`, false},
		{`{"lang":"","n":2}`, true},
		{`{"lang":"french","n":0}`, true},
	}
	for _, tt := range tests {
		req, err := kafka.DecodeJSON[RunRequest]([]byte(tt.raw))
		if err != nil {
			t.Fatalf("decode %s: %v", tt.raw, err)
		}
		err = req.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: expected error=%v, got %v", tt.raw, tt.wantErr, err)
		}
		if err != nil && !errors.Is(err, pkgerrors.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput, got %v", tt.raw, err)
		}
	}
	if _, err := kafka.DecodeJSON[RunRequest]([]byte("{")); err == nil {
		t.Error("expected a decode error for truncated JSON")
	}
}
