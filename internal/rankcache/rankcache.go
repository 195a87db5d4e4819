// Package rankcache mirrors finished tables into Redis sorted sets so that
// callers can look up an n-gram's rank or the top of a table without reading
// the CSV.
package rankcache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/redis"
)

// Backend is the subset of *redis.Client the cache uses.
type Backend interface {
	ReplaceSortedSet(ctx context.Context, key string, members []redis.Member, metaKey string, meta string, ttl time.Duration) error
	TopMembers(ctx context.Context, key string, limit int) ([]redis.Member, error)
	Rank(ctx context.Context, key string, member string) (int64, float64, bool, error)
	Get(ctx context.Context, key string) (string, error)
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// Meta is stored next to each ranking.
type Meta struct {
	TraceID     string `json:"trace_id"`
	Rows        int    `json:"rows"`
	Cutoff      int64  `json:"cutoff"`
	CorpusTotal int64  `json:"corpus_total,omitempty"`
}

// Entry is a ranked lookup result. Rank is one-based.
type Entry struct {
	Ngram string `json:"ngram"`
	Freq  int64  `json:"freq"`
	Rank  int64  `json:"rank"`
}

// Cache implements pipeline.Sink on top of Redis.
type Cache struct {
	backend Backend
	prefix  string
	ttl     time.Duration
	logger  *slog.Logger
}

// New creates a Cache. Keys are "<prefix>:<lang>:<n>"; a zero ttl keeps them
// until the next publication.
func New(backend Backend, prefix string, ttl time.Duration) *Cache {
	return &Cache{
		backend: backend,
		prefix:  prefix,
		ttl:     ttl,
		logger:  slog.Default().With("component", "rank-cache"),
	}
}

func (c *Cache) Name() string { return "redis" }

func (c *Cache) key(lang string, n int) string {
	return fmt.Sprintf("%s:%s:%d", c.prefix, lang, n)
}

// Publish replaces the ranking of out's pair.
func (c *Cache) Publish(ctx context.Context, out *pipeline.Outcome) error {
	members := make([]redis.Member, len(out.Table))
	for i, r := range out.Table {
		members[i] = redis.Member{Name: r.Ngram, Score: float64(r.Freq)}
	}
	meta, err := json.Marshal(Meta{
		TraceID:     out.TraceID,
		Rows:        len(out.Table),
		Cutoff:      out.Cutoff,
		CorpusTotal: out.CorpusTotal,
	})
	if err != nil {
		return fmt.Errorf("encoding meta: %w", err)
	}
	key := c.key(out.Pair.Lang, out.Pair.N)
	if err := c.backend.ReplaceSortedSet(ctx, key, members, key+":meta", string(meta), c.ttl); err != nil {
		return err
	}
	c.logger.Debug("ranking replaced", "key", key, "rows", len(members))
	return nil
}

// Top returns the limit most frequent n-grams of a pair. Rows of equal
// frequency come back in Redis member order.
func (c *Cache) Top(ctx context.Context, lang string, n int, limit int) (ngram.Table, error) {
	members, err := c.backend.TopMembers(ctx, c.key(lang, n), limit)
	if err != nil {
		return nil, err
	}
	t := make(ngram.Table, len(members))
	for i, m := range members {
		t[i] = ngram.Record{Ngram: m.Name, Freq: int64(m.Score)}
	}
	return t, nil
}

// Lookup returns the rank and frequency of text. found is false when the
// n-gram is not in the table.
func (c *Cache) Lookup(ctx context.Context, lang string, n int, text string) (Entry, bool, error) {
	rank, score, found, err := c.backend.Rank(ctx, c.key(lang, n), text)
	if err != nil || !found {
		return Entry{}, false, err
	}
	return Entry{Ngram: text, Freq: int64(score), Rank: rank + 1}, true, nil
}

// Meta returns the metadata of a pair's current ranking.
func (c *Cache) Meta(ctx context.Context, lang string, n int) (Meta, bool, error) {
	raw, err := c.backend.Get(ctx, c.key(lang, n)+":meta")
	if redis.IsNilError(err) {
		return Meta{}, false, nil
	}
	if err != nil {
		return Meta{}, false, fmt.Errorf("reading meta: %w", err)
	}
	var m Meta
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Meta{}, false, fmt.Errorf("decoding meta: %w", err)
	}
	return m, true, nil
}

// Invalidate drops every ranking of lang.
func (c *Cache) Invalidate(ctx context.Context, lang string) (int64, error) {
	deleted, err := c.backend.FlushByPattern(ctx, fmt.Sprintf("%s:%s:*", c.prefix, lang))
	if err != nil {
		return deleted, err
	}
	c.logger.Info("rankings invalidated", "lang", lang, "keys", deleted)
	return deleted, nil
}
