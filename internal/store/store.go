// Package store archives finished frequency tables in PostgreSQL. Each
// published table becomes one ngram_tables row plus its ranked entries,
// written in a single transaction; earlier tables for the same pair are kept
// and marked superseded.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/postgres"
	"github.com/lib/pq"
)

// ErrNotFound is returned when no current table exists for a pair.
var ErrNotFound = errors.New("table not found")

const schema = `
CREATE TABLE IF NOT EXISTS ngram_tables (
	id               BIGSERIAL PRIMARY KEY,
	lang             TEXT NOT NULL,
	n                INTEGER NOT NULL,
	trace_id         TEXT NOT NULL,
	row_count        INTEGER NOT NULL,
	cutoff           BIGINT NOT NULL,
	truncation_bound BIGINT NOT NULL,
	freq_added       BIGINT NOT NULL,
	freq_removed     BIGINT NOT NULL,
	corpus_total     BIGINT NOT NULL,
	superseded       BOOLEAN NOT NULL DEFAULT false,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS ngram_tables_current ON ngram_tables (lang, n) WHERE NOT superseded;
CREATE TABLE IF NOT EXISTS ngram_entries (
	table_id BIGINT NOT NULL REFERENCES ngram_tables (id) ON DELETE CASCADE,
	rank     INTEGER NOT NULL,
	ngram    TEXT NOT NULL,
	freq     BIGINT NOT NULL,
	cumshare DOUBLE PRECISION,
	PRIMARY KEY (table_id, rank)
);
CREATE INDEX IF NOT EXISTS ngram_entries_ngram ON ngram_entries (table_id, ngram);
`

// TableInfo describes one archived table.
type TableInfo struct {
	ID              int64     `json:"id"`
	Lang            string    `json:"lang"`
	N               int       `json:"n"`
	TraceID         string    `json:"trace_id"`
	Rows            int       `json:"rows"`
	Cutoff          int64     `json:"cutoff"`
	TruncationBound int64     `json:"truncation_bound"`
	FreqAdded       int64     `json:"freq_added"`
	FreqRemoved     int64     `json:"freq_removed"`
	CorpusTotal     int64     `json:"corpus_total"`
	CreatedAt       time.Time `json:"created_at"`
}

// Store implements pipeline.Sink on top of PostgreSQL.
type Store struct {
	db     *postgres.Client
	logger *slog.Logger
}

// New creates a Store backed by db.
func New(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		logger: slog.Default().With("component", "table-store"),
	}
}

// Migrate creates the archive tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrating table archive: %w", err)
	}
	return nil
}

func (s *Store) Name() string { return "postgres" }

// Publish archives out as the current table of its pair.
func (s *Store) Publish(ctx context.Context, out *pipeline.Outcome) error {
	var id int64
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE ngram_tables SET superseded = true WHERE lang = $1 AND n = $2 AND NOT superseded`,
			out.Pair.Lang, out.Pair.N,
		); err != nil {
			return fmt.Errorf("superseding previous table: %w", err)
		}
		err := tx.QueryRowContext(ctx,
			`INSERT INTO ngram_tables
			   (lang, n, trace_id, row_count, cutoff, truncation_bound, freq_added, freq_removed, corpus_total)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING id`,
			out.Pair.Lang, out.Pair.N, out.TraceID, len(out.Table), out.Cutoff,
			out.Accounting.TruncationBound, out.Accounting.FreqAdded, out.Accounting.FreqRemoved, out.CorpusTotal,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("inserting table: %w", err)
		}
		return copyEntries(ctx, tx, id, out)
	})
	if err != nil {
		return err
	}
	s.logger.Info("table archived", "lang", out.Pair.Lang, "n", out.Pair.N, "table_id", id, "rows", len(out.Table))
	return nil
}

// copyEntries bulk-loads the ranked rows with COPY.
func copyEntries(ctx context.Context, tx *sql.Tx, id int64, out *pipeline.Outcome) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("ngram_entries", "table_id", "rank", "ngram", "freq", "cumshare"))
	if err != nil {
		return fmt.Errorf("preparing copy: %w", err)
	}
	for i, r := range out.Table {
		var cum sql.NullFloat64
		if i < len(out.Cumshare) {
			cum = sql.NullFloat64{Float64: out.Cumshare[i], Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i+1, r.Ngram, r.Freq, cum); err != nil {
			stmt.Close()
			return fmt.Errorf("copying entry %d: %w", i+1, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("flushing copy: %w", err)
	}
	return stmt.Close()
}

// Current returns the newest non-superseded table of a pair.
func (s *Store) Current(ctx context.Context, lang string, n int) (*TableInfo, error) {
	var info TableInfo
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT id, lang, n, trace_id, row_count, cutoff, truncation_bound, freq_added, freq_removed, corpus_total, created_at
		 FROM ngram_tables
		 WHERE lang = $1 AND n = $2 AND NOT superseded
		 ORDER BY id DESC LIMIT 1`,
		lang, n,
	).Scan(&info.ID, &info.Lang, &info.N, &info.TraceID, &info.Rows, &info.Cutoff,
		&info.TruncationBound, &info.FreqAdded, &info.FreqRemoved, &info.CorpusTotal, &info.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%d", ErrNotFound, lang, n)
	}
	if err != nil {
		return nil, fmt.Errorf("querying current table: %w", err)
	}
	return &info, nil
}

// Entries returns the first limit rows of an archived table in rank order.
// A non-positive limit returns every row.
func (s *Store) Entries(ctx context.Context, tableID int64, limit int) (ngram.Table, error) {
	query := `SELECT ngram, freq FROM ngram_entries WHERE table_id = $1 ORDER BY rank`
	args := []any{tableID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := s.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var t ngram.Table
	for rows.Next() {
		var r ngram.Record
		if err := rows.Scan(&r.Ngram, &r.Freq); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		t = append(t, r)
	}
	return t, rows.Err()
}

// Rank returns the one-based rank of an n-gram in the current table of its
// pair, or 0 when it is not listed.
func (s *Store) Rank(ctx context.Context, lang string, n int, text string) (int, error) {
	var rank int
	err := s.db.DB.QueryRowContext(ctx,
		`SELECT e.rank
		 FROM ngram_entries e JOIN ngram_tables t ON t.id = e.table_id
		 WHERE t.lang = $1 AND t.n = $2 AND NOT t.superseded AND e.ngram = $3`,
		lang, n, text,
	).Scan(&rank)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ranking %q: %w", text, err)
	}
	return rank, nil
}
