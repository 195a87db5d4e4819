// Package merger combines the capped partial tables of one (language, n)
// pair into a single ranked table and derives the pair's truncation bound.
package merger

import (
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/tableio"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

// Result is the merged table plus what the merge learned about its inputs.
type Result struct {
	Table ngram.Table
	// Bound is the highest per-file minimum frequency. Rows at or below it
	// may be missing occurrences that a partial file truncated away.
	Bound int64
	Files int
	// Dropped counts rows removed for having an empty ngram.
	Dropped int
}

// Merge reads every file (each up to opts.MaxRows rows), concatenates them in
// the given order and sorts the result stably by descending frequency.
func Merge(files []string, opts tableio.ReadOptions) (Result, error) {
	if len(files) == 0 {
		return Result{}, pkgerrors.Newf(pkgerrors.ErrNoPartialFiles, "nothing to merge")
	}
	logger := slog.Default().With("component", "merger")

	tables := make([]ngram.Table, 0, len(files))
	for _, path := range files {
		t, err := tableio.ReadFile(path, opts)
		if err != nil {
			return Result{}, fmt.Errorf("merging partial files: %w", err)
		}
		if len(t) == 0 {
			logger.Warn("empty partial file", "path", path)
		}
		tables = append(tables, t)
	}
	res := MergeTables(tables...)
	logger.Debug("partial files merged",
		"files", res.Files,
		"rows", len(res.Table),
		"bound", res.Bound,
		"dropped_empty", res.Dropped,
	)
	return res, nil
}

// MergeTables merges already loaded partial tables. Empty tables contribute
// no rows and do not move the bound.
func MergeTables(tables ...ngram.Table) Result {
	res := Result{Files: len(tables)}
	size := 0
	for _, t := range tables {
		size += len(t)
	}
	merged := make(ngram.Table, 0, size)
	for _, t := range tables {
		if len(t) == 0 {
			continue
		}
		lowest := t[0].Freq
		for _, r := range t {
			if r.Freq < lowest {
				lowest = r.Freq
			}
		}
		res.Bound = max(res.Bound, lowest)
		merged = append(merged, t...)
	}
	merged.SortByFreq()

	kept := merged[:0]
	for _, r := range merged {
		if r.Ngram == "" {
			res.Dropped++
			continue
		}
		kept = append(kept, r)
	}
	res.Table = kept
	return res
}
