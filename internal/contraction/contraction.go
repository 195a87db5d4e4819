// Package contraction re-segments ngrams at a contraction marker, so that
// French `qu'il` counts as the two words `qu'` and `il`.
package contraction

import (
	"sort"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

// Result is the outcome of splitting one table.
type Result struct {
	// Table holds the rows that still have n words, re-segmented. For n=1 it
	// also contains the flattened words of 2-word splits and is regrouped.
	Table ngram.Table
	// Spill holds rows whose word count changed, keyed by the new count.
	Spill map[int]ngram.Table
	// Added is the frequency mass introduced by flattening 2-word splits of
	// 1-grams.
	Added int64
}

// SplitToken cuts token after every marker occurrence and drops empty
// pieces: "qu'il" gives ["qu'", "il"] and "'" gives ["'"].
func SplitToken(token, marker string) []string {
	if marker == "" {
		if token == "" {
			return nil
		}
		return []string{token}
	}
	var pieces []string
	for token != "" {
		i := strings.Index(token, marker)
		if i < 0 {
			pieces = append(pieces, token)
			break
		}
		end := i + len(marker)
		pieces = append(pieces, token[:end])
		token = token[end:]
	}
	return pieces
}

// Resegment splits every token of text at marker and returns the resulting
// words.
func Resegment(text, marker string) []string {
	var words []string
	for _, token := range ngram.Tokens(text) {
		words = append(words, SplitToken(token, marker)...)
	}
	return words
}

// Split re-segments every row of an n-gram table. Rows that keep n words stay
// in place; the others move unchanged in frequency to Spill. For n=1 the
// 2-word spill is flattened back: each word receives the full frequency of
// its source row, and the table is regrouped.
func Split(t ngram.Table, n int, marker string) Result {
	res := Result{
		Table: make(ngram.Table, 0, len(t)),
		Spill: make(map[int]ngram.Table),
	}
	for _, r := range t {
		words := Resegment(r.Ngram, marker)
		r.Ngram = strings.Join(words, " ")
		if len(words) == n {
			res.Table = append(res.Table, r)
			continue
		}
		res.Spill[len(words)] = append(res.Spill[len(words)], r)
	}

	if n == 1 {
		for _, r := range res.Spill[2] {
			res.Added += r.Freq
			for _, word := range ngram.Tokens(r.Ngram) {
				res.Table = append(res.Table, ngram.Record{Ngram: word, Freq: r.Freq})
			}
		}
		delete(res.Spill, 2)
		res.Table = ngram.Group(res.Table)
	}
	return res
}

// SpillCounts returns the word counts present in spill, ascending.
func SpillCounts(spill map[int]ngram.Table) []int {
	counts := make([]int, 0, len(spill))
	for m := range spill {
		counts = append(counts, m)
	}
	sort.Ints(counts)
	return counts
}
