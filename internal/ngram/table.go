// Package ngram defines the frequency-table types shared by every cleaning
// stage: a Record is one n-gram with its summed frequency and a Table is an
// ordered slice of records, kept sorted descending by frequency after each
// stage that claims so.
package ngram

import (
	"sort"
	"strings"
)

// Record is a single n-gram and its frequency.
type Record struct {
	Ngram string
	Freq  int64
}

// Table is an ordered sequence of records. Ngram uniqueness only holds for
// finished tables.
type Table []Record

// Clone returns a copy that shares no backing array with t.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// TotalFreq returns the summed frequency mass of t.
func (t Table) TotalFreq() int64 {
	var total int64
	for _, r := range t {
		total += r.Freq
	}
	return total
}

// SortByFreq sorts t descending by frequency in place. The sort is stable so
// equal frequencies keep their current order.
func (t Table) SortByFreq() {
	sort.SliceStable(t, func(i, j int) bool {
		return t[i].Freq > t[j].Freq
	})
}

// Head returns the first k rows (or all of them when t is shorter).
func (t Table) Head(k int) Table {
	if k < 0 {
		k = 0
	}
	if k > len(t) {
		k = len(t)
	}
	return t[:k]
}

// Partition splits t into the rows for which match reports true and the rest,
// preserving order in both.
func (t Table) Partition(match func(Record) bool) (matched, rest Table) {
	matched = make(Table, 0)
	rest = make(Table, 0, len(t))
	for _, r := range t {
		if match(r) {
			matched = append(matched, r)
		} else {
			rest = append(rest, r)
		}
	}
	return matched, rest
}

// Set returns the set of ngrams in t.
func (t Table) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(t))
	for _, r := range t {
		set[r.Ngram] = struct{}{}
	}
	return set
}

// Group sums the frequencies of rows sharing the same ngram. The result is
// ordered by ngram text and then stably sorted descending by frequency, so
// ties are broken alphabetically and the output is reproducible.
func Group(t Table) Table {
	sums := make(map[string]int64, len(t))
	for _, r := range t {
		sums[r.Ngram] += r.Freq
	}
	out := make(Table, 0, len(sums))
	for ngram, freq := range sums {
		out = append(out, Record{Ngram: ngram, Freq: freq})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Ngram < out[j].Ngram
	})
	out.SortByFreq()
	return out
}

// Tokens splits an ngram into its space-separated tokens.
func Tokens(ngram string) []string {
	return strings.Split(ngram, " ")
}
