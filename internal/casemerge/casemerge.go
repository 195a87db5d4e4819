// Package casemerge folds capitalised ngrams into their lowercase
// counterparts ("Le" into "le") unless the capitalised spelling dominates.
package casemerge

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	textlang "golang.org/x/text/language"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

// DefaultCutoff is the capitalised share at or above which the capitalised
// spelling survives.
const DefaultCutoff = 0.92

// Decision records how one capitalised/lowercase pair was resolved.
type Decision struct {
	Capitalised string
	Lowercase   string
	Share       float64
	// KeepCapitalised is true when the lowercase row was folded into the
	// capitalised one.
	KeepCapitalised bool
	Freq            int64
}

// Result is the merged table and the decisions taken.
type Result struct {
	Table     ngram.Table
	Decisions []Decision
}

// Merge resolves every capitalised/lowercase pair of t. Duplicate ngrams are
// summed first. All decisions are taken against the input frequencies and
// applied together, so each pair yields exactly one survivor carrying the
// sum of both frequencies. The result is sorted stably by frequency.
func Merge(t ngram.Table, cutoff float64, tag textlang.Tag) Result {
	if hasDuplicates(t) {
		t = ngram.Group(t)
	}
	lower := cases.Lower(tag)

	index := make(map[string]int, len(t))
	for i, r := range t {
		index[r.Ngram] = i
	}

	// counterpart index -> capitalised index; the most frequent capital wins.
	pairs := make(map[int]int)
	order := make([]int, 0)
	for i, r := range t {
		low, ok := counterpart(r.Ngram, lower)
		if !ok {
			continue
		}
		j, ok := index[low]
		if !ok || j == i {
			continue
		}
		prev, seen := pairs[j]
		if !seen {
			order = append(order, j)
			pairs[j] = i
			continue
		}
		if t[i].Freq > t[prev].Freq {
			pairs[j] = i
		}
	}

	removed := make(map[int]bool, len(pairs))
	updated := make(map[int]int64, len(pairs))
	decisions := make([]Decision, 0, len(pairs))
	for _, j := range order {
		i := pairs[j]
		capFreq, lowFreq := t[i].Freq, t[j].Freq
		sum := capFreq + lowFreq
		var share float64
		if sum > 0 {
			share = float64(capFreq) / float64(sum)
		}
		d := Decision{
			Capitalised: t[i].Ngram,
			Lowercase:   t[j].Ngram,
			Share:       share,
			Freq:        sum,
		}
		if share < cutoff {
			removed[i] = true
			updated[j] = sum
		} else {
			d.KeepCapitalised = true
			removed[j] = true
			updated[i] = sum
		}
		decisions = append(decisions, d)
	}

	out := make(ngram.Table, 0, len(t)-len(removed))
	for i, r := range t {
		if removed[i] {
			continue
		}
		if f, ok := updated[i]; ok {
			r.Freq = f
		}
		out = append(out, r)
	}
	out.SortByFreq()
	return Result{Table: out, Decisions: decisions}
}

// counterpart returns text with its first rune lowercased. It reports false
// when text does not start with an uppercase letter or when its first token
// is written entirely in capitals.
func counterpart(text string, lower cases.Caser) (string, bool) {
	first, size := utf8.DecodeRuneInString(text)
	if first == utf8.RuneError || !unicode.IsUpper(first) {
		return "", false
	}
	if allCaps(ngram.Tokens(text)[0]) {
		return "", false
	}
	return lower.String(text[:size]) + text[size:], true
}

// allCaps reports whether token has at least two letters and no lowercase
// ones, e.g. "DDR" but not "I" or "Le".
func allCaps(token string) bool {
	letters := 0
	for _, r := range token {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 2
}

func hasDuplicates(t ngram.Table) bool {
	seen := make(map[string]struct{}, len(t))
	for _, r := range t {
		if _, ok := seen[r.Ngram]; ok {
			return true
		}
		seen[r.Ngram] = struct{}{}
	}
	return false
}
