// Package cleaning implements the ordered pattern passes that remove or
// regroup ngrams after case merging. A pass is a value: Apply is a pure
// function from a table to the surviving table and the removed rows, which
// makes the frequency mass dropped by each pass exact and independently
// testable.
package cleaning

import (
	"regexp"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/exclusion"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

// Kind selects what a pass does with matching rows.
type Kind int

const (
	// Remove drops matching rows unless they are in the keep set.
	Remove Kind = iota
	// ReplaceGroup rewrites every ngram and sums rows that become equal.
	ReplaceGroup
)

func (k Kind) String() string {
	switch k {
	case Remove:
		return "remove"
	case ReplaceGroup:
		return "replace-group"
	default:
		return "unknown"
	}
}

// Pass describes one step of the pipeline.
type Pass struct {
	Name string
	Kind Kind
	// Match selects rows to drop (Remove).
	Match func(ngram string) bool
	// Keep exempts rows from removal.
	Keep exclusion.Set
	// Pattern and Replacement rewrite ngrams (ReplaceGroup).
	Pattern     *regexp.Regexp
	Replacement string
}

// Outcome is the result of applying a single pass.
type Outcome struct {
	Table   ngram.Table
	Removed ngram.Table
	// Mass is the summed frequency of Removed.
	Mass int64
}

// RemovePattern drops rows matching re, except those in keep.
func RemovePattern(name string, re *regexp.Regexp, keep exclusion.Set) Pass {
	return Pass{Name: name, Kind: Remove, Match: re.MatchString, Keep: keep}
}

// RemoveFunc drops rows for which match reports true.
func RemoveFunc(name string, match func(string) bool) Pass {
	return Pass{Name: name, Kind: Remove, Match: match}
}

// RemoveEntries drops rows whose ngram is in entries.
func RemoveEntries(name string, entries exclusion.Set) Pass {
	return Pass{Name: name, Kind: Remove, Match: entries.Has}
}

// ReplaceAndGroup rewrites re matches with replacement, then sums duplicates.
func ReplaceAndGroup(name string, re *regexp.Regexp, replacement string) Pass {
	return Pass{Name: name, Kind: ReplaceGroup, Pattern: re, Replacement: replacement}
}

// Apply runs the pass over t. t is not modified. Removal keeps the input
// order; regrouping sorts the result by descending frequency.
func (p Pass) Apply(t ngram.Table) Outcome {
	switch p.Kind {
	case ReplaceGroup:
		rewritten := make(ngram.Table, len(t))
		for i, r := range t {
			rewritten[i] = ngram.Record{
				Ngram: p.Pattern.ReplaceAllString(r.Ngram, p.Replacement),
				Freq:  r.Freq,
			}
		}
		return Outcome{Table: ngram.Group(rewritten)}
	default:
		out := Outcome{Table: make(ngram.Table, 0, len(t))}
		for _, r := range t {
			if p.Match(r.Ngram) && !p.Keep.Has(r.Ngram) {
				out.Removed = append(out.Removed, r)
				out.Mass += r.Freq
				continue
			}
			out.Table = append(out.Table, r)
		}
		return out
	}
}
