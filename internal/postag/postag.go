// Package postag separates part-of-speech annotated ngrams from clean ones.
// Source tokens may carry a `_TAG` suffix (`run_VERB`) or be a bare tag
// placeholder (`_NOUN_`); only unannotated ngrams continue down the pipeline.
package postag

import (
	"regexp"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

// Tags is the alternation of every annotation literal.
const Tags = `(?:VERB|NOUN|NUM|DET|ADV|ADJ|ADP|CONJ|PRON|PRT|X|\.|END|START)`

// nonWord is one or more characters that are neither letters nor numbers.
// Underscore counts as non-word here, matching a token like `_` or `,_.`.
const nonWord = `[^\p{L}\p{N}]+`

var (
	wildcard = regexp.MustCompile(`(?:^| )_` + Tags + `_(?: |$)`)

	// Boundary punctuation tokens of multi-word ngrams, bare or annotated.
	boundary = []*regexp.Regexp{
		regexp.MustCompile(` ` + nonWord + `$`),
		regexp.MustCompile(`^` + nonWord + ` `),
		regexp.MustCompile(` ` + nonWord + `_` + Tags + `$`),
		regexp.MustCompile(`^` + nonWord + `_` + Tags + ` `),
	}

	annotated = regexp.MustCompile(`_` + Tags + `(?: |$)`)
)

// Result holds the branches of a filtered table. All three keep the input
// order.
type Result struct {
	// WithPOS holds the annotated rows; only populated for 1-grams.
	WithPOS ngram.Table
	// NoPOS is the clean table.
	NoPOS ngram.Table
	// Discarded holds wildcard and boundary-punctuation rows.
	Discarded ngram.Table
}

// Discard reports whether an n-gram row is dropped unconditionally.
func Discard(text string, n int) bool {
	if wildcard.MatchString(text) {
		return true
	}
	if n > 1 {
		for _, re := range boundary {
			if re.MatchString(text) {
				return true
			}
		}
	}
	return false
}

// Annotated reports whether any token of text ends in a tag suffix.
func Annotated(text string) bool {
	return annotated.MatchString(text)
}

// Filter splits t into annotated and clean rows after dropping wildcard and
// boundary-punctuation rows.
func Filter(t ngram.Table, n int) Result {
	var res Result
	res.NoPOS = make(ngram.Table, 0, len(t))
	for _, r := range t {
		switch {
		case Discard(r.Ngram, n):
			res.Discarded = append(res.Discarded, r)
		case Annotated(r.Ngram):
			if n == 1 {
				res.WithPOS = append(res.WithPOS, r)
			}
		default:
			res.NoPOS = append(res.NoPOS, r)
		}
	}
	return res
}
