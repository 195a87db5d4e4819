// Package guard enforces the truncation-safety invariant: a merged table may
// only be cut to k rows when its k-th frequency is strictly above the highest
// frequency at which any contributing partial file was truncated.
package guard

import (
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

// Check fails with ErrInsufficientData when t has fewer than k rows and with
// ErrTruncation when the frequency at rank k is <= bound. t must be sorted
// descending by frequency.
func Check(t ngram.Table, k int, bound int64) error {
	if len(t) < k {
		return pkgerrors.Newf(pkgerrors.ErrInsufficientData,
			"table has %d rows, %d requested", len(t), k)
	}
	if k <= 0 {
		return nil
	}
	if lowest := t[k-1].Freq; lowest <= bound {
		return pkgerrors.Newf(pkgerrors.ErrTruncation,
			"frequency at rank %d is %d, partial files truncated at %d", k, lowest, bound)
	}
	return nil
}

// Cutoff returns the frequency at rank k, the smallest frequency that makes it
// into a k-row output. It reports false when t has fewer than k rows.
func Cutoff(t ngram.Table, k int) (int64, bool) {
	if k <= 0 || len(t) < k {
		return 0, false
	}
	return t[k-1].Freq, true
}
