// Package share computes the corpus total of a language and the cumulative
// share of the corpus covered by a ranked 1-gram table.
package share

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/tableio"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

// Totals maps a year to its total token count.
type Totals map[int]int64

// ReadTotalsFile reads a total-count file.
func ReadTotalsFile(path string) (Totals, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening total counts %s: %w", path, err)
	}
	defer f.Close()
	totals, err := ReadTotals(f)
	if err != nil {
		return nil, fmt.Errorf("reading total counts %s: %w", path, err)
	}
	return totals, nil
}

// ReadTotals parses whitespace-separated `year,total_token_count,...`
// records. Only the first two fields of each record are used.
func ReadTotals(r io.Reader) (Totals, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(bufio.ScanWords)
	totals := make(Totals)
	for sc.Scan() {
		fields := strings.Split(sc.Text(), ",")
		if len(fields) < 2 {
			return nil, pkgerrors.Newf(pkgerrors.ErrInvalidInput, "record %q has no count", sc.Text())
		}
		year, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, pkgerrors.Newf(pkgerrors.ErrInvalidInput, "record %q: bad year", sc.Text())
		}
		count, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, pkgerrors.Newf(pkgerrors.ErrInvalidInput, "record %q: bad count", sc.Text())
		}
		totals[year] += count
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning total counts: %w", err)
	}
	return totals, nil
}

// Sum returns the token total over [from, to].
func (t Totals) Sum(from, to int) int64 {
	var sum int64
	for year, count := range t {
		if year >= from && year <= to {
			sum += count
		}
	}
	return sum
}

// CorpusTotal is the denominator of every share: the token total of the
// year range, corrected by the mass the cleaning added and removed.
func CorpusTotal(totals Totals, from, to int, added, removed int64) (int64, error) {
	total := totals.Sum(from, to) + added - removed
	if total <= 0 {
		return 0, pkgerrors.Newf(pkgerrors.ErrInvalidCorpusTotal,
			"years %d-%d give %d after adding %d and removing %d", from, to, total, added, removed)
	}
	return total, nil
}

// Cumulative returns, for every row of t in order, the share of total
// covered by that row and all rows above it. t must be sorted descending.
func Cumulative(t ngram.Table, total int64) ([]float64, error) {
	if total <= 0 {
		return nil, pkgerrors.Newf(pkgerrors.ErrInvalidCorpusTotal, "total %d", total)
	}
	out := make([]float64, len(t))
	var running int64
	for i, r := range t {
		running += r.Freq
		out[i] = float64(running) / float64(total)
	}
	return out, nil
}

// Column renders cumulative shares as a fixed-precision `cumshare` column.
func Column(cumshare []float64, decimals int) tableio.Column {
	return tableio.Column{
		Name: "cumshare",
		Value: func(i int) string {
			return strconv.FormatFloat(cumshare[i], 'f', decimals, 64)
		},
	}
}
