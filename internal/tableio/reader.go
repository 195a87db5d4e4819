// Package tableio reads and writes `ngram,freq` CSV tables. Writes are atomic:
// rows go to a .tmp file which is synced and renamed over the target.
package tableio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

// ReadOptions controls how a table file is read.
type ReadOptions struct {
	// MaxRows caps the number of data rows read; zero or negative reads all.
	MaxRows int
	// NormalizeNFC rewrites every ngram to Unicode normalisation form C.
	NormalizeNFC bool
}

// ReadFile reads an `ngram,freq` CSV file.
func ReadFile(path string, opts ReadOptions) (ngram.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table %s: %w", path, err)
	}
	defer f.Close()
	tbl, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return tbl, nil
}

// Read parses an `ngram,freq` CSV stream. The header row is required; columns
// are located by name so extra columns are ignored.
func Read(r io.Reader, opts ReadOptions) (ngram.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, pkgerrors.Newf(pkgerrors.ErrInvalidInput, "missing header")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}
	ngramCol, freqCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "ngram":
			ngramCol = i
		case "freq":
			freqCol = i
		}
	}
	if ngramCol < 0 || freqCol < 0 {
		return nil, pkgerrors.Newf(pkgerrors.ErrInvalidInput, "header %v lacks ngram/freq columns", header)
	}

	tbl := make(ngram.Table, 0, max(opts.MaxRows, 0))
	line := 1
	for opts.MaxRows <= 0 || len(tbl) < opts.MaxRows {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		line++
		if len(rec) <= ngramCol || len(rec) <= freqCol {
			return nil, pkgerrors.Newf(pkgerrors.ErrInvalidInput, "line %d has %d fields", line, len(rec))
		}
		freq, err := parseFreq(rec[freqCol])
		if err != nil {
			return nil, pkgerrors.Newf(pkgerrors.ErrInvalidInput, "line %d: %v", line, err)
		}
		text := rec[ngramCol]
		if opts.NormalizeNFC {
			text = norm.NFC.String(text)
		}
		tbl = append(tbl, ngram.Record{Ngram: text, Freq: freq})
	}
	return tbl, nil
}

// parseFreq accepts integers and integral floats ("1200.0"), which some
// dataframe writers emit for count columns.
func parseFreq(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, fmt.Errorf("negative frequency %d", v)
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || f < 0 || f > math.MaxInt64 {
		return 0, fmt.Errorf("invalid frequency %q", s)
	}
	return int64(f), nil
}

// PartialFiles lists the partial files for n in dir (`ngrams_{n}-*.csv`) in
// lexical order.
func PartialFiles(dir string, n int) ([]string, error) {
	pattern := filepath.Join(dir, fmt.Sprintf("ngrams_%d-*.csv", n))
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("listing partial files %s: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}
