package tableio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

// Column is an extra output column; Value renders the cell for row i.
type Column struct {
	Name  string
	Value func(i int) string
}

// WriteFile atomically writes t as `ngram,freq[,extra...]` CSV. It writes to
// a .tmp file first and renames on success, so readers never observe a
// partially written table. The .tmp file is removed when any step fails.
func WriteFile(path string, t ngram.Table, extra ...Column) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating table directory: %w", err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp table file: %w", err)
	}
	closed := false
	defer func() {
		if !closed {
			f.Close()
		}
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if err := writeCSV(f, t, extra); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing table file: %w", err)
	}
	closed = true
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing table file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming table file: %w", err)
	}
	return nil
}

func writeCSV(dst io.Writer, t ngram.Table, extra []Column) error {
	bw := bufio.NewWriterSize(dst, 1<<16)
	w := csv.NewWriter(bw)

	header := []string{"ngram", "freq"}
	for _, col := range extra {
		header = append(header, col.Name)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	row := make([]string, len(header))
	for i, r := range t {
		row[0] = r.Ngram
		row[1] = strconv.FormatInt(r.Freq, 10)
		for j, col := range extra {
			row[2+j] = col.Value(i)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing table file: %w", err)
	}
	return nil
}
