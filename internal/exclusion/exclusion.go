// Package exclusion loads the manual exclusion and keep lists. Each list file
// is a CSV whose header row names languages; the cells below a header are the
// literal ngrams listed for that language. Empty cells are ignored.
package exclusion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/language"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

const (
	keepUppercaseFile = "keep_uppercase.csv"
	keepOnecharFile   = "keep_onechar.csv"
)

// Set is an immutable set of literal ngrams.
type Set map[string]struct{}

// Has reports whether s contains ngram. A nil Set contains nothing.
func (s Set) Has(ngram string) bool {
	_, ok := s[ngram]
	return ok
}

func newSet(items ...string) Set {
	s := make(Set, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Config holds every list loaded for a run. It is built once by Load and
// only read afterwards, so it is safe to share between pairs.
type Config struct {
	exclude       map[int]map[string]Set
	keepUppercase map[string]Set
	keepOnechar   map[string]Set
}

// ExclusionFile returns the name of the exclusion list file for n.
func ExclusionFile(n int) string {
	return fmt.Sprintf("extra_%dgrams_to_exclude.csv", n)
}

// Load reads the exclusion lists for every n in ns plus the two keep lists
// from dir. Missing exclusion files yield empty lists; missing keep files
// leave the built-in profile lists in effect.
func Load(dir string, ns []int) (*Config, error) {
	logger := slog.Default().With("component", "exclusion", "dir", dir)
	cfg := &Config{exclude: make(map[int]map[string]Set, len(ns))}

	for _, n := range ns {
		lists, err := loadFile(filepath.Join(dir, ExclusionFile(n)))
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("no exclusion list", "n", n)
			continue
		}
		if err != nil {
			return nil, err
		}
		cfg.exclude[n] = lists
	}

	var err error
	if cfg.keepUppercase, err = loadFile(filepath.Join(dir, keepUppercaseFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if cfg.keepOnechar, err = loadFile(filepath.Join(dir, keepOnecharFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	logger.Info("exclusion lists loaded",
		"exclusion_files", len(cfg.exclude),
		"keep_uppercase_file", cfg.keepUppercase != nil,
		"keep_onechar_file", cfg.keepOnechar != nil,
	)
	return cfg, nil
}

// Excluded returns exclusion_list[n][lang].
func (c *Config) Excluded(n int, lang string) Set {
	if c == nil {
		return nil
	}
	return c.exclude[n][lang]
}

// KeepUppercase returns the uppercase keep list of p: the keep file's column
// when one exists for the language, otherwise the profile's built-in list.
func (c *Config) KeepUppercase(p language.Profile) Set {
	if c != nil {
		if s, ok := c.keepUppercase[p.Name]; ok {
			return s
		}
	}
	return newSet(p.KeepUppercase...)
}

// KeepOnechar returns the one-character keep list of p, with the same
// fallback as KeepUppercase.
func (c *Config) KeepOnechar(p language.Profile) Set {
	if c != nil {
		if s, ok := c.keepOnechar[p.Name]; ok {
			return s
		}
	}
	return newSet(p.KeepOnechar...)
}

func loadFile(path string) (map[string]Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening list %s: %w", path, err)
	}
	defer f.Close()
	lists, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing list %s: %w", path, err)
	}
	return lists, nil
}

// Parse reads a language-keyed list CSV.
func Parse(r io.Reader) (map[string]Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, pkgerrors.Newf(pkgerrors.ErrInvalidInput, "missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	langs := make([]string, len(header))
	lists := make(map[string]Set, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		langs[i] = name
		if name != "" {
			lists[name] = make(Set)
		}
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		for i, cell := range rec {
			if i >= len(langs) || langs[i] == "" || cell == "" {
				continue
			}
			lists[langs[i]][cell] = struct{}{}
		}
	}
	return lists, nil
}
