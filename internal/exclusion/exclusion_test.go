package exclusion

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/language"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestParseIgnoresEmptyCells(t *testing.T) {
	in := "english,french\nfoo,bar\n,baz\nqux,\n"
	lists, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(lists["english"]) != 2 || !lists["english"].Has("qux") {
		t.Errorf("unexpected english list %v", lists["english"])
	}
	if len(lists["french"]) != 2 || lists["french"].Has("") {
		t.Errorf("unexpected french list %v", lists["french"])
	}
}

func TestParseEmptyInput(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); !errors.Is(err, pkgerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ExclusionFile(1), "english,german\nfoo,bar\n")
	writeFile(t, dir, "keep_uppercase.csv", "german\nNATO\n")

	cfg, err := Load(dir, []int{1, 2})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Excluded(1, "english").Has("foo") {
		t.Error("expected foo excluded for english 1-grams")
	}
	if cfg.Excluded(2, "english").Has("foo") {
		t.Error("missing 2-gram file must yield an empty list")
	}

	german, _ := language.Lookup("german")
	keep := cfg.KeepUppercase(german)
	if !keep.Has("NATO") || keep.Has("DDR") {
		t.Errorf("expected keep file to replace built-in german list, got %v", keep)
	}
	english, _ := language.Lookup("english")
	if !cfg.KeepUppercase(english).Has("God") {
		t.Error("expected built-in list for a language absent from the keep file")
	}
	if !cfg.KeepOnechar(english).Has("I") {
		t.Error("expected built-in one-char list when no keep file exists")
	}
}

func TestNilConfigFallsBack(t *testing.T) {
	var cfg *Config
	french, _ := language.Lookup("french")
	if !cfg.KeepOnechar(french).Has("à") {
		t.Error("expected built-in list from a nil config")
	}
	if cfg.Excluded(1, "french").Has("x") {
		t.Error("expected nothing excluded from a nil config")
	}
}
