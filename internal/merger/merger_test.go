package merger

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/tableio"
	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

func writePartial(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMergeTablesSortsAndComputesBound(t *testing.T) {
	a := ngram.Table{{Ngram: "le", Freq: 500}, {Ngram: "la", Freq: 480}}
	b := ngram.Table{{Ngram: "Le", Freq: 300}}
	res := MergeTables(a, b)
	want := ngram.Table{{Ngram: "le", Freq: 500}, {Ngram: "la", Freq: 480}, {Ngram: "Le", Freq: 300}}
	if !reflect.DeepEqual(res.Table, want) {
		t.Fatalf("expected %v, got %v", want, res.Table)
	}
	if res.Bound != 480 {
		t.Errorf("expected bound 480 (max of per-file minimums), got %d", res.Bound)
	}
}

func TestMergeTablesDropsEmptyNgrams(t *testing.T) {
	res := MergeTables(ngram.Table{{Ngram: "a", Freq: 10}, {Ngram: "", Freq: 9}, {Ngram: "b", Freq: 8}})
	if len(res.Table) != 2 || res.Dropped != 1 {
		t.Fatalf("expected the empty ngram dropped, got %v (dropped %d)", res.Table, res.Dropped)
	}
	if res.Bound != 8 {
		t.Errorf("empty-ngram rows still count toward the file minimum, got bound %d", res.Bound)
	}
}

func TestMergeTablesKeepsFileOrderOnTies(t *testing.T) {
	res := MergeTables(ngram.Table{{Ngram: "x", Freq: 5}}, ngram.Table{{Ngram: "y", Freq: 5}}, ngram.Table{{Ngram: "z", Freq: 7}})
	got := []string{res.Table[0].Ngram, res.Table[1].Ngram, res.Table[2].Ngram}
	if !reflect.DeepEqual(got, []string{"z", "x", "y"}) {
		t.Errorf("expected stable tie order, got %v", got)
	}
}

func TestMergeTablesSkipsEmptyTables(t *testing.T) {
	res := MergeTables(ngram.Table{}, ngram.Table{{Ngram: "a", Freq: 3}})
	if res.Bound != 3 || res.Files != 2 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestMergeReadsCappedFiles(t *testing.T) {
	dir := t.TempDir()
	f1 := writePartial(t, dir, "ngrams_1-00000-of-00002.csv", "ngram,freq\nle,500\nla,480\nles,100\n")
	f2 := writePartial(t, dir, "ngrams_1-00001-of-00002.csv", "ngram,freq\nLe,300\n")

	res, err := Merge([]string{f1, f2}, tableio.ReadOptions{MaxRows: 2})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(res.Table) != 3 {
		t.Fatalf("expected the per-file cap to drop les, got %v", res.Table)
	}
	if res.Bound != 480 {
		t.Errorf("expected bound from the capped rows, got %d", res.Bound)
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	f1 := writePartial(t, dir, "ngrams_2-a.csv", "ngram,freq\nof the,90\nin the,90\n")
	f2 := writePartial(t, dir, "ngrams_2-b.csv", "ngram,freq\nto the,90\nof the,40\n")
	first, err := Merge([]string{f1, f2}, tableio.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := Merge([]string{f1, f2}, tableio.ReadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("merge not idempotent: %v vs %v", first, second)
	}
}

func TestMergeErrors(t *testing.T) {
	if _, err := Merge(nil, tableio.ReadOptions{}); !errors.Is(err, pkgerrors.ErrNoPartialFiles) {
		t.Errorf("expected ErrNoPartialFiles, got %v", err)
	}
	_, err := Merge([]string{filepath.Join(t.TempDir(), "missing.csv")}, tableio.ReadOptions{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped not-exist error, got %v", err)
	}
}
