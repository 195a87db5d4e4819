package contraction

import (
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

func TestSplitToken(t *testing.T) {
	tests := []struct {
		token string
		want  []string
	}{
		{"qu'il", []string{"qu'", "il"}},
		{"aujourd'hui", []string{"aujourd'", "hui"}},
		{"jusqu'à", []string{"jusqu'", "à"}},
		{"c'qu'il", []string{"c'", "qu'", "il"}},
		{"l'", []string{"l'"}},
		{"'", []string{"'"}},
		{"maison", []string{"maison"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := SplitToken(tt.token, "'"); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestSplitOneGramsFlattensPairs(t *testing.T) {
	in := ngram.Table{
		{Ngram: "il", Freq: 1000},
		{Ngram: "qu'il", Freq: 400},
		{Ngram: "qu'", Freq: 50},
		{Ngram: "maison", Freq: 30},
	}
	res := Split(in, 1, "'")

	want := ngram.Table{
		{Ngram: "il", Freq: 1400},
		{Ngram: "qu'", Freq: 450},
		{Ngram: "maison", Freq: 30},
	}
	if !reflect.DeepEqual(res.Table, want) {
		t.Fatalf("expected %v, got %v", want, res.Table)
	}
	if res.Added != 400 {
		t.Errorf("expected 400 added, got %d", res.Added)
	}
	if _, ok := res.Spill[2]; ok {
		t.Error("2-word spill must be consumed for 1-grams")
	}
}

func TestSplitOneGramsKeepsLongerSpill(t *testing.T) {
	res := Split(ngram.Table{{Ngram: "c'qu'il", Freq: 7}, {Ngram: "a", Freq: 5}}, 1, "'")
	if got := res.Spill[3]; len(got) != 1 || got[0].Ngram != "c' qu' il" || got[0].Freq != 7 {
		t.Errorf("expected 3-word spill, got %v", res.Spill)
	}
	if res.Added != 0 {
		t.Errorf("only 2-word splits add mass, got %d", res.Added)
	}
}

func TestSplitMultiGramsRoutesChangedCounts(t *testing.T) {
	in := ngram.Table{
		{Ngram: "qu' il", Freq: 300},
		{Ngram: "qu'il est", Freq: 200},
		{Ngram: "la maison", Freq: 100},
	}
	res := Split(in, 2, "'")
	if want := (ngram.Table{{Ngram: "qu' il", Freq: 300}, {Ngram: "la maison", Freq: 100}}); !reflect.DeepEqual(res.Table, want) {
		t.Errorf("expected %v, got %v", want, res.Table)
	}
	if want := (ngram.Table{{Ngram: "qu' il est", Freq: 200}}); !reflect.DeepEqual(res.Spill[3], want) {
		t.Errorf("expected spill %v, got %v", want, res.Spill[3])
	}
	if got := SpillCounts(res.Spill); !reflect.DeepEqual(got, []int{3}) {
		t.Errorf("unexpected spill counts %v", got)
	}
}
