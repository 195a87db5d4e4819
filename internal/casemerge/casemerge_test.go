package casemerge

import (
	"reflect"
	"testing"

	textlang "golang.org/x/text/language"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

func TestMergeFoldsIntoLowercase(t *testing.T) {
	in := ngram.Table{
		{Ngram: "le", Freq: 500},
		{Ngram: "la", Freq: 480},
		{Ngram: "Le", Freq: 300},
	}
	res := Merge(in, DefaultCutoff, textlang.French)
	want := ngram.Table{{Ngram: "le", Freq: 800}, {Ngram: "la", Freq: 480}}
	if !reflect.DeepEqual(res.Table, want) {
		t.Fatalf("expected %v, got %v", want, res.Table)
	}
	if len(res.Decisions) != 1 || res.Decisions[0].KeepCapitalised {
		t.Errorf("unexpected decisions %+v", res.Decisions)
	}
}

func TestMergeKeepsDominantCapital(t *testing.T) {
	in := ngram.Table{
		{Ngram: "Paris", Freq: 950},
		{Ngram: "paris", Freq: 50},
	}
	res := Merge(in, DefaultCutoff, textlang.French)
	want := ngram.Table{{Ngram: "Paris", Freq: 1000}}
	if !reflect.DeepEqual(res.Table, want) {
		t.Fatalf("expected %v, got %v", want, res.Table)
	}
}

func TestMergeCutoffIsInclusive(t *testing.T) {
	in := ngram.Table{{Ngram: "Abc", Freq: 92}, {Ngram: "abc", Freq: 8}}
	res := Merge(in, 0.92, textlang.English)
	if len(res.Table) != 1 || res.Table[0].Ngram != "Abc" {
		t.Fatalf("share equal to cutoff must keep the capital, got %v", res.Table)
	}
}

func TestMergeLeavesUnpairedAndAllCaps(t *testing.T) {
	in := ngram.Table{
		{Ngram: "DDR", Freq: 90},
		{Ngram: "Berlin", Freq: 80},
		{Ngram: "haus", Freq: 70},
		{Ngram: "dDR", Freq: 10},
	}
	res := Merge(in, DefaultCutoff, textlang.German)
	if !reflect.DeepEqual(res.Table, in) {
		t.Errorf("expected table untouched, got %v", res.Table)
	}
}

func TestMergeMultiWordUsesFirstRune(t *testing.T) {
	in := ngram.Table{
		{Ngram: "il y a", Freq: 600},
		{Ngram: "Il y a", Freq: 400},
	}
	res := Merge(in, DefaultCutoff, textlang.French)
	if want := (ngram.Table{{Ngram: "il y a", Freq: 1000}}); !reflect.DeepEqual(res.Table, want) {
		t.Errorf("expected %v, got %v", want, res.Table)
	}
}

func TestMergeSumsDuplicatesFirst(t *testing.T) {
	in := ngram.Table{
		{Ngram: "le", Freq: 300},
		{Ngram: "Le", Freq: 200},
		{Ngram: "le", Freq: 300},
	}
	res := Merge(in, DefaultCutoff, textlang.French)
	if want := (ngram.Table{{Ngram: "le", Freq: 800}}); !reflect.DeepEqual(res.Table, want) {
		t.Errorf("expected %v, got %v", want, res.Table)
	}
}

func TestMergeNonLatin(t *testing.T) {
	in := ngram.Table{{Ngram: "он", Freq: 700}, {Ngram: "Он", Freq: 100}}
	res := Merge(in, DefaultCutoff, textlang.Russian)
	if want := (ngram.Table{{Ngram: "он", Freq: 800}}); !reflect.DeepEqual(res.Table, want) {
		t.Errorf("expected %v, got %v", want, res.Table)
	}
}

// Every pair resolves to exactly one survivor carrying both frequencies.
func TestMergeConservesMass(t *testing.T) {
	in := ngram.Table{
		{Ngram: "the", Freq: 5000},
		{Ngram: "The", Freq: 1200},
		{Ngram: "God", Freq: 900},
		{Ngram: "god", Freq: 40},
		{Ngram: "house", Freq: 300},
		{Ngram: "House", Freq: 20},
		{Ngram: "Smith", Freq: 10},
	}
	res := Merge(in, DefaultCutoff, textlang.English)
	if got, want := res.Table.TotalFreq(), in.TotalFreq(); got != want {
		t.Errorf("mass changed: %d -> %d", want, got)
	}
	if len(res.Table) != 4 {
		t.Errorf("expected 4 survivors, got %v", res.Table)
	}
	for _, d := range res.Decisions {
		survivors := 0
		for _, r := range res.Table {
			if r.Ngram == d.Capitalised || r.Ngram == d.Lowercase {
				survivors++
				if r.Freq != d.Freq {
					t.Errorf("%s: expected freq %d, got %d", r.Ngram, d.Freq, r.Freq)
				}
			}
		}
		if survivors != 1 {
			t.Errorf("pair %s/%s has %d survivors", d.Capitalised, d.Lowercase, survivors)
		}
	}
}
