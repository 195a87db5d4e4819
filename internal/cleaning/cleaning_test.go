package cleaning

import (
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/exclusion"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/language"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

func profile(t *testing.T, name string) language.Profile {
	t.Helper()
	p, err := language.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func passNames(passes []Pass) []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.Name
	}
	return names
}

func TestBuildOrder(t *testing.T) {
	tests := []struct {
		lang string
		n    int
		want []string
	}{
		{"english", 1, []string{StripTrailingUnderscore, PunctuationDigitsOnly, Uppercase, OneCharacter, NonWord, Digits, WhitespaceOnly, ExclusionList}},
		{"english", 2, []string{StripTrailingUnderscore, PunctuationDigitsOnly, NonWord, Digits, WhitespaceOnly, ExclusionList}},
		{"english-fiction", 1, []string{StripTrailingUnderscore, PunctuationDigitsOnly, Uppercase, OneCharacter, Apostrophe, NonWord, Digits, WhitespaceOnly, ExclusionList}},
		{"french", 1, []string{StripTrailingUnderscore, PunctuationDigitsOnly, Uppercase, OneCharacter, NonWord, Digits, WhitespaceOnly, ExclusionList}},
		{"german", 3, []string{StripTrailingUnderscore, PunctuationDigitsOnly, Apostrophe, NonWord, Digits, WhitespaceOnly, ExclusionList}},
		{"chinese_simplified", 1, []string{StripTrailingUnderscore, PunctuationDigitsOnly, Uppercase, NonWord, Digits, ForeignScript, WhitespaceOnly, ExclusionList}},
		{"russian", 1, []string{StripTrailingUnderscore, PunctuationDigitsOnly, Uppercase, OneCharacter, Apostrophe, NonWord, Digits, ForeignScript, WhitespaceOnly, ExclusionList}},
	}
	for _, tt := range tests {
		got := passNames(Build(profile(t, tt.lang), tt.n, nil))
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s n=%d: expected %v, got %v", tt.lang, tt.n, tt.want, got)
		}
	}
}

// Each pass drops exactly the mass it reports.
func TestPassesConserveFrequency(t *testing.T) {
	in := ngram.Table{
		{Ngram: "the", Freq: 9000},
		{Ngram: "Paris", Freq: 800},
		{Ngram: "God", Freq: 700},
		{Ngram: "...", Freq: 650},
		{Ngram: "a", Freq: 600},
		{Ngram: "b", Freq: 500},
		{Ngram: "1990", Freq: 400},
		{Ngram: "x2", Freq: 300},
		{Ngram: "e-mail", Freq: 200},
		{Ngram: "don't", Freq: 100},
	}
	passes := Build(profile(t, "english"), 1, nil)
	tbl := in
	for _, p := range passes {
		out := p.Apply(tbl)
		if got, want := tbl.TotalFreq()-out.Table.TotalFreq(), out.Mass; got != want {
			t.Errorf("%s: table lost %d but reported %d", p.Name, got, want)
		}
		if out.Removed.TotalFreq() != out.Mass {
			t.Errorf("%s: removed rows sum to %d, reported %d", p.Name, out.Removed.TotalFreq(), out.Mass)
		}
		tbl = out.Table
	}
	want := ngram.Table{{Ngram: "the", Freq: 9000}, {Ngram: "God", Freq: 700}, {Ngram: "a", Freq: 600}, {Ngram: "don't", Freq: 100}}
	if !reflect.DeepEqual(tbl, want) {
		t.Errorf("expected %v, got %v", want, tbl)
	}
}

func TestKeepSetOnlyExemptsMatches(t *testing.T) {
	p := RemovePattern("upper", regexp.MustCompile(`[A-Z]`), exclusion.Set{"God": {}, "house": {}})
	out := p.Apply(ngram.Table{{Ngram: "God", Freq: 10}, {Ngram: "Paris", Freq: 5}, {Ngram: "house", Freq: 3}})
	if out.Mass != 5 || len(out.Table) != 2 {
		t.Errorf("expected only Paris removed, got %+v", out)
	}
}

func TestStripTrailingUnderscoreRegroups(t *testing.T) {
	p := ReplaceAndGroup(StripTrailingUnderscore, trailingUnderscore, "")
	out := p.Apply(ngram.Table{{Ngram: "house", Freq: 50}, {Ngram: "tree", Freq: 45}, {Ngram: "house_", Freq: 10}})
	want := ngram.Table{{Ngram: "house", Freq: 60}, {Ngram: "tree", Freq: 45}}
	if !reflect.DeepEqual(out.Table, want) || out.Mass != 0 {
		t.Errorf("expected %v, got %+v", want, out)
	}
}

func TestExclusionListScenario(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, exclusion.ExclusionFile(1)), []byte("english\nfoo\n"), 0644); err != nil {
		t.Fatal(err)
	}
	lists, err := exclusion.Load(dir, []int{1})
	if err != nil {
		t.Fatal(err)
	}
	in := ngram.Table{{Ngram: "foo", Freq: 900}, {Ngram: "the", Freq: 800}}
	out, rep := Run(in, Build(profile(t, "english"), 1, lists))
	if rep.Mass != 900 {
		t.Errorf("expected removed mass 900, got %d", rep.Mass)
	}
	if len(out) != 1 || out[0].Ngram != "the" {
		t.Errorf("expected foo absent, got %v", out)
	}
	last := rep.Stats[len(rep.Stats)-1]
	if last.Name != ExclusionList || last.Mass != 900 || last.Rows != 1 {
		t.Errorf("unexpected exclusion stat %+v", last)
	}
}

func TestNonWordSeparators(t *testing.T) {
	ru := nonWordPattern("' ,-")
	if ru.MatchString("из-за") {
		t.Error("hyphen must be permitted for russian")
	}
	if !ru.MatchString("из.за") {
		t.Error("dot must not be permitted")
	}
	en := nonWordPattern("' ,")
	if !en.MatchString("e-mail") || en.MatchString("don't know, sir") {
		t.Error("unexpected default separator handling")
	}
}

func TestForeignScriptAndWhitespace(t *testing.T) {
	passes := Build(profile(t, "russian"), 2, nil)
	in := ngram.Table{
		{Ngram: "и в", Freq: 100},
		{Ngram: "и the", Freq: 90},
		{Ngram: " ", Freq: 80},
		{Ngram: "", Freq: 70},
	}
	out, rep := Run(in, passes)
	if want := (ngram.Table{{Ngram: "и в", Freq: 100}}); !reflect.DeepEqual(out, want) {
		t.Errorf("expected %v, got %v", want, out)
	}
	if rep.Mass != 240 {
		t.Errorf("expected 240 removed, got %d", rep.Mass)
	}
}
