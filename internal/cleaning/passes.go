package cleaning

import (
	"regexp"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/exclusion"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/language"
	"github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/internal/ngram"
)

// Pass names, in pipeline order.
const (
	StripTrailingUnderscore = "strip-trailing-underscore"
	PunctuationDigitsOnly   = "punctuation-digits-only"
	Uppercase               = "uppercase"
	OneCharacter            = "one-character"
	Apostrophe              = "apostrophe"
	NonWord                 = "non-word"
	Digits                  = "digits"
	ForeignScript           = "foreign-script"
	WhitespaceOnly          = "whitespace-only"
	ExclusionList           = "exclusion-list"
)

var (
	trailingUnderscore = regexp.MustCompile(`_$`)
	punctDigitsOnly    = regexp.MustCompile(`^(?:[^\p{L}\p{N}]|[0-9])+$`)
	singleChar         = regexp.MustCompile(`^.$`)
	asciiDigit         = regexp.MustCompile(`[0-9]`)
	blank              = regexp.MustCompile(`^[\s\p{Z}]*$`)
)

// Build returns the ordered passes for one language and n. Passes that do
// not apply to the pair are left out.
func Build(p language.Profile, n int, lists *exclusion.Config) []Pass {
	passes := []Pass{
		ReplaceAndGroup(StripTrailingUnderscore, trailingUnderscore, ""),
		RemovePattern(PunctuationDigitsOnly, punctDigitsOnly, nil),
	}
	if n == 1 {
		passes = append(passes, RemovePattern(Uppercase, p.Uppercase, lists.KeepUppercase(p)))
		if !p.Logographic {
			passes = append(passes, RemovePattern(OneCharacter, singleChar, lists.KeepOnechar(p)))
		}
	}
	if p.Apostrophe != nil && !p.HasContractions() {
		passes = append(passes, RemovePattern(Apostrophe, p.Apostrophe, nil))
	}
	passes = append(passes,
		RemovePattern(NonWord, nonWordPattern(p.Separators), nil),
		RemovePattern(Digits, asciiDigit, nil),
	)
	if p.Script != nil {
		passes = append(passes, RemoveFunc(ForeignScript, func(text string) bool {
			return strings.IndexFunc(text, func(r rune) bool { return !p.InScript(r) }) >= 0
		}))
	}
	passes = append(passes,
		RemovePattern(WhitespaceOnly, blank, nil),
		RemoveEntries(ExclusionList, lists.Excluded(n, p.Name)),
	)
	return passes
}

// nonWordPattern matches any character other than letters, numbers,
// underscore and the given separators.
func nonWordPattern(separators string) *regexp.Regexp {
	var class strings.Builder
	for _, r := range separators {
		if strings.ContainsRune(`\]^-[`, r) {
			class.WriteByte('\\')
		}
		class.WriteRune(r)
	}
	return regexp.MustCompile(`[^\p{L}\p{N}_` + class.String() + `]`)
}

// PassStat is the per-pass accounting of a run.
type PassStat struct {
	Name string
	Rows int
	Mass int64
}

// Report accumulates what a run of passes removed.
type Report struct {
	Removed ngram.Table
	// Mass is the frequency mass of every removed row; it feeds the corpus
	// total correction.
	Mass  int64
	Stats []PassStat
}

// Run applies passes in order and returns the surviving table with the
// removal report.
func Run(t ngram.Table, passes []Pass) (ngram.Table, Report) {
	var rep Report
	for _, p := range passes {
		out := p.Apply(t)
		t = out.Table
		rep.Removed = append(rep.Removed, out.Removed...)
		rep.Mass += out.Mass
		rep.Stats = append(rep.Stats, PassStat{Name: p.Name, Rows: len(out.Removed), Mass: out.Mass})
	}
	return t, rep
}
