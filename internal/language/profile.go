// Package language holds the per-language settings of the cleaning pipeline.
// Every language-dependent decision (script, contraction marker, uppercase
// rule, keep lists) lives in a Profile, so the pipeline itself never branches
// on a language name.
package language

import (
	"regexp"
	"sort"
	"unicode"

	textlang "golang.org/x/text/language"

	pkgerrors "github.com/Adithya-Monish-Kumar-K/ngram-frequency-tables/pkg/errors"
)

// Profile is the immutable configuration record of one language.
type Profile struct {
	Name string
	// Code is the corpus code used in source-data paths ("fre", "chi_sim").
	Code string
	// Tag drives language-aware case mapping.
	Tag textlang.Tag
	// Script is the target script for the foreign-script pass. Nil for
	// Latin-script languages, which skip that pass.
	Script *unicode.RangeTable
	// Logographic languages keep single-character 1-grams.
	Logographic bool
	// ContractionMarker enables the contraction splitter when non-empty.
	ContractionMarker string
	// Uppercase matches 1-grams to drop in the uppercase pass.
	Uppercase *regexp.Regexp
	// Apostrophe, when set, matches ngrams dropped by the apostrophe pass.
	Apostrophe *regexp.Regexp
	// Separators lists the non-word characters an ngram may contain besides
	// letters, numbers and underscore.
	Separators string
	// KeepUppercase and KeepOnechar are the built-in keep lists, used when no
	// keep file overrides them.
	KeepUppercase []string
	KeepOnechar   []string
}

var (
	latinUpper     = regexp.MustCompile(`[A-ZÀ-Ü]`)
	allCapsWord    = regexp.MustCompile(`^[A-ZÀ-Ü]+$`)
	latinOrCyrCaps = regexp.MustCompile(`[A-ZÀ-ÜА-ЯЁ]`)
	anyApostrophe  = regexp.MustCompile(`'`)
	leadApostrophe = regexp.MustCompile(`^'`)
)

const defaultSeparators = "' ,"

var englishUppercase = []string{
	"I", "God", "American", "English", "Jesus", "British", "European",
	"America", "French", "China", "German", "Europe", "Christ", "England",
	"Chrstian", "Bible", "June", "Chinese", "India", "July", "African",
	"April", "January", "September", "Indian", "December", "Africa",
	"October", "August", "Germany", "Israel", "November", "February",
	"Americans", "UK", "California", "Jewish", "Japan", "Canada",
	"Japanese", "Britain", "Greek", "Roman", "Russian", "Spanish",
}

var frenchUppercase = []string{
	"France", "Europe", "Afrique", "Allemagne", "Londres", "Angleterre",
	"Italie", "Amérique", "Chine", "Espagne", "Israël", "Russie", "Noël",
	"Canada", "Orient", "Bretagne", "Bruxelles", "Algérie", "Inde", "Asie",
	"Belgique", "Égypte", "Occident", "Japon", "Congo", "Maroc", "Moscou",
	"Autriche", "Brésil", "Venise", "Pologne", "Platon", "Moïse", "Aristote",
	"Cameroun", "Turquie", "Provence", "Sénégal", "Méditerranée", "Mexique",
	"Syrie", "American", "Australie", "Athènes", "Alpes", "Suède", "Grèce",
	"Normandie", "Tunisie", "Liban", "Socrate", "Hongrie", "Alsace", "Guinée",
	"Rhin", "Californie", "Palestine", "Indes", "Barcelone", "Danemark",
	"Munich", "Arabie", "Norvège", "Roumanie", "Lénine", "Maghreb", "Indochine",
	"Beyrouth", "Pérou", "Finlande", "Libye", "Soudan", "Colombie", "Haïti",
	"URSS", "ADN", "ONU",
	"'S",
}

var englishOnechar = []string{"a", "I"}

var profiles = map[string]Profile{
	"chinese_simplified": {
		Name:        "chinese_simplified",
		Code:        "chi_sim",
		Tag:         textlang.SimplifiedChinese,
		Script:      unicode.Han,
		Logographic: true,
		Uppercase:   latinUpper,
		Separators:  defaultSeparators,
	},
	"english":    english("english", "eng"),
	"english-us": english("english-us", "eng-us"),
	"english-gb": english("english-gb", "eng-gb"),
	"english-fiction": func() Profile {
		p := english("english-fiction", "eng-fiction")
		p.Apostrophe = leadApostrophe
		return p
	}(),
	"french": {
		Name:              "french",
		Code:              "fre",
		Tag:               textlang.French,
		ContractionMarker: "'",
		Uppercase:         latinUpper,
		Separators:        defaultSeparators,
		KeepUppercase:     frenchUppercase,
		KeepOnechar:       []string{"à", "a", "y"},
	},
	"german": {
		Name:          "german",
		Code:          "ger",
		Tag:           textlang.German,
		Uppercase:     allCapsWord,
		Apostrophe:    anyApostrophe,
		Separators:    defaultSeparators,
		KeepUppercase: []string{"DDR", "AG", "BRD"},
	},
	"hebrew": {
		Name:       "hebrew",
		Code:       "heb",
		Tag:        textlang.Hebrew,
		Script:     unicode.Hebrew,
		Uppercase:  latinUpper,
		Separators: defaultSeparators,
	},
	"italian": {
		Name:       "italian",
		Code:       "ita",
		Tag:        textlang.Italian,
		Uppercase:  latinUpper,
		Separators: defaultSeparators,
	},
	"russian": {
		Name:        "russian",
		Code:        "rus",
		Tag:         textlang.Russian,
		Script:      unicode.Cyrillic,
		Uppercase:   latinOrCyrCaps,
		Apostrophe:  anyApostrophe,
		Separators:  defaultSeparators + "-",
		KeepOnechar: []string{"а", "б", "в", "ж", "и", "к", "о", "с", "у", "я"},
	},
	"spanish": {
		Name:       "spanish",
		Code:       "spa",
		Tag:        textlang.Spanish,
		Uppercase:  latinUpper,
		Separators: defaultSeparators,
	},
}

func english(name, code string) Profile {
	return Profile{
		Name:          name,
		Code:          code,
		Tag:           textlang.English,
		Uppercase:     latinUpper,
		Separators:    defaultSeparators,
		KeepUppercase: englishUppercase,
		KeepOnechar:   englishOnechar,
	}
}

// Lookup returns the profile registered under name.
func Lookup(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, pkgerrors.Newf(pkgerrors.ErrUnknownLanguage, "%q", name)
	}
	return p, nil
}

// Names returns every known language name, sorted.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasContractions reports whether the contraction splitter runs for p.
func (p Profile) HasContractions() bool {
	return p.ContractionMarker != ""
}

// InScript reports whether r is acceptable for p's foreign-script pass:
// non-letters always are, letters must belong to the target script.
func (p Profile) InScript(r rune) bool {
	if p.Script == nil || !unicode.IsLetter(r) {
		return true
	}
	return unicode.Is(p.Script, r)
}
