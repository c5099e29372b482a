// Package textfilter softens narrator output for the family content rating.
// The default (adult) rating leaves text untouched.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacements maps strong language to softer alternatives. Matching is
// word-bounded and case-insensitive; replacement preserves the original
// word's casing.
var replacements = map[string]string{
	"fuck":         "fudge",
	"shit":         "shoot",
	"damn":         "dang",
	"hell":         "heck",
	"ass":          "butt",
	"bitch":        "jerk",
	"bastard":      "jerk",
	"crap":         "crud",
	"piss":         "ticked",
	"whore":        "[censored]",
	"slut":         "[censored]",
	"motherfucker": "mother-trucker",
	"goddamn":      "gosh-dang",
	"asshole":      "jerk",
	"bullshit":     "baloney",
	"prick":        "jerk",
}

// Filter replaces strong language in narrative text.
type Filter struct {
	patterns map[string]*regexp.Regexp
}

// New compiles the word-boundary patterns once.
func New() *Filter {
	f := &Filter{patterns: make(map[string]*regexp.Regexp, len(replacements))}
	for word := range replacements {
		f.patterns[word] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	}
	return f
}

// Apply returns text with every matched word replaced.
func (f *Filter) Apply(text string) string {
	result := text
	for word, re := range f.patterns {
		replacement := replacements[word]
		result = re.ReplaceAllStringFunc(result, func(match string) string {
			return matchCase(match, replacement)
		})
	}
	return result
}

// matchCase applies the case pattern of the matched word to its replacement.
func matchCase(original, replacement string) string {
	switch {
	case original == strings.ToUpper(original):
		return strings.ToUpper(replacement)
	case original == strings.ToLower(original):
		return strings.ToLower(replacement)
	}

	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// Mixed case: mirror character by character as far as the original reaches.
	out := make([]rune, 0, len(replacement))
	origRunes := []rune(original)
	for i, r := range replacement {
		if i < len(origRunes) && unicode.IsUpper(origRunes[i]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
