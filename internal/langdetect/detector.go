// Package langdetect scores a text sample against per-language function-word
// and script patterns. It is a cheap local heuristic: always available, never
// an error, good enough to decide whether translation is needed.
package langdetect

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/paperlens/paperlens/constants"
)

// sampleLength caps how many characters are scored; function words saturate
// quickly.
const sampleLength = 1000

// Result is the detector's verdict.
type Result struct {
	Language     string
	Confidence   float64
	Alternatives []Alternative
}

// Alternative is a runner-up language with its raw match count.
type Alternative struct {
	Language string
	Matches  int
}

var languagePatterns = map[string][]*regexp.Regexp{
	constants.LangEnglish: {
		regexp.MustCompile(`\bthe\b`), regexp.MustCompile(`\band\b`),
		regexp.MustCompile(`\byou\b`), regexp.MustCompile(`\bthis\b`),
		regexp.MustCompile(`\bthat\b`), regexp.MustCompile(`\bwith\b`),
		regexp.MustCompile(`\bfrom\b`), regexp.MustCompile(`\bhave\b`),
		regexp.MustCompile(`\byour\b`), regexp.MustCompile(`\bplease\b`),
	},
	constants.LangSpanish: {
		regexp.MustCompile(`\bel\b`), regexp.MustCompile(`\bla\b`),
		regexp.MustCompile(`\bde\b`), regexp.MustCompile(`\bque\b`),
		regexp.MustCompile(`\bpor\b`), regexp.MustCompile(`\bpara\b`),
		regexp.MustCompile(`\busted\b`), regexp.MustCompile(`\bcon\b`),
		regexp.MustCompile(`\bsu\b`), regexp.MustCompile(`\bfavor\b`),
	},
	constants.LangFrench: {
		regexp.MustCompile(`\ble\b`), regexp.MustCompile(`\bla\b`),
		regexp.MustCompile(`\bde\b`), regexp.MustCompile(`\bvous\b`),
		regexp.MustCompile(`\bpour\b`), regexp.MustCompile(`\bavec\b`),
		regexp.MustCompile(`\bdans\b`), regexp.MustCompile(`\bvotre\b`),
		regexp.MustCompile(`\best\b`), regexp.MustCompile(`\bmerci\b`),
	},
	constants.LangPortuguese: {
		regexp.MustCompile(`\bo\b`), regexp.MustCompile(`\ba\b`),
		regexp.MustCompile(`\bde\b`), regexp.MustCompile(`\bvocê\b`),
		regexp.MustCompile(`\bpara\b`), regexp.MustCompile(`\bcom\b`),
		regexp.MustCompile(`\bnão\b`), regexp.MustCompile(`\bseu\b`),
		regexp.MustCompile(`\buma\b`), regexp.MustCompile(`\bobrigado\b`),
	},
	constants.LangHaitian: {
		regexp.MustCompile(`\bnan\b`), regexp.MustCompile(`\bpou\b`),
		regexp.MustCompile(`\bki\b`), regexp.MustCompile(`\bak\b`),
		regexp.MustCompile(`\byon\b`), regexp.MustCompile(`\bou\b`),
		regexp.MustCompile(`\bli\b`), regexp.MustCompile(`\bmwen\b`),
	},
	constants.LangVietnamese: {
		regexp.MustCompile(`\bcủa\b`), regexp.MustCompile(`\bvà\b`),
		regexp.MustCompile(`\bcó\b`), regexp.MustCompile(`\bkhông\b`),
		regexp.MustCompile(`\bđược\b`), regexp.MustCompile(`\bcho\b`),
		regexp.MustCompile(`\bngười\b`), regexp.MustCompile(`\bnày\b`),
	},
	// Script languages: any character in the block counts as a match.
	constants.LangArabic: {
		regexp.MustCompile(`[\x{0600}-\x{06FF}]`),
	},
	constants.LangChinese: {
		regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`),
	},
}

// Detector scores text samples. The base language is returned when nothing
// matches at all.
type Detector struct {
	baseLanguage string
}

func NewDetector(baseLanguage string) *Detector {
	if baseLanguage == "" {
		baseLanguage = constants.LangEnglish
	}
	return &Detector{baseLanguage: baseLanguage}
}

// Detect returns the best language, a confidence in [0,1], and up to two
// runner-ups. It never fails: an unrecognizable sample yields the base
// language at floor confidence.
func (d *Detector) Detect(text string) Result {
	sample := strings.ToLower(text)
	if utf8.RuneCountInString(sample) > sampleLength {
		runes := []rune(sample)
		sample = string(runes[:sampleLength])
	}

	type scored struct {
		lang  string
		count int
	}
	var scores []scored
	for lang, patterns := range languagePatterns {
		count := 0
		for _, p := range patterns {
			count += len(p.FindAllStringIndex(sample, -1))
		}
		if count > 0 {
			scores = append(scores, scored{lang: lang, count: count})
		}
	}

	if len(scores) == 0 {
		return Result{Language: d.baseLanguage, Confidence: 0.3}
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].count != scores[j].count {
			return scores[i].count > scores[j].count
		}
		return scores[i].lang < scores[j].lang
	})

	best := scores[0]
	confidence := float64(best.count) / 50
	if confidence > 1 {
		confidence = 1
	}

	res := Result{Language: best.lang, Confidence: confidence}
	for _, s := range scores[1:] {
		if len(res.Alternatives) == 2 {
			break
		}
		res.Alternatives = append(res.Alternatives, Alternative{Language: s.lang, Matches: s.count})
	}
	return res
}
