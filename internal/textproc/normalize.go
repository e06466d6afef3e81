package textproc

import (
	"regexp"
	"strings"
)

var (
	reWhitespace   = regexp.MustCompile(`\s+`)
	reCamelSplit   = regexp.MustCompile(`([a-z])([A-Z])`)
	reDigitLetter  = regexp.MustCompile(`(\d)([A-Z])`)
	reLetterDigit  = regexp.MustCompile(`([a-z])(\d)`)
	rePunctSpacing = regexp.MustCompile(`\s*([,.;:!?])\s*`)
)

// NormalizeScanned cleans up OCR output before language detection and
// translation: collapses whitespace, splits the glued-together runs scanners
// produce (camelCase, letter/digit boundaries), and regularizes punctuation
// spacing.
func NormalizeScanned(text string) string {
	if text == "" {
		return text
	}
	text = reWhitespace.ReplaceAllString(strings.TrimSpace(text), " ")
	text = reCamelSplit.ReplaceAllString(text, "$1 $2")
	text = reDigitLetter.ReplaceAllString(text, "$1 $2")
	text = reLetterDigit.ReplaceAllString(text, "$1 $2")
	text = rePunctSpacing.ReplaceAllString(text, "$1 ")
	return reWhitespace.ReplaceAllString(strings.TrimSpace(text), " ")
}
