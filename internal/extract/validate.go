package extract

import (
	"regexp"
	"time"
)

// Shape validators applied after normalization. A field that fails its
// validator is silently dropped, per the extraction contract.

var (
	rePassportNumber = regexp.MustCompile(`^[A-Z0-9]{6,12}$`)
	reReceiptNumber  = regexp.MustCompile(`^[A-Z]{3}[0-9]{10}$`)
	reAccountNumber  = regexp.MustCompile(`^[A-Za-z0-9-]{4,24}$`)
	reCaseNumber     = regexp.MustCompile(`^[A-Za-z0-9-]{4,24}$`)
	rePersonName     = regexp.MustCompile(`^[\p{L}][\p{L} .,'-]{1,80}$`)
)

// ValidPassportNumber: 6-12 alphanumeric characters.
func ValidPassportNumber(s string) bool { return rePassportNumber.MatchString(s) }

// ValidReceiptNumber matches the three-letters-ten-digits USCIS shape.
func ValidReceiptNumber(s string) bool { return reReceiptNumber.MatchString(s) }

func ValidAccountNumber(s string) bool { return reAccountNumber.MatchString(s) }

func ValidCaseNumber(s string) bool { return reCaseNumber.MatchString(s) }

func ValidPersonName(s string) bool { return rePersonName.MatchString(s) }

// ValidDate keeps dates in a plausible document window.
func ValidDate(t time.Time) bool {
	return t.Year() >= 1900 && t.Year() <= 2100
}

// ValidAmount rejects non-positive and absurd figures.
func ValidAmount(v float64) bool {
	return v > 0 && v < 10_000_000
}
