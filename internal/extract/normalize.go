package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

var (
	reISODate      = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	reSlashDate    = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	reDayMonthYear = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\.?,?\s+(\d{4})$`)
	reMonthDayYear = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
)

// NormalizeDate parses the date spellings seen on scanned documents
// ("15 JAN 1985", "January 15, 1985", "01/15/1985", "1985-01-15") into a UTC
// date. Slash dates are read month-first, matching US-issued documents.
func NormalizeDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if m := reISODate.FindStringSubmatch(s); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := reSlashDate.FindStringSubmatch(s); m != nil {
		return makeDate(m[3], m[1], m[2])
	}
	if m := reDayMonthYear.FindStringSubmatch(s); m != nil {
		month, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, fmt.Errorf("unknown month %q", m[2])
		}
		return buildDate(m[3], month, m[1])
	}
	if m := reMonthDayYear.FindStringSubmatch(s); m != nil {
		month, ok := monthNames[strings.ToLower(m[1])]
		if !ok {
			return time.Time{}, fmt.Errorf("unknown month %q", m[1])
		}
		return buildDate(m[3], month, m[2])
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", raw)
}

func makeDate(year, month, day string) (time.Time, error) {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, fmt.Errorf("invalid month %q", month)
	}
	return buildDate(year, time.Month(m), day)
}

func buildDate(year string, month time.Month, day string) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year %q", year)
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, fmt.Errorf("invalid day %q", day)
	}
	t := time.Date(y, month, d, 0, 0, 0, 0, time.UTC)
	// reject rollovers like Feb 30
	if t.Day() != d || t.Month() != month {
		return time.Time{}, fmt.Errorf("impossible date %q", fmt.Sprintf("%d %s %d", d, month, y))
	}
	return t, nil
}

// NormalizeName title-cases an all-caps or all-lower scanned name, keeping
// particles lowercase.
func NormalizeName(raw string) string {
	words := strings.Fields(strings.TrimSpace(raw))
	particles := map[string]bool{"de": true, "del": true, "la": true, "van": true, "von": true, "da": true, "dos": true}
	for i, w := range words {
		lower := strings.ToLower(w)
		if i > 0 && particles[lower] {
			words[i] = lower
			continue
		}
		r := []rune(lower)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}

var countryCodes = map[string]string{
	"usa": "US", "united states": "US", "united states of america": "US",
	"mexico": "MX", "méxico": "MX",
	"canada": "CA",
	"haiti":  "HT", "haïti": "HT",
	"cuba":               "CU",
	"brazil":             "BR", "brasil": "BR",
	"china":              "CN",
	"vietnam":            "VN", "viet nam": "VN",
	"france":             "FR",
	"dominican republic": "DO",
	"el salvador":        "SV",
	"guatemala":          "GT",
	"honduras":           "HN",
	"india":              "IN",
	"philippines":        "PH",
}

// NormalizeCountry maps a country spelling to its ISO 3166-1 alpha-2 code.
// Already-canonical two-letter codes pass through uppercased; unknown names
// are returned unchanged.
func NormalizeCountry(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) == 2 {
		return strings.ToUpper(s)
	}
	if code, ok := countryCodes[strings.ToLower(s)]; ok {
		return code
	}
	return s
}

// NormalizeGender canonicalizes gender markers to single-letter codes.
func NormalizeGender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male", "masculino", "masculin":
		return "M"
	case "f", "female", "femenino", "féminin":
		return "F"
	case "x", "nonbinary", "non-binary":
		return "X"
	default:
		return strings.ToUpper(strings.TrimSpace(raw))
	}
}

// NormalizeAmount parses "1,234.56" or "$1234" into a float.
func NormalizeAmount(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "$£€ ")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return v, nil
}
