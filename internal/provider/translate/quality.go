package translate

import (
	"regexp"
	"strings"
)

// QualityIssue is one concern found by the local translation check.
type QualityIssue struct {
	Type        string
	Description string
	Severity    string // "warning" | "error"
}

// QualityReport scores a translation against its source without any model:
// length ratio, number and date preservation, empty or unchanged output.
type QualityReport struct {
	Issues      []QualityIssue
	Score       float64
	LengthRatio float64
}

var (
	reNumber = regexp.MustCompile(`\d+`)
	reDate   = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{4}\b|\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`)
)

// CheckQuality runs the structural checks. Errors cost 0.3 each, warnings 0.1,
// floored at zero.
func CheckQuality(source, translation string) QualityReport {
	var report QualityReport

	if source != "" {
		report.LengthRatio = float64(len(translation)) / float64(len(source))
	}
	if report.LengthRatio < 0.3 || report.LengthRatio > 3.0 {
		report.Issues = append(report.Issues, QualityIssue{
			Type:        "length_mismatch",
			Description: "translation length ratio unusual",
			Severity:    "warning",
		})
	}

	srcNumbers := reNumber.FindAllString(source, -1)
	dstNumbers := reNumber.FindAllString(translation, -1)
	if len(srcNumbers) != len(dstNumbers) {
		report.Issues = append(report.Issues, QualityIssue{
			Type:        "number_mismatch",
			Description: "number count differs between source and translation",
			Severity:    "warning",
		})
	} else if strings.Join(srcNumbers, ",") != strings.Join(dstNumbers, ",") {
		report.Issues = append(report.Issues, QualityIssue{
			Type:        "number_change",
			Description: "numbers changed during translation",
			Severity:    "error",
		})
	}

	if len(reDate.FindAllString(source, -1)) != len(reDate.FindAllString(translation, -1)) {
		report.Issues = append(report.Issues, QualityIssue{
			Type:        "date_mismatch",
			Description: "date count differs between source and translation",
			Severity:    "warning",
		})
	}

	if len(strings.TrimSpace(translation)) < 3 {
		report.Issues = append(report.Issues, QualityIssue{
			Type:        "empty_translation",
			Description: "translation is empty or too short",
			Severity:    "error",
		})
	}
	if strings.TrimSpace(source) == strings.TrimSpace(translation) && source != "" {
		report.Issues = append(report.Issues, QualityIssue{
			Type:        "no_translation",
			Description: "translation identical to source",
			Severity:    "warning",
		})
	}

	report.Score = 1.0
	for _, issue := range report.Issues {
		if issue.Severity == "error" {
			report.Score -= 0.3
		} else {
			report.Score -= 0.1
		}
	}
	if report.Score < 0 {
		report.Score = 0
	}
	return report
}
