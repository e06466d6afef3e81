package risk

import (
	"regexp"
	"strings"

	"github.com/paperlens/paperlens/internal/extract"
)

// ScamIndicator is one triggered lexical signal with its fixed weight.
type ScamIndicator struct {
	Indicator   string  `json:"indicator"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

var (
	reGiftCard     = regexp.MustCompile(`(?i)\b(?:gift ?cards?|itunes ?cards?|google ?play ?cards?|prepaid ?cards?)\b`)
	reWireTransfer = regexp.MustCompile(`(?i)\b(?:wire transfer|western union|moneygram|money order to|bitcoin|cryptocurrency)\b`)
	reUrgency      = regexp.MustCompile(`(?i)\b(?:urgent(?:ly)?|immediately|within 24 hours|act now|right away|final warning)\b`)
	reThreat       = regexp.MustCompile(`(?i)\b(?:arrest(?:ed)?|deport(?:ed|ation)|legal action|lawsuit|suspend(?:ed)?|terminat(?:ed|ion)|seiz(?:e|ed|ure)|warrant)\b`)
	rePhishing     = regexp.MustCompile(`(?i)(?:verify (?:your )?(?:account|identity|information) ?(?:immediately)?|click (?:here|the link)|confirm your (?:account|password|ssn|social security))`)
	reOfficial     = regexp.MustCompile(`(?i)\b(?:government|federal|irs|uscis|social security administration|court|police|official|agency|department of)\b`)

	reDoubleSpaceRun = regexp.MustCompile(`\S {2,}\S`)
	reLowerStart     = regexp.MustCompile(`[.!?]\s+[a-z]`)
)

// scamIndicators evaluates the fixed lexical trigger list. Weights are
// production-inherited heuristics.
func scamIndicators(text string, info extract.ExtractedInfo) []ScamIndicator {
	var out []ScamIndicator

	if reGiftCard.MatchString(text) {
		out = append(out, ScamIndicator{
			Indicator:   "gift_card_payment",
			Confidence:  0.9,
			Description: "requests payment via gift cards",
		})
	}
	if reWireTransfer.MatchString(text) {
		out = append(out, ScamIndicator{
			Indicator:   "wire_transfer_payment",
			Confidence:  0.85,
			Description: "requests payment via wire transfer or untraceable channel",
		})
	}
	if reUrgency.MatchString(text) && reThreat.MatchString(text) {
		out = append(out, ScamIndicator{
			Indicator:   "urgency_with_threat",
			Confidence:  0.8,
			Description: "combines urgent deadline with threat of harm",
		})
	}
	if rePhishing.MatchString(text) {
		out = append(out, ScamIndicator{
			Indicator:   "phishing_language",
			Confidence:  0.75,
			Description: "verify-immediately phishing phrasing",
		})
	}
	if reOfficial.MatchString(text) && grammarErrorRate(text) > grammarErrorThreshold {
		out = append(out, ScamIndicator{
			Indicator:   "grammar_errors_official",
			Confidence:  0.6,
			Description: "claims official origin but reads like a hasty forgery",
		})
	}
	if anomalousAmount(info) {
		out = append(out, ScamIndicator{
			Indicator:   "anomalous_amount",
			Confidence:  0.5,
			Description: "demanded amount is unusually large or oddly shaped",
		})
	}
	return out
}

// grammarErrorThreshold is the errors-per-sentence rate above which an
// allegedly official letter counts as suspicious.
const grammarErrorThreshold = 0.3

// grammarErrorRate is a cheap proxy: spacing glitches, sentences starting in
// lowercase, immediate word repetition, per sentence.
func grammarErrorRate(text string) float64 {
	sentences := strings.Count(text, ".") + strings.Count(text, "!") + strings.Count(text, "?")
	if sentences == 0 {
		sentences = 1
	}
	errors := len(reDoubleSpaceRun.FindAllString(text, -1))
	errors += len(reLowerStart.FindAllString(text, -1))
	errors += repeatedWordCount(text)
	return float64(errors) / float64(sentences)
}

func repeatedWordCount(text string) int {
	words := strings.Fields(strings.ToLower(text))
	count := 0
	for i := 1; i < len(words); i++ {
		w := strings.Trim(words[i], ".,;:!?")
		if len(w) > 2 && w == strings.Trim(words[i-1], ".,;:!?") {
			count++
		}
	}
	return count
}

// anomalousAmount flags demands that do not look like ordinary billing.
func anomalousAmount(info extract.ExtractedInfo) bool {
	if info.Amounts.TotalDue == nil {
		return false
	}
	v := *info.Amounts.TotalDue
	if v >= 10000 {
		return true
	}
	// exact round thousands are a common scam shape for "fees"
	if v >= 1000 && v == float64(int(v)) && int(v)%1000 == 0 {
		return true
	}
	return false
}
