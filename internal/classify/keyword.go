package classify

import (
	"strings"

	"github.com/paperlens/paperlens/constants"
)

// Keyword scoring constants. Heuristics inherited from production tuning;
// defaults, not ground truth.
const (
	keywordHitWeight   = 0.2
	keywordBase        = 0.3
	keywordZeroHitConf = 0.1
)

// keywordScore counts case-insensitive substring hits per label and picks the
// label with the most. Zero hits anywhere returns the fallback type at
// keywordZeroHitConf.
func keywordScore(text string, labels []Label) Result {
	lower := strings.ToLower(text)

	best := Result{Type: constants.OtherDocument, Confidence: keywordZeroHitConf}
	bestHits := 0
	for _, label := range labels {
		var matched []string
		for _, kw := range label.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				matched = append(matched, kw)
			}
		}
		if len(matched) > bestHits {
			bestHits = len(matched)
			conf := float64(len(matched))*keywordHitWeight + keywordBase
			if conf > 1 {
				conf = 1
			}
			best = Result{
				Type:            label.Type,
				Confidence:      conf,
				MatchedKeywords: matched,
			}
		}
	}
	return best
}
