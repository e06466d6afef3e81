package summary

import "strings"

// commonWords is a small frequency list used to estimate how plain a
// paragraph reads. Summaries aimed at stressed readers should lean on these.
var commonWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"the a an and or but is are was were be been has have had do does did " +
			"you your this that it its from to of in on at by for with about " +
			"as not no if then than so can will must need needs send sent pay " +
			"call keep copy letter bill notice date day days money case number " +
			"please before after important new official office did most thing " +
			"what when who how here there make sure soon now") {
		commonWords[w] = struct{}{}
	}
}

// readabilityScore returns a value in [0, 1]: higher means shorter sentences
// and a larger share of everyday words.
func readabilityScore(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0
	}
	totalWords := 0
	common := 0
	for _, s := range sentences {
		for _, w := range strings.Fields(s) {
			totalWords++
			w = strings.ToLower(strings.Trim(w, ".,;:!?\"'()$"))
			if _, ok := commonWords[w]; ok {
				common++
			}
		}
	}
	if totalWords == 0 {
		return 0
	}
	avgLen := float64(totalWords) / float64(len(sentences))
	commonFrac := float64(common) / float64(totalWords)

	score := 0.5 + commonFrac*0.5
	if avgLen > 15 {
		score -= (avgLen - 15) * 0.02
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			s := strings.TrimSpace(text[start:i])
			if s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
