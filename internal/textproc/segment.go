package textproc

import (
	"regexp"
	"strings"
)

var (
	reSentenceEnd = regexp.MustCompile(`[.!?]+`)
	reClauseSplit = regexp.MustCompile(`[,;:]`)
)

// DefaultSegmentLength is the chunk size the translation gateway handles well.
const DefaultSegmentLength = 500

// Segment splits long text into translation-friendly chunks of at most
// maxLength characters, preferring sentence boundaries and falling back to
// clause boundaries for oversized sentences.
func Segment(text string, maxLength int) []string {
	if maxLength <= 0 {
		maxLength = DefaultSegmentLength
	}
	if len(text) <= maxLength {
		return []string{text}
	}

	var segments []string
	var current strings.Builder
	for _, sentence := range reSentenceEnd.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if current.Len()+len(sentence) <= maxLength {
			current.WriteString(sentence)
			current.WriteString(". ")
			continue
		}
		if current.Len() > 0 {
			segments = append(segments, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(sentence)
		current.WriteString(". ")
	}
	if current.Len() > 0 {
		segments = append(segments, strings.TrimSpace(current.String()))
	}

	// Second pass for sentences that are themselves too long.
	var final []string
	for _, seg := range segments {
		if len(seg) <= maxLength {
			final = append(final, seg)
			continue
		}
		var tmp strings.Builder
		for _, part := range reClauseSplit.Split(seg, -1) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if tmp.Len()+len(part) > maxLength && tmp.Len() > 0 {
				final = append(final, strings.TrimSuffix(strings.TrimSpace(tmp.String()), ","))
				tmp.Reset()
			}
			tmp.WriteString(part)
			tmp.WriteString(", ")
		}
		if tmp.Len() > 0 {
			final = append(final, strings.TrimSuffix(strings.TrimSpace(tmp.String()), ","))
		}
	}
	return final
}
