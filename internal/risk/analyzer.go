// Package risk scores a document for scam/fraud likelihood from lexical
// indicators, authenticity-marker presence, and amount anomalies. The scoring
// is deterministic: same inputs, same output, no external calls.
package risk

import (
	"fmt"
	"log/slog"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/extract"
)

// Recommendation is the analyzer's disposition for the caller.
type Recommendation string

const (
	Proceed Recommendation = "proceed"
	Verify  Recommendation = "verify"
	Block   Recommendation = "block"
)

// Scoring constants. Inherited heuristics, tunable defaults.
const (
	indicatorWeight  = 0.3
	markerWeight     = 0.4
	blockScoreFloor  = 0.8
	blockSingleFloor = 0.8
	verifyScoreFloor = 0.4
)

// Analysis is the full risk verdict for one document.
type Analysis struct {
	Suspicious          bool                 `json:"suspicious"`
	RiskFactors         []string             `json:"risk_factors"`
	ScamIndicators      []ScamIndicator      `json:"scam_indicators"`
	AuthenticityMarkers []AuthenticityMarker `json:"authenticity_markers"`
	Recommendation      Recommendation       `json:"recommendation"`
	RiskScore           float64              `json:"risk_score"`
}

// Analyzer computes Analysis values. Stateless; safe for concurrent use.
type Analyzer struct {
	logger *slog.Logger
}

func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// Analyze runs the three signal groups. A panic inside one group neutralizes
// that group's contribution instead of aborting the run.
func (a *Analyzer) Analyze(text string, docType constants.DocumentType, info extract.ExtractedInfo) Analysis {
	var analysis Analysis

	a.safely("scam_indicators", func() {
		analysis.ScamIndicators = scamIndicators(text, info)
	})
	a.safely("authenticity_markers", func() {
		analysis.AuthenticityMarkers = authenticityMarkers(text, docType)
	})

	var indicatorSum float64
	var maxIndicator float64
	for _, ind := range analysis.ScamIndicators {
		indicatorSum += ind.Confidence
		if ind.Confidence > maxIndicator {
			maxIndicator = ind.Confidence
		}
		analysis.RiskFactors = append(analysis.RiskFactors, ind.Description)
	}

	var presentSum float64
	presentCount := 0
	for _, m := range analysis.AuthenticityMarkers {
		if m.Present {
			presentSum += m.Weight
			presentCount++
		} else if m.Weight >= 0.8 {
			analysis.RiskFactors = append(analysis.RiskFactors,
				fmt.Sprintf("expected authenticity marker missing: %s", m.Marker))
		}
	}
	var meanPresent float64
	if presentCount > 0 {
		meanPresent = presentSum / float64(presentCount)
	}

	score := indicatorSum*indicatorWeight - meanPresent*markerWeight
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	analysis.RiskScore = score

	switch {
	case score > blockScoreFloor || maxIndicator > blockSingleFloor:
		analysis.Recommendation = Block
	case score > verifyScoreFloor:
		analysis.Recommendation = Verify
	default:
		analysis.Recommendation = Proceed
	}
	analysis.Suspicious = analysis.Recommendation != Proceed

	return analysis
}

// safely isolates one signal group; a panic logs and leaves the group empty.
func (a *Analyzer) safely(group string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("risk.signal_group_panic", "group", group, "panic", r)
		}
	}()
	fn()
}
