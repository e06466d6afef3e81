package pipeline

// Options control which stages run and the review thresholds for one job.
type Options struct {
	// SkipTranslation leaves the document in its detected language.
	SkipTranslation bool
	// TranslationProvider forces a specific gateway backend; empty lets the
	// gateway choose.
	TranslationProvider string
	IncludeRiskAnalysis bool
	GenerateSummary     bool
	ExtractActions      bool
	// ConfidenceThreshold is the classification confidence below which the
	// job lands in needs_review.
	ConfidenceThreshold float64
	// FieldConfidenceFloor discards extracted fields captured below it.
	FieldConfidenceFloor float64
	// TargetLanguage is the language the pipeline analyzes in.
	TargetLanguage string
	// UserLanguage is the reader's preferred language, stored on the job.
	UserLanguage string
}

func DefaultOptions() Options {
	return Options{
		IncludeRiskAnalysis:  true,
		GenerateSummary:      true,
		ExtractActions:       true,
		ConfidenceThreshold:  0.6,
		FieldConfidenceFloor: 0.3,
		TargetLanguage:       "en",
	}
}

// normalized fills zero values so callers can pass a partially built Options.
func (o Options) normalized() Options {
	if o.ConfidenceThreshold <= 0 {
		o.ConfidenceThreshold = 0.6
	}
	if o.FieldConfidenceFloor <= 0 {
		o.FieldConfidenceFloor = 0.3
	}
	if o.TargetLanguage == "" {
		o.TargetLanguage = "en"
	}
	return o
}
