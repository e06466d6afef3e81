// Package extract pulls structured entities out of free document text using
// pattern, keyword-proximity, and position heuristics keyed by document type.
package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/provider/ocr"
)

// Input is everything one extraction run needs.
type Input struct {
	Text    string
	Words   []ocr.Word // OCR layout, used by position rules; may be empty
	DocType constants.DocumentType

	// MinConfidence is the per-document-type floor below which a captured
	// field is discarded.
	MinConfidence float64
}

// Extractor runs the registered rule set for a document type.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

type capture struct {
	value      string
	confidence float64
	method     string
}

// Extract never fails hard: fields that cannot be found, normalized, or
// validated simply do not appear in the result.
func (e *Extractor) Extract(in Input) ExtractedInfo {
	info := ExtractedInfo{FieldConfidences: make(map[string]float64)}
	tokens := strings.Fields(in.Text)

	for _, rule := range rulesFor(in.DocType) {
		cap, ok := e.capture(rule, in, tokens)
		if !ok {
			continue
		}
		if cap.confidence < in.MinConfidence {
			e.logger.Debug("extract.field_below_floor",
				"field", rule.Field, "confidence", cap.confidence, "floor", in.MinConfidence)
			continue
		}
		if !e.assign(&info, rule, cap) {
			continue
		}
		info.FieldConfidences[rule.Field] = cap.confidence
		e.logger.Debug("extract.field_captured",
			"field", rule.Field, "method", cap.method, "confidence", cap.confidence)
	}

	info.Instructions, info.RequiredActions = scanInstructions(in.Text)

	if len(info.FieldConfidences) > 0 {
		var sum float64
		for _, c := range info.FieldConfidences {
			sum += c
		}
		info.Confidence = sum / float64(len(info.FieldConfidences))
	}
	return info
}

// capture tries the rule's methods in order: patterns, proximity, position.
func (e *Extractor) capture(rule FieldRule, in Input, tokens []string) (capture, bool) {
	for _, p := range rule.Patterns {
		if m := p.Re.FindStringSubmatch(in.Text); m != nil && len(m) > p.Group {
			v := strings.TrimSpace(m[p.Group])
			if v != "" {
				return capture{value: v, confidence: p.Confidence, method: "pattern"}, true
			}
		}
	}
	if rule.Proximity != nil {
		if v, ok := proximitySearch(tokens, rule.Proximity); ok {
			return capture{value: v, confidence: rule.Proximity.Confidence, method: "proximity"}, true
		}
	}
	if rule.Position != nil && len(in.Words) > 0 {
		if v, ok := positionSearch(in.Words, rule.Position); ok {
			return capture{value: v, confidence: rule.Position.Confidence, method: "position"}, true
		}
	}
	return capture{}, false
}

var rePunctTrim = regexp.MustCompile(`^[^\w$€£]+|[^\w%]+$`)

// proximitySearch looks within a fixed window of words after a label keyword
// for a value matching the shape. Multi-word values are assembled greedily
// while successive words keep matching.
func proximitySearch(tokens []string, prox *Proximity) (string, bool) {
	for i, tok := range tokens {
		lower := strings.ToLower(rePunctTrim.ReplaceAllString(tok, ""))
		matched := false
		for _, label := range prox.Labels {
			// multi-word labels must match the following tokens too
			parts := strings.Fields(label)
			if lower != parts[0] {
				continue
			}
			ok := true
			for j := 1; j < len(parts); j++ {
				if i+j >= len(tokens) || !strings.EqualFold(rePunctTrim.ReplaceAllString(tokens[i+j], ""), parts[j]) {
					ok = false
					break
				}
			}
			if ok {
				matched = true
				i += len(parts) - 1
				break
			}
		}
		if !matched {
			continue
		}
		var run []string
		for j := i + 1; j <= i+prox.Window && j < len(tokens); j++ {
			w := rePunctTrim.ReplaceAllString(tokens[j], "")
			if w == "" {
				continue
			}
			candidate := w
			if len(run) > 0 {
				candidate = strings.Join(append(run, w), " ")
			}
			if prox.Shape.MatchString(candidate) {
				run = append(run, w)
				continue
			}
			if len(run) > 0 {
				break
			}
		}
		if len(run) > 0 {
			return strings.Join(run, " "), true
		}
	}
	return "", false
}

// positionSearch joins the first words whose boxes fall inside the rule's
// fractional page region, reading order.
func positionSearch(words []ocr.Word, pos *Position) (string, bool) {
	var maxX, maxY float64
	for _, w := range words {
		if right := w.BBox.X + w.BBox.Width; right > maxX {
			maxX = right
		}
		if bottom := w.BBox.Y + w.BBox.Height; bottom > maxY {
			maxY = bottom
		}
	}
	if maxX == 0 || maxY == 0 {
		return "", false
	}

	var hit []string
	for _, w := range words {
		cx := (w.BBox.X + w.BBox.Width/2) / maxX
		cy := (w.BBox.Y + w.BBox.Height/2) / maxY
		if cx >= pos.X0 && cx <= pos.X1 && cy >= pos.Y0 && cy <= pos.Y1 {
			hit = append(hit, w.Text)
			if pos.MaxWords > 0 && len(hit) == pos.MaxWords {
				break
			}
		}
	}
	if len(hit) == 0 {
		return "", false
	}
	return strings.Join(hit, " "), true
}

// assign normalizes, validates, and stores one captured value. Returns false
// when the value fails and must be dropped.
func (e *Extractor) assign(info *ExtractedInfo, rule FieldRule, cap capture) bool {
	switch rule.Kind {
	case KindDate:
		t, err := NormalizeDate(cap.value)
		if err != nil || !ValidDate(t) {
			return false
		}
		switch rule.Field {
		case "document_date":
			info.Dates.Document = &t
		case "due_date":
			info.Dates.Due = &t
		case "appointment_date":
			info.Dates.Appointment = &t
		case "effective_date":
			info.Dates.Effective = &t
		default:
			return false
		}
	case KindAmount:
		v, err := NormalizeAmount(cap.value)
		if err != nil || !ValidAmount(v) {
			return false
		}
		switch rule.Field {
		case "total_due":
			info.Amounts.TotalDue = &v
		case "minimum_due":
			info.Amounts.MinimumDue = &v
		case "balance":
			info.Amounts.Balance = &v
		default:
			return false
		}
	case KindCurrency:
		info.Amounts.Currency = canonicalCurrency(cap.value)
	case KindCountry:
		info.CountryOfBirth = NormalizeCountry(cap.value)
	case KindGender:
		info.Gender = NormalizeGender(cap.value)
	case KindName:
		name := NormalizeName(cap.value)
		if rule.Validate != nil && !rule.Validate(name) {
			return false
		}
		switch rule.Field {
		case "sender":
			info.Sender = name
		case "recipient":
			info.Recipient = name
		default:
			return false
		}
	case KindIdentifier:
		v := strings.ToUpper(strings.TrimSpace(cap.value))
		if rule.Validate != nil && !rule.Validate(v) {
			return false
		}
		switch rule.Field {
		case "case_number":
			info.Identifiers.CaseNumber = v
		case "account_number":
			info.Identifiers.AccountNumber = v
		case "claim_number":
			info.Identifiers.ClaimNumber = v
		case "policy_number":
			info.Identifiers.PolicyNumber = v
		case "receipt_number":
			info.Identifiers.ReceiptNumber = v
		case "passport_number":
			info.Identifiers.PassportNumber = v
		default:
			return false
		}
	default:
		return false
	}
	return true
}

func canonicalCurrency(raw string) string {
	switch raw {
	case "$":
		return "USD"
	case "€":
		return "EUR"
	case "£":
		return "GBP"
	default:
		return strings.ToUpper(raw)
	}
}

var (
	reSentenceSplit = regexp.MustCompile(`[.!?\n]+`)
	reInstruction   = regexp.MustCompile(`(?i)^(?:please|you (?:must|should|need to)|bring|submit|call|pay|attend|respond|provide|complete|sign|return|schedule|contact)\b`)
	reMandatory     = regexp.MustCompile(`(?i)\b(?:must|required|failure to|no later than|immediately)\b`)
)

// scanInstructions collects imperative sentences; those with mandatory
// phrasing also land in the required-actions list.
func scanInstructions(text string) (instructions, required []string) {
	for _, raw := range reSentenceSplit.Split(text, -1) {
		s := strings.TrimSpace(raw)
		if len(s) < 12 || len(s) > 240 {
			continue
		}
		if !reInstruction.MatchString(s) {
			continue
		}
		instructions = append(instructions, s)
		if reMandatory.MatchString(s) {
			required = append(required, s)
		}
		if len(instructions) == 10 {
			break
		}
	}
	return instructions, required
}
