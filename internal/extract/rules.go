package extract

import (
	"regexp"

	"github.com/paperlens/paperlens/constants"
)

// FieldKind selects the normalizer and validator applied after a raw value is
// captured.
type FieldKind string

const (
	KindName       FieldKind = "name"
	KindDate       FieldKind = "date"
	KindAmount     FieldKind = "amount"
	KindIdentifier FieldKind = "identifier"
	KindCurrency   FieldKind = "currency"
	KindCountry    FieldKind = "country"
	KindGender     FieldKind = "gender"
)

// Pattern is one regular expression with a capture group and a fixed
// confidence for values it produces.
type Pattern struct {
	Re         *regexp.Regexp
	Group      int
	Confidence float64
}

// Proximity searches a window of words after a label keyword for a value
// matching the shape.
type Proximity struct {
	Labels     []string
	Window     int
	Shape      *regexp.Regexp
	Confidence float64
}

// Position searches a fractional page region of the OCR word layout. Only
// useful for fields with a stable physical location, like the sender block.
type Position struct {
	X0, Y0, X1, Y1 float64
	MaxWords       int
	Confidence     float64
}

// FieldRule is the full strategy for one field: patterns first, then
// proximity, then position. First successful method wins.
type FieldRule struct {
	Field     string
	Kind      FieldKind
	Patterns  []Pattern
	Proximity *Proximity
	Position  *Position
	Validate  func(string) bool
}

var (
	shapeDate       = regexp.MustCompile(`(?i)^(?:\d{1,2}[/-]\d{1,2}[/-]\d{4}|\d{4}-\d{1,2}-\d{1,2}|\d{1,2}\s+[A-Za-z]{3,9}\.?,?\s+\d{4}|[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})$`)
	shapeAmount     = regexp.MustCompile(`^\$?\d{1,3}(?:,\d{3})*(?:\.\d{2})?$|^\$?\d+(?:\.\d{2})?$`)
	shapeIdentifier = regexp.MustCompile(`^[A-Za-z0-9-]{4,24}$`)

	captureDate   = `([A-Za-z0-9]{1,9}[ /,.-]+[A-Za-z0-9]{1,9}[ /,.-]+\d{4})`
	captureAmount = `\$?\s*([\d,]+(?:\.\d{2})?)`
)

// baseRules apply to every document type.
func baseRules() []FieldRule {
	return []FieldRule{
		{
			Field: "sender",
			Kind:  KindName,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?im)^from[:\s]+([^\n]{3,80})$`), Group: 1, Confidence: 0.85},
				{Re: regexp.MustCompile(`(?im)^issued by[:\s]+([^\n]{3,80})$`), Group: 1, Confidence: 0.8},
			},
			Proximity: &Proximity{
				Labels:     []string{"from", "sender", "issued by"},
				Window:     6,
				Shape:      regexp.MustCompile(`^[\p{L}][\p{L}.,'-]*$`),
				Confidence: 0.6,
			},
			Position: &Position{X0: 0, Y0: 0, X1: 0.6, Y1: 0.15, MaxWords: 6, Confidence: 0.5},
			Validate: ValidPersonName,
		},
		{
			Field: "recipient",
			Kind:  KindName,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?im)^(?:to|dear)[:\s]+([^\n,]{3,80})`), Group: 1, Confidence: 0.85},
			},
			Proximity: &Proximity{
				Labels:     []string{"dear", "to"},
				Window:     5,
				Shape:      regexp.MustCompile(`^[\p{L}][\p{L}.,'-]*$`),
				Confidence: 0.55,
			},
			Validate: ValidPersonName,
		},
		{
			Field: "document_date",
			Kind:  KindDate,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)(?:notice date|statement date|letter date|date of notice|dated?)[:\s]*` + captureDate), Group: 1, Confidence: 0.85},
			},
			Proximity: &Proximity{
				Labels:     []string{"date"},
				Window:     5,
				Shape:      shapeDate,
				Confidence: 0.5,
			},
		},
		{
			Field: "due_date",
			Kind:  KindDate,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)(?:due date|payment due|respond (?:by|before)|reply by|no later than|must be received by)[:\s]*` + captureDate), Group: 1, Confidence: 0.9},
			},
			Proximity: &Proximity{
				Labels:     []string{"due", "deadline"},
				Window:     6,
				Shape:      shapeDate,
				Confidence: 0.6,
			},
		},
		{
			Field: "appointment_date",
			Kind:  KindDate,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)(?:appointment (?:date|on)|scheduled for|appear (?:on|at).{0,20}? on)[:\s]*` + captureDate), Group: 1, Confidence: 0.9},
			},
			Proximity: &Proximity{
				Labels:     []string{"appointment"},
				Window:     8,
				Shape:      shapeDate,
				Confidence: 0.6,
			},
		},
		{
			Field: "total_due",
			Kind:  KindAmount,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)(?:total (?:amount )?due|amount due|balance due|amount owed|please pay)[:\s]*` + captureAmount), Group: 1, Confidence: 0.9},
			},
			Proximity: &Proximity{
				Labels:     []string{"due", "total"},
				Window:     4,
				Shape:      shapeAmount,
				Confidence: 0.55,
			},
		},
		{
			Field: "minimum_due",
			Kind:  KindAmount,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)minimum (?:payment|amount)?\s*due[:\s]*` + captureAmount), Group: 1, Confidence: 0.9},
			},
		},
		{
			Field: "balance",
			Kind:  KindAmount,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)(?:ending|current|account|outstanding) balance[:\s]*` + captureAmount), Group: 1, Confidence: 0.85},
			},
		},
		{
			Field: "currency",
			Kind:  KindCurrency,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`\b(USD|EUR|GBP|CAD|MXN)\b`), Group: 1, Confidence: 0.9},
				{Re: regexp.MustCompile(`([$€£])`), Group: 1, Confidence: 0.7},
			},
		},
		{
			Field: "case_number",
			Kind:  KindIdentifier,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)case (?:number|no\.?|#)[:\s]*([A-Za-z0-9-]{4,24})`), Group: 1, Confidence: 0.9},
			},
			Proximity: &Proximity{
				Labels:     []string{"case"},
				Window:     4,
				Shape:      shapeIdentifier,
				Confidence: 0.55,
			},
			Validate: ValidCaseNumber,
		},
		{
			Field: "account_number",
			Kind:  KindIdentifier,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)account (?:number|no\.?|#)[:\s]*([A-Za-z0-9-]{4,24})`), Group: 1, Confidence: 0.9},
			},
			Validate: ValidAccountNumber,
		},
		{
			Field: "claim_number",
			Kind:  KindIdentifier,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)claim (?:number|no\.?|#)[:\s]*([A-Za-z0-9-]{4,24})`), Group: 1, Confidence: 0.9},
			},
			Validate: ValidCaseNumber,
		},
		{
			Field: "policy_number",
			Kind:  KindIdentifier,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)policy (?:number|no\.?|#)[:\s]*([A-Za-z0-9-]{4,24})`), Group: 1, Confidence: 0.9},
			},
			Validate: ValidCaseNumber,
		},
	}
}

// typeRules are additional, more specific rules per document type. They run
// before the base rules so sharper shapes win.
func typeRules(docType constants.DocumentType) []FieldRule {
	switch docType {
	case constants.USCISNotice:
		return []FieldRule{
			{
				Field: "receipt_number",
				Kind:  KindIdentifier,
				Patterns: []Pattern{
					{Re: regexp.MustCompile(`(?i)receipt number[:\s]*([A-Z]{3}[0-9]{10})`), Group: 1, Confidence: 0.95},
					{Re: regexp.MustCompile(`\b([A-Z]{3}[0-9]{10})\b`), Group: 1, Confidence: 0.85},
				},
				Validate: ValidReceiptNumber,
			},
			{
				Field: "case_number",
				Kind:  KindIdentifier,
				Patterns: []Pattern{
					{Re: regexp.MustCompile(`(?i)(?:a-number|alien (?:registration )?number)[:\s]*A?[- ]?(\d{8,9})`), Group: 1, Confidence: 0.9},
				},
				Validate: ValidCaseNumber,
			},
		}
	case constants.BirthCertificate, constants.MarriageCertificate:
		return civilCertificateRules()
	case constants.IRSNotice:
		return []FieldRule{
			{
				Field: "case_number",
				Kind:  KindIdentifier,
				Patterns: []Pattern{
					{Re: regexp.MustCompile(`(?i)notice (?:number|no\.?)[:\s]*((?:CP|LT)[0-9A-Z-]{1,8})`), Group: 1, Confidence: 0.95},
				},
				Validate: ValidCaseNumber,
			},
		}
	case constants.BankStatement:
		return []FieldRule{
			{
				Field: "account_number",
				Kind:  KindIdentifier,
				Patterns: []Pattern{
					{Re: regexp.MustCompile(`(?i)account (?:number|no\.?|#)?[:\s]*(?:ending in\s*)?[xX*]*(\d{4,17})`), Group: 1, Confidence: 0.9},
				},
				Validate: ValidAccountNumber,
			},
		}
	case constants.InsuranceLetter:
		return []FieldRule{
			{
				Field: "receipt_number",
				Kind:  KindIdentifier,
				Patterns: []Pattern{
					{Re: regexp.MustCompile(`(?i)reference (?:number|no\.?|#)[:\s]*([A-Za-z0-9-]{4,24})`), Group: 1, Confidence: 0.85},
				},
				Validate: ValidCaseNumber,
			},
		}
	default:
		return nil
	}
}

// civilCertificateRules cover birth and marriage certificates, which describe
// their subject rather than a transaction: the certificate date, country and
// gender markers, and the passport number when one is quoted.
func civilCertificateRules() []FieldRule {
	return []FieldRule{
		{
			Field: "document_date",
			Kind:  KindDate,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)date of (?:birth|marriage)[:\s]*` + captureDate), Group: 1, Confidence: 0.9},
				{Re: regexp.MustCompile(`(?i)(?:registered|issued) on[:\s]*` + captureDate), Group: 1, Confidence: 0.8},
			},
		},
		{
			Field: "country_of_birth",
			Kind:  KindCountry,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)(?:country|place) of birth[:\s]*([A-Za-zÀ-ÿ][A-Za-zÀ-ÿ ]{1,39})`), Group: 1, Confidence: 0.85},
				{Re: regexp.MustCompile(`(?i)born in[:\s]*([A-Za-zÀ-ÿ][A-Za-zÀ-ÿ ]{1,39})`), Group: 1, Confidence: 0.7},
			},
		},
		{
			Field: "gender",
			Kind:  KindGender,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?im)^(?:sex|gender)[:\s]+([A-Za-z-]{1,12})`), Group: 1, Confidence: 0.85},
			},
		},
		{
			Field: "passport_number",
			Kind:  KindIdentifier,
			Patterns: []Pattern{
				{Re: regexp.MustCompile(`(?i)passport (?:number|no\.?|#)[:\s]*([A-Za-z0-9]{6,12})`), Group: 1, Confidence: 0.9},
			},
			Validate: ValidPassportNumber,
		},
	}
}

// rulesFor merges type-specific rules ahead of the base set. When both define
// a field, the type-specific rule replaces the base one.
func rulesFor(docType constants.DocumentType) []FieldRule {
	specific := typeRules(docType)
	seen := make(map[string]bool, len(specific))
	for _, r := range specific {
		seen[r.Field] = true
	}
	merged := specific
	for _, r := range baseRules() {
		if !seen[r.Field] {
			merged = append(merged, r)
		}
	}
	return merged
}
