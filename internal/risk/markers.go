package risk

import (
	"regexp"

	"github.com/paperlens/paperlens/constants"
)

// AuthenticityMarker is one structural cue expected in a genuine document of
// a given type, with its presence flag and importance weight.
type AuthenticityMarker struct {
	Marker  string  `json:"marker"`
	Present bool    `json:"present"`
	Weight  float64 `json:"weight"`
}

type markerCheck struct {
	name   string
	re     *regexp.Regexp
	weight float64
}

var (
	reAddressBlock = regexp.MustCompile(`(?i)(?:p\.?o\.? box \d+|\d+ [A-Za-z .]+(?:street|st\.?|avenue|ave\.?|road|rd\.?|blvd|suite|ste\.?))[^\n]*\b\d{5}(?:-\d{4})?\b`)
	reSalutation   = regexp.MustCompile(`(?i)\b(?:dear|to whom it may concern|estimado|cher)\b`)
	reRefNumber    = regexp.MustCompile(`(?i)\b(?:reference|ref\.?|case|account|notice|claim|policy) (?:number|no\.?|#)\b`)
)

// genericChecks apply to document types without a dedicated checklist.
var genericChecks = []markerCheck{
	{name: "formal_address_block", re: reAddressBlock, weight: 0.6},
	{name: "formal_salutation", re: reSalutation, weight: 0.4},
	{name: "reference_number", re: reRefNumber, weight: 0.6},
}

var typeChecks = map[constants.DocumentType][]markerCheck{
	constants.USCISNotice: {
		{name: "issuing_agency_name", re: regexp.MustCompile(`(?i)u\.?s\.? citizenship and immigration services|department of homeland security|\bUSCIS\b`), weight: 0.9},
		{name: "receipt_number", re: regexp.MustCompile(`\b[A-Z]{3}[0-9]{10}\b`), weight: 0.9},
		{name: "form_number", re: regexp.MustCompile(`(?i)\bform (?:I-\d{3}[A-Z]?|N-\d{3})\b`), weight: 0.8},
		{name: "formal_address_block", re: reAddressBlock, weight: 0.6},
	},
	constants.IRSNotice: {
		{name: "issuing_agency_name", re: regexp.MustCompile(`(?i)internal revenue service|department of the treasury`), weight: 0.9},
		{name: "notice_number", re: regexp.MustCompile(`(?i)\bnotice (?:CP|LT)[0-9A-Z-]{1,8}\b`), weight: 0.8},
		{name: "tax_form_reference", re: regexp.MustCompile(`(?i)\bform (?:1040|1099|W-2|941)\b`), weight: 0.7},
		{name: "formal_address_block", re: reAddressBlock, weight: 0.6},
	},
	constants.CourtNotice: {
		{name: "court_name", re: regexp.MustCompile(`(?i)\b(?:superior|district|circuit|municipal|supreme) court\b`), weight: 0.9},
		{name: "docket_number", re: regexp.MustCompile(`(?i)\b(?:docket|case) (?:number|no\.?)\b`), weight: 0.8},
		{name: "formal_address_block", re: reAddressBlock, weight: 0.6},
	},
	constants.BankStatement: {
		{name: "institution_name", re: regexp.MustCompile(`(?i)\b(?:bank|credit union|member fdic)\b`), weight: 0.8},
		{name: "account_reference", re: regexp.MustCompile(`(?i)account (?:number|no\.?|#|ending)`), weight: 0.8},
		{name: "statement_period", re: regexp.MustCompile(`(?i)statement period`), weight: 0.7},
	},
	constants.CollectionNotice: {
		{name: "creditor_name", re: regexp.MustCompile(`(?i)\b(?:original creditor|on behalf of)\b`), weight: 0.8},
		{name: "dispute_rights", re: regexp.MustCompile(`(?i)\b(?:dispute|validation) (?:of )?(?:this )?debt\b`), weight: 0.9},
		{name: "formal_address_block", re: reAddressBlock, weight: 0.6},
	},
}

// authenticityMarkers runs the checklist for docType, falling back to the
// generic structural cues.
func authenticityMarkers(text string, docType constants.DocumentType) []AuthenticityMarker {
	checks, ok := typeChecks[docType]
	if !ok {
		checks = genericChecks
	}
	out := make([]AuthenticityMarker, 0, len(checks))
	for _, c := range checks {
		out = append(out, AuthenticityMarker{
			Marker:  c.name,
			Present: c.re.MatchString(text),
			Weight:  c.weight,
		})
	}
	return out
}
