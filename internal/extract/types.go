package extract

import "time"

// ExtractedInfo is the structured view of one document. Transient: produced
// once per run, consumed by risk analysis and summarization, then folded into
// the job record. Absent fields stay zero; extraction never fails hard.
type ExtractedInfo struct {
	Sender    string `json:"sender,omitempty"`
	Recipient string `json:"recipient,omitempty"`

	// Civil documents (birth and marriage certificates) carry facts about
	// their subject rather than a transaction.
	CountryOfBirth string `json:"country_of_birth,omitempty"`
	Gender         string `json:"gender,omitempty"`

	Dates       Dates       `json:"dates"`
	Amounts     Amounts     `json:"amounts"`
	Identifiers Identifiers `json:"identifiers"`

	Instructions    []string `json:"instructions,omitempty"`
	RequiredActions []string `json:"required_actions,omitempty"`

	// FieldConfidences holds the confidence of every kept field, keyed by
	// field name. Confidence is their mean.
	FieldConfidences map[string]float64 `json:"field_confidences,omitempty"`
	Confidence       float64            `json:"confidence"`
}

// Dates are the structured dates a document can carry.
type Dates struct {
	Document    *time.Time `json:"document,omitempty"`
	Due         *time.Time `json:"due,omitempty"`
	Appointment *time.Time `json:"appointment,omitempty"`
	Effective   *time.Time `json:"effective,omitempty"`
}

// Amounts are the monetary figures, in the document's currency.
type Amounts struct {
	TotalDue   *float64 `json:"total_due,omitempty"`
	MinimumDue *float64 `json:"minimum_due,omitempty"`
	Balance    *float64 `json:"balance,omitempty"`
	Currency   string   `json:"currency,omitempty"`
}

// Identifiers are the reference numbers used to link a document to a case.
type Identifiers struct {
	CaseNumber     string `json:"case_number,omitempty"`
	AccountNumber  string `json:"account_number,omitempty"`
	ClaimNumber    string `json:"claim_number,omitempty"`
	PolicyNumber   string `json:"policy_number,omitempty"`
	ReceiptNumber  string `json:"receipt_number,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
}
