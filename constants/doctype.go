package constants

import "strings"

// DocumentType is the closed set of document classes the classifier can emit.
type DocumentType string

const (
	USCISNotice         DocumentType = "uscis_notice"
	IRSNotice           DocumentType = "irs_notice"
	CourtNotice         DocumentType = "court_notice"
	BankStatement       DocumentType = "bank_statement"
	UtilityBill         DocumentType = "utility_bill"
	MedicalBill         DocumentType = "medical_bill"
	InsuranceLetter     DocumentType = "insurance_letter"
	CollectionNotice    DocumentType = "collection_notice"
	BirthCertificate    DocumentType = "birth_certificate"
	MarriageCertificate DocumentType = "marriage_certificate"
	Diploma             DocumentType = "diploma"
	PoliceRecord        DocumentType = "police_record"
	EmploymentLetter    DocumentType = "employment_letter"
	LeaseAgreement      DocumentType = "lease_agreement"
	OtherDocument       DocumentType = "other"
)

var allDocumentTypes = []DocumentType{
	USCISNotice,
	IRSNotice,
	CourtNotice,
	BankStatement,
	UtilityBill,
	MedicalBill,
	InsuranceLetter,
	CollectionNotice,
	BirthCertificate,
	MarriageCertificate,
	Diploma,
	PoliceRecord,
	EmploymentLetter,
	LeaseAgreement,
	OtherDocument,
}

// DocumentTypes returns all known types, the fallback type last.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(allDocumentTypes))
	copy(out, allDocumentTypes)
	return out
}

func DocumentTypeStrings() []string {
	result := make([]string, len(allDocumentTypes))
	for i, dt := range allDocumentTypes {
		result[i] = string(dt)
	}
	return result
}

// CanonicalDocumentType maps a free-form label to a known type.
func CanonicalDocumentType(input string) (DocumentType, bool) {
	if input == "" {
		return OtherDocument, false
	}
	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]DocumentType{
		"immigration notice": USCISNotice,
		"uscis":              USCISNotice,
		"tax notice":         IRSNotice,
		"irs":                IRSNotice,
		"summons":            CourtNotice,
		"statement":          BankStatement,
		"electric bill":      UtilityBill,
		"water bill":         UtilityBill,
		"gas bill":           UtilityBill,
		"hospital bill":      MedicalBill,
		"eob":                InsuranceLetter,
		"debt collection":    CollectionNotice,
		"degree":             Diploma,
		"background check":   PoliceRecord,
		"offer letter":       EmploymentLetter,
		"rental agreement":   LeaseAgreement,
	}
	if dt, ok := synonyms[normalized]; ok {
		return dt, true
	}
	for _, dt := range allDocumentTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return OtherDocument, false
}

// HumanLabel renders a type for summaries ("uscis_notice" -> "USCIS notice").
func (d DocumentType) HumanLabel() string {
	switch d {
	case USCISNotice:
		return "USCIS notice"
	case IRSNotice:
		return "IRS notice"
	case OtherDocument:
		return "document"
	}
	return strings.ReplaceAll(string(d), "_", " ")
}
