package summary

import (
	"time"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/extract"
)

// highAmountFloor: an amount due above this bumps urgency to high on its own.
const highAmountFloor = 1000

// typeDefaultUrgency applies when a document carries no deadline signal.
var typeDefaultUrgency = map[constants.DocumentType]constants.Urgency{
	constants.USCISNotice:      constants.UrgencyHigh,
	constants.IRSNotice:        constants.UrgencyHigh,
	constants.CourtNotice:      constants.UrgencyHigh,
	constants.CollectionNotice: constants.UrgencyHigh,
	constants.MedicalBill:      constants.UrgencyMedium,
	constants.UtilityBill:      constants.UrgencyMedium,
	constants.InsuranceLetter:  constants.UrgencyMedium,
	constants.EmploymentLetter: constants.UrgencyMedium,
	constants.LeaseAgreement:   constants.UrgencyMedium,
}

// determineUrgency walks the ladder: overdue or imminent deadlines first,
// then amount, then the per-type default. A document with any future due date
// never drops below medium.
func determineUrgency(docType constants.DocumentType, info extract.ExtractedInfo, now time.Time) constants.Urgency {
	due := info.Dates.Due
	appointment := info.Dates.Appointment

	// missing an appointment is worse than missing a payment: anything
	// within three days is critical
	if appointment != nil && daysUntil(*appointment, now) <= 3 {
		return constants.UrgencyCritical
	}
	if due != nil && daysUntil(*due, now) <= 1 {
		return constants.UrgencyCritical
	}
	if due != nil && daysUntil(*due, now) <= 3 {
		return constants.UrgencyHigh
	}
	if info.Amounts.TotalDue != nil && *info.Amounts.TotalDue > highAmountFloor {
		return constants.UrgencyHigh
	}
	if due != nil && daysUntil(*due, now) <= 7 {
		return constants.UrgencyMedium
	}

	def, ok := typeDefaultUrgency[docType]
	if !ok {
		def = constants.UrgencyLow
	}
	if due != nil && def == constants.UrgencyLow {
		return constants.UrgencyMedium
	}
	return def
}

// daysUntil counts whole calendar days from now to t; negative when overdue.
func daysUntil(t, now time.Time) int {
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(target.Sub(nowDate).Hours() / 24)
}
