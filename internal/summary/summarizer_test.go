package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/extract"
)

var anchor = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func dateIn(days int) *time.Time {
	t := anchor.AddDate(0, 0, days)
	return &t
}

func TestDetermineUrgency(t *testing.T) {
	amount := 2500.0
	tests := []struct {
		name        string
		docType     constants.DocumentType
		due         *time.Time
		appointment *time.Time
		totalDue    *float64
		want        constants.Urgency
	}{
		{name: "due today", docType: constants.UtilityBill, due: dateIn(0), want: constants.UrgencyCritical},
		{name: "overdue", docType: constants.UtilityBill, due: dateIn(-4), want: constants.UrgencyCritical},
		{name: "due tomorrow", docType: constants.UtilityBill, due: dateIn(1), want: constants.UrgencyCritical},
		{name: "due in three days", docType: constants.UtilityBill, due: dateIn(3), want: constants.UrgencyHigh},
		{name: "due in a week", docType: constants.UtilityBill, due: dateIn(7), want: constants.UrgencyMedium},
		{name: "due in eight days", docType: constants.OtherDocument, due: dateIn(8), want: constants.UrgencyMedium},
		{name: "appointment in two days", docType: constants.USCISNotice, appointment: dateIn(2), want: constants.UrgencyCritical},
		{name: "appointment in two weeks", docType: constants.USCISNotice, appointment: dateIn(14), want: constants.UrgencyHigh},
		{name: "large amount no deadline", docType: constants.OtherDocument, totalDue: &amount, want: constants.UrgencyHigh},
		{name: "court notice defaults high", docType: constants.CourtNotice, want: constants.UrgencyHigh},
		{name: "utility bill defaults medium", docType: constants.UtilityBill, want: constants.UrgencyMedium},
		{name: "unknown type defaults low", docType: constants.OtherDocument, want: constants.UrgencyLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var info extract.ExtractedInfo
			info.Dates.Due = tt.due
			info.Dates.Appointment = tt.appointment
			info.Amounts.TotalDue = tt.totalDue
			assert.Equal(t, tt.want, determineUrgency(tt.docType, info, anchor))
		})
	}
}

func TestSummarizeUSCISAppointment(t *testing.T) {
	var info extract.ExtractedInfo
	info.Dates.Appointment = dateIn(2)
	info.Identifiers.ReceiptNumber = "IOE0912345678"

	s := NewSummarizer(nil)
	got := s.Summarize(constants.USCISNotice, info, anchor)

	assert.Equal(t, constants.UrgencyCritical, got.Urgency)

	require.NotEmpty(t, got.ActionItems)
	assert.Equal(t, constants.ActionScheduleAppointment, got.ActionItems[0].Type)
	assert.Equal(t, constants.PriorityUrgent, got.ActionItems[0].Priority)
	require.NotNil(t, got.ActionItems[0].DueDate)
	assert.True(t, got.ActionItems[0].DueDate.Equal(*info.Dates.Appointment))

	joined := ""
	for _, p := range got.KeyPoints {
		joined += p + " "
	}
	assert.Contains(t, joined, "IOE0912345678")
	assert.Contains(t, joined, "appointment")

	assert.Contains(t, got.Paragraph, "in 2 days")
	assert.GreaterOrEqual(t, got.Readability, 0.0)
	assert.LessOrEqual(t, got.Readability, 1.0)
}

func TestSummarizeBillPaymentAction(t *testing.T) {
	amount := 142.50
	var info extract.ExtractedInfo
	info.Amounts.TotalDue = &amount
	info.Dates.Due = dateIn(20)

	s := NewSummarizer(nil)
	got := s.Summarize(constants.UtilityBill, info, anchor)

	assert.Equal(t, constants.UrgencyMedium, got.Urgency)

	var pay *ActionItem
	for i := range got.ActionItems {
		if got.ActionItems[i].Type == constants.ActionPayBill {
			pay = &got.ActionItems[i]
		}
		assert.NotEqual(t, constants.ActionReviewAmount, got.ActionItems[i].Type,
			"small amounts should not trigger an amount review")
	}
	require.NotNil(t, pay)
	assert.Contains(t, pay.Description, "$142.50")
	require.NotNil(t, pay.DueDate)

	assert.Contains(t, got.Paragraph, "you owe $142.50")
}

func TestSummarizeLargeBillAddsReview(t *testing.T) {
	amount := 4200.0
	var info extract.ExtractedInfo
	info.Amounts.TotalDue = &amount

	s := NewSummarizer(nil)
	got := s.Summarize(constants.MedicalBill, info, anchor)

	assert.Equal(t, constants.UrgencyHigh, got.Urgency)

	types := make([]constants.ActionType, 0, len(got.ActionItems))
	for _, it := range got.ActionItems {
		types = append(types, it.Type)
	}
	assert.Contains(t, types, constants.ActionPayBill)
	assert.Contains(t, types, constants.ActionReviewAmount)
}

func TestSummarizeCapsListLengths(t *testing.T) {
	amount := 9500.0
	balance := 120.0
	var info extract.ExtractedInfo
	info.Sender = "Acme Collections"
	info.Amounts.TotalDue = &amount
	info.Amounts.Balance = &balance
	info.Dates.Due = dateIn(2)
	info.Dates.Appointment = dateIn(5)
	info.Identifiers.CaseNumber = "C-2026-0042"
	info.RequiredActions = []string{
		"You must respond no later than the deadline",
		"You must call the office immediately",
		"You must provide proof of payment",
		"You must sign and return the enclosed form",
		"You must keep a copy for your records",
	}
	info.Instructions = info.RequiredActions

	s := NewSummarizer(nil)
	got := s.Summarize(constants.CollectionNotice, info, anchor)

	assert.LessOrEqual(t, len(got.KeyPoints), maxKeyPoints)
	assert.LessOrEqual(t, len(got.ActionItems), maxActionItems)
	assert.GreaterOrEqual(t, got.Readability, 0.0)
	assert.LessOrEqual(t, got.Readability, 1.0)
}

func TestDeadlinePhrase(t *testing.T) {
	assert.Equal(t, "today", deadlinePhrase(*dateIn(0), anchor))
	assert.Equal(t, "tomorrow", deadlinePhrase(*dateIn(1), anchor))
	assert.Equal(t, "in 5 days", deadlinePhrase(*dateIn(5), anchor))
	assert.Equal(t, "1 day overdue", deadlinePhrase(*dateIn(-1), anchor))
	assert.Equal(t, "3 days overdue", deadlinePhrase(*dateIn(-3), anchor))
}

func TestReadabilityScore(t *testing.T) {
	plain := "You must pay the bill. Call the office now. Keep this letter."
	dense := "Pursuant to the aforementioned adjudicative determination, remittance of the outstanding obligational balance constitutes a mandatory prerequisite for continued enrollment eligibility notwithstanding prior correspondence."

	p := readabilityScore(plain)
	d := readabilityScore(dense)
	assert.Greater(t, p, d)
	assert.GreaterOrEqual(t, d, 0.0)
	assert.LessOrEqual(t, p, 1.0)

	assert.Zero(t, readabilityScore(""))
}

func TestPriorityFor(t *testing.T) {
	assert.Equal(t, constants.PriorityUrgent, priorityFor(constants.UrgencyCritical))
	assert.Equal(t, constants.PriorityHigh, priorityFor(constants.UrgencyHigh))
	assert.Equal(t, constants.PriorityMedium, priorityFor(constants.UrgencyMedium))
	assert.Equal(t, constants.PriorityLow, priorityFor(constants.UrgencyLow))
}
