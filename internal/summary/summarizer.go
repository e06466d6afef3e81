package summary

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/paperlens/paperlens/constants"
	"github.com/paperlens/paperlens/internal/extract"
)

const (
	maxKeyPoints   = 6
	maxActionItems = 5
)

// Summary is the plain-language digest produced for one document.
type Summary struct {
	KeyPoints   []string          `json:"key_points"`
	ActionItems []ActionItem      `json:"action_items"`
	Urgency     constants.Urgency `json:"urgency"`
	Paragraph   string            `json:"paragraph"`
	Readability float64           `json:"readability"`
}

// ActionItem is one concrete follow-up the reader should take.
type ActionItem struct {
	Type        constants.ActionType     `json:"type"`
	Label       string                   `json:"label"`
	Description string                   `json:"description"`
	DueDate     *time.Time               `json:"due_date,omitempty"`
	Priority    constants.ActionPriority `json:"priority"`
}

// Summarizer turns extracted fields into a summary a reader with no legal or
// financial background can act on.
type Summarizer struct {
	logger *slog.Logger
}

func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger.With("component", "summarizer")}
}

// Summarize builds the digest. now anchors all deadline arithmetic.
func (s *Summarizer) Summarize(docType constants.DocumentType, info extract.ExtractedInfo, now time.Time) Summary {
	urgency := determineUrgency(docType, info, now)
	points := s.keyPoints(docType, info, now)
	actions := s.actionItems(docType, info, urgency, now)
	paragraph := s.paragraph(docType, info, actions, now)

	out := Summary{
		KeyPoints:   points,
		ActionItems: actions,
		Urgency:     urgency,
		Paragraph:   paragraph,
		Readability: readabilityScore(paragraph),
	}
	s.logger.Debug("summary.built",
		"doc_type", docType,
		"urgency", urgency,
		"key_points", len(points),
		"action_items", len(actions))
	return out
}

func (s *Summarizer) keyPoints(docType constants.DocumentType, info extract.ExtractedInfo, now time.Time) []string {
	var points []string
	add := func(p string) {
		if len(points) < maxKeyPoints {
			points = append(points, p)
		}
	}

	if info.Sender != "" {
		add(fmt.Sprintf("This %s is from %s.", docType.HumanLabel(), info.Sender))
	} else {
		add(fmt.Sprintf("This is a %s.", docType.HumanLabel()))
	}
	if info.Amounts.TotalDue != nil {
		add(fmt.Sprintf("The amount due is %s.", formatAmount(*info.Amounts.TotalDue, info.Amounts.Currency)))
	}
	if info.Dates.Due != nil {
		add(fmt.Sprintf("The deadline is %s (%s).", info.Dates.Due.Format("January 2, 2006"), deadlinePhrase(*info.Dates.Due, now)))
	}
	if info.Dates.Appointment != nil {
		add(fmt.Sprintf("You have an appointment on %s (%s).", info.Dates.Appointment.Format("January 2, 2006"), deadlinePhrase(*info.Dates.Appointment, now)))
	}
	if id, label := primaryIdentifier(info); id != "" {
		add(fmt.Sprintf("Your %s is %s. Keep it safe.", label, id))
	}
	if info.Amounts.Balance != nil && info.Amounts.TotalDue == nil {
		add(fmt.Sprintf("The balance shown is %s.", formatAmount(*info.Amounts.Balance, info.Amounts.Currency)))
	}
	for _, instr := range info.RequiredActions {
		add(fmt.Sprintf("The letter says: %q", instr))
	}
	return points
}

func (s *Summarizer) actionItems(docType constants.DocumentType, info extract.ExtractedInfo, urgency constants.Urgency, now time.Time) []ActionItem {
	var items []ActionItem
	add := func(it ActionItem) {
		if len(items) < maxActionItems {
			items = append(items, it)
		}
	}
	prio := priorityFor(urgency)

	if info.Dates.Appointment != nil {
		add(ActionItem{
			Type:        constants.ActionScheduleAppointment,
			Label:       "Attend your appointment",
			Description: fmt.Sprintf("Go to your appointment on %s. Bring this letter and a photo ID.", info.Dates.Appointment.Format("January 2, 2006")),
			DueDate:     info.Dates.Appointment,
			Priority:    prio,
		})
	}

	switch docType {
	case constants.USCISNotice:
		if info.Identifiers.ReceiptNumber != "" {
			add(ActionItem{
				Type:        constants.ActionLinkCase,
				Label:       "Save your receipt number",
				Description: fmt.Sprintf("Use receipt number %s to track your case status online.", info.Identifiers.ReceiptNumber),
				Priority:    constants.PriorityMedium,
			})
		}
		add(ActionItem{
			Type:        constants.ActionUploadDocument,
			Label:       "Keep this notice",
			Description: "Keep the original letter with your immigration papers.",
			Priority:    constants.PriorityLow,
		})
	case constants.IRSNotice, constants.CollectionNotice, constants.UtilityBill, constants.MedicalBill:
		if info.Amounts.TotalDue != nil {
			due := ""
			if info.Dates.Due != nil {
				due = " by " + info.Dates.Due.Format("January 2, 2006")
			}
			add(ActionItem{
				Type:        constants.ActionPayBill,
				Label:       "Pay the amount due",
				Description: fmt.Sprintf("Pay %s%s.", formatAmount(*info.Amounts.TotalDue, info.Amounts.Currency), due),
				DueDate:     info.Dates.Due,
				Priority:    prio,
			})
			if *info.Amounts.TotalDue > highAmountFloor {
				add(ActionItem{
					Type:        constants.ActionReviewAmount,
					Label:       "Check the amount",
					Description: "This is a large amount. Check it against your own records before paying.",
					Priority:    constants.PriorityMedium,
				})
			}
		}
	case constants.CourtNotice:
		add(ActionItem{
			Type:        constants.ActionRespondByDeadline,
			Label:       "Respond to the court",
			Description: "Court notices have strict deadlines. Respond or appear as the letter says.",
			DueDate:     info.Dates.Due,
			Priority:    constants.PriorityUrgent,
		})
	case constants.BankStatement:
		add(ActionItem{
			Type:        constants.ActionReviewAmount,
			Label:       "Review your statement",
			Description: "Look over the charges and report anything you do not recognize.",
			Priority:    constants.PriorityLow,
		})
	case constants.InsuranceLetter:
		add(ActionItem{
			Type:        constants.ActionReviewAmount,
			Label:       "Review your coverage",
			Description: "Check what the letter says you owe versus what insurance paid.",
			Priority:    constants.PriorityMedium,
		})
	}

	if info.Dates.Due != nil && !hasAction(items, constants.ActionPayBill) && !hasAction(items, constants.ActionRespondByDeadline) {
		add(ActionItem{
			Type:        constants.ActionRespondByDeadline,
			Label:       "Respond before the deadline",
			Description: fmt.Sprintf("Do what the letter asks before %s.", info.Dates.Due.Format("January 2, 2006")),
			DueDate:     info.Dates.Due,
			Priority:    prio,
		})
	}
	if mentionsCall(info) && !hasAction(items, constants.ActionCallService) {
		add(ActionItem{
			Type:        constants.ActionCallService,
			Label:       "Call the number in the letter",
			Description: "The letter asks you to call. Use only the phone number printed on it.",
			Priority:    constants.PriorityMedium,
		})
	}
	return items
}

func (s *Summarizer) paragraph(docType constants.DocumentType, info extract.ExtractedInfo, actions []ActionItem, now time.Time) string {
	var b strings.Builder
	b.WriteString(openingSentence(docType, info.Sender))

	if info.Amounts.TotalDue != nil {
		fmt.Fprintf(&b, " It says you owe %s.", formatAmount(*info.Amounts.TotalDue, info.Amounts.Currency))
	}
	if info.Dates.Appointment != nil {
		fmt.Fprintf(&b, " You have an appointment %s.", deadlinePhrase(*info.Dates.Appointment, now))
	} else if info.Dates.Due != nil {
		fmt.Fprintf(&b, " The deadline is %s.", deadlinePhrase(*info.Dates.Due, now))
	}
	if len(actions) > 0 {
		fmt.Fprintf(&b, " The most important thing to do: %s.", strings.ToLower(actions[0].Label[:1])+actions[0].Label[1:])
	}
	b.WriteString(" Keep this letter in a safe place.")
	return b.String()
}

func openingSentence(docType constants.DocumentType, sender string) string {
	switch docType {
	case constants.USCISNotice:
		return "This letter is from U.S. Citizenship and Immigration Services about your immigration case."
	case constants.IRSNotice:
		return "This letter is from the IRS about your taxes."
	case constants.CourtNotice:
		return "This letter is from a court."
	case constants.CollectionNotice:
		return "This letter is from a debt collector."
	case constants.BankStatement:
		return "This is a statement from your bank."
	case constants.UtilityBill:
		return "This is a utility bill."
	case constants.MedicalBill:
		return "This is a medical bill."
	case constants.InsuranceLetter:
		return "This letter is from an insurance company."
	}
	if sender != "" {
		return fmt.Sprintf("This %s is from %s.", docType.HumanLabel(), sender)
	}
	return fmt.Sprintf("This is a %s.", docType.HumanLabel())
}

func priorityFor(u constants.Urgency) constants.ActionPriority {
	switch u {
	case constants.UrgencyCritical:
		return constants.PriorityUrgent
	case constants.UrgencyHigh:
		return constants.PriorityHigh
	case constants.UrgencyMedium:
		return constants.PriorityMedium
	}
	return constants.PriorityLow
}

func primaryIdentifier(info extract.ExtractedInfo) (value, label string) {
	switch {
	case info.Identifiers.ReceiptNumber != "":
		return info.Identifiers.ReceiptNumber, "receipt number"
	case info.Identifiers.CaseNumber != "":
		return info.Identifiers.CaseNumber, "case number"
	case info.Identifiers.AccountNumber != "":
		return info.Identifiers.AccountNumber, "account number"
	case info.Identifiers.ClaimNumber != "":
		return info.Identifiers.ClaimNumber, "claim number"
	case info.Identifiers.PolicyNumber != "":
		return info.Identifiers.PolicyNumber, "policy number"
	}
	return "", ""
}

func hasAction(items []ActionItem, t constants.ActionType) bool {
	for _, it := range items {
		if it.Type == t {
			return true
		}
	}
	return false
}

func mentionsCall(info extract.ExtractedInfo) bool {
	for _, instr := range append(append([]string{}, info.Instructions...), info.RequiredActions...) {
		if strings.Contains(strings.ToLower(instr), "call") {
			return true
		}
	}
	return false
}

func formatAmount(v float64, currency string) string {
	if currency == "" || currency == "USD" {
		return fmt.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

// deadlinePhrase renders a date relative to now ("due today", "in 3 days",
// "2 days overdue").
func deadlinePhrase(t, now time.Time) string {
	d := daysUntil(t, now)
	switch {
	case d < -1:
		return fmt.Sprintf("%d days overdue", -d)
	case d == -1:
		return "1 day overdue"
	case d == 0:
		return "today"
	case d == 1:
		return "tomorrow"
	}
	return fmt.Sprintf("in %d days", d)
}
