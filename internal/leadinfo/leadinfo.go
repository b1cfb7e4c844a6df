// Package leadinfo derives display data from lead records: names, company
// guesses, urgency scores, status labels and elapsed-time strings. Every
// function is pure; callers pass the reference time explicitly.
package leadinfo

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// MaxUrgencyScore caps CalculateUrgencyScore.
const MaxUrgencyScore = 100

// calendarDateLayout is used by FormatTimeAgo from seven days on.
const calendarDateLayout = "Jan 2, 2006"

var companyPattern = regexp.MustCompile(`(?i)company[:\s]+([^,\n]+)`)

// FormatLeadName returns "first last", whichever name part is set, or the
// local part of the email.
func FormatLeadName(lead model.Lead) string {
	switch {
	case lead.FirstName != "" && lead.LastName != "":
		return lead.FirstName + " " + lead.LastName
	case lead.FirstName != "":
		return lead.FirstName
	case lead.LastName != "":
		return lead.LastName
	}
	local, _, _ := strings.Cut(lead.Email, "@")
	return local
}

// FormatCompanyName guesses a company from "company: X" in the notes, then
// from the email domain. The result is a display hint only; notes that use
// the word "company" in passing will produce odd guesses.
func FormatCompanyName(lead model.Lead) string {
	if m := companyPattern.FindStringSubmatch(lead.InquiryNotes); m != nil {
		return strings.TrimSpace(m[1])
	}
	if _, domain, ok := strings.Cut(lead.Email, "@"); ok && domain != "" {
		label, _, _ := strings.Cut(domain, ".")
		return capitalize(label) + " Solutions"
	}
	return "Unknown Company"
}

// CalculateUrgencyScore scores a lead from 0 to 100 by status, nurture
// attempts and note length (in characters).
func CalculateUrgencyScore(lead model.Lead) int {
	score := baseUrgency(lead.Status)

	switch {
	case lead.NurtureAttempts > 3:
		score += 25
	case lead.NurtureAttempts > 1:
		score += 15
	}

	switch n := utf8.RuneCountInString(lead.InquiryNotes); {
	case n > 100:
		score += 20
	case n > 50:
		score += 10
	}

	if score > MaxUrgencyScore {
		score = MaxUrgencyScore
	}
	return score
}

func baseUrgency(status model.LeadStatus) int {
	switch status {
	case model.LeadStatusNeedsImmediateAttention:
		return 40
	case model.LeadStatusNew:
		return 30
	case model.LeadStatusNurturing:
		return 20
	case model.LeadStatusResponded:
		return 10
	default:
		return 5
	}
}

// FormatTimeAgo renders the time elapsed since ts: "Just now", "5m ago",
// "3h ago", "2d ago", or a calendar date from seven days on. Future
// timestamps render as "Just now".
func FormatTimeAgo(ts, now time.Time) string {
	e := utils.ElapsedBetween(ts, now)
	switch {
	case e.Minutes < 1:
		return "Just now"
	case e.Minutes < 60:
		return fmt.Sprintf("%dm ago", e.Minutes)
	case e.Hours < 24:
		return fmt.Sprintf("%dh ago", e.Hours)
	case e.Days < 7:
		return fmt.Sprintf("%dd ago", e.Days)
	default:
		return ts.Format(calendarDateLayout)
	}
}

// FormatWaitingTime renders how long a lead has waited since its last
// update, as "0m", "45m", "3h" or "12d". Days are unbounded.
func FormatWaitingTime(lead model.Lead, now time.Time) string {
	e := utils.ElapsedBetween(lead.UpdatedAt, now)
	switch {
	case e.Minutes < 60:
		return fmt.Sprintf("%dm", e.Minutes)
	case e.Hours < 24:
		return fmt.Sprintf("%dh", e.Hours)
	default:
		return fmt.Sprintf("%dd", e.Days)
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
