package leadinfo

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"gitlab.com/timkado/api/lead-console/internal/model"
)

// LeadSummary bundles a lead with everything derived from it.
type LeadSummary struct {
	Lead         model.Lead `json:"lead"`
	DisplayName  string     `json:"display_name"`
	Company      string     `json:"company"`
	UrgencyScore int        `json:"urgency_score"`
	Status       StatusInfo `json:"status_info"`
	TimeAgo      string     `json:"time_ago"`
	WaitingTime  string     `json:"waiting_time"`
}

// Summarize derives the display fields for one lead.
func Summarize(lead model.Lead, now time.Time) LeadSummary {
	return LeadSummary{
		Lead:         lead,
		DisplayName:  FormatLeadName(lead),
		Company:      FormatCompanyName(lead),
		UrgencyScore: CalculateUrgencyScore(lead),
		Status:       StatusDisplayInfo(lead.Status),
		TimeAgo:      FormatTimeAgo(lead.CreatedAt, now),
		WaitingTime:  FormatWaitingTime(lead, now),
	}
}

// RankByUrgency summarizes leads and orders them by descending score. Ties
// go to the lead that has waited longest, then to the lower lead code.
func RankByUrgency(leads []model.Lead, now time.Time) []LeadSummary {
	out := make([]LeadSummary, 0, len(leads))
	for _, l := range leads {
		out = append(out, Summarize(l, now))
	}
	slices.SortStableFunc(out, func(a, b LeadSummary) int {
		if a.UrgencyScore != b.UrgencyScore {
			return b.UrgencyScore - a.UrgencyScore
		}
		if c := a.Lead.UpdatedAt.Compare(b.Lead.UpdatedAt); c != 0 {
			return c
		}
		return compareLeadCodes(a.Lead.LeadID, b.Lead.LeadID)
	})
	return out
}

// compareLeadCodes orders BS-LID codes by sequence number so BS-LID-9999
// sorts before BS-LID-10000. Other codes compare as strings.
func compareLeadCodes(a, b string) int {
	na, errA := model.ParseLeadCode(a)
	nb, errB := model.ParseLeadCode(b)
	if errA == nil && errB == nil {
		return cmp.Compare(na, nb)
	}
	return strings.Compare(a, b)
}
