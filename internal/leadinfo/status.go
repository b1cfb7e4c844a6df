package leadinfo

import (
	"strings"

	"gitlab.com/timkado/api/lead-console/internal/model"
)

// Priority is the attention tier shown next to a status.
type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

// StatusInfo is the display metadata for a lead status.
type StatusInfo struct {
	Status   model.LeadStatus `json:"status"`
	Label    string           `json:"label"`
	ColorTag string           `json:"color_tag"`
	Priority Priority         `json:"priority"`
}

// StatusDisplayInfo returns the label, color tag and priority for status.
// Values outside the known set get a title-cased label and Medium priority.
func StatusDisplayInfo(status model.LeadStatus) StatusInfo {
	info := StatusInfo{Status: status}
	switch status {
	case model.LeadStatusNew:
		info.Label, info.ColorTag, info.Priority = "New", "blue", PriorityHigh
	case model.LeadStatusNeedsImmediateAttention:
		info.Label, info.ColorTag, info.Priority = "Needs Attention", "red", PriorityCritical
	case model.LeadStatusNurturing:
		info.Label, info.ColorTag, info.Priority = "Nurturing", "yellow", PriorityMedium
	case model.LeadStatusResponded:
		info.Label, info.ColorTag, info.Priority = "Responded", "green", PriorityHigh
	case model.LeadStatusConverted:
		info.Label, info.ColorTag, info.Priority = "Converted", "emerald", PriorityLow
	case model.LeadStatusArchivedNoResponse:
		info.Label, info.ColorTag, info.Priority = "No Response", "gray", PriorityLow
	case model.LeadStatusArchivedNotInterested:
		info.Label, info.ColorTag, info.Priority = "Not Interested", "gray", PriorityLow
	default:
		info.Label, info.ColorTag, info.Priority = titleCase(string(status)), "gray", PriorityMedium
	}
	return info
}

// StatusTable lists display info for every known status in order.
func StatusTable() []StatusInfo {
	statuses := model.AllLeadStatuses()
	out := make([]StatusInfo, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, StatusDisplayInfo(s))
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
