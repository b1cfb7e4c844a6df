package leadinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gitlab.com/timkado/api/lead-console/internal/model"
)

func TestStatusDisplayInfo(t *testing.T) {
	tests := []struct {
		status   model.LeadStatus
		label    string
		priority Priority
	}{
		{model.LeadStatusNew, "New", PriorityHigh},
		{model.LeadStatusNeedsImmediateAttention, "Needs Attention", PriorityCritical},
		{model.LeadStatusNurturing, "Nurturing", PriorityMedium},
		{model.LeadStatusResponded, "Responded", PriorityHigh},
		{model.LeadStatusConverted, "Converted", PriorityLow},
		{model.LeadStatusArchivedNoResponse, "No Response", PriorityLow},
		{model.LeadStatusArchivedNotInterested, "Not Interested", PriorityLow},
		{"waiting_on_legal", "Waiting On Legal", PriorityMedium},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			info := StatusDisplayInfo(tc.status)
			assert.Equal(t, tc.label, info.Label)
			assert.Equal(t, tc.priority, info.Priority)
			assert.NotEmpty(t, info.ColorTag)
		})
	}
}

func TestStatusTable_CoversEveryStatus(t *testing.T) {
	table := StatusTable()
	assert.Len(t, table, len(model.AllLeadStatuses()))

	seen := map[string]bool{}
	for _, info := range table {
		assert.NotEmpty(t, info.Label, "label for %s", info.Status)
		assert.False(t, seen[info.Label], "duplicate label %q", info.Label)
		seen[info.Label] = true
	}
}
