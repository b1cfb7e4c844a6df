package model

import "encoding/json"

// DashboardMetrics are the headline counters on the dashboard.
type DashboardMetrics struct {
	TotalActiveLeads      int     `json:"total_active_leads"`
	NeedsAttentionCount   int     `json:"needs_attention_count"`
	RespondedCount        int     `json:"responded_count"`
	NurturingCount        int     `json:"nurturing_count"`
	ConvertedThisMonth    int     `json:"converted_this_month"`
	ConversionRatePercent float64 `json:"conversion_rate_percent"`
}

// AdvancedMetrics is passed through as-is; the backend owns its keys.
type AdvancedMetrics map[string]json.RawMessage

// TestCallResult is the backend's answer to a test AI call.
type TestCallResult map[string]json.RawMessage

// MessageResult is a bare acknowledgement body.
type MessageResult struct {
	Message string `json:"message"`
}
