package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"gitlab.com/timkado/api/lead-console/internal/model"
)

// GetDashboardMetrics returns the headline counters.
func (c *Client) GetDashboardMetrics(ctx context.Context) (*model.DashboardMetrics, error) {
	r, _ := jsonRequest("get_dashboard_metrics", http.MethodGet, "/api/dashboard/metrics", nil)

	var metrics model.DashboardMetrics
	if err := c.do(ctx, r, &metrics); err != nil {
		return nil, fmt.Errorf("get dashboard metrics: %w", err)
	}
	return &metrics, nil
}

// GetAdvancedMetrics returns the backend's analytics object unchanged.
func (c *Client) GetAdvancedMetrics(ctx context.Context) (model.AdvancedMetrics, error) {
	r, _ := jsonRequest("get_advanced_metrics", http.MethodGet, "/api/dashboard/advanced-metrics", nil)

	var metrics model.AdvancedMetrics
	if err := c.do(ctx, r, &metrics); err != nil {
		return nil, fmt.Errorf("get advanced metrics: %w", err)
	}
	return metrics, nil
}
