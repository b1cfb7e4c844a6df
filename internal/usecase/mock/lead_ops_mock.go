package mock

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"gitlab.com/timkado/api/lead-console/internal/leadinfo"
	"gitlab.com/timkado/api/lead-console/internal/model"
	"gitlab.com/timkado/api/lead-console/internal/usecase"
)

// LeadOpsMock is a mock implementation of usecase.LeadOperations
type LeadOpsMock struct {
	mock.Mock
}

// Ensure LeadOpsMock implements LeadOperations
var _ usecase.LeadOperations = (*LeadOpsMock)(nil)

// Board mocks the Board method
func (m *LeadOpsMock) Board(ctx context.Context, filter model.LeadFilter, now time.Time) ([]leadinfo.LeadSummary, error) {
	args := m.Called(ctx, filter, now)
	summaries, _ := args.Get(0).([]leadinfo.LeadSummary)
	return summaries, args.Error(1)
}

// Handoff mocks the Handoff method
func (m *LeadOpsMock) Handoff(ctx context.Context, now time.Time) ([]leadinfo.LeadSummary, error) {
	args := m.Called(ctx, now)
	summaries, _ := args.Get(0).([]leadinfo.LeadSummary)
	return summaries, args.Error(1)
}

// ChangeStatus mocks the ChangeStatus method
func (m *LeadOpsMock) ChangeStatus(ctx context.Context, leadID string, status model.LeadStatus) (*model.Lead, error) {
	args := m.Called(ctx, leadID, status)
	lead, _ := args.Get(0).(*model.Lead)
	return lead, args.Error(1)
}

// BulkUpdateStatus mocks the BulkUpdateStatus method
func (m *LeadOpsMock) BulkUpdateStatus(ctx context.Context, leadIDs []string, status model.LeadStatus) ([]usecase.StatusChangeResult, error) {
	args := m.Called(ctx, leadIDs, status)
	results, _ := args.Get(0).([]usecase.StatusChangeResult)
	return results, args.Error(1)
}

// CreateLead mocks the CreateLead method
func (m *LeadOpsMock) CreateLead(ctx context.Context, payload model.LeadCreate) (*model.Lead, error) {
	args := m.Called(ctx, payload)
	lead, _ := args.Get(0).(*model.Lead)
	return lead, args.Error(1)
}

// ImportCSV mocks the ImportCSV method
func (m *LeadOpsMock) ImportCSV(ctx context.Context, filename string, content io.Reader) ([]model.Lead, error) {
	args := m.Called(ctx, filename, content)
	leads, _ := args.Get(0).([]model.Lead)
	return leads, args.Error(1)
}

// Stop mocks the Stop method
func (m *LeadOpsMock) Stop() {
	m.Called()
}
