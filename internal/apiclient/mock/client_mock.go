package mock

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"gitlab.com/timkado/api/lead-console/internal/apiclient"
	"gitlab.com/timkado/api/lead-console/internal/model"
)

// ClientMock is a mock implementation of apiclient.ClientInterface
type ClientMock struct {
	mock.Mock
}

// Ensure ClientMock implements ClientInterface
var _ apiclient.ClientInterface = (*ClientMock)(nil)

// NewClientMock creates a new mock client
func NewClientMock() *ClientMock {
	return &ClientMock{}
}

// ListLeads mocks the ListLeads method
func (m *ClientMock) ListLeads(ctx context.Context, filter model.LeadFilter) ([]model.Lead, error) {
	args := m.Called(ctx, filter)
	leads, _ := args.Get(0).([]model.Lead)
	return leads, args.Error(1)
}

// GetLead mocks the GetLead method
func (m *ClientMock) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	args := m.Called(ctx, leadID)
	lead, _ := args.Get(0).(*model.Lead)
	return lead, args.Error(1)
}

// CreateLead mocks the CreateLead method
func (m *ClientMock) CreateLead(ctx context.Context, payload model.LeadCreate) (*model.Lead, error) {
	args := m.Called(ctx, payload)
	lead, _ := args.Get(0).(*model.Lead)
	return lead, args.Error(1)
}

// UpdateLeadStatus mocks the UpdateLeadStatus method
func (m *ClientMock) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) (*model.Lead, error) {
	args := m.Called(ctx, leadID, status)
	lead, _ := args.Get(0).(*model.Lead)
	return lead, args.Error(1)
}

// ListCommunications mocks the ListCommunications method
func (m *ClientMock) ListCommunications(ctx context.Context, leadID string) ([]model.Communication, error) {
	args := m.Called(ctx, leadID)
	comms, _ := args.Get(0).([]model.Communication)
	return comms, args.Error(1)
}

// SendReply mocks the SendReply method
func (m *ClientMock) SendReply(ctx context.Context, leadID string, payload model.ReplyRequest) (*model.Communication, error) {
	args := m.Called(ctx, leadID, payload)
	comm, _ := args.Get(0).(*model.Communication)
	return comm, args.Error(1)
}

// UploadLeadsCSV mocks the UploadLeadsCSV method
func (m *ClientMock) UploadLeadsCSV(ctx context.Context, filename string, content io.Reader) ([]model.Lead, error) {
	args := m.Called(ctx, filename, content)
	leads, _ := args.Get(0).([]model.Lead)
	return leads, args.Error(1)
}

// TriggerTestAICall mocks the TriggerTestAICall method
func (m *ClientMock) TriggerTestAICall(ctx context.Context, leadID string) (model.TestCallResult, error) {
	args := m.Called(ctx, leadID)
	result, _ := args.Get(0).(model.TestCallResult)
	return result, args.Error(1)
}

// GetDashboardMetrics mocks the GetDashboardMetrics method
func (m *ClientMock) GetDashboardMetrics(ctx context.Context) (*model.DashboardMetrics, error) {
	args := m.Called(ctx)
	metrics, _ := args.Get(0).(*model.DashboardMetrics)
	return metrics, args.Error(1)
}

// GetAdvancedMetrics mocks the GetAdvancedMetrics method
func (m *ClientMock) GetAdvancedMetrics(ctx context.Context) (model.AdvancedMetrics, error) {
	args := m.Called(ctx)
	metrics, _ := args.Get(0).(model.AdvancedMetrics)
	return metrics, args.Error(1)
}

// ListAppointmentSlots mocks the ListAppointmentSlots method
func (m *ClientMock) ListAppointmentSlots(ctx context.Context, window model.SlotRange) ([]model.AppointmentSlot, error) {
	args := m.Called(ctx, window)
	slots, _ := args.Get(0).([]model.AppointmentSlot)
	return slots, args.Error(1)
}

// CreateBulkSlots mocks the CreateBulkSlots method
func (m *ClientMock) CreateBulkSlots(ctx context.Context, payload model.CreateBulkSlotsRequest) (*model.BulkSlotsResult, error) {
	args := m.Called(ctx, payload)
	result, _ := args.Get(0).(*model.BulkSlotsResult)
	return result, args.Error(1)
}

// BookSlot mocks the BookSlot method
func (m *ClientMock) BookSlot(ctx context.Context, slotID string, payload model.BookSlotRequest) (*model.AppointmentSlot, error) {
	args := m.Called(ctx, slotID, payload)
	slot, _ := args.Get(0).(*model.AppointmentSlot)
	return slot, args.Error(1)
}

// ListKnowledgeBase mocks the ListKnowledgeBase method
func (m *ClientMock) ListKnowledgeBase(ctx context.Context) ([]model.KnowledgeBaseEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]model.KnowledgeBaseEntry)
	return entries, args.Error(1)
}

// UpsertKnowledgeBase mocks the UpsertKnowledgeBase method
func (m *ClientMock) UpsertKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseUpsert) (*model.KnowledgeBaseUpsertResult, error) {
	args := m.Called(ctx, payload)
	result, _ := args.Get(0).(*model.KnowledgeBaseUpsertResult)
	return result, args.Error(1)
}

// SearchKnowledgeBase mocks the SearchKnowledgeBase method
func (m *ClientMock) SearchKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseSearchRequest) (*model.KnowledgeBaseSearchResponse, error) {
	args := m.Called(ctx, payload)
	result, _ := args.Get(0).(*model.KnowledgeBaseSearchResponse)
	return result, args.Error(1)
}

// QuickSearchKnowledgeBase mocks the QuickSearchKnowledgeBase method
func (m *ClientMock) QuickSearchKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseSearchRequest) (*model.KnowledgeBaseSearchResponse, error) {
	args := m.Called(ctx, payload)
	result, _ := args.Get(0).(*model.KnowledgeBaseSearchResponse)
	return result, args.Error(1)
}

// DeleteKnowledgeBase mocks the DeleteKnowledgeBase method
func (m *ClientMock) DeleteKnowledgeBase(ctx context.Context, title string) (*model.MessageResult, error) {
	args := m.Called(ctx, title)
	result, _ := args.Get(0).(*model.MessageResult)
	return result, args.Error(1)
}
