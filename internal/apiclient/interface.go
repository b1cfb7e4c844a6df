package apiclient

import (
	"context"
	"io"

	"gitlab.com/timkado/api/lead-console/internal/model"
)

// ClientInterface is the lead backend's REST contract.
// This allows for easy mocking in tests
type ClientInterface interface {
	ListLeads(ctx context.Context, filter model.LeadFilter) ([]model.Lead, error)
	GetLead(ctx context.Context, leadID string) (*model.Lead, error)
	CreateLead(ctx context.Context, payload model.LeadCreate) (*model.Lead, error)
	UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) (*model.Lead, error)
	ListCommunications(ctx context.Context, leadID string) ([]model.Communication, error)
	SendReply(ctx context.Context, leadID string, payload model.ReplyRequest) (*model.Communication, error)
	// UploadLeadsCSV sends the file as multipart field "file" and returns the imported leads.
	UploadLeadsCSV(ctx context.Context, filename string, content io.Reader) ([]model.Lead, error)
	TriggerTestAICall(ctx context.Context, leadID string) (model.TestCallResult, error)

	GetDashboardMetrics(ctx context.Context) (*model.DashboardMetrics, error)
	GetAdvancedMetrics(ctx context.Context) (model.AdvancedMetrics, error)

	ListAppointmentSlots(ctx context.Context, window model.SlotRange) ([]model.AppointmentSlot, error)
	CreateBulkSlots(ctx context.Context, payload model.CreateBulkSlotsRequest) (*model.BulkSlotsResult, error)
	BookSlot(ctx context.Context, slotID string, payload model.BookSlotRequest) (*model.AppointmentSlot, error)

	ListKnowledgeBase(ctx context.Context) ([]model.KnowledgeBaseEntry, error)
	UpsertKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseUpsert) (*model.KnowledgeBaseUpsertResult, error)
	SearchKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseSearchRequest) (*model.KnowledgeBaseSearchResponse, error)
	QuickSearchKnowledgeBase(ctx context.Context, payload model.KnowledgeBaseSearchRequest) (*model.KnowledgeBaseSearchResponse, error)
	DeleteKnowledgeBase(ctx context.Context, title string) (*model.MessageResult, error)
}
