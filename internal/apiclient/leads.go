package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	"gitlab.com/timkado/api/lead-console/internal/model"
	validation "gitlab.com/timkado/api/lead-console/internal/validator"
)

const leadsPath = "/api/leads"

// ListLeads returns leads matching filter. Only set filter fields are sent.
func (c *Client) ListLeads(ctx context.Context, filter model.LeadFilter) ([]model.Lead, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	r, _ := jsonRequest("list_leads", http.MethodGet, leadsPath, nil)
	r.query = filter.Query()

	var leads []model.Lead
	if err := c.do(ctx, r, &leads); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

// GetLead fetches one lead by its opaque id.
func (c *Client) GetLead(ctx context.Context, leadID string) (*model.Lead, error) {
	if err := requireID("lead id", leadID); err != nil {
		return nil, err
	}
	r, _ := jsonRequest("get_lead", http.MethodGet, escapedPath(leadsPath, leadID), nil)

	var lead model.Lead
	if err := c.do(ctx, r, &lead); err != nil {
		return nil, fmt.Errorf("get lead %s: %w", leadID, err)
	}
	return &lead, nil
}

// CreateLead validates and submits a manually entered lead.
func (c *Client) CreateLead(ctx context.Context, payload model.LeadCreate) (*model.Lead, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	r, err := jsonRequest("create_lead", http.MethodPost, leadsPath, payload)
	if err != nil {
		return nil, err
	}

	var lead model.Lead
	if err := c.do(ctx, r, &lead); err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	return &lead, nil
}

// UpdateLeadStatus moves a lead to status. The status travels as the
// status_update query parameter.
func (c *Client) UpdateLeadStatus(ctx context.Context, leadID string, status model.LeadStatus) (*model.Lead, error) {
	if err := requireID("lead id", leadID); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperrors.NewValidation(fmt.Errorf("unknown lead status %q", status))
	}
	r, _ := jsonRequest("update_lead_status", http.MethodPut, escapedPath(leadsPath, leadID)+"/status", nil)
	r.query = url.Values{"status_update": []string{string(status)}}

	var lead model.Lead
	if err := c.do(ctx, r, &lead); err != nil {
		return nil, fmt.Errorf("update status of lead %s: %w", leadID, err)
	}
	return &lead, nil
}

// ListCommunications returns the lead's messages in backend order.
func (c *Client) ListCommunications(ctx context.Context, leadID string) ([]model.Communication, error) {
	if err := requireID("lead id", leadID); err != nil {
		return nil, err
	}
	r, _ := jsonRequest("list_communications", http.MethodGet, escapedPath(leadsPath, leadID)+"/communications", nil)

	var comms []model.Communication
	if err := c.do(ctx, r, &comms); err != nil {
		return nil, fmt.Errorf("list communications of lead %s: %w", leadID, err)
	}
	return comms, nil
}

// SendReply posts a manual reply for the lead. The returned communication
// is nil when the backend accepts the reply without a body.
func (c *Client) SendReply(ctx context.Context, leadID string, payload model.ReplyRequest) (*model.Communication, error) {
	if err := requireID("lead id", leadID); err != nil {
		return nil, err
	}
	if err := validation.Validate(payload); err != nil {
		return nil, err
	}
	r, err := jsonRequest("send_reply", http.MethodPost, escapedPath(leadsPath, leadID)+"/reply", payload)
	if err != nil {
		return nil, err
	}

	r.emptyOK = true

	var comm *model.Communication
	if err := c.do(ctx, r, &comm); err != nil {
		return nil, fmt.Errorf("send reply to lead %s: %w", leadID, err)
	}
	return comm, nil
}

// UploadLeadsCSV streams a CSV file to the backend's bulk import.
func (c *Client) UploadLeadsCSV(ctx context.Context, filename string, content io.Reader) ([]model.Lead, error) {
	if err := requireID("filename", filename); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, apperrors.NewValidation(fmt.Errorf("file content is required"))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read upload %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	r := request{
		op:          "upload_leads_csv",
		method:      http.MethodPost,
		path:        leadsPath + "/upload",
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}

	var leads []model.Lead
	if err := c.do(ctx, r, &leads); err != nil {
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	return leads, nil
}

// TriggerTestAICall asks the backend to place a test voice call to the lead.
func (c *Client) TriggerTestAICall(ctx context.Context, leadID string) (model.TestCallResult, error) {
	if err := requireID("lead id", leadID); err != nil {
		return nil, err
	}
	r, _ := jsonRequest("trigger_test_ai_call", http.MethodPost, escapedPath(leadsPath, leadID)+"/test-ai-call", nil)

	var result model.TestCallResult
	if err := c.do(ctx, r, &result); err != nil {
		return nil, fmt.Errorf("trigger test call for lead %s: %w", leadID, err)
	}
	return result, nil
}
