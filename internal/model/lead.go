package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"gitlab.com/timkado/api/lead-console/internal/apperrors"
	validation "gitlab.com/timkado/api/lead-console/internal/validator"
)

// LeadStatus is the lifecycle state of a lead. The set is closed.
type LeadStatus string

const (
	LeadStatusNew                     LeadStatus = "new"
	LeadStatusNeedsImmediateAttention LeadStatus = "needs_immediate_attention"
	LeadStatusNurturing               LeadStatus = "nurturing"
	LeadStatusResponded               LeadStatus = "responded"
	LeadStatusConverted               LeadStatus = "converted"
	LeadStatusArchivedNoResponse      LeadStatus = "archived_no_response"
	LeadStatusArchivedNotInterested   LeadStatus = "archived_not_interested"
)

var allLeadStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusNeedsImmediateAttention,
	LeadStatusNurturing,
	LeadStatusResponded,
	LeadStatusConverted,
	LeadStatusArchivedNoResponse,
	LeadStatusArchivedNotInterested,
}

func init() {
	validation.RegisterValidation("leadstatus", func(fl validator.FieldLevel) bool {
		return LeadStatus(fl.Field().String()).Valid()
	})
}

// AllLeadStatuses returns every status in display order.
func AllLeadStatuses() []LeadStatus {
	out := make([]LeadStatus, len(allLeadStatuses))
	copy(out, allLeadStatuses)
	return out
}

// Valid reports whether s is one of the known statuses.
func (s LeadStatus) Valid() bool {
	for _, known := range allLeadStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseLeadStatus converts a raw string into a LeadStatus.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	s := LeadStatus(strings.TrimSpace(raw))
	if !s.Valid() {
		return "", apperrors.NewValidation(fmt.Errorf("unknown lead status %q", raw))
	}
	return s, nil
}

// UnmarshalJSON rejects statuses outside the closed set.
func (s *LeadStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("lead status must be a string: %w", err)
	}
	parsed, err := ParseLeadStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Lead is a prospective client record as returned by the backend.
type Lead struct {
	ID              string     `json:"id" validate:"required"`
	LeadID          string     `json:"lead_id"`
	FirstName       string     `json:"first_name,omitempty"`
	LastName        string     `json:"last_name,omitempty"`
	Email           string     `json:"email" validate:"required"`
	PhoneNumber     string     `json:"phone_number,omitempty"`
	InquiryNotes    string     `json:"inquiry_notes,omitempty"`
	InquiryDate     time.Time  `json:"inquiry_date"`
	Status          LeadStatus `json:"status" validate:"leadstatus"`
	NurtureAttempts int        `json:"nurture_attempts" validate:"gte=0"`
	AISummary       string     `json:"ai_summary,omitempty"`
	AIDraftedReply  string     `json:"ai_drafted_reply,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Validate checks the record invariants.
func (l *Lead) Validate() error {
	if err := validation.Validate(l); err != nil {
		return err
	}
	if l.UpdatedAt.Before(l.CreatedAt) {
		return apperrors.NewValidation(fmt.Errorf("lead %s updated_at is before created_at", l.ID))
	}
	return nil
}

// LeadCreate is the payload for manually adding a lead.
type LeadCreate struct {
	FirstName    string    `json:"first_name,omitempty" validate:"required_without=LastName"`
	LastName     string    `json:"last_name,omitempty"`
	Email        string    `json:"email" validate:"required,email"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	InquiryNotes string    `json:"inquiry_notes,omitempty"`
	InquiryDate  time.Time `json:"inquiry_date" validate:"required"`
}

// Validate checks the payload before it is sent.
func (c *LeadCreate) Validate() error {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Email = strings.TrimSpace(c.Email)
	return validation.Validate(c)
}

// LeadFilter narrows a lead listing. Zero values are not sent.
type LeadFilter struct {
	Status LeadStatus
	Search string
	Page   int
	Limit  int
}

// Query encodes the set filter fields as URL query parameters.
func (f LeadFilter) Query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// Validate rejects unknown statuses and negative paging.
func (f LeadFilter) Validate() error {
	if f.Status != "" && !f.Status.Valid() {
		return apperrors.NewValidation(fmt.Errorf("unknown lead status %q", f.Status))
	}
	if validation.ValidateVar(f.Page, "gte=0") != nil {
		return apperrors.NewValidation(fmt.Errorf("page must not be negative"))
	}
	if validation.ValidateVar(f.Limit, "gte=0") != nil {
		return apperrors.NewValidation(fmt.Errorf("limit must not be negative"))
	}
	return nil
}

const leadCodePrefix = "BS-LID-"

// ParseLeadCode extracts the sequence number from a code like BS-LID-0001.
func ParseLeadCode(code string) (int, error) {
	digits, ok := strings.CutPrefix(code, leadCodePrefix)
	if !ok || digits == "" {
		return 0, apperrors.NewValidation(fmt.Errorf("lead code %q must start with %s", code, leadCodePrefix))
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return 0, apperrors.NewValidation(fmt.Errorf("lead code %q has a non-numeric suffix", code))
	}
	return n, nil
}

// FormatLeadCode renders a sequence number the way the backend issues codes.
func FormatLeadCode(n int) string {
	return fmt.Sprintf("%s%04d", leadCodePrefix, n)
}
