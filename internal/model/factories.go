package model

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"gitlab.com/timkado/api/lead-console/pkg/utils"
)

// init ensures gofakeit is seeded.
func init() {
	gofakeit.Seed(time.Now().UnixNano())
}

// NewLead creates a new Lead instance with default fake data.
func NewLead(overrideDefaults ...*Lead) *Lead {
	created := utils.Now().Add(-time.Duration(gofakeit.Number(2, 100)) * time.Hour)
	base := &Lead{
		ID:              gofakeit.UUID(),
		LeadID:          FormatLeadCode(gofakeit.Number(1, 9999)),
		FirstName:       gofakeit.FirstName(),
		LastName:        gofakeit.LastName(),
		Email:           gofakeit.Email(),
		PhoneNumber:     gofakeit.Phone(),
		InquiryNotes:    gofakeit.Sentence(12),
		InquiryDate:     created,
		Status:          LeadStatusNew,
		NurtureAttempts: gofakeit.Number(0, 5),
		CreatedAt:       created,
		UpdatedAt:       created.Add(time.Hour),
	}

	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		// Allow overriding with empty string by direct assignment
		base.FirstName = ovr.FirstName
		base.LastName = ovr.LastName
		base.PhoneNumber = ovr.PhoneNumber
		base.InquiryNotes = ovr.InquiryNotes
		base.AISummary = ovr.AISummary
		base.AIDraftedReply = ovr.AIDraftedReply
		base.NurtureAttempts = ovr.NurtureAttempts

		if ovr.ID != "" {
			base.ID = ovr.ID
		}
		if ovr.LeadID != "" {
			base.LeadID = ovr.LeadID
		}
		if ovr.Email != "" {
			base.Email = ovr.Email
		}
		if ovr.Status != "" {
			base.Status = ovr.Status
		}
		if !ovr.InquiryDate.IsZero() {
			base.InquiryDate = ovr.InquiryDate
		}
		if !ovr.CreatedAt.IsZero() {
			base.CreatedAt = ovr.CreatedAt
		}
		if !ovr.UpdatedAt.IsZero() {
			base.UpdatedAt = ovr.UpdatedAt
		}
	}
	return base
}

// NewCommunication creates a new Communication instance with default fake data.
func NewCommunication(overrideDefaults ...*Communication) *Communication {
	base := &Communication{
		ID:        gofakeit.UUID(),
		LeadID:    gofakeit.UUID(),
		Type:      CommunicationType(gofakeit.RandomString([]string{"email", "sms", "note", "phone_call"})),
		Direction: Direction(gofakeit.RandomString([]string{"outgoing_auto", "outgoing_manual", "incoming"})),
		Content:   gofakeit.Paragraph(1, 2, 10, " "),
		SentAt:    utils.Now().Add(-time.Duration(gofakeit.Number(1, 600)) * time.Minute),
	}

	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		base.Content = ovr.Content
		base.Pending = ovr.Pending

		if ovr.ID != "" {
			base.ID = ovr.ID
		}
		if ovr.LeadID != "" {
			base.LeadID = ovr.LeadID
		}
		if ovr.Type != "" {
			base.Type = ovr.Type
		}
		if ovr.Direction != "" {
			base.Direction = ovr.Direction
		}
		if !ovr.SentAt.IsZero() {
			base.SentAt = ovr.SentAt
		}
	}
	return base
}

// NewAppointmentSlot creates an available slot starting within the next week.
func NewAppointmentSlot(overrideDefaults ...*AppointmentSlot) *AppointmentSlot {
	start := utils.Now().Truncate(time.Hour).Add(time.Duration(gofakeit.Number(1, 168)) * time.Hour)
	base := &AppointmentSlot{
		ID:        gofakeit.UUID(),
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    SlotAvailable,
		CreatedAt: utils.Now(),
		UpdatedAt: utils.Now(),
	}

	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		base.LeadID = ovr.LeadID
		base.ReasonForVisit = ovr.ReasonForVisit
		base.BookedByMethod = ovr.BookedByMethod

		if ovr.ID != "" {
			base.ID = ovr.ID
		}
		if ovr.Status != "" {
			base.Status = ovr.Status
		}
		if !ovr.StartTime.IsZero() {
			base.StartTime = ovr.StartTime
		}
		if !ovr.EndTime.IsZero() {
			base.EndTime = ovr.EndTime
		}
	}
	return base
}

// NewKnowledgeBaseEntry creates an entry with a few ordered chunks.
func NewKnowledgeBaseEntry(overrideDefaults ...*KnowledgeBaseEntry) *KnowledgeBaseEntry {
	title := gofakeit.BuzzWord() + " " + gofakeit.Noun()
	base := &KnowledgeBaseEntry{
		Title:     title,
		CreatedAt: utils.Now().Add(-24 * time.Hour),
		UpdatedAt: utils.Now(),
	}
	for i := 0; i < gofakeit.Number(1, 4); i++ {
		base.Chunks = append(base.Chunks, KnowledgeBaseChunk{
			ID:         gofakeit.UUID(),
			Content:    gofakeit.Sentence(20),
			ChunkID:    gofakeit.UUID(),
			ChunkIndex: i,
			CreatedAt:  base.CreatedAt,
			UpdatedAt:  base.UpdatedAt,
		})
	}

	if len(overrideDefaults) > 0 && overrideDefaults[0] != nil {
		ovr := overrideDefaults[0]
		if ovr.Title != "" {
			base.Title = ovr.Title
		}
		if ovr.Chunks != nil {
			base.Chunks = ovr.Chunks
		}
	}
	return base
}
