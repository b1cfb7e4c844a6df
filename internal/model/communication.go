package model

import (
	"time"
)

// CommunicationType is the channel a message went over.
type CommunicationType string

const (
	CommunicationEmail     CommunicationType = "email"
	CommunicationSMS       CommunicationType = "sms"
	CommunicationNote      CommunicationType = "note"
	CommunicationPhoneCall CommunicationType = "phone_call"
)

// Direction tells who produced a message.
type Direction string

const (
	DirectionOutgoingAuto   Direction = "outgoing_auto"
	DirectionOutgoingManual Direction = "outgoing_manual"
	DirectionIncoming       Direction = "incoming"
)

// Communication is one message exchanged with a lead.
type Communication struct {
	ID        string            `json:"id"`
	LeadID    string            `json:"lead_id,omitempty"`
	Type      CommunicationType `json:"type"`
	Direction Direction         `json:"direction"`
	Content   string            `json:"content"`
	SentAt    time.Time         `json:"sent_at"`
	// Pending marks a locally appended entry the backend has not echoed yet.
	Pending bool `json:"pending,omitempty"`
}

// ReplyRequest is the body for sending a manual reply.
type ReplyRequest struct {
	Content string `json:"content" validate:"required,notblank"`
}
