package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification channels.
const (
	ChannelEmail    = "email"
	ChannelWhatsApp = "whatsapp"
)

// Notification kinds.
const (
	NotificationTicketConfirmation = "ticket_confirmation"
	NotificationEventDeleted       = "event_deleted"
)

// Notification delivery status.
const (
	NotificationStatusPending = "pending"
	NotificationStatusSent    = "sent"
	NotificationStatusFailed  = "failed"
)

// NotificationLog records one dispatch attempt on one channel. Dispatch is
// best-effort: failures are recorded here and logged, never surfaced to the
// registrant.
type NotificationLog struct {
	ID             uuid.UUID  `json:"id"`
	EventID        *uuid.UUID `json:"event_id,omitempty"`
	RegistrationID *uuid.UUID `json:"registration_id,omitempty"`
	Channel        string     `json:"channel"`
	Kind           string     `json:"kind"`
	Recipient      string     `json:"recipient"`
	Status         string     `json:"status"`
	ErrorMessage   string     `json:"error_message,omitempty"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
