package models

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus is the entry state of a registration. The only
// transition is registered -> entered; there is no un-check-in.
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "registered"
	RegistrationEntered    RegistrationStatus = "entered"
)

// Registration is an attendee registration for an event. TicketID is the
// opaque token encoded into the QR code; UserID is nil for anonymous
// registrations.
type Registration struct {
	ID        uuid.UUID          `json:"id"`
	EventID   uuid.UUID          `json:"event_id"`
	UserID    *uuid.UUID         `json:"user_id,omitempty"`
	Name      string             `json:"name"`
	Email     string             `json:"email"`
	Phone     string             `json:"phone"`
	FormData  map[string]string  `json:"form_data"`
	TicketID  string             `json:"ticket_id"`
	Status    RegistrationStatus `json:"status"`
	EnteredAt *time.Time         `json:"entered_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}
