package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
)

// ParseEventStatus returns the EventStatus for s, or false for unknown values.
func ParseEventStatus(s string) (EventStatus, bool) {
	switch EventStatus(s) {
	case EventDraft, EventPublished, EventCancelled:
		return EventStatus(s), true
	}
	return "", false
}

// Event represents a discoverable event with registration and ticketing.
// Events are never hard-deleted: DeletedAt is set instead, and the worker
// notifies registrants once the grace period after deletion has passed.
type Event struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	Slug               string          `json:"slug"`
	Description        string          `json:"description,omitempty"`
	Date               time.Time       `json:"date"`
	Venue              string          `json:"venue"`
	PriceCents         int             `json:"price_cents"`
	Category           string          `json:"category,omitempty"`
	Status             EventStatus     `json:"status"`
	FormSchema         json.RawMessage `json:"form_schema,omitempty"`
	ImageURL           string          `json:"image_url,omitempty"`
	CreatedBy          uuid.UUID       `json:"created_by"`
	DeletedAt          *time.Time      `json:"deleted_at,omitempty"`
	DeletionNotifiedAt *time.Time      `json:"-"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Deleted reports whether the event is soft-deleted.
func (e *Event) Deleted() bool {
	return e.DeletedAt != nil
}

// EventTicketeer grants an identity scanning/check-in rights for one event.
type EventTicketeer struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email,omitempty"` // joined from users for display
	CreatedAt time.Time `json:"created_at"`
}
