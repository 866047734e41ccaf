// Package registrations implements the registration workflow: duplicate
// prevention, form validation, ticket issuance, and notification dispatch.
package registrations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/events"
	"github.com/cosmic-sparc/backend/internal/formschema"
	"github.com/cosmic-sparc/backend/internal/models"
)

// ErrDuplicateRegistration is returned when the identity already holds a
// registration for the event.
var ErrDuplicateRegistration = errors.New("already registered for this event")

// ErrEventNotFound is returned when the target event does not exist or is
// soft-deleted at the start of the workflow.
var ErrEventNotFound = errors.New("event not found")

// StoreError marks a workflow step that failed in the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StoreError) Unwrap() error { return e.Err }

// InvalidSubmissionError carries the field-indexed validation messages for a
// rejected submission. Nothing is persisted when it is returned.
type InvalidSubmissionError struct {
	Fields formschema.FieldErrors
}

func (e *InvalidSubmissionError) Error() string {
	return e.Fields.Error()
}

// Store is the registration persistence the workflow needs.
type Store interface {
	ExistsByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	Create(ctx context.Context, reg *models.Registration) error
}

// EventStore resolves events; implementations return events.ErrNotFound for
// missing or soft-deleted events.
type EventStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// Notifier enqueues the post-registration confirmation. Implementations must
// not block on delivery.
type Notifier interface {
	EnqueueTicketConfirmation(ctx context.Context, eventID, registrationID uuid.UUID) error
}

// RegisterParams is the input to Register. UserID is nil for anonymous
// registrations; when set it enables the duplicate guard.
type RegisterParams struct {
	EventID  uuid.UUID
	UserID   *uuid.UUID
	Name     string
	Email    string
	Phone    string
	FormData map[string]string
}

// Result is a successful registration: the issued ticket and the stored row.
type Result struct {
	TicketID     string
	Registration *models.Registration
}

// Service runs the registration workflow.
type Service struct {
	store    Store
	eventSt  EventStore
	notifier Notifier
	logger   *zap.Logger
}

// NewService creates a registration service. notifier may be nil (dispatch skipped).
func NewService(store Store, eventStore EventStore, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, eventSt: eventStore, notifier: notifier, logger: logger}
}

// Register validates and persists a registration, issuing a ticket.
//
// The duplicate check and the insert are not one atomic step; the store's
// unique index on (event_id, user_id) is the backstop, and a violation there
// is reported as ErrDuplicateRegistration too. If the event fetch after the
// insert fails, the persisted registration is NOT rolled back: the error is
// surfaced and the registration stands.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*Result, error) {
	if p.UserID != nil {
		exists, err := s.store.ExistsByEventAndUser(ctx, p.EventID, *p.UserID)
		if err != nil {
			return nil, &StoreError{Op: "duplicate check", Err: err}
		}
		if exists {
			return nil, ErrDuplicateRegistration
		}
	}

	event, err := s.eventSt.GetByID(ctx, p.EventID)
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, &StoreError{Op: "fetch event", Err: err}
	}
	schema, err := formschema.Parse(event.FormSchema)
	if err != nil {
		// A stored schema that no longer parses must not block registration;
		// custom fields are simply not collected.
		s.logger.Warn("stored form schema unparseable, ignoring",
			zap.Error(err), zap.String("event_id", p.EventID.String()))
		schema = nil
	}

	normalized, fieldErrs := formschema.Validate(schema, formschema.Submission{
		Name:   p.Name,
		Email:  p.Email,
		Phone:  p.Phone,
		Fields: p.FormData,
	})
	if fieldErrs != nil {
		return nil, &InvalidSubmissionError{Fields: fieldErrs}
	}

	// 128-bit random ticket identifier; the QR payload is exactly this string.
	ticketID := uuid.NewString()

	reg := &models.Registration{
		EventID:  p.EventID,
		UserID:   p.UserID,
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
		FormData: normalized,
		TicketID: ticketID,
		Status:   models.RegistrationRegistered,
	}
	if err := s.store.Create(ctx, reg); err != nil {
		if errors.Is(err, ErrDuplicateRegistration) {
			return nil, ErrDuplicateRegistration
		}
		return nil, &StoreError{Op: "persist registration", Err: err}
	}

	// Re-check the event before dispatch. A failure here is surfaced but the
	// registration above stands; there is no compensating rollback.
	if _, err := s.eventSt.GetByID(ctx, p.EventID); err != nil {
		s.logger.Error("event fetch after registration failed",
			zap.Error(err), zap.String("event_id", p.EventID.String()),
			zap.String("registration_id", reg.ID.String()))
		return nil, &StoreError{Op: "fetch event for notification", Err: err}
	}

	if s.notifier != nil {
		if err := s.notifier.EnqueueTicketConfirmation(ctx, p.EventID, reg.ID); err != nil {
			// Best-effort: never fail the registration over a notification.
			s.logger.Warn("notification enqueue failed",
				zap.Error(err), zap.String("registration_id", reg.ID.String()))
		}
	}

	return &Result{TicketID: ticketID, Registration: reg}, nil
}
