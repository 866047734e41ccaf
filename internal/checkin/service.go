package checkin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/models"
	"github.com/cosmic-sparc/backend/internal/registrations"
)

var (
	// ErrTicketNotFound means no registration with that ticket ID exists
	// for the scanned event. A valid ticket for another event also maps
	// here: scans are always scoped to one event.
	ErrTicketNotFound = errors.New("ticket not found for this event")

	// ErrAlreadyCheckedIn means the ticket was valid but has already
	// been used to enter.
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
)

// Store is the registration lookup surface the check-in flow needs.
type Store interface {
	GetByEventAndTicketID(ctx context.Context, eventID uuid.UUID, ticketID string) (*models.Registration, error)
	MarkEntered(ctx context.Context, eventID uuid.UUID, ticketID string) (bool, error)
}

// Service drives the door scan flow: verify a ticket against one event,
// then flip it to entered exactly once.
type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Verify looks up a scanned payload against the event being worked.
// The payload is the raw ticket ID from the QR code; surrounding
// whitespace from scanner input is tolerated.
func (s *Service) Verify(ctx context.Context, eventID uuid.UUID, payload string) (*models.Registration, error) {
	ticketID := strings.TrimSpace(payload)
	if ticketID == "" {
		return nil, ErrTicketNotFound
	}
	reg, err := s.store.GetByEventAndTicketID(ctx, eventID, ticketID)
	if err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("lookup ticket: %w", err)
	}
	return reg, nil
}

// CheckIn verifies a ticket and marks it entered. The transition is
// one-way: a second scan of the same ticket returns ErrAlreadyCheckedIn
// with the registration so the operator can see who entered and when.
func (s *Service) CheckIn(ctx context.Context, eventID uuid.UUID, payload string) (*models.Registration, error) {
	reg, err := s.Verify(ctx, eventID, payload)
	if err != nil {
		return nil, err
	}
	if reg.Status == models.RegistrationEntered {
		return reg, ErrAlreadyCheckedIn
	}

	entered, err := s.store.MarkEntered(ctx, eventID, reg.TicketID)
	if err != nil {
		return nil, fmt.Errorf("mark entered: %w", err)
	}
	if !entered {
		// Lost the race to a concurrent scan of the same ticket.
		reg, err = s.store.GetByEventAndTicketID(ctx, eventID, reg.TicketID)
		if err != nil {
			return nil, fmt.Errorf("reload ticket: %w", err)
		}
		return reg, ErrAlreadyCheckedIn
	}

	reg, err = s.store.GetByEventAndTicketID(ctx, eventID, reg.TicketID)
	if err != nil {
		return nil, fmt.Errorf("reload ticket: %w", err)
	}
	s.logger.Info("ticket checked in",
		zap.String("event_id", eventID.String()),
		zap.String("ticket_id", reg.TicketID))
	return reg, nil
}
