package checkin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cosmic-sparc/backend/internal/models"
	"github.com/cosmic-sparc/backend/internal/registrations"
)

// fakeStore holds registrations keyed by event and ticket, mirroring the
// event-scoped lookup of the real repository.
type fakeStore struct {
	regs map[string]*models.Registration
	// markResult forces MarkEntered's outcome without mutating state, to
	// simulate losing a concurrent scan.
	markResult *bool
}

func key(eventID uuid.UUID, ticketID string) string {
	return eventID.String() + "/" + ticketID
}

func newFakeStore(regs ...*models.Registration) *fakeStore {
	f := &fakeStore{regs: make(map[string]*models.Registration)}
	for _, r := range regs {
		f.regs[key(r.EventID, r.TicketID)] = r
	}
	return f
}

func (f *fakeStore) GetByEventAndTicketID(ctx context.Context, eventID uuid.UUID, ticketID string) (*models.Registration, error) {
	reg, ok := f.regs[key(eventID, ticketID)]
	if !ok {
		return nil, registrations.ErrNotFound
	}
	copied := *reg
	return &copied, nil
}

func (f *fakeStore) MarkEntered(ctx context.Context, eventID uuid.UUID, ticketID string) (bool, error) {
	if f.markResult != nil {
		return *f.markResult, nil
	}
	reg, ok := f.regs[key(eventID, ticketID)]
	if !ok || reg.Status != models.RegistrationRegistered {
		return false, nil
	}
	now := time.Now()
	reg.Status = models.RegistrationEntered
	reg.EnteredAt = &now
	return true, nil
}

func registeredTicket(eventID uuid.UUID) *models.Registration {
	return &models.Registration{
		ID:       uuid.New(),
		EventID:  eventID,
		Name:     "Asha Rao",
		TicketID: uuid.NewString(),
		Status:   models.RegistrationRegistered,
	}
}

func TestVerifyUnknownTicket(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	_, err := svc.Verify(context.Background(), uuid.New(), uuid.NewString())
	if !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("err = %v, want ErrTicketNotFound", err)
	}
}

func TestVerifyWrongEvent(t *testing.T) {
	// A valid ticket scanned at a different event must not verify.
	eventID := uuid.New()
	reg := registeredTicket(eventID)
	svc := NewService(newFakeStore(reg), nil)

	_, err := svc.Verify(context.Background(), uuid.New(), reg.TicketID)
	if !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("err = %v, want ErrTicketNotFound", err)
	}
}

func TestVerifyTrimsScannerWhitespace(t *testing.T) {
	eventID := uuid.New()
	reg := registeredTicket(eventID)
	svc := NewService(newFakeStore(reg), nil)

	got, err := svc.Verify(context.Background(), eventID, "  "+reg.TicketID+"\n")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got.Name != "Asha Rao" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestVerifyEmptyPayload(t *testing.T) {
	svc := NewService(newFakeStore(), nil)
	if _, err := svc.Verify(context.Background(), uuid.New(), "   "); !errors.Is(err, ErrTicketNotFound) {
		t.Fatalf("err = %v, want ErrTicketNotFound", err)
	}
}

func TestCheckInTransition(t *testing.T) {
	eventID := uuid.New()
	reg := registeredTicket(eventID)
	store := newFakeStore(reg)
	svc := NewService(store, nil)

	got, err := svc.CheckIn(context.Background(), eventID, reg.TicketID)
	if err != nil {
		t.Fatalf("CheckIn error: %v", err)
	}
	if got.Status != models.RegistrationEntered {
		t.Errorf("status = %q, want entered", got.Status)
	}
	if got.EnteredAt == nil {
		t.Error("entered_at not set")
	}
}

func TestCheckInSecondScanRejected(t *testing.T) {
	eventID := uuid.New()
	reg := registeredTicket(eventID)
	store := newFakeStore(reg)
	svc := NewService(store, nil)

	if _, err := svc.CheckIn(context.Background(), eventID, reg.TicketID); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	got, err := svc.CheckIn(context.Background(), eventID, reg.TicketID)
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("err = %v, want ErrAlreadyCheckedIn", err)
	}
	if got == nil || got.Status != models.RegistrationEntered {
		t.Fatalf("second scan should return the entered registration, got %+v", got)
	}
}

func TestCheckInLostRace(t *testing.T) {
	// The ticket reads as registered but a concurrent scan wins the update.
	eventID := uuid.New()
	reg := registeredTicket(eventID)
	store := newFakeStore(reg)
	lost := false
	store.markResult = &lost

	svc := NewService(store, nil)
	_, err := svc.CheckIn(context.Background(), eventID, reg.TicketID)
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("err = %v, want ErrAlreadyCheckedIn", err)
	}
}
