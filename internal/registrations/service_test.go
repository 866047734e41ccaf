package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/cosmic-sparc/backend/internal/events"
	"github.com/cosmic-sparc/backend/internal/models"
)

type fakeStore struct {
	exists     bool
	existsErr  error
	createErr  error
	created    []*models.Registration
	existCalls int
}

func (f *fakeStore) ExistsByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	f.existCalls++
	return f.exists, f.existsErr
}

func (f *fakeStore) Create(ctx context.Context, reg *models.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	reg.ID = uuid.New()
	f.created = append(f.created, reg)
	return nil
}

type fakeEventStore struct {
	event *models.Event
	err   error
	// errAfter, when > 0, makes calls after the Nth fail. Used to exercise
	// the post-insert fetch.
	errAfter int
	afterErr error
	calls    int
}

func (f *fakeEventStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	f.calls++
	if f.errAfter > 0 && f.calls > f.errAfter {
		return nil, f.afterErr
	}
	return f.event, f.err
}

type fakeNotifier struct {
	err   error
	calls int
}

func (f *fakeNotifier) EnqueueTicketConfirmation(ctx context.Context, eventID, registrationID uuid.UUID) error {
	f.calls++
	return f.err
}

func validParams(eventID uuid.UUID) RegisterParams {
	return RegisterParams{
		EventID: eventID,
		Name:    "Asha Rao",
		Email:   "asha@example.com",
		Phone:   "+91 98765 43210",
	}
}

func liveEvent(id uuid.UUID) *models.Event {
	return &models.Event{ID: id, Name: "Tech Conf", Status: models.EventPublished}
}

func TestRegisterSuccess(t *testing.T) {
	eventID := uuid.New()
	store := &fakeStore{}
	eventStore := &fakeEventStore{event: liveEvent(eventID)}
	notifier := &fakeNotifier{}
	svc := NewService(store, eventStore, notifier, nil)

	res, err := svc.Register(context.Background(), validParams(eventID))
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if res.TicketID == "" {
		t.Fatal("ticket ID not issued")
	}
	if _, err := uuid.Parse(res.TicketID); err != nil {
		t.Fatalf("ticket ID %q is not a UUID: %v", res.TicketID, err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d rows, want 1", len(store.created))
	}
	reg := store.created[0]
	if reg.Status != models.RegistrationRegistered {
		t.Errorf("status = %q, want registered", reg.Status)
	}
	if reg.TicketID != res.TicketID {
		t.Errorf("ticket mismatch: %q vs %q", reg.TicketID, res.TicketID)
	}
	if notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", notifier.calls)
	}
	if store.existCalls != 0 {
		t.Errorf("duplicate check ran for anonymous registration")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	eventID, userID := uuid.New(), uuid.New()
	store := &fakeStore{exists: true}
	svc := NewService(store, &fakeEventStore{event: liveEvent(eventID)}, nil, nil)

	p := validParams(eventID)
	p.UserID = &userID
	_, err := svc.Register(context.Background(), p)
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("err = %v, want ErrDuplicateRegistration", err)
	}
	if len(store.created) != 0 {
		t.Fatal("duplicate registration was persisted")
	}
}

func TestRegisterDuplicateFromUniqueIndex(t *testing.T) {
	// The pre-check races; the store's unique index reports the loss.
	eventID, userID := uuid.New(), uuid.New()
	store := &fakeStore{createErr: ErrDuplicateRegistration}
	svc := NewService(store, &fakeEventStore{event: liveEvent(eventID)}, nil, nil)

	p := validParams(eventID)
	p.UserID = &userID
	_, err := svc.Register(context.Background(), p)
	if !errors.Is(err, ErrDuplicateRegistration) {
		t.Fatalf("err = %v, want ErrDuplicateRegistration", err)
	}
}

func TestRegisterEventNotFound(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, &fakeEventStore{err: events.ErrNotFound}, nil, nil)

	_, err := svc.Register(context.Background(), validParams(uuid.New()))
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("err = %v, want ErrEventNotFound", err)
	}
	if len(store.created) != 0 {
		t.Fatal("registration persisted for missing event")
	}
}

func TestRegisterValidationFailureDoesNotPersist(t *testing.T) {
	eventID := uuid.New()
	event := liveEvent(eventID)
	event.FormSchema = json.RawMessage(`[{"name":"company","type":"text","required":true}]`)
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	svc := NewService(store, &fakeEventStore{event: event}, notifier, nil)

	_, err := svc.Register(context.Background(), validParams(eventID))
	var invalid *InvalidSubmissionError
	if !errors.As(err, &invalid) {
		t.Fatalf("err = %v, want InvalidSubmissionError", err)
	}
	if invalid.Fields["company"] == "" {
		t.Fatalf("fields = %v, want company error", invalid.Fields)
	}
	if len(store.created) != 0 {
		t.Fatal("invalid submission was persisted")
	}
	if notifier.calls != 0 {
		t.Fatal("notification enqueued for rejected submission")
	}
}

func TestRegisterUnparseableSchemaIgnored(t *testing.T) {
	eventID := uuid.New()
	event := liveEvent(eventID)
	event.FormSchema = json.RawMessage(`{not valid`)
	store := &fakeStore{}
	svc := NewService(store, &fakeEventStore{event: event}, nil, nil)

	res, err := svc.Register(context.Background(), validParams(eventID))
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if len(res.Registration.FormData) != 0 {
		t.Fatalf("form data = %v, want empty", res.Registration.FormData)
	}
}

func TestRegisterPostInsertFetchFailure(t *testing.T) {
	// The event fetch after the insert fails: the error surfaces but the
	// stored registration stands.
	eventID := uuid.New()
	store := &fakeStore{}
	eventStore := &fakeEventStore{
		event:    liveEvent(eventID),
		errAfter: 1,
		afterErr: errors.New("connection reset"),
	}
	notifier := &fakeNotifier{}
	svc := NewService(store, eventStore, notifier, nil)

	_, err := svc.Register(context.Background(), validParams(eventID))
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("err = %v, want StoreError", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d rows, want 1 (no rollback)", len(store.created))
	}
	if notifier.calls != 0 {
		t.Fatal("notification enqueued after failed fetch")
	}
}

func TestRegisterNotifyFailureSwallowed(t *testing.T) {
	eventID := uuid.New()
	store := &fakeStore{}
	notifier := &fakeNotifier{err: errors.New("redis down")}
	svc := NewService(store, &fakeEventStore{event: liveEvent(eventID)}, notifier, nil)

	res, err := svc.Register(context.Background(), validParams(eventID))
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if res.TicketID == "" {
		t.Fatal("ticket not issued")
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.calls)
	}
}
