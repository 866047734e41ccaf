package notify

import (
	"context"

	"github.com/google/uuid"

	"github.com/cosmic-sparc/backend/pkg/queue"
)

// Enqueuer pushes notification jobs onto the Redis queue for the worker.
type Enqueuer struct {
	queue *queue.Queue
}

// NewEnqueuer wraps the shared queue.
func NewEnqueuer(q *queue.Queue) *Enqueuer {
	return &Enqueuer{queue: q}
}

// EnqueueTicketConfirmation queues the confirmation fan-out for one
// registration.
func (e *Enqueuer) EnqueueTicketConfirmation(ctx context.Context, eventID, registrationID uuid.UUID) error {
	return e.queue.EnqueueTicketConfirmation(ctx, queue.TicketConfirmationPayload{
		EventID:        eventID,
		RegistrationID: registrationID,
	})
}

// EnqueueEventDeleted queues a deleted-event notice for one registration.
func (e *Enqueuer) EnqueueEventDeleted(ctx context.Context, eventID, registrationID uuid.UUID) error {
	return e.queue.EnqueueEventDeleted(ctx, queue.EventDeletedPayload{
		EventID:        eventID,
		RegistrationID: registrationID,
	})
}
