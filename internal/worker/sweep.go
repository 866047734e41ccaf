package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/events"
	"github.com/cosmic-sparc/backend/internal/notify"
	"github.com/cosmic-sparc/backend/internal/registrations"
)

// Sweeper periodically finds events that were soft-deleted longer than the
// grace period ago and enqueues a deletion notice per registrant. Each event
// is swept once: MarkDeletionNotified gates re-processing.
type Sweeper struct {
	events   *events.Repository
	regs     *registrations.Repository
	enqueuer *notify.Enqueuer
	grace    time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewSweeper creates the deleted-event sweeper.
func NewSweeper(ev *events.Repository, regs *registrations.Repository, enq *notify.Enqueuer, grace, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{events: ev, regs: regs, enqueuer: enq, grace: grace, interval: interval, logger: logger}
}

// Run sweeps once immediately, then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweep stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.grace)
	list, err := s.events.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("sweep list failed", zap.Error(err))
		return
	}
	for i := range list {
		event := &list[i]
		regs, err := s.regs.ListByEvent(ctx, event.ID)
		if err != nil {
			s.logger.Error("sweep list registrations failed",
				zap.String("event_id", event.ID.String()), zap.Error(err))
			continue
		}

		enqueued := 0
		failed := false
		for _, reg := range regs {
			if err := s.enqueuer.EnqueueEventDeleted(ctx, event.ID, reg.ID); err != nil {
				s.logger.Error("sweep enqueue failed",
					zap.String("event_id", event.ID.String()),
					zap.String("registration_id", reg.ID.String()),
					zap.Error(err))
				failed = true
				break
			}
			enqueued++
		}
		if failed {
			// Leave deletion_notified_at unset so the next sweep retries.
			// Already-enqueued notices may be sent twice; acceptable for
			// a cancellation notice.
			continue
		}

		if err := s.events.MarkDeletionNotified(ctx, event.ID); err != nil {
			s.logger.Error("sweep mark notified failed",
				zap.String("event_id", event.ID.String()), zap.Error(err))
			continue
		}
		s.logger.Info("deleted event swept",
			zap.String("event_id", event.ID.String()),
			zap.String("event_name", event.Name),
			zap.Int("notices", enqueued))
	}
}
