// Package worker runs the background side of the system: the notification
// job consumer and the deleted-event sweep.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/notify"
	"github.com/cosmic-sparc/backend/pkg/queue"
)

// Consumer drains the notification queue and hands each job to the
// dispatcher, retrying on failure.
type Consumer struct {
	queue      *queue.Queue
	dispatcher *notify.Dispatcher
	logger     *zap.Logger
}

// NewConsumer creates a notification queue consumer.
func NewConsumer(q *queue.Queue, dispatcher *notify.Dispatcher, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{queue: q, dispatcher: dispatcher, logger: logger}
}

// Run starts the worker loop: dequeue, process, retry on error.
func (c *Consumer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("notification worker stopping")
			return
		default:
		}

		job, err := c.queue.Dequeue(ctx)
		if err != nil {
			c.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		c.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := c.dispatcher.Process(ctx, job); err != nil {
			c.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := c.queue.Retry(ctx, job); reErr != nil {
				c.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
