package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/events"
	"github.com/cosmic-sparc/backend/internal/models"
	"github.com/cosmic-sparc/backend/internal/registrations"
	"github.com/cosmic-sparc/backend/pkg/queue"
)

// Dispatcher processes notification jobs: load the registration and event,
// compose the message, send on each channel, and record the attempt.
type Dispatcher struct {
	regs   *registrations.Repository
	events *events.Repository
	logs   *Repository
	mailer *Mailer
	wa     *WhatsAppSender
	logger *zap.Logger
}

// NewDispatcher creates a notification job dispatcher.
func NewDispatcher(regs *registrations.Repository, events *events.Repository, logs *Repository, mailer *Mailer, wa *WhatsAppSender, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{regs: regs, events: events, logs: logs, mailer: mailer, wa: wa, logger: logger}
}

// Process executes one notification job.
func (d *Dispatcher) Process(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeTicketConfirmation:
		var p queue.TicketConfirmationPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return d.ticketConfirmation(ctx, p)
	case queue.JobTypeEventDeleted:
		var p queue.EventDeletedPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
		return d.eventDeleted(ctx, p)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

func (d *Dispatcher) ticketConfirmation(ctx context.Context, p queue.TicketConfirmationPayload) error {
	reg, err := d.regs.GetByID(ctx, p.RegistrationID)
	if err != nil {
		return fmt.Errorf("registration not found: %s", p.RegistrationID)
	}
	event, err := d.events.GetIncludingDeleted(ctx, p.EventID)
	if err != nil {
		return fmt.Errorf("event not found: %s", p.EventID)
	}

	subject := fmt.Sprintf("Your ticket for %s", event.Name)
	body := fmt.Sprintf(
		"Hi %s,\n\nYou're registered for %s on %s at %s.\n\nYour ticket ID: %s\n\nShow the QR code on your ticket page at the entrance.\n\nSee you there!",
		reg.Name, event.Name, event.Date.Format("Mon, 2 Jan 2006 15:04"), event.Venue, reg.TicketID,
	)
	waBody := fmt.Sprintf("You're registered for %s. Ticket: %s", event.Name, reg.TicketID)

	d.send(ctx, models.NotificationTicketConfirmation, event, reg, subject, body, waBody)
	return nil
}

func (d *Dispatcher) eventDeleted(ctx context.Context, p queue.EventDeletedPayload) error {
	reg, err := d.regs.GetByID(ctx, p.RegistrationID)
	if err != nil {
		return fmt.Errorf("registration not found: %s", p.RegistrationID)
	}
	event, err := d.events.GetIncludingDeleted(ctx, p.EventID)
	if err != nil {
		return fmt.Errorf("event not found: %s", p.EventID)
	}

	subject := fmt.Sprintf("%s has been cancelled", event.Name)
	body := fmt.Sprintf(
		"Hi %s,\n\nWe're sorry to let you know that %s (scheduled for %s) has been cancelled by the organizer. Your ticket %s is no longer valid.\n\nWe hope to see you at another event soon.",
		reg.Name, event.Name, event.Date.Format("Mon, 2 Jan 2006 15:04"), reg.TicketID,
	)
	waBody := fmt.Sprintf("%s has been cancelled. Your ticket %s is no longer valid.", event.Name, reg.TicketID)

	d.send(ctx, models.NotificationEventDeleted, event, reg, subject, body, waBody)
	return nil
}

// send fans out to both channels. Per-channel failures are recorded and
// logged but never fail the job: one bounced email must not re-run the
// whole fan-out.
func (d *Dispatcher) send(ctx context.Context, kind string, event *models.Event, reg *models.Registration, subject, body, waBody string) {
	emailErr := d.mailer.Send(reg.Email, subject, body)
	d.record(ctx, kind, models.ChannelEmail, event, reg, reg.Email, emailErr)

	if reg.Phone != "" {
		waErr := d.wa.Send(reg.Phone, waBody)
		d.record(ctx, kind, models.ChannelWhatsApp, event, reg, reg.Phone, waErr)
	}
}

func (d *Dispatcher) record(ctx context.Context, kind, channel string, event *models.Event, reg *models.Registration, recipient string, sendErr error) {
	log := &models.NotificationLog{
		EventID:        &event.ID,
		RegistrationID: &reg.ID,
		Channel:        channel,
		Kind:           kind,
		Recipient:      recipient,
		Status:         models.NotificationStatusSent,
	}
	if sendErr != nil {
		log.Status = models.NotificationStatusFailed
		log.ErrorMessage = sendErr.Error()
		d.logger.Warn("notification send failed",
			zap.String("channel", channel),
			zap.String("kind", kind),
			zap.String("recipient", recipient),
			zap.Error(sendErr))
	}
	if err := d.logs.Record(ctx, log); err != nil {
		d.logger.Error("record notification log failed", zap.Error(err))
	}
}
