package notify

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cosmic-sparc/backend/internal/models"
)

// Repository handles notification_logs persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a notification logs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts one dispatch attempt. status is sent or failed; errMsg is
// empty on success.
func (r *Repository) Record(ctx context.Context, log *models.NotificationLog) error {
	const q = `INSERT INTO notification_logs (event_id, registration_id, channel, kind, recipient, status, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), CASE WHEN $6 = 'sent' THEN NOW() END)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		log.EventID, log.RegistrationID, log.Channel, log.Kind,
		log.Recipient, log.Status, log.ErrorMessage,
	).Scan(&log.ID, &log.CreatedAt)
}

// ListByEvent returns notification logs for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]*models.NotificationLog, error) {
	const q = `SELECT id, event_id, registration_id, channel, kind, recipient, status, COALESCE(error_message, ''), sent_at, created_at
		FROM notification_logs
		WHERE event_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.NotificationLog
	for rows.Next() {
		var nl models.NotificationLog
		if err := rows.Scan(&nl.ID, &nl.EventID, &nl.RegistrationID, &nl.Channel, &nl.Kind, &nl.Recipient, &nl.Status, &nl.ErrorMessage, &nl.SentAt, &nl.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &nl)
	}
	return list, rows.Err()
}
