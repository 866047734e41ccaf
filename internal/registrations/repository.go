package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cosmic-sparc/backend/internal/models"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// ErrNotFound is returned by lookups when no registration matches.
var ErrNotFound = errors.New("registration not found")

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const regColumns = `id, event_id, user_id, name, email, phone, form_data, ticket_id, status, entered_at, created_at`

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var reg models.Registration
	var formData []byte
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Name, &reg.Email, &reg.Phone,
		&formData, &reg.TicketID, &reg.Status, &reg.EnteredAt, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(formData) > 0 {
		if err := json.Unmarshal(formData, &reg.FormData); err != nil {
			return nil, fmt.Errorf("decode form_data: %w", err)
		}
	}
	return &reg, nil
}

// Create inserts a registration. A unique violation on (event_id, user_id)
// surfaces as ErrDuplicateRegistration: the store-level backstop for the
// non-atomic duplicate pre-check.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	formData, err := json.Marshal(reg.FormData)
	if err != nil {
		return fmt.Errorf("encode form_data: %w", err)
	}
	if reg.FormData == nil {
		formData = []byte(`{}`)
	}
	const q = `INSERT INTO registrations (event_id, user_id, name, email, phone, form_data, ticket_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	err = r.pool.QueryRow(ctx, q, reg.EventID, reg.UserID, reg.Name, reg.Email, reg.Phone,
		formData, reg.TicketID, string(reg.Status)).
		Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateRegistration
		}
		return err
	}
	return nil
}

// ExistsByEventAndUser reports whether the identity already registered for the event.
func (r *Repository) ExistsByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists)
	return exists, err
}

// GetByID returns a registration by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE id = $1`, id))
}

// GetByTicketID returns a registration by its ticket identifier, unscoped.
// Ticket verification at the door uses GetByEventAndTicketID instead.
func (r *Repository) GetByTicketID(ctx context.Context, ticketID string) (*models.Registration, error) {
	return scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE ticket_id = $1`, ticketID))
}

// GetByEventAndTicketID returns the registration matching the ticket within
// one event. A ticket for a different event is simply not found here.
func (r *Repository) GetByEventAndTicketID(ctx context.Context, eventID uuid.UUID, ticketID string) (*models.Registration, error) {
	return scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE event_id = $1 AND ticket_id = $2`, eventID, ticketID))
}

// ListByEvent returns all registrations for an event, newest first.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE event_id = $1 ORDER BY created_at DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var listed []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		listed = append(listed, *reg)
	}
	return listed, rows.Err()
}

// ListByUser returns a user's registrations, newest first ("my tickets").
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var listed []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		listed = append(listed, *reg)
	}
	return listed, rows.Err()
}

// CountByEvent returns total and entered registration counts for an event.
func (r *Repository) CountByEvent(ctx context.Context, eventID uuid.UUID) (total, entered int, err error) {
	const q = `SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'entered') FROM registrations WHERE event_id = $1`
	err = r.pool.QueryRow(ctx, q, eventID).Scan(&total, &entered)
	return total, entered, err
}

// MarkEntered flips registered -> entered for a ticket within an event.
// The status guard makes the write idempotent: a second invocation affects
// zero rows and returns false. The transition is one-way.
func (r *Repository) MarkEntered(ctx context.Context, eventID uuid.UUID, ticketID string) (entered bool, err error) {
	const q = `UPDATE registrations SET status = 'entered', entered_at = NOW()
		WHERE event_id = $1 AND ticket_id = $2 AND status = 'registered'`
	tag, err := r.pool.Exec(ctx, q, eventID, ticketID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
