package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cosmic-sparc/backend/internal/models"
)

// ErrNotFound is returned when an event does not exist or is soft-deleted.
var ErrNotFound = errors.New("event not found")

// Repository handles event and ticketeer-assignment persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an events repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, name, slug, COALESCE(description,''), date, venue, price_cents, COALESCE(category,''),
	status, form_schema, COALESCE(image_url,''), created_by, deleted_at, deletion_notified_at, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.Date, &e.Venue, &e.PriceCents, &e.Category,
		&e.Status, &e.FormSchema, &e.ImageURL, &e.CreatedBy, &e.DeletedAt, &e.DeletionNotifiedAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, e *models.Event) error {
	const q = `INSERT INTO events (name, slug, description, date, venue, price_cents, category, status, form_schema, image_url, created_by)
		VALUES ($1, $2, NULLIF($3,''), $4, $5, $6, NULLIF($7,''), $8, $9, NULLIF($10,''), $11)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, e.Name, e.Slug, e.Description, e.Date, e.Venue, e.PriceCents, e.Category,
		string(e.Status), e.FormSchema, e.ImageURL, e.CreatedBy).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// GetByID returns a live event by ID. Soft-deleted events report ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	e, err := r.getByIDAny(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Deleted() {
		return nil, ErrNotFound
	}
	return e, nil
}

// getByIDAny returns an event regardless of soft-delete state.
func (r *Repository) getByIDAny(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// GetIncludingDeleted returns an event even after soft deletion. The worker
// uses it to compose deleted-event notices.
func (r *Repository) GetIncludingDeleted(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.getByIDAny(ctx, id)
}

// GetBySlug returns a live event by slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE slug = $1 AND deleted_at IS NULL`, slug))
}

// SlugExists reports whether any event (including soft-deleted ones, since
// the slug column stays unique) already uses the slug.
func (r *Repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

// ListPublished returns published, live events for public discovery,
// optionally filtered by category.
func (r *Repository) ListPublished(ctx context.Context, category string) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events WHERE status = 'published' AND deleted_at IS NULL`
	args := []any{}
	if category != "" {
		q += ` AND category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY date ASC`
	return r.list(ctx, q, args...)
}

// ListAll returns events for the admin dashboard. Soft-deleted events are
// included only when requested.
func (r *Repository) ListAll(ctx context.Context, includeDeleted bool) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	if !includeDeleted {
		q += ` WHERE deleted_at IS NULL`
	}
	q += ` ORDER BY created_at DESC`
	return r.list(ctx, q)
}

func (r *Repository) list(ctx context.Context, q string, args ...any) ([]models.Event, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var listed []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		listed = append(listed, *e)
	}
	return listed, rows.Err()
}

// UpdateParams holds the mutable event fields; nil pointers are left unchanged.
type UpdateParams struct {
	Name        *string
	Description *string
	Date        *time.Time
	Venue       *string
	PriceCents  *int
	Category    *string
	Status      *models.EventStatus
	ImageURL    *string
}

// Update patches event fields.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Event, error) {
	const q = `UPDATE events SET
		name = COALESCE($1, name),
		description = COALESCE($2, description),
		date = COALESCE($3, date),
		venue = COALESCE($4, venue),
		price_cents = COALESCE($5, price_cents),
		category = COALESCE($6, category),
		status = COALESCE($7, status),
		image_url = COALESCE($8, image_url),
		updated_at = NOW()
		WHERE id = $9 AND deleted_at IS NULL
		RETURNING ` + eventColumns
	var status *string
	if p.Status != nil {
		s := string(*p.Status)
		status = &s
	}
	return scanEvent(r.pool.QueryRow(ctx, q, p.Name, p.Description, p.Date, p.Venue, p.PriceCents, p.Category, status, p.ImageURL, id))
}

// UpdateFormSchema replaces the event's registration form schema.
func (r *Repository) UpdateFormSchema(ctx context.Context, id uuid.UUID, schema json.RawMessage) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET form_schema = $1, updated_at = NOW() WHERE id = $2 AND deleted_at IS NULL`, schema, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDelete marks an event deleted. The row stays; the worker notifies
// registrants after the grace period.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Restore clears the soft-delete timestamp.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET deleted_at = NULL, deletion_notified_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListDeletedBefore returns soft-deleted events whose deleted_at is older than
// cutoff and whose registrants have not been notified yet.
func (r *Repository) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]models.Event, error) {
	return r.list(ctx, `SELECT `+eventColumns+` FROM events
		WHERE deleted_at IS NOT NULL AND deleted_at < $1 AND deletion_notified_at IS NULL
		ORDER BY deleted_at ASC`, cutoff)
}

// MarkDeletionNotified records that the deleted-event sweep has enqueued
// notices for this event, making the sweep idempotent.
func (r *Repository) MarkDeletionNotified(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE events SET deletion_notified_at = NOW() WHERE id = $1 AND deletion_notified_at IS NULL`, id)
	return err
}

// AssignTicketeer grants a user scanning rights for an event.
func (r *Repository) AssignTicketeer(ctx context.Context, eventID, userID uuid.UUID) (*models.EventTicketeer, error) {
	const q = `INSERT INTO event_ticketeers (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO UPDATE SET event_id = EXCLUDED.event_id
		RETURNING id, event_id, user_id, created_at`
	var t models.EventTicketeer
	err := r.pool.QueryRow(ctx, q, eventID, userID).Scan(&t.ID, &t.EventID, &t.UserID, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("assign ticketeer: %w", err)
	}
	return &t, nil
}

// RemoveTicketeer revokes an assignment. Existing registrations are untouched.
func (r *Repository) RemoveTicketeer(ctx context.Context, assignmentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM event_ticketeers WHERE id = $1`, assignmentID)
	return err
}

// ListTicketeers returns assignments for an event with assignee emails.
func (r *Repository) ListTicketeers(ctx context.Context, eventID uuid.UUID) ([]models.EventTicketeer, error) {
	rows, err := r.pool.Query(ctx, `SELECT t.id, t.event_id, t.user_id, u.email, t.created_at
		FROM event_ticketeers t JOIN users u ON u.id = t.user_id
		WHERE t.event_id = $1 ORDER BY t.created_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var listed []models.EventTicketeer
	for rows.Next() {
		var t models.EventTicketeer
		if err := rows.Scan(&t.ID, &t.EventID, &t.UserID, &t.Email, &t.CreatedAt); err != nil {
			return nil, err
		}
		listed = append(listed, t)
	}
	return listed, rows.Err()
}

// ListEventsForTicketeer returns live events the user is assigned to scan.
func (r *Repository) ListEventsForTicketeer(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	return r.list(ctx, `SELECT e.id, e.name, e.slug, COALESCE(e.description,''), e.date, e.venue, e.price_cents,
		COALESCE(e.category,''), e.status, e.form_schema, COALESCE(e.image_url,''), e.created_by,
		e.deleted_at, e.deletion_notified_at, e.created_at, e.updated_at
		FROM events e
		JOIN event_ticketeers t ON t.event_id = e.id
		WHERE t.user_id = $1 AND e.deleted_at IS NULL
		ORDER BY e.date ASC`, userID)
}

// IsTicketeerForEvent reports whether the user has an active assignment for
// the event.
func (r *Repository) IsTicketeerForEvent(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_ticketeers WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists)
	return exists, err
}
