package analytics

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cosmic-sparc/backend/internal/events"
	"github.com/cosmic-sparc/backend/internal/models"
	"github.com/cosmic-sparc/backend/pkg/response"
)

// Querier is the subset of pgxpool.Pool the stats queries need.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EventGetter resolves live events; implementations return events.ErrNotFound
// for missing or soft-deleted events.
type EventGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// RegistrationCounter reports total and entered registration counts.
type RegistrationCounter interface {
	CountByEvent(ctx context.Context, eventID uuid.UUID) (total, entered int, err error)
}

// Handler handles GET /events/:id/stats.
type Handler struct {
	db               Querier
	registrationRepo RegistrationCounter
	eventRepo        EventGetter
}

// NewHandler creates an event stats handler.
func NewHandler(db Querier, registrationRepo RegistrationCounter, eventRepo EventGetter) *Handler {
	return &Handler{db: db, registrationRepo: registrationRepo, eventRepo: eventRepo}
}

// DailyCount is one day of registrations.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SummaryResponse is the JSON shape for event stats.
type SummaryResponse struct {
	TotalRegistrations  int          `json:"total_registrations"`
	TotalEntered        int          `json:"total_entered"`
	TotalNoShow         int          `json:"total_no_show"`
	CheckInRate         *float64     `json:"check_in_rate,omitempty"`
	RegistrationsByDay  []DailyCount `json:"registrations_by_day"`
	NotificationsSent   int          `json:"notifications_sent"`
	NotificationsFailed int          `json:"notifications_failed"`
}

// GetByEvent handles GET /events/:id/stats. Admin only (enforced by route
// middleware).
func (h *Handler) GetByEvent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}

	ctx := c.Request.Context()

	if _, err := h.eventRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, events.ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to load event")
		return
	}

	total, entered, err := h.registrationRepo.CountByEvent(ctx, id)
	if err != nil {
		response.Internal(c, "failed to load registration counts")
		return
	}
	noShow := total - entered
	if noShow < 0 {
		noShow = 0
	}

	const dailyQ = `SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD'), COUNT(*)
		FROM registrations WHERE event_id = $1
		GROUP BY created_at::date ORDER BY created_at::date`
	rows, err := h.db.Query(ctx, dailyQ, id)
	if err != nil {
		response.Internal(c, "failed to load registration timeline")
		return
	}
	defer rows.Close()
	var byDay []DailyCount
	for rows.Next() {
		var d DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			response.Internal(c, "failed to load registration timeline")
			return
		}
		byDay = append(byDay, d)
	}
	if err := rows.Err(); err != nil {
		response.Internal(c, "failed to load registration timeline")
		return
	}

	var sent, failed int
	const notifQ = `SELECT
		COUNT(*) FILTER (WHERE status = 'sent'),
		COUNT(*) FILTER (WHERE status = 'failed')
		FROM notification_logs WHERE event_id = $1`
	if err := h.db.QueryRow(ctx, notifQ, id).Scan(&sent, &failed); err != nil {
		response.Internal(c, "failed to load notification counts")
		return
	}

	out := SummaryResponse{
		TotalRegistrations:  total,
		TotalEntered:        entered,
		TotalNoShow:         noShow,
		RegistrationsByDay:  byDay,
		NotificationsSent:   sent,
		NotificationsFailed: failed,
	}
	if total > 0 {
		rate := float64(entered) / float64(total)
		out.CheckInRate = &rate
	}

	response.OK(c, out)
}
