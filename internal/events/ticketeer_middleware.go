package events

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cosmic-sparc/backend/internal/auth"
	"github.com/cosmic-sparc/backend/internal/models"
	"github.com/cosmic-sparc/backend/pkg/response"
)

// TicketeerChecker answers whether a user holds a ticketeer assignment for an
// event. *Repository satisfies it.
type TicketeerChecker interface {
	IsTicketeerForEvent(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

// RequireTicketeerAccess validates that the caller may run check-in operations
// for the :id event: admins always may, ticketeers need an active assignment
// for that specific event. Call after JWT.
func RequireTicketeerAccess(repo TicketeerChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid event id")
			c.Abort()
			return
		}
		userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
		role, _ := c.MustGet(auth.ContextUserRole).(string)

		if role == string(models.RoleAdmin) {
			c.Next()
			return
		}
		if role != string(models.RoleTicketeer) {
			response.Forbidden(c, "not authorized")
			c.Abort()
			return
		}
		ok, err := repo.IsTicketeerForEvent(c.Request.Context(), eventID, userID)
		if err != nil || !ok {
			response.Forbidden(c, "not authorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
