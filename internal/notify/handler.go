package notify

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cosmic-sparc/backend/pkg/response"
)

// Handler exposes notification logs to admins.
type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListByEvent handles GET /events/:id/notifications.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	list, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list notification logs")
		return
	}
	response.OK(c, list)
}
