package registrations

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/auth"
	"github.com/cosmic-sparc/backend/pkg/response"
)

// RegisterRequest is the body for POST /api/registrations.
type RegisterRequest struct {
	EventID  string            `json:"eventId" binding:"required"`
	UserID   string            `json:"userId"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Phone    string            `json:"phone"`
	FormData map[string]string `json:"formData"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	service *Service
	repo    *Repository
	logger  *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(service *Service, repo *Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, repo: repo, logger: logger}
}

// Register handles POST /api/registrations. Response shape is fixed:
// 200 {"success":true,"ticketId":...,"registration":...},
// 400/500 {"error":...}.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid eventId"})
		return
	}

	// Identity comes from the request body (parity with the public form) or,
	// when absent, from an authenticated session token.
	var userID *uuid.UUID
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid userId"})
			return
		}
		userID = &id
	} else if v, ok := c.Get(auth.ContextUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			userID = &id
		}
	}

	result, err := h.service.Register(c.Request.Context(), RegisterParams{
		EventID:  eventID,
		UserID:   userID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		FormData: req.FormData,
	})
	if err != nil {
		var invalid *InvalidSubmissionError
		var storeErr *StoreError
		switch {
		case errors.Is(err, ErrDuplicateRegistration):
			c.JSON(http.StatusBadRequest, gin.H{"error": "You are already registered for this event."})
		case errors.As(err, &invalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error(), "fields": invalid.Fields})
		case errors.Is(err, ErrEventNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Event not found."})
		case errors.As(err, &storeErr):
			h.logger.Error("registration store failure", zap.Error(err), zap.String("event_id", eventID.String()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Registration failed: " + storeErr.Error()})
		default:
			h.logger.Error("registration failed", zap.Error(err), zap.String("event_id", eventID.String()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed."})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"ticketId":     result.TicketID,
		"registration": result.Registration,
	})
}

// ListByEvent handles GET /events/:id/registrations (ticketeer/admin): the
// attendee list for the door view.
func (h *Handler) ListByEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	listed, err := h.repo.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to list registrations")
		return
	}
	total, entered, err := h.repo.CountByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.Internal(c, "failed to count registrations")
		return
	}
	response.OK(c, gin.H{"registrations": listed, "total": total, "entered": entered})
}

// MyTickets handles GET /me/tickets: the caller's own registrations.
func (h *Handler) MyTickets(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
	listed, err := h.repo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list tickets")
		return
	}
	response.OK(c, listed)
}

// GetByTicketID handles GET /api/tickets/:ticketId: the confirmation-page
// lookup after a successful registration.
func (h *Handler) GetByTicketID(c *gin.Context) {
	reg, err := h.repo.GetByTicketID(c.Request.Context(), c.Param("ticketId"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "ticket not found")
			return
		}
		response.Internal(c, "failed to load ticket")
		return
	}
	response.OK(c, reg)
}
