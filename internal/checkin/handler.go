package checkin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/models"
	"github.com/cosmic-sparc/backend/pkg/response"
)

// ScanRequest carries the raw QR payload from the scanner.
type ScanRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// ScanResult is what the door operator sees after a scan.
type ScanResult struct {
	Status       string               `json:"status"`
	Name         string               `json:"name"`
	Registration *models.Registration `json:"registration"`
}

// Handler exposes the ticketeer scan endpoints for a single event.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Verify handles POST /events/:id/checkin/verify. Read-only lookup so
// the operator can preview a ticket without consuming it.
func (h *Handler) Verify(c *gin.Context) {
	eventID, req, ok := h.bind(c)
	if !ok {
		return
	}
	reg, err := h.service.Verify(c.Request.Context(), eventID, req.Payload)
	if err != nil {
		h.fail(c, err)
		return
	}
	status := "valid"
	if reg.Status == models.RegistrationEntered {
		status = "entered"
	}
	response.OK(c, ScanResult{Status: status, Name: reg.Name, Registration: reg})
}

// Scan handles POST /events/:id/checkin. Verifies the ticket and marks
// it entered.
func (h *Handler) Scan(c *gin.Context) {
	eventID, req, ok := h.bind(c)
	if !ok {
		return
	}
	reg, err := h.service.CheckIn(c.Request.Context(), eventID, req.Payload)
	if err != nil {
		if errors.Is(err, ErrAlreadyCheckedIn) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   "Ticket already checked in.",
				"data":    ScanResult{Status: "already_entered", Name: reg.Name, Registration: reg},
			})
			return
		}
		h.fail(c, err)
		return
	}
	response.OK(c, ScanResult{Status: "entered", Name: reg.Name, Registration: reg})
}

func (h *Handler) bind(c *gin.Context) (uuid.UUID, ScanRequest, bool) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return uuid.Nil, ScanRequest{}, false
	}
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "payload is required")
		return uuid.Nil, ScanRequest{}, false
	}
	return eventID, req, true
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrTicketNotFound) {
		response.NotFound(c, "Ticket not found for this event.")
		return
	}
	h.logger.Error("scan failed", zap.Error(err))
	response.Internal(c, "scan failed")
}
