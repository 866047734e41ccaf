package tickets

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/registrations"
	"github.com/cosmic-sparc/backend/pkg/response"
)

// Handler serves ticket QR images.
type Handler struct {
	regs   *registrations.Repository
	logger *zap.Logger
}

func NewHandler(regs *registrations.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{regs: regs, logger: logger}
}

// QRImage handles GET /api/tickets/:ticketId/qr.png. It returns a PNG
// encoding the ticket ID, suitable for <img src> on the confirmation
// page and in confirmation emails.
func (h *Handler) QRImage(c *gin.Context) {
	ticketID := c.Param("ticketId")
	if _, err := h.regs.GetByTicketID(c.Request.Context(), ticketID); err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			response.NotFound(c, "ticket not found")
			return
		}
		response.Internal(c, "failed to load ticket")
		return
	}

	png, err := QRPNG(ticketID)
	if err != nil {
		h.logger.Error("qr encode failed", zap.Error(err), zap.String("ticket_id", ticketID))
		response.Internal(c, "failed to generate QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
