package events

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/auth"
	"github.com/cosmic-sparc/backend/internal/formschema"
	"github.com/cosmic-sparc/backend/internal/models"
	"github.com/cosmic-sparc/backend/pkg/response"
	"github.com/cosmic-sparc/backend/pkg/storage"
)

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Date        string          `json:"date" binding:"required"`
	Venue       string          `json:"venue" binding:"required"`
	PriceCents  int             `json:"price_cents"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	FormSchema  json.RawMessage `json:"form_schema"`
}

// UpdateRequest is the body for PATCH /events/:id. Absent fields keep their values.
type UpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Venue       *string `json:"venue"`
	PriceCents  *int    `json:"price_cents"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
}

// AssignTicketeerRequest is the body for POST /events/:id/ticketeers.
type AssignTicketeerRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	repo   *Repository
	users  *auth.Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an events handler. s3 may be nil (image uploads disabled).
func NewHandler(repo *Repository, users *auth.Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, users: users, s3: s3, logger: logger}
}

// Create handles POST /events (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)

	date, err := parseTime(req.Date)
	if err != nil {
		response.BadRequest(c, "invalid date")
		return
	}
	status := models.EventDraft
	if req.Status != "" {
		s, ok := models.ParseEventStatus(req.Status)
		if !ok {
			response.BadRequest(c, "invalid status")
			return
		}
		status = s
	}
	if _, err := formschema.Parse(req.FormSchema); err != nil {
		response.BadRequest(c, "invalid form schema: "+err.Error())
		return
	}

	slug, err := UniqueSlug(c.Request.Context(), h.repo, req.Name)
	if err != nil {
		h.logger.Error("derive slug failed", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}

	e := &models.Event{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Date:        date,
		Venue:       req.Venue,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
		Status:      status,
		FormSchema:  req.FormSchema,
		CreatedBy:   userID,
	}
	if err := h.repo.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("create event failed", zap.Error(err))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, e)
}

// List handles GET /events: published, live events for public discovery.
func (h *Handler) List(c *gin.Context) {
	listed, err := h.repo.ListPublished(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, listed)
}

// ListAll handles GET /admin/events (admin only). ?deleted=1 includes
// soft-deleted events.
func (h *Handler) ListAll(c *gin.Context) {
	listed, err := h.repo.ListAll(c.Request.Context(), c.Query("deleted") == "1")
	if err != nil {
		response.Internal(c, "failed to list events")
		return
	}
	response.OK(c, listed)
}

// GetBySlug handles GET /events/:slug.
func (h *Handler) GetBySlug(c *gin.Context) {
	e, err := h.repo.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, e)
}

// Update handles PATCH /events/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	p := UpdateParams{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		PriceCents:  req.PriceCents,
		Category:    req.Category,
	}
	if req.Date != nil {
		t, err := parseTime(*req.Date)
		if err != nil {
			response.BadRequest(c, "invalid date")
			return
		}
		p.Date = &t
	}
	if req.Status != nil {
		s, ok := models.ParseEventStatus(*req.Status)
		if !ok {
			response.BadRequest(c, "invalid status")
			return
		}
		p.Status = &s
	}
	updated, err := h.repo.Update(c.Request.Context(), id, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to update event")
		return
	}
	response.OK(c, updated)
}

// UpdateFormSchema handles PUT /events/:id/form-schema (admin only). The
// schema is parsed strictly so broken field definitions never reach storage.
func (h *Handler) UpdateFormSchema(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var raw json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	schema, err := formschema.Parse(raw)
	if err != nil {
		response.BadRequest(c, "invalid form schema: "+err.Error())
		return
	}
	if err := h.repo.UpdateFormSchema(c.Request.Context(), id, raw); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to update form schema")
		return
	}
	response.OK(c, gin.H{"event_id": id, "fields": len(schema)})
}

// Delete handles DELETE /events/:id (admin only): soft delete.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.SoftDelete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// Restore handles POST /events/:id/restore (admin only).
func (h *Handler) Restore(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.repo.Restore(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "event not found")
			return
		}
		response.Internal(c, "failed to restore event")
		return
	}
	response.OK(c, gin.H{"id": id, "restored": true})
}

// UploadImage handles POST /events/:id/image (admin only): multipart image to
// the blob store, URL saved on the event.
func (h *Handler) UploadImage(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "uploads are not configured")
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	event, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > storage.MaxImageSize {
		response.BadRequest(c, "file too large")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !storage.ValidateImageType(contentType, header.Filename) {
		response.BadRequest(c, "unsupported image type")
		return
	}
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(header.Filename)
	}

	key := storage.EventImageKey(id.String(), header.Filename)
	url, err := h.s3.Upload(c.Request.Context(), key, contentType, file, header.Size)
	if err != nil {
		h.logger.Error("event image upload failed", zap.Error(err), zap.String("event_id", id.String()))
		response.Internal(c, "failed to upload image")
		return
	}
	if _, err := h.repo.Update(c.Request.Context(), id, UpdateParams{ImageURL: &url}); err != nil {
		response.Internal(c, "failed to save image")
		return
	}

	// Best-effort cleanup of the replaced image.
	if old := h.s3.KeyFromURL(event.ImageURL); old != "" && old != key {
		if err := h.s3.DeleteObject(c.Request.Context(), old); err != nil {
			h.logger.Warn("delete old event image failed", zap.Error(err), zap.String("key", old))
		}
	}
	response.OK(c, gin.H{"image_url": url})
}

// AssignTicketeer handles POST /events/:id/ticketeers (admin only). The
// assignee is looked up by email and must already have a profile.
func (h *Handler) AssignTicketeer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	var req AssignTicketeerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "event not found")
		return
	}
	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.NotFound(c, "no user with that email")
		return
	}
	t, err := h.repo.AssignTicketeer(c.Request.Context(), id, user.ID)
	if err != nil {
		h.logger.Error("assign ticketeer failed", zap.Error(err))
		response.Internal(c, "failed to assign ticketeer")
		return
	}
	t.Email = user.Email
	response.Created(c, t)
}

// ListTicketeers handles GET /events/:id/ticketeers (admin only).
func (h *Handler) ListTicketeers(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	listed, err := h.repo.ListTicketeers(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to list ticketeers")
		return
	}
	response.OK(c, listed)
}

// RemoveTicketeer handles DELETE /events/:id/ticketeers/:assignmentId (admin
// only). Existing registrations are unaffected.
func (h *Handler) RemoveTicketeer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("assignmentId"))
	if err != nil {
		response.BadRequest(c, "invalid assignment id")
		return
	}
	if err := h.repo.RemoveTicketeer(c.Request.Context(), id); err != nil {
		response.Internal(c, "failed to remove ticketeer")
		return
	}
	response.NoContent(c)
}

// MyAssignments handles GET /me/events: events the caller may scan.
func (h *Handler) MyAssignments(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
	listed, err := h.repo.ListEventsForTicketeer(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list assignments")
		return
	}
	response.OK(c, listed)
}
