package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cosmic-sparc/backend/internal/models"
	"github.com/cosmic-sparc/backend/pkg/response"
	"github.com/cosmic-sparc/backend/pkg/storage"
	"github.com/cosmic-sparc/backend/pkg/utils"
)

// SignupRequest is the body for POST /auth/signup.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// UpdateRoleRequest is the body for PATCH /users/:id/role (admin only).
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an auth handler. s3 may be nil (avatar uploads disabled).
func NewHandler(repo *Repository, jwt *JWTService, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, s3: s3, logger: logger}
}

// Signup handles POST /auth/signup. New identities always start as public;
// admin and ticketeer roles are granted later by an admin.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName, req.Phone, models.RolePublic)
	if err != nil {
		h.logger.Error("create user failed", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid email or password")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// Me handles GET /me. The profile row is provisioned on first access so an
// authenticated identity always resolves to a role.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(ContextUserID).(uuid.UUID)
	email := c.GetString(ContextUserEmail)
	user, err := h.repo.EnsureProfile(c.Request.Context(), userID, email)
	if err != nil {
		h.logger.Error("ensure profile failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load profile")
		return
	}
	response.OK(c, user.ToPublic())
}

// List handles GET /users (admin only), for ticketeer assignment and user management.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// UpdateRole handles PATCH /users/:id/role (admin only).
func (h *Handler) UpdateRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		response.BadRequest(c, "invalid role")
		return
	}
	if err := h.repo.UpdateRole(c.Request.Context(), id, role); err != nil {
		response.Internal(c, "failed to update role")
		return
	}
	response.OK(c, gin.H{"id": id, "role": role})
}

// UploadAvatar handles POST /me/avatar: multipart image to the blob store,
// URL saved on the profile.
func (h *Handler) UploadAvatar(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "uploads are not configured")
		return
	}
	userID := c.MustGet(ContextUserID).(uuid.UUID)

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

	key := storage.AvatarKey(userID.String(), header.Filename)
	url, err := h.s3.Upload(c.Request.Context(), key, contentType, file, header.Size)
	if err != nil {
		h.logger.Error("avatar upload failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to upload avatar")
		return
	}
	if err := h.repo.UpdateAvatarURL(c.Request.Context(), userID, url); err != nil {
		response.Internal(c, "failed to save avatar")
		return
	}
	response.OK(c, gin.H{"avatar_url": url})
}
