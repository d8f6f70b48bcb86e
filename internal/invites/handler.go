package invites

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneteam-app/backend/config"
	"github.com/oneteam-app/backend/internal/models"
	"github.com/oneteam-app/backend/pkg/queue"
	"github.com/oneteam-app/backend/pkg/response"
)

// SendRequest is the body for POST /invites.
type SendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// store is the invite persistence surface the handler needs.
type store interface {
	Create(ctx context.Context, email string, ttl time.Duration) (*models.Invite, error)
	GetByToken(ctx context.Context, token uuid.UUID) (*models.Invite, error)
	MarkUsed(ctx context.Context, token uuid.UUID) error
}

// Handler handles invite HTTP endpoints.
type Handler struct {
	repo   store
	queue  *queue.Queue
	cfg    config.InviteConfig
	logger *zap.Logger
}

// NewHandler creates an invite handler.
func NewHandler(repo *Repository, q *queue.Queue, cfg config.InviteConfig, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, queue: q, cfg: cfg, logger: logger}
}

// Send handles POST /invites (admin only): stores the invite and enqueues the
// email for background delivery.
func (h *Handler) Send(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ttl := time.Duration(h.cfg.ExpireHours) * time.Hour
	inv, err := h.repo.Create(c.Request.Context(), req.Email, ttl)
	if err != nil {
		h.logger.Error("create invite", zap.Error(err), zap.String("email", req.Email))
		response.Internal(c, "failed to create invite")
		return
	}

	registerURL := fmt.Sprintf("%s/register?token=%s", h.cfg.PortalBaseURL, inv.Token)
	err = h.queue.EnqueueInviteEmail(c.Request.Context(), queue.InviteEmailPayload{
		Token:          inv.Token,
		RecipientEmail: inv.Email,
		RegisterURL:    registerURL,
		ExpiresAt:      inv.ExpiresAt,
	})
	if err != nil {
		h.logger.Error("enqueue invite email", zap.Error(err), zap.String("token", inv.Token.String()))
		response.Internal(c, "failed to queue invite email")
		return
	}

	response.OK(c, gin.H{"success": true, "message": "Invite sent to " + inv.Email + "."})
}

// ValidateToken handles GET /invites/:token/validate (public; used by the
// registration page before showing the form).
func (h *Handler) ValidateToken(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		response.BadRequest(c, "invalid invite token")
		return
	}
	inv, err := h.repo.GetByToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "invite not found")
			return
		}
		response.Internal(c, "failed to load invite")
		return
	}
	response.OK(c, gin.H{"email": inv.Email, "valid": inv.Valid(time.Now())})
}

// Redeem handles POST /invites/:token/redeem (public): the registration page
// consumes the token once the account is set up, so it cannot be reused.
func (h *Handler) Redeem(c *gin.Context) {
	token, err := uuid.Parse(c.Param("token"))
	if err != nil {
		response.BadRequest(c, "invalid invite token")
		return
	}
	inv, err := h.repo.GetByToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "invite not found")
			return
		}
		response.Internal(c, "failed to load invite")
		return
	}
	if !inv.Valid(time.Now()) {
		response.Conflict(c, "invite already used or expired")
		return
	}
	if err := h.repo.MarkUsed(c.Request.Context(), token); err != nil {
		h.logger.Error("mark invite used", zap.Error(err), zap.String("token", token.String()))
		response.Internal(c, "failed to redeem invite")
		return
	}
	response.OK(c, gin.H{"email": inv.Email})
}
