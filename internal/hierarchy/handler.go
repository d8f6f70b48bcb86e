package hierarchy

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneteam-app/backend/internal/models"
	"github.com/oneteam-app/backend/pkg/response"
)

// directory is the user-listing surface the handler needs.
type directory interface {
	List(ctx context.Context) ([]models.User, error)
}

// Handler serves the derived organizational hierarchy. The tree is recomputed
// from the directory on every request.
type Handler struct {
	users  directory
	logger *zap.Logger
}

// NewHandler creates a hierarchy handler.
func NewHandler(usersRepo directory, logger *zap.Logger) *Handler {
	return &Handler{users: usersRepo, logger: logger}
}

// Tree handles GET /hierarchy.
func (h *Handler) Tree(c *gin.Context) {
	directory, err := h.users.List(c.Request.Context())
	if err != nil {
		h.logger.Error("load directory", zap.Error(err))
		response.Internal(c, "failed to build hierarchy")
		return
	}
	response.OK(c, Build(directory))
}

// Flat handles GET /hierarchy/flat, the export-oriented row form.
func (h *Handler) Flat(c *gin.Context) {
	directory, err := h.users.List(c.Request.Context())
	if err != nil {
		h.logger.Error("load directory", zap.Error(err))
		response.Internal(c, "failed to build hierarchy")
		return
	}
	response.OK(c, Flatten(Build(directory)))
}
