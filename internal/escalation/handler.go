package escalation

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneteam-app/backend/internal/projects"
	"github.com/oneteam-app/backend/internal/settings"
	"github.com/oneteam-app/backend/internal/users"
	"github.com/oneteam-app/backend/pkg/response"
)

// Handler serves per-project escalation matrices.
type Handler struct {
	projects *projects.Repository
	users    *users.Repository
	settings *settings.Repository
	logger   *zap.Logger
}

// NewHandler creates an escalation matrix handler.
func NewHandler(projectRepo *projects.Repository, userRepo *users.Repository, settingsRepo *settings.Repository, logger *zap.Logger) *Handler {
	return &Handler{projects: projectRepo, users: userRepo, settings: settingsRepo, logger: logger}
}

// Matrix handles GET /projects/:id/escalation-matrix.
func (h *Handler) Matrix(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}

	ctx := c.Request.Context()
	project, err := h.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, projects.ErrNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to load project")
		return
	}
	directory, err := h.users.List(ctx)
	if err != nil {
		h.logger.Error("load directory", zap.Error(err))
		response.Internal(c, "failed to build escalation matrix")
		return
	}
	table, err := h.settings.ListDesignations(ctx)
	if err != nil {
		h.logger.Error("load designations", zap.Error(err))
		response.Internal(c, "failed to build escalation matrix")
		return
	}

	response.OK(c, BuildMatrix(project, directory, table))
}
