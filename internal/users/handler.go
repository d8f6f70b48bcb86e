package users

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneteam-app/backend/internal/realtime"
	"github.com/oneteam-app/backend/pkg/response"
	"github.com/oneteam-app/backend/pkg/utils"
)

// CreateRequest is the body for POST /users.
type CreateRequest struct {
	Email          string   `json:"email" binding:"required,email"`
	DisplayName    string   `json:"display_name"`
	Designation    string   `json:"designation"`
	ReportingTo    *string  `json:"reporting_to"`
	ContactNumber  string   `json:"contact_number"`
	IsAdmin        bool     `json:"is_admin"`
	Password       string   `json:"password"` // required when is_admin
	MappedProjects []string `json:"mapped_projects"`
}

// UpdateRequest is the body for PUT /users/:id. MappedProjects is the full
// requested set.
type UpdateRequest struct {
	DisplayName    string   `json:"display_name" binding:"required"`
	Designation    string   `json:"designation"`
	ReportingTo    *string  `json:"reporting_to"`
	ContactNumber  string   `json:"contact_number"`
	IsAdmin        bool     `json:"is_admin"`
	MappedProjects []string `json:"mapped_projects"`
}

// Handler handles user directory HTTP endpoints.
type Handler struct {
	repo   *Repository
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewHandler creates a user handler.
func NewHandler(repo *Repository, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, hub: hub, logger: logger}
}

// List handles GET /users.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /users/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to load user")
		return
	}
	response.OK(c, u)
}

// Create handles POST /users (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	reportingTo, ok := parseOptionalID(req.ReportingTo)
	if !ok {
		response.BadRequest(c, "invalid reporting_to")
		return
	}
	mapped, ok := parseIDs(req.MappedProjects)
	if !ok {
		response.BadRequest(c, "invalid mapped_projects")
		return
	}

	var passwordHash string
	if req.IsAdmin {
		if req.Password == "" {
			response.BadRequest(c, "password required for admin users")
			return
		}
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			response.Internal(c, "failed to hash password")
			return
		}
		passwordHash = hash
	}

	u, err := h.repo.Create(c.Request.Context(), CreateParams{
		Email:          req.Email,
		DisplayName:    req.DisplayName,
		Designation:    req.Designation,
		ReportingTo:    reportingTo,
		ContactNumber:  req.ContactNumber,
		IsAdmin:        req.IsAdmin,
		PasswordHash:   passwordHash,
		MappedProjects: mapped,
	})
	if err != nil {
		h.logger.Error("create user", zap.Error(err), zap.String("email", req.Email))
		response.Internal(c, "failed to create user")
		return
	}

	h.hub.Publish(realtime.CollectionUsers, "created", u)
	response.Created(c, u)
}

// Update handles PUT /users/:id (admin only). Mapping additions propagate up
// the reporting chain; removals are rejected while a subordinate still holds
// the project.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	reportingTo, ok := parseOptionalID(req.ReportingTo)
	if !ok {
		response.BadRequest(c, "invalid reporting_to")
		return
	}
	mapped, ok := parseIDs(req.MappedProjects)
	if !ok {
		response.BadRequest(c, "invalid mapped_projects")
		return
	}

	u, err := h.repo.Update(c.Request.Context(), id, UpdateParams{
		DisplayName:    req.DisplayName,
		Designation:    req.Designation,
		ReportingTo:    reportingTo,
		ContactNumber:  req.ContactNumber,
		IsAdmin:        req.IsAdmin,
		MappedProjects: mapped,
	})
	if err != nil {
		var inUse *MappingInUseError
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, ErrReportingCycle):
			response.BadRequest(c, "reporting chain would form a cycle")
		case errors.As(err, &inUse):
			response.Conflict(c, inUse.Error())
		default:
			h.logger.Error("update user", zap.Error(err), zap.String("user_id", id.String()))
			response.Internal(c, "failed to update user")
		}
		return
	}

	h.hub.Publish(realtime.CollectionUsers, "updated", u)
	response.OK(c, u)
}

// Delete handles DELETE /users/:id (admin only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "user not found")
		case errors.Is(err, ErrOwnsProject):
			response.Conflict(c, "user owns a project; reassign ownership first")
		case errors.Is(err, ErrHasSubordinates):
			response.Conflict(c, "other users report to this user; reassign them first")
		default:
			h.logger.Error("delete user", zap.Error(err), zap.String("user_id", id.String()))
			response.Internal(c, "failed to delete user")
		}
		return
	}

	h.hub.Publish(realtime.CollectionUsers, "deleted", gin.H{"id": id})
	response.NoContent(c)
}

func parseOptionalID(s *string) (*uuid.UUID, bool) {
	if s == nil || *s == "" {
		return nil, true
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func parseIDs(ss []string) ([]uuid.UUID, bool) {
	out := make([]uuid.UUID, 0, len(ss))
	for _, s := range ss {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}
