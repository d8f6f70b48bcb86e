package projects

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oneteam-app/backend/internal/models"
	"github.com/oneteam-app/backend/internal/realtime"
	"github.com/oneteam-app/backend/pkg/response"
)

// Request is the body for POST /projects and PUT /projects/:id.
type Request struct {
	Name                string `json:"name" binding:"required"`
	CRMID               string `json:"crm_id"`
	CustomerName        string `json:"customer_name"`
	Product             string `json:"product"`
	CountryCode         string `json:"country_code"`
	AMCMso              string `json:"amc_mso"`
	ContractDetails     string `json:"contract_details"`
	OwnerID             string `json:"owner_id" binding:"required,uuid"`
	CommonContactEmail  string `json:"common_contact_email" binding:"omitempty,email"`
	CommonContactNumber string `json:"common_contact_number"`
}

// Handler handles project registry HTTP endpoints.
type Handler struct {
	repo   *Repository
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewHandler creates a project handler.
func NewHandler(repo *Repository, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, hub: hub, logger: logger}
}

func (h *Handler) fromRequest(c *gin.Context, req *Request) (*models.Project, bool) {
	amcMso, ok := models.ParseAMCMso(req.AMCMso)
	if !ok {
		response.BadRequest(c, "invalid amc_mso: must be not_applicable, amc or mso")
		return nil, false
	}
	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		response.BadRequest(c, "invalid owner_id")
		return nil, false
	}
	return &models.Project{
		Name:                req.Name,
		CRMID:               req.CRMID,
		CustomerName:        req.CustomerName,
		Product:             req.Product,
		CountryCode:         req.CountryCode,
		AMCMso:              amcMso,
		ContractDetails:     req.ContractDetails,
		OwnerID:             ownerID,
		CommonContactEmail:  req.CommonContactEmail,
		CommonContactNumber: req.CommonContactNumber,
	}, true
}

// Create handles POST /projects (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, ok := h.fromRequest(c, &req)
	if !ok {
		return
	}
	if err := h.repo.Create(c.Request.Context(), p); err != nil {
		h.logger.Error("create project", zap.Error(err), zap.String("name", req.Name))
		response.Internal(c, "failed to create project")
		return
	}
	h.hub.Publish(realtime.CollectionProjects, "created", p)
	response.Created(c, p)
}

// GetByID handles GET /projects/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		response.Internal(c, "failed to load project")
		return
	}
	response.OK(c, p)
}

// List handles GET /projects.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list projects", zap.Error(err))
		response.Internal(c, "failed to list projects")
		return
	}
	response.OK(c, list)
}

// Update handles PUT /projects/:id (admin only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p, ok := h.fromRequest(c, &req)
	if !ok {
		return
	}
	p.ID = id
	if err := h.repo.Update(c.Request.Context(), p); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		h.logger.Error("update project", zap.Error(err), zap.String("project_id", id.String()))
		response.Internal(c, "failed to update project")
		return
	}
	h.hub.Publish(realtime.CollectionProjects, "updated", p)
	response.OK(c, p)
}

// Delete handles DELETE /projects/:id (admin only). Mapped ids are cascade
// unmapped from every user.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "project not found")
			return
		}
		h.logger.Error("delete project", zap.Error(err), zap.String("project_id", id.String()))
		response.Internal(c, "failed to delete project")
		return
	}
	h.hub.Publish(realtime.CollectionProjects, "deleted", gin.H{"id": id})
	response.NoContent(c)
}
