package settings

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneteam-app/backend/internal/models"
	"github.com/oneteam-app/backend/internal/realtime"
	"github.com/oneteam-app/backend/pkg/response"
)

// AddCountryRequest is the body for POST /settings/countries.
type AddCountryRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required,len=3"`
}

// AddDesignationRequest is the body for POST /settings/designations. New
// designations append at the end of the list, i.e. as the most senior.
type AddDesignationRequest struct {
	Name string `json:"name" binding:"required"`
}

// Handler handles shared configuration list endpoints.
type Handler struct {
	repo   *Repository
	hub    *realtime.Hub
	logger *zap.Logger
}

// NewHandler creates a settings handler.
func NewHandler(repo *Repository, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, hub: hub, logger: logger}
}

// ListCountries handles GET /settings/countries.
func (h *Handler) ListCountries(c *gin.Context) {
	list, err := h.repo.ListCountries(c.Request.Context())
	if err != nil {
		h.logger.Error("list countries", zap.Error(err))
		response.Internal(c, "failed to list countries")
		return
	}
	response.OK(c, list)
}

// AddCountry handles POST /settings/countries (admin only).
func (h *Handler) AddCountry(c *gin.Context) {
	var req AddCountryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	country := models.Country{Name: req.Name, Code: strings.ToUpper(req.Code)}
	if err := h.repo.AddCountry(c.Request.Context(), country); err != nil {
		h.logger.Error("add country", zap.Error(err), zap.String("code", country.Code))
		response.Internal(c, "failed to add country")
		return
	}
	h.hub.Publish(realtime.CollectionCountries, "added", country)
	response.Created(c, country)
}

// DeleteCountry handles DELETE /settings/countries/:code (admin only).
func (h *Handler) DeleteCountry(c *gin.Context) {
	code := strings.ToUpper(c.Param("code"))
	if err := h.repo.DeleteCountry(c.Request.Context(), code); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "country not found")
			return
		}
		h.logger.Error("delete country", zap.Error(err), zap.String("code", code))
		response.Internal(c, "failed to delete country")
		return
	}
	h.hub.Publish(realtime.CollectionCountries, "removed", gin.H{"code": code})
	response.NoContent(c)
}

// ListDesignations handles GET /settings/designations.
func (h *Handler) ListDesignations(c *gin.Context) {
	list, err := h.repo.ListDesignations(c.Request.Context())
	if err != nil {
		h.logger.Error("list designations", zap.Error(err))
		response.Internal(c, "failed to list designations")
		return
	}
	names := make([]string, 0, len(list))
	for _, d := range list {
		names = append(names, d.Name)
	}
	response.OK(c, names)
}

// AddDesignation handles POST /settings/designations (admin only).
func (h *Handler) AddDesignation(c *gin.Context) {
	var req AddDesignationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := h.repo.AddDesignation(c.Request.Context(), req.Name); err != nil {
		h.logger.Error("add designation", zap.Error(err), zap.String("name", req.Name))
		response.Internal(c, "failed to add designation")
		return
	}
	h.hub.Publish(realtime.CollectionDesignations, "added", gin.H{"name": req.Name})
	response.Created(c, gin.H{"name": req.Name})
}

// DeleteDesignation handles DELETE /settings/designations/:name (admin only).
func (h *Handler) DeleteDesignation(c *gin.Context) {
	name := c.Param("name")
	if err := h.repo.DeleteDesignation(c.Request.Context(), name); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "designation not found")
			return
		}
		h.logger.Error("delete designation", zap.Error(err), zap.String("name", name))
		response.Internal(c, "failed to delete designation")
		return
	}
	h.hub.Publish(realtime.CollectionDesignations, "removed", gin.H{"name": name})
	response.NoContent(c)
}
