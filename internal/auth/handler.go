package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/oneteam-app/backend/internal/users"
	"github.com/oneteam-app/backend/pkg/response"
	"github.com/oneteam-app/backend/pkg/utils"
)

// AdminLoginRequest is the body for POST /auth/admin/login. Username may be a
// bare name; it expands to <name>@<admin domain>.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body for POST /auth/login. The identity provider
// sign-in happens on the client; the service admits only emails present in
// the user directory.
type LoginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// TokenResponse is the auth response with JWT. HasProjects lets the portal
// route to its "no projects assigned" state.
type TokenResponse struct {
	Token       string      `json:"token"`
	User        interface{} `json:"user"`
	HasProjects bool        `json:"has_projects"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo        *users.Repository
	jwt         *JWTService
	adminDomain string
	logger      *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *users.Repository, jwt *JWTService, adminDomain string, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, adminDomain: adminDomain, logger: logger}
}

// AdminLogin handles POST /auth/admin/login. The account must exist, carry a
// password hash, match it, and hold administrator privileges.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	email := req.Username
	if !strings.Contains(email, "@") {
		email = email + "@" + h.adminDomain
	}

	u, err := h.repo.GetByEmail(c.Request.Context(), email)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			h.logger.Error("admin login lookup", zap.Error(err))
		}
		response.Unauthorized(c, "invalid admin credentials")
		return
	}
	if u.Password == "" || !utils.CheckPassword(req.Password, u.Password) {
		response.Unauthorized(c, "invalid admin credentials")
		return
	}
	if !u.IsAdmin {
		response.Forbidden(c, "you do not have administrator privileges")
		return
	}

	token, err := h.jwt.Generate(u.ID, u.Email, true)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: u, HasProjects: len(u.MappedProjects) > 0})
}

// Login handles POST /auth/login for the end-user portal. Emails not present
// in the directory are rejected so only invited users get in.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	u, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, users.ErrNotFound) {
			h.logger.Error("login lookup", zap.Error(err))
			response.Internal(c, "failed to sign in")
			return
		}
		response.Unauthorized(c, "access denied; contact your administrator to get access")
		return
	}

	token, err := h.jwt.Generate(u.ID, u.Email, u.IsAdmin)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, User: u, HasProjects: len(u.MappedProjects) > 0})
}
