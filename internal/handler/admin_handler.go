package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/siteauth/internal/domain"
	"github.com/prperemyshlev/siteauth/internal/dto"
	"github.com/prperemyshlev/siteauth/internal/service"
)

// AdminHandler exposes master-key operator endpoints for user management.
type AdminHandler struct {
	authService service.AuthService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(authService service.AuthService) *AdminHandler {
	return &AdminHandler{authService: authService}
}

// RegisterUser provisions a user on behalf of a site, optionally without a
// password and optionally with the admin role.
func (h *AdminHandler) RegisterUser(c *gin.Context) {
	var req dto.AdminRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role := domain.Role(req.Role)
	if req.Role == "" {
		role = domain.RoleUser
	}

	user, err := h.authService.Register(c.Request.Context(), req.SiteID, req.Email, req.Password, role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// ListSiteUsers returns all users of one site.
func (h *AdminHandler) ListSiteUsers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	users, err := h.authService.ListUsers(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

// ResendVerification mints a fresh verification token and emails it.
// Delivery failures surface to the caller so the operator can retry.
func (h *AdminHandler) ResendVerification(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "verification email sent"})
}

// DeleteUser removes a user together with all their tokens.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteUser(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "user deleted"})
}
