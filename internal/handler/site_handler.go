package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/siteauth/internal/dto"
	"github.com/prperemyshlev/siteauth/internal/service"
)

// SiteHandler exposes tenant management. All routes are master-key only.
type SiteHandler struct {
	siteService service.SiteService
}

// NewSiteHandler creates a new site handler.
func NewSiteHandler(siteService service.SiteService) *SiteHandler {
	return &SiteHandler{siteService: siteService}
}

func siteInput(req dto.SiteRequest) service.SiteInput {
	return service.SiteInput{
		Name:                    req.Name,
		Domain:                  req.Domain,
		FrontendURL:             req.FrontendURL,
		VerificationRedirectURL: req.VerificationRedirectURL,
		EmailFrom:               req.EmailFrom,
		EmailFromName:           req.EmailFromName,
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

// CreateSite registers a new tenant.
func (h *SiteHandler) CreateSite(c *gin.Context) {
	var req dto.SiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	site, err := h.siteService.CreateSite(c.Request.Context(), siteInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, site)
}

// GetSite returns one tenant by id.
func (h *SiteHandler) GetSite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	site, err := h.siteService.GetSite(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, site)
}

// UpdateSite replaces a tenant's mutable fields.
func (h *SiteHandler) UpdateSite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.SiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	site, err := h.siteService.UpdateSite(c.Request.Context(), id, siteInput(req))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, site)
}

// ListSites returns all tenants.
func (h *SiteHandler) ListSites(c *gin.Context) {
	sites, err := h.siteService.ListSites(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sites)
}
