package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/internal/models"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
	"github.com/medready/paramedic-ops-api/pkg/response"
)

type siteService interface {
	ListSites(ctx context.Context, rawKind string) ([]models.CapacitySite, error)
	UpdateSiteMax(ctx context.Context, siteID string, req dto.SiteUpdateRequest, actorID string) (*models.CapacitySite, error)
}

// SiteHandler exposes site administration endpoints.
type SiteHandler struct {
	service siteService
}

// NewSiteHandler constructs the handler.
func NewSiteHandler(service siteService) *SiteHandler {
	return &SiteHandler{service: service}
}

// List returns sites, optionally filtered by kind.
func (h *SiteHandler) List(c *gin.Context) {
	sites, err := h.service.ListSites(c.Request.Context(), c.Query("kind"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sites, nil)
}

// Update adjusts a site's configured daily maximum.
func (h *SiteHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SiteUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	site, err := h.service.UpdateSiteMax(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, site, nil)
}
