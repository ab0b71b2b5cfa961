package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medready/paramedic-ops-api/internal/dto"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
	"github.com/medready/paramedic-ops-api/pkg/response"
)

type closeoutService interface {
	Checklist(ctx context.Context, internshipID string) (*dto.CloseoutChecklistResponse, error)
	Finalize(ctx context.Context, internshipID string, req dto.CloseoutFinalizeRequest, actorID string) (*dto.CloseoutFinalizeResponse, error)
}

// CloseoutHandler exposes internship closeout endpoints.
type CloseoutHandler struct {
	service closeoutService
}

// NewCloseoutHandler constructs the handler.
func NewCloseoutHandler(service closeoutService) *CloseoutHandler {
	return &CloseoutHandler{service: service}
}

// Checklist returns the rebuilt closeout checklist for an internship.
func (h *CloseoutHandler) Checklist(c *gin.Context) {
	resp, err := h.service.Checklist(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Finalize stamps the internship closeout once every gate passes.
func (h *CloseoutHandler) Finalize(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CloseoutFinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	resp, err := h.service.Finalize(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
