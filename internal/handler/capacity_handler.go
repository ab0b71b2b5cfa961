package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/pkg/response"
)

type capacityService interface {
	Check(ctx context.Context, req dto.CapacityCheckRequest) (*dto.CapacityCheckResponse, error)
}

// CapacityHandler exposes the placement capacity check endpoint.
type CapacityHandler struct {
	service capacityService
}

// NewCapacityHandler constructs the handler.
func NewCapacityHandler(service capacityService) *CapacityHandler {
	return &CapacityHandler{service: service}
}

// Check reports whether a proposed placement fits within a site's daily cap.
func (h *CapacityHandler) Check(c *gin.Context) {
	count, err := parseQueryInt(c, "student_count", 1)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := dto.CapacityCheckRequest{
		SiteID:       c.Query("site_id"),
		Source:       c.Query("source"),
		Date:         c.Query("date"),
		StudentCount: count,
	}

	resp, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
