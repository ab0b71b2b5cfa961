package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medready/paramedic-ops-api/internal/models"
	"github.com/medready/paramedic-ops-api/internal/service"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
	"github.com/medready/paramedic-ops-api/pkg/response"
)

type attendanceService interface {
	Mark(ctx context.Context, req service.MarkAttendanceRequest) (*models.AttendanceRecord, error)
	BulkMark(ctx context.Context, req service.BulkMarkAttendanceRequest) (*service.BulkAttendanceResult, error)
}

// AttendanceHandler exposes lab attendance marking endpoints.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Mark records one student's attendance for a session.
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	record, err := h.service.Mark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// BulkMark records attendance for many students in one session.
func (h *AttendanceHandler) BulkMark(c *gin.Context) {
	var req service.BulkMarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}

	result, err := h.service.BulkMark(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
