package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/internal/service"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
	"github.com/medready/paramedic-ops-api/pkg/export"
	"github.com/medready/paramedic-ops-api/pkg/response"
)

type riskService interface {
	Sweep(ctx context.Context) (*dto.AttendanceSweepResponse, error)
	Report(ctx context.Context) (*dto.AttendanceSweepResponse, bool, error)
	StudentReport(ctx context.Context, studentID string, from, to *time.Time) (*dto.StudentRiskReportResponse, error)
}

// RiskHandler exposes the attendance risk sweep and report endpoints.
type RiskHandler struct {
	service riskService
	metrics *service.MetricsService
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
}

// NewRiskHandler constructs the handler.
func NewRiskHandler(svc riskService, metrics *service.MetricsService) *RiskHandler {
	return &RiskHandler{
		service: svc,
		metrics: metrics,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
	}
}

// Sweep runs the cron-triggered attendance risk sweep.
func (h *RiskHandler) Sweep(c *gin.Context) {
	start := time.Now()
	resp, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.ObserveSweep(time.Since(start), resp.AtRiskCount, resp.StudentsFailed)
	response.JSON(c, http.StatusOK, resp, nil)
}

// Report returns the latest at-risk report for instructors; `?format=csv`
// and `?format=pdf` download it as a document instead.
func (h *RiskHandler) Report(c *gin.Context) {
	resp, cacheHit, err := h.service.Report(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordCacheOperation(cacheHit)

	switch c.Query("format") {
	case "csv":
		payload, err := h.csv.Render(atRiskDataset(resp))
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="at_risk_report.csv"`)
		c.Data(http.StatusOK, "text/csv", payload)
		return
	case "pdf":
		payload, err := h.pdf.Render(atRiskDataset(resp), "At-Risk Attendance Report")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="at_risk_report.pdf"`)
		c.Data(http.StatusOK, "application/pdf", payload)
		return
	}

	meta := map[string]interface{}{"cache_hit": cacheHit}
	response.JSON(c, http.StatusOK, resp, nil, meta)
}

// StudentReport returns one student's marked history and derived risk summary.
func (h *RiskHandler) StudentReport(c *gin.Context) {
	studentID := c.Param("id")

	from, err := parseDateParam(c.Query("from"))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDateParam(c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp, err := h.service.StudentReport(c.Request.Context(), studentID, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

func atRiskDataset(resp *dto.AttendanceSweepResponse) export.Dataset {
	headers := []string{"student_id", "student_name", "cohort_id", "risk_level", "total_absences", "consecutive_misses", "attendance_pct", "last_attended_date"}
	rows := make([]map[string]string, 0, len(resp.AtRiskStudents))
	for _, s := range resp.AtRiskStudents {
		lastAttended := ""
		if s.LastAttendedDate != nil {
			lastAttended = s.LastAttendedDate.Format("2006-01-02")
		}
		rows = append(rows, map[string]string{
			"student_id":         s.StudentID,
			"student_name":       s.StudentName,
			"cohort_id":          s.CohortID,
			"risk_level":         string(s.RiskLevel),
			"total_absences":     fmt.Sprintf("%d", s.TotalAbsences),
			"consecutive_misses": fmt.Sprintf("%d", s.ConsecutiveMisses),
			"attendance_pct":     fmt.Sprintf("%d", s.AttendancePct),
			"last_attended_date": lastAttended,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
