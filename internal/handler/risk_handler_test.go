package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/internal/models"
	"github.com/medready/paramedic-ops-api/internal/service"
)

type stubRiskService struct {
	sweep    *dto.AttendanceSweepResponse
	report   *dto.AttendanceSweepResponse
	student  *dto.StudentRiskReportResponse
	cacheHit bool
	err      error
}

func (s *stubRiskService) Sweep(context.Context) (*dto.AttendanceSweepResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sweep, nil
}

func (s *stubRiskService) Report(context.Context) (*dto.AttendanceSweepResponse, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	return s.report, s.cacheHit, nil
}

func (s *stubRiskService) StudentReport(context.Context, string, *time.Time, *time.Time) (*dto.StudentRiskReportResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.student, nil
}

func riskRouter(svc *stubRiskService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewRiskHandler(svc, service.NewMetricsService())
	r.POST("/cron/attendance-sweep", h.Sweep)
	r.GET("/reports/at-risk", h.Report)
	r.GET("/students/:id/attendance", h.StudentReport)
	return r
}

func sweepFixture() *dto.AttendanceSweepResponse {
	return &dto.AttendanceSweepResponse{
		AtRiskCount:   1,
		CriticalCount: 1,
		AtRiskStudents: []models.StudentRiskSummary{{
			StudentID:         "s1",
			StudentName:       "Critical Student",
			CohortID:          "cohort-1",
			TotalAbsences:     3,
			ConsecutiveMisses: 3,
			AttendancePct:     25,
			RiskLevel:         models.RiskLevelCritical,
		}},
		CohortsScanned: 1,
		GeneratedAt:    time.Now().UTC(),
	}
}

func TestSweepEndpointReturnsCounts(t *testing.T) {
	r := riskRouter(&stubRiskService{sweep: sweepFixture()})

	req := httptest.NewRequest(http.MethodPost, "/cron/attendance-sweep", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"at_risk_count":1`)
	assert.Contains(t, resp.Body.String(), `"critical"`)
}

func TestReportEndpointExposesCacheMeta(t *testing.T) {
	r := riskRouter(&stubRiskService{report: sweepFixture(), cacheHit: true})

	req := httptest.NewRequest(http.MethodGet, "/reports/at-risk", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"cache_hit":true`)
}

func TestReportEndpointCSVDownload(t *testing.T) {
	r := riskRouter(&stubRiskService{report: sweepFixture()})

	req := httptest.NewRequest(http.MethodGet, "/reports/at-risk?format=csv", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/csv", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "at_risk_report.csv")
	assert.Contains(t, resp.Body.String(), "student_id")
	assert.Contains(t, resp.Body.String(), "Critical Student")
}

func TestReportEndpointPDFDownload(t *testing.T) {
	r := riskRouter(&stubRiskService{report: sweepFixture()})

	req := httptest.NewRequest(http.MethodGet, "/reports/at-risk?format=pdf", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "at_risk_report.pdf")
	require.True(t, resp.Body.Len() > 4)
	assert.Equal(t, "%PDF", resp.Body.String()[:4])
}

func TestStudentReportEndpointRejectsBadDate(t *testing.T) {
	r := riskRouter(&stubRiskService{student: &dto.StudentRiskReportResponse{}})

	req := httptest.NewRequest(http.MethodGet, "/students/s1/attendance?from=yesterday", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStudentReportEndpointReturnsHistory(t *testing.T) {
	r := riskRouter(&stubRiskService{student: &dto.StudentRiskReportResponse{
		History: []models.AttendanceHistoryRow{{SessionID: "lab-1", Status: models.AttendanceStatusPresent}},
	}})

	req := httptest.NewRequest(http.MethodGet, "/students/s1/attendance", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"lab-1"`)
}
