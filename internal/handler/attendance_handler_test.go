package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medready/paramedic-ops-api/internal/models"
	"github.com/medready/paramedic-ops-api/internal/service"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
)

type stubAttendanceService struct {
	record  *models.AttendanceRecord
	bulk    *service.BulkAttendanceResult
	err     error
	lastReq service.MarkAttendanceRequest
}

func (s *stubAttendanceService) Mark(_ context.Context, req service.MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.record, nil
}

func (s *stubAttendanceService) BulkMark(context.Context, service.BulkMarkAttendanceRequest) (*service.BulkAttendanceResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.bulk, nil
}

func attendanceRouter(svc *stubAttendanceService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAttendanceHandler(svc)
	r.POST("/attendance", h.Mark)
	r.POST("/attendance/bulk", h.BulkMark)
	return r
}

func TestMarkEndpoint(t *testing.T) {
	svc := &stubAttendanceService{record: &models.AttendanceRecord{ID: "a1", Status: models.AttendanceStatusPresent}}
	r := attendanceRouter(svc)

	body := bytes.NewBufferString(`{"student_id":"s1","session_id":"lab-1","session_date":"2026-03-02","status":"present"}`)
	req := httptest.NewRequest(http.MethodPost, "/attendance", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "s1", svc.lastReq.StudentID)
	assert.Contains(t, resp.Body.String(), `"PRESENT"`)
}

func TestMarkEndpointRejectsBadBody(t *testing.T) {
	r := attendanceRouter(&stubAttendanceService{})

	req := httptest.NewRequest(http.MethodPost, "/attendance", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBulkMarkEndpointSurfacesConflicts(t *testing.T) {
	svc := &stubAttendanceService{bulk: &service.BulkAttendanceResult{
		Processed: 2,
		Success:   1,
		Conflicts: []models.AttendanceBulkConflict{{StudentID: "s2", SessionID: "lab-1", Reason: "duplicate record"}},
	}}
	r := attendanceRouter(svc)

	body := bytes.NewBufferString(`{"session_id":"lab-1","session_date":"2026-03-02","mode":"partialOnError","items":[{"student_id":"s1","status":"present"},{"student_id":"s2","status":"late"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/attendance/bulk", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"duplicate record"`)
}

func TestBulkMarkEndpointAtomicConflict(t *testing.T) {
	svc := &stubAttendanceService{err: appErrors.Clone(appErrors.ErrConflict, "duplicate student in payload")}
	r := attendanceRouter(svc)

	body := bytes.NewBufferString(`{"session_id":"lab-1","session_date":"2026-03-02","mode":"atomic","items":[{"student_id":"s1","status":"present"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/attendance/bulk", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)
}
