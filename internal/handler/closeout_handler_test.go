package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/internal/middleware"
	"github.com/medready/paramedic-ops-api/internal/models"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
)

type stubCloseoutService struct {
	checklist   *dto.CloseoutChecklistResponse
	finalized   *dto.CloseoutFinalizeResponse
	err         error
	lastActorID string
}

func (s *stubCloseoutService) Checklist(context.Context, string) (*dto.CloseoutChecklistResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.checklist, nil
}

func (s *stubCloseoutService) Finalize(_ context.Context, _ string, _ dto.CloseoutFinalizeRequest, actorID string) (*dto.CloseoutFinalizeResponse, error) {
	s.lastActorID = actorID
	if s.err != nil {
		return nil, s.err
	}
	return s.finalized, nil
}

func closeoutRouter(svc *stubCloseoutService, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	})
	h := NewCloseoutHandler(svc)
	r.GET("/internships/:id/closeout-checklist", h.Checklist)
	r.POST("/internships/:id/closeout", h.Finalize)
	return r
}

func TestCloseoutChecklistEndpoint(t *testing.T) {
	svc := &stubCloseoutService{checklist: &dto.CloseoutChecklistResponse{
		InternshipID: "i1",
		Checklist:    []models.ChecklistItem{{Key: models.ChecklistKeyWrittenExam, Label: "Written exam passed", AutoChecked: true}},
	}}
	r := closeoutRouter(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/internships/i1/closeout-checklist", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"written_exam_passed"`)
}

func TestCloseoutFinalizePassesActorFromSession(t *testing.T) {
	svc := &stubCloseoutService{finalized: &dto.CloseoutFinalizeResponse{
		InternshipID: "i1",
		CompletedAt:  time.Now().UTC(),
		CompletedBy:  "admin-1",
	}}
	r := closeoutRouter(svc, &models.JWTClaims{UserID: "admin-1", Email: "a@x.test"})

	body := bytes.NewBufferString(`{"checklist":[{"key":"written_exam_passed"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/internships/i1/closeout", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "admin-1", svc.lastActorID)
}

func TestCloseoutFinalizeWithoutSessionUnauthorized(t *testing.T) {
	r := closeoutRouter(&stubCloseoutService{}, nil)

	body := bytes.NewBufferString(`{"checklist":[{"key":"written_exam_passed"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/internships/i1/closeout", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCloseoutFinalizeRejectsBadBody(t *testing.T) {
	r := closeoutRouter(&stubCloseoutService{}, &models.JWTClaims{UserID: "admin-1"})

	req := httptest.NewRequest(http.MethodPost, "/internships/i1/closeout", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCloseoutFinalizeConflictSurfacesAs409(t *testing.T) {
	svc := &stubCloseoutService{err: appErrors.ErrFinalized}
	r := closeoutRouter(svc, &models.JWTClaims{UserID: "admin-1"})

	body := bytes.NewBufferString(`{"checklist":[{"key":"written_exam_passed"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/internships/i1/closeout", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Contains(t, resp.Body.String(), "closeout already completed")
}
