package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/medready/paramedic-ops-api/internal/models"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
)

type attendanceWriteRepository interface {
	Upsert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
	BulkInsert(ctx context.Context, records []models.AttendanceRecord, atomic bool) ([]models.AttendanceRecord, error)
}

// AttendanceService coordinates lab attendance marking workflows.
type AttendanceService struct {
	repo      attendanceWriteRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceWriteRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	svc.validator.RegisterValidation("bulk_mode", func(fl validator.FieldLevel) bool {
		mode := models.BulkOperationMode(fl.Field().String())
		return mode == models.BulkModeAtomic || mode == models.BulkModePartialOnError
	})
	return svc
}

// MarkAttendanceRequest describes payload for marking one student's session attendance.
type MarkAttendanceRequest struct {
	StudentID   string  `json:"student_id" validate:"required"`
	SessionID   string  `json:"session_id" validate:"required"`
	SessionDate string  `json:"session_date" validate:"required"`
	Status      string  `json:"status" validate:"required,attendance_status"`
	Notes       *string `json:"notes"`
}

// BulkAttendanceItem holds entries for bulk operations.
type BulkAttendanceItem struct {
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Notes     *string `json:"notes"`
}

// BulkMarkAttendanceRequest describes the bulk mark payload for one session.
type BulkMarkAttendanceRequest struct {
	SessionID   string               `json:"session_id" validate:"required"`
	SessionDate string               `json:"session_date" validate:"required"`
	Mode        string               `json:"mode" validate:"required,bulk_mode"`
	Items       []BulkAttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// BulkAttendanceResult summarises bulk execution.
type BulkAttendanceResult struct {
	Processed int                             `json:"processed"`
	Success   int                             `json:"success"`
	Conflicts []models.AttendanceBulkConflict `json:"conflicts,omitempty"`
}

// Mark records one student's attendance for a session.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	record := &models.AttendanceRecord{
		StudentID:   req.StudentID,
		SessionID:   req.SessionID,
		SessionDate: date,
		Status:      models.AttendanceStatus(strings.ToUpper(req.Status)),
		Notes:       req.Notes,
	}
	stored, err := s.repo.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	return stored, nil
}

// BulkMark records attendance for many students in one session.
func (s *AttendanceService) BulkMark(ctx context.Context, req BulkMarkAttendanceRequest) (*BulkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	date, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	mode := models.BulkOperationMode(req.Mode)
	seen := map[string]struct{}{}
	records := make([]models.AttendanceRecord, len(req.Items))
	for i, item := range req.Items {
		key := fmt.Sprintf("%s|%s", item.StudentID, req.SessionID)
		if _, ok := seen[key]; ok {
			return nil, appErrors.Clone(appErrors.ErrConflict, "duplicate student in payload")
		}
		seen[key] = struct{}{}
		records[i] = models.AttendanceRecord{
			StudentID:   item.StudentID,
			SessionID:   req.SessionID,
			SessionDate: date,
			Status:      models.AttendanceStatus(strings.ToUpper(item.Status)),
			Notes:       item.Notes,
		}
	}
	conflicts, err := s.repo.BulkInsert(ctx, records, mode == models.BulkModeAtomic)
	if err != nil {
		if mode == models.BulkModeAtomic {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, err.Error())
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "bulk mark failed")
	}
	result := &BulkAttendanceResult{Processed: len(records), Success: len(records) - len(conflicts)}
	if len(conflicts) > 0 {
		result.Conflicts = make([]models.AttendanceBulkConflict, len(conflicts))
		for i, conflict := range conflicts {
			result.Conflicts[i] = models.AttendanceBulkConflict{
				StudentID: conflict.StudentID,
				SessionID: conflict.SessionID,
				Date:      conflict.SessionDate,
				Reason:    "duplicate record",
			}
		}
	}
	return result, nil
}
