package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/internal/models"
	"github.com/medready/paramedic-ops-api/internal/repository"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
)

type closeoutInternshipRepository interface {
	FindByID(ctx context.Context, id string) (*models.Internship, error)
	CompleteCloseout(ctx context.Context, id, completedBy string, completedAt time.Time) error
}

type closeoutAuditor interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// BuildChecklist derives the eight fixed closeout gates from an internship's
// stored fields. Overrides are caller-supplied per key and default to false.
// The list is rebuilt on every call; only the final completion stamp persists.
func BuildChecklist(internship *models.Internship, requiredHours float64, overrides map[models.ChecklistKey]bool) []models.ChecklistItem {
	hoursMet := internship.TotalVerifiedHours >= requiredHours
	hoursDetail := fmt.Sprintf("%.0f/%.0f hours", internship.TotalVerifiedHours, requiredHours)

	items := []models.ChecklistItem{
		{
			Key:         models.ChecklistKeyShiftsCompleted,
			Label:       "All required shifts completed",
			AutoChecked: hoursMet,
			Details:     hoursDetail,
		},
		{
			Key:         models.ChecklistKeyFinalEvaluation,
			Label:       "Final evaluation submitted",
			AutoChecked: internship.FinalEvalSubmittedAt != nil,
			Details:     completionDetail(internship.FinalEvalSubmittedAt, "Not submitted"),
		},
		{
			Key:         models.ChecklistKeyPreceptorSignoff,
			Label:       "Preceptor sign-off received",
			AutoChecked: internship.PreceptorSignoffAt != nil,
			Details:     completionDetail(internship.PreceptorSignoffAt, "Not received"),
		},
		{
			Key:         models.ChecklistKeyHoursVerified,
			Label:       "Clinical hours verified",
			AutoChecked: hoursMet,
			Details:     hoursDetail,
		},
		{
			Key:         models.ChecklistKeyFieldDocSubmitted,
			Label:       "Field internship documentation submitted",
			AutoChecked: internship.FieldDocSubmittedAt != nil,
			Details:     completionDetail(internship.FieldDocSubmittedAt, "Not submitted"),
		},
		{
			Key:         models.ChecklistKeyStateDocSubmitted,
			Label:       "State summary report submitted",
			AutoChecked: internship.StateDocSubmittedAt != nil,
			Details:     completionDetail(internship.StateDocSubmittedAt, "Not submitted"),
		},
		{
			Key:         models.ChecklistKeyWrittenExam,
			Label:       "Written exam passed",
			AutoChecked: internship.WrittenExamPassed,
			Details:     examDetail(internship.WrittenExamPassed, internship.WrittenExamDate),
		},
		{
			Key:         models.ChecklistKeyPsychomotorExam,
			Label:       "Psychomotor exam passed",
			AutoChecked: internship.PsychomotorExamPassed,
			Details:     examDetail(internship.PsychomotorExamPassed, internship.PsychomotorExamDate),
		},
	}

	for i := range items {
		if overrides[items[i].Key] {
			items[i].ManualOverride = true
		}
	}
	return items
}

func completionDetail(ts *time.Time, missing string) string {
	if ts == nil {
		return missing
	}
	return fmt.Sprintf("Completed %s", ts.Format("2006-01-02"))
}

func examDetail(passed bool, date *time.Time) string {
	if !passed {
		return "Not passed"
	}
	if date == nil {
		return "Passed"
	}
	return fmt.Sprintf("Passed %s", date.Format("2006-01-02"))
}

// checklistKeySet guards finalize payloads against unknown keys.
var checklistKeySet = map[models.ChecklistKey]struct{}{
	models.ChecklistKeyShiftsCompleted:   {},
	models.ChecklistKeyFinalEvaluation:   {},
	models.ChecklistKeyPreceptorSignoff:  {},
	models.ChecklistKeyHoursVerified:     {},
	models.ChecklistKeyFieldDocSubmitted: {},
	models.ChecklistKeyStateDocSubmitted: {},
	models.ChecklistKeyWrittenExam:       {},
	models.ChecklistKeyPsychomotorExam:   {},
}

// CloseoutService builds closeout checklists and finalizes internships.
type CloseoutService struct {
	repo          closeoutInternshipRepository
	audit         closeoutAuditor
	validator     *validator.Validate
	logger        *zap.Logger
	requiredHours float64
}

// NewCloseoutService constructs the closeout service.
func NewCloseoutService(repo closeoutInternshipRepository, audit closeoutAuditor, validate *validator.Validate, logger *zap.Logger, requiredHours float64) *CloseoutService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if requiredHours <= 0 {
		requiredHours = 480
	}
	return &CloseoutService{repo: repo, audit: audit, validator: validate, logger: logger, requiredHours: requiredHours}
}

// Checklist returns the rebuilt checklist for an internship.
func (s *CloseoutService) Checklist(ctx context.Context, internshipID string) (*dto.CloseoutChecklistResponse, error) {
	internship, err := s.loadInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	return &dto.CloseoutChecklistResponse{
		InternshipID:  internship.ID,
		StudentID:     internship.StudentID,
		RequiredHours: s.requiredHours,
		Completed:     internship.Completed(),
		CompletedAt:   internship.CloseoutCompletedAt,
		CompletedBy:   internship.CloseoutCompletedBy,
		Checklist:     BuildChecklist(internship, s.requiredHours, nil),
	}, nil
}

// Finalize stamps the closeout once every gate is auto-checked or overridden.
// The rejection message lists failing labels in the fixed gate order.
func (s *CloseoutService) Finalize(ctx context.Context, internshipID string, req dto.CloseoutFinalizeRequest, actorID string) (*dto.CloseoutFinalizeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid finalize payload")
	}

	overrides := make(map[models.ChecklistKey]bool, len(req.Checklist))
	for _, item := range req.Checklist {
		key := models.ChecklistKey(item.Key)
		if _, ok := checklistKeySet[key]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown checklist key: %s", item.Key))
		}
		if item.ManualOverride {
			overrides[key] = true
		}
	}

	internship, err := s.loadInternship(ctx, internshipID)
	if err != nil {
		return nil, err
	}
	if internship.Completed() {
		return nil, appErrors.ErrFinalized
	}

	checklist := BuildChecklist(internship, s.requiredHours, overrides)
	var missing []string
	for _, item := range checklist {
		if !item.Satisfied() {
			missing = append(missing, item.Label)
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("checklist items not satisfied: %s", strings.Join(missing, ", ")))
	}

	completedAt := time.Now().UTC()
	if err := s.repo.CompleteCloseout(ctx, internship.ID, actorID, completedAt); err != nil {
		if errors.Is(err, repository.ErrAlreadyCompleted) {
			return nil, appErrors.ErrFinalized
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to finalize closeout")
	}

	if s.audit != nil {
		values, _ := json.Marshal(map[string]interface{}{"completed_at": completedAt, "overrides": overrides})
		if err := s.audit.Create(ctx, &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionCloseoutFinalize,
			Resource:   "internship",
			ResourceID: &internship.ID,
			NewValues:  values,
		}); err != nil {
			s.logger.Warn("failed to record closeout audit log", zap.Error(err))
		}
	}

	return &dto.CloseoutFinalizeResponse{
		InternshipID: internship.ID,
		CompletedAt:  completedAt,
		CompletedBy:  actorID,
	}, nil
}

func (s *CloseoutService) loadInternship(ctx context.Context, id string) (*models.Internship, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "internship id required")
	}
	internship, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load internship")
	}
	return internship, nil
}
