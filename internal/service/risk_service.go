package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/internal/models"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
)

type riskAttendanceRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error)
	StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceHistoryRow, error)
}

type riskCohortRepository interface {
	ListActive(ctx context.Context) ([]models.Cohort, error)
	ListStudents(ctx context.Context, cohortID string) ([]models.Student, error)
	FindStudent(ctx context.Context, studentID string) (*models.Student, error)
}

type sweepCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// sweepCacheKey stores the most recent sweep output.
const sweepCacheKey = "risk:sweep:latest"

// RiskThresholds are the fixed classification cutoffs.
type RiskThresholds struct {
	CriticalAbsences   int
	CriticalMissStreak int
	WarningAbsences    int
}

// DefaultRiskThresholds returns the program's standard cutoffs.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{CriticalAbsences: 3, CriticalMissStreak: 3, WarningAbsences: 2}
}

// Classify maps attendance counts to a risk tier.
func (t RiskThresholds) Classify(totalAbsences, consecutiveMisses int) models.RiskLevel {
	if totalAbsences >= t.CriticalAbsences || consecutiveMisses >= t.CriticalMissStreak {
		return models.RiskLevelCritical
	}
	if totalAbsences >= t.WarningAbsences {
		return models.RiskLevelWarning
	}
	return models.RiskLevelNone
}

// AttendanceFacts is the streak analyzer output for one student.
type AttendanceFacts struct {
	TotalMarked       int
	TotalAbsences     int
	ConsecutiveMisses int
	AttendancePct     int
	LastAttendedDate  *time.Time
}

// AnalyzeAttendance derives attendance facts from a student's marked rows,
// ordered oldest to newest. Unmarked sessions carry no row and therefore
// never enter the denominator. A student with no marked rows yields ok=false
// and is excluded from risk evaluation entirely.
func AnalyzeAttendance(records []models.AttendanceRecord) (AttendanceFacts, bool) {
	if len(records) == 0 {
		return AttendanceFacts{}, false
	}

	facts := AttendanceFacts{TotalMarked: len(records)}
	attended := 0
	for _, rec := range records {
		if rec.Status == models.AttendanceStatusAbsent {
			facts.TotalAbsences++
		}
		if rec.Status.Attended() {
			attended++
			date := rec.SessionDate
			facts.LastAttendedDate = &date
		}
	}

	// The streak counts only from the most recent end; any non-absent
	// status breaks it.
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Status != models.AttendanceStatusAbsent {
			break
		}
		facts.ConsecutiveMisses++
	}

	facts.AttendancePct = int(math.Round(float64(attended) / float64(len(records)) * 100))
	return facts, true
}

// SortRiskSummaries orders summaries for display: critical before warning,
// then descending total absences within a tier.
func SortRiskSummaries(summaries []models.StudentRiskSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].RiskLevel != summaries[j].RiskLevel {
			return summaries[i].RiskLevel.MoreSevereThan(summaries[j].RiskLevel)
		}
		return summaries[i].TotalAbsences > summaries[j].TotalAbsences
	})
}

// RiskService derives attendance risk signals across cohorts.
type RiskService struct {
	attendance riskAttendanceRepository
	cohorts    riskCohortRepository
	cache      sweepCache
	cacheTTL   time.Duration
	thresholds RiskThresholds
	logger     *zap.Logger
}

// NewRiskService constructs the risk service.
func NewRiskService(attendance riskAttendanceRepository, cohorts riskCohortRepository, cache sweepCache, cacheTTL time.Duration, thresholds RiskThresholds, logger *zap.Logger) *RiskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if thresholds == (RiskThresholds{}) {
		thresholds = DefaultRiskThresholds()
	}
	return &RiskService{
		attendance: attendance,
		cohorts:    cohorts,
		cache:      cache,
		cacheTTL:   cacheTTL,
		thresholds: thresholds,
		logger:     logger,
	}
}

// Sweep scans every active cohort and derives risk summaries per student.
// A failure on one student is logged and counted; the sweep continues.
func (s *RiskService) Sweep(ctx context.Context) (*dto.AttendanceSweepResponse, error) {
	cohorts, err := s.cohorts.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cohorts")
	}

	resp := &dto.AttendanceSweepResponse{
		AtRiskStudents: []models.StudentRiskSummary{},
		CohortsScanned: len(cohorts),
		GeneratedAt:    time.Now().UTC(),
	}

	for _, cohort := range cohorts {
		students, err := s.cohorts.ListStudents(ctx, cohort.ID)
		if err != nil {
			s.logger.Error("failed to list cohort students, skipping cohort",
				zap.String("cohort_id", cohort.ID), zap.Error(err))
			continue
		}
		for _, student := range students {
			summary, err := s.analyzeStudent(ctx, student, cohort.ID)
			if err != nil {
				resp.StudentsFailed++
				s.logger.Error("failed to analyze student attendance, continuing",
					zap.String("student_id", student.ID), zap.Error(err))
				continue
			}
			if summary == nil || summary.RiskLevel == models.RiskLevelNone {
				continue
			}
			resp.AtRiskStudents = append(resp.AtRiskStudents, *summary)
		}
	}

	SortRiskSummaries(resp.AtRiskStudents)
	for _, summary := range resp.AtRiskStudents {
		switch summary.RiskLevel {
		case models.RiskLevelCritical:
			resp.CriticalCount++
		case models.RiskLevelWarning:
			resp.WarningCount++
		}
	}
	resp.AtRiskCount = len(resp.AtRiskStudents)

	if s.cache != nil {
		if err := s.cache.Set(ctx, sweepCacheKey, resp, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache sweep result", zap.Error(err))
		}
	}

	return resp, nil
}

// Report returns the latest sweep output, serving the cached copy when fresh.
func (s *RiskService) Report(ctx context.Context) (*dto.AttendanceSweepResponse, bool, error) {
	if s.cache != nil {
		var cached dto.AttendanceSweepResponse
		if err := s.cache.Get(ctx, sweepCacheKey, &cached); err == nil {
			return &cached, true, nil
		}
	}
	resp, err := s.Sweep(ctx)
	if err != nil {
		return nil, false, err
	}
	return resp, false, nil
}

// StudentReport returns a student's marked history and derived risk summary.
// A student with no marked sessions gets history only, no summary.
func (s *RiskService) StudentReport(ctx context.Context, studentID string, from, to *time.Time) (*dto.StudentRiskReportResponse, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id required")
	}
	student, err := s.cohorts.FindStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	history, err := s.attendance.StudentHistory(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch attendance history")
	}
	cohortID := ""
	if student.CohortID != nil {
		cohortID = *student.CohortID
	}
	summary, err := s.analyzeStudent(ctx, *student, cohortID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive risk summary")
	}
	return &dto.StudentRiskReportResponse{History: history, Summary: summary}, nil
}

// analyzeStudent recomputes a fresh summary from stored rows; nothing is persisted.
func (s *RiskService) analyzeStudent(ctx context.Context, student models.Student, cohortID string) (*models.StudentRiskSummary, error) {
	records, err := s.attendance.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	facts, ok := AnalyzeAttendance(records)
	if !ok {
		return nil, nil
	}
	return &models.StudentRiskSummary{
		StudentID:           student.ID,
		StudentName:         student.FullName,
		CohortID:            cohortID,
		TotalSessionsMarked: facts.TotalMarked,
		TotalAbsences:       facts.TotalAbsences,
		ConsecutiveMisses:   facts.ConsecutiveMisses,
		AttendancePct:       facts.AttendancePct,
		LastAttendedDate:    facts.LastAttendedDate,
		RiskLevel:           s.thresholds.Classify(facts.TotalAbsences, facts.ConsecutiveMisses),
	}, nil
}
