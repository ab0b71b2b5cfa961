package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/internal/models"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
)

type capacitySiteRepository interface {
	FindByIDAndKind(ctx context.Context, id string, kind models.SiteKind) (*models.CapacitySite, error)
	CountCommittedPlacements(ctx context.Context, siteID string, date time.Time) (int, error)
	List(ctx context.Context, kind *models.SiteKind) ([]models.CapacitySite, error)
	UpdateMaxPerDay(ctx context.Context, id string, max *int, updatedAt time.Time) (*models.CapacitySite, error)
}

type capacityAuditor interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// ProjectCapacity is the pure capacity accountant. A site with no configured
// maximum gets maxPerDay as passed in; requested below one is treated as one.
func ProjectCapacity(maxPerDay, committed, requested int) models.CapacityProjection {
	if requested < 1 {
		requested = 1
	}
	projected := committed + requested

	proj := models.CapacityProjection{
		Projected:        projected,
		MaxPerDay:        maxPerDay,
		CurrentCommitted: committed,
		Allowed:          projected <= maxPerDay,
	}
	proj.WouldExceed = !proj.Allowed
	if maxPerDay > 0 {
		proj.UtilizationPercentage = int(math.Round(float64(projected) / float64(maxPerDay) * 100))
	}

	if proj.Allowed {
		proj.Message = fmt.Sprintf("OK: %d of %d student(s) (%d%% capacity)", projected, maxPerDay, proj.UtilizationPercentage)
	} else {
		over := projected - maxPerDay
		proj.Message = fmt.Sprintf("Over capacity: would be %d students (max %d) — %d over limit", projected, maxPerDay, over)
	}
	return proj
}

// CapacityService answers placement capacity questions for sites.
type CapacityService struct {
	sites            capacitySiteRepository
	audit            capacityAuditor
	validator        *validator.Validate
	logger           *zap.Logger
	defaultMaxPerDay int
}

// NewCapacityService constructs the capacity service.
func NewCapacityService(sites capacitySiteRepository, audit capacityAuditor, validate *validator.Validate, logger *zap.Logger, defaultMaxPerDay int) *CapacityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultMaxPerDay <= 0 {
		defaultMaxPerDay = 2
	}
	svc := &CapacityService{sites: sites, audit: audit, validator: validate, logger: logger, defaultMaxPerDay: defaultMaxPerDay}
	svc.validator.RegisterValidation("site_kind", func(fl validator.FieldLevel) bool {
		return models.SiteKind(fl.Field().String()).Valid()
	})
	return svc
}

// Check determines whether a proposed placement would exceed a site's daily cap.
func (s *CapacityService) Check(ctx context.Context, req dto.CapacityCheckRequest) (*dto.CapacityCheckResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid capacity check parameters")
	}

	kind := models.SiteKind(req.Source)
	date := time.Now().UTC().Truncate(24 * time.Hour)
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
		}
		date = parsed
	}

	site, err := s.sites.FindByIDAndKind(ctx, req.SiteID, kind)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "site not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site")
	}

	committed, err := s.sites.CountCommittedPlacements(ctx, site.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count placements")
	}

	maxPerDay := s.defaultMaxPerDay
	if site.MaxStudentsPerDay != nil {
		maxPerDay = *site.MaxStudentsPerDay
	}

	resp := &dto.CapacityCheckResponse{
		SiteID:             site.ID,
		SiteName:           site.Name,
		Source:             site.Kind,
		Date:               date.Format("2006-01-02"),
		CapacityProjection: ProjectCapacity(maxPerDay, committed, req.StudentCount),
	}
	return resp, nil
}

// ListSites returns sites, optionally filtered by kind.
func (s *CapacityService) ListSites(ctx context.Context, rawKind string) ([]models.CapacitySite, error) {
	var kind *models.SiteKind
	if rawKind != "" {
		k := models.SiteKind(rawKind)
		if !k.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid site kind")
		}
		kind = &k
	}
	sites, err := s.sites.List(ctx, kind)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sites")
	}
	return sites, nil
}

// UpdateSiteMax sets a site's configured daily maximum.
func (s *CapacityService) UpdateSiteMax(ctx context.Context, siteID string, req dto.SiteUpdateRequest, actorID string) (*models.CapacitySite, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid site update payload")
	}
	site, err := s.sites.UpdateMaxPerDay(ctx, siteID, req.MaxStudentsPerDay, time.Now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "site not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update site")
	}

	if s.audit != nil {
		values, _ := json.Marshal(map[string]interface{}{"max_students_per_day": req.MaxStudentsPerDay})
		if err := s.audit.Create(ctx, &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionSiteUpdate,
			Resource:   "capacity_site",
			ResourceID: &site.ID,
			NewValues:  values,
		}); err != nil {
			s.logger.Warn("failed to record site update audit log", zap.Error(err))
		}
	}
	return site, nil
}
