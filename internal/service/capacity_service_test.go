package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medready/paramedic-ops-api/internal/dto"
	"github.com/medready/paramedic-ops-api/internal/models"
	appErrors "github.com/medready/paramedic-ops-api/pkg/errors"
)

type fakeSiteRepo struct {
	site      *models.CapacitySite
	siteErr   error
	committed int
	countErr  error
	sites     []models.CapacitySite
	updated   *models.CapacitySite
	updateErr error
}

func (f *fakeSiteRepo) FindByIDAndKind(context.Context, string, models.SiteKind) (*models.CapacitySite, error) {
	if f.siteErr != nil {
		return nil, f.siteErr
	}
	return f.site, nil
}

func (f *fakeSiteRepo) CountCommittedPlacements(context.Context, string, time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.committed, nil
}

func (f *fakeSiteRepo) List(context.Context, *models.SiteKind) ([]models.CapacitySite, error) {
	return f.sites, nil
}

func (f *fakeSiteRepo) UpdateMaxPerDay(context.Context, string, *int, time.Time) (*models.CapacitySite, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updated, nil
}

type fakeAuditor struct {
	logs []*models.AuditLog
	err  error
}

func (f *fakeAuditor) Create(_ context.Context, log *models.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, log)
	return nil
}

func intPtr(v int) *int { return &v }

func TestProjectCapacityWithinLimit(t *testing.T) {
	proj := ProjectCapacity(2, 1, 1)

	assert.True(t, proj.Allowed)
	assert.False(t, proj.WouldExceed)
	assert.Equal(t, 2, proj.Projected)
	assert.Equal(t, 100, proj.UtilizationPercentage)
	assert.Equal(t, "OK: 2 of 2 student(s) (100% capacity)", proj.Message)
}

func TestProjectCapacityOverLimit(t *testing.T) {
	proj := ProjectCapacity(2, 2, 1)

	assert.False(t, proj.Allowed)
	assert.True(t, proj.WouldExceed)
	assert.Equal(t, 3, proj.Projected)
	assert.Equal(t, 150, proj.UtilizationPercentage)
	assert.Equal(t, "Over capacity: would be 3 students (max 2) — 1 over limit", proj.Message)
}

func TestProjectCapacityZeroMax(t *testing.T) {
	proj := ProjectCapacity(0, 0, 1)

	assert.False(t, proj.Allowed)
	assert.Equal(t, 0, proj.UtilizationPercentage)
	assert.Equal(t, "Over capacity: would be 1 students (max 0) — 1 over limit", proj.Message)
}

func TestProjectCapacityDefaultsRequestedToOne(t *testing.T) {
	proj := ProjectCapacity(4, 1, 0)
	assert.Equal(t, 2, proj.Projected)
	assert.True(t, proj.Allowed)
	assert.Equal(t, 50, proj.UtilizationPercentage)
}

func TestProjectCapacityAllowedExclusiveWithWouldExceed(t *testing.T) {
	for maxPerDay := 0; maxPerDay <= 4; maxPerDay++ {
		for committed := 0; committed <= 5; committed++ {
			for requested := 1; requested <= 3; requested++ {
				proj := ProjectCapacity(maxPerDay, committed, requested)
				assert.NotEqual(t, proj.Allowed, proj.WouldExceed,
					"max=%d committed=%d requested=%d", maxPerDay, committed, requested)
				if maxPerDay == 0 {
					assert.Equal(t, 0, proj.UtilizationPercentage)
				}
			}
		}
	}
}

func TestCapacityCheckUsesConfiguredSiteMax(t *testing.T) {
	repo := &fakeSiteRepo{
		site:      &models.CapacitySite{ID: "site-1", Name: "County EMS", Kind: models.SiteKindAgency, MaxStudentsPerDay: intPtr(4)},
		committed: 2,
	}
	svc := NewCapacityService(repo, nil, nil, zap.NewNop(), 2)

	resp, err := svc.Check(context.Background(), dto.CapacityCheckRequest{
		SiteID:       "site-1",
		Source:       "agency",
		Date:         "2026-03-02",
		StudentCount: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, "County EMS", resp.SiteName)
	assert.Equal(t, "2026-03-02", resp.Date)
	assert.Equal(t, 4, resp.MaxPerDay)
	assert.True(t, resp.Allowed)
	assert.Equal(t, 75, resp.UtilizationPercentage)
}

func TestCapacityCheckFallsBackToDefaultMax(t *testing.T) {
	repo := &fakeSiteRepo{
		site:      &models.CapacitySite{ID: "site-1", Name: "Mercy Hospital", Kind: models.SiteKindClinicalSite},
		committed: 2,
	}
	svc := NewCapacityService(repo, nil, nil, zap.NewNop(), 2)

	resp, err := svc.Check(context.Background(), dto.CapacityCheckRequest{
		SiteID:       "site-1",
		Source:       "clinical_site",
		StudentCount: 1,
	})
	require.NoError(t, err)

	assert.False(t, resp.Allowed)
	assert.Equal(t, "Over capacity: would be 3 students (max 2) — 1 over limit", resp.Message)
}

func TestCapacityCheckUnknownSite(t *testing.T) {
	repo := &fakeSiteRepo{siteErr: sql.ErrNoRows}
	svc := NewCapacityService(repo, nil, nil, zap.NewNop(), 2)

	_, err := svc.Check(context.Background(), dto.CapacityCheckRequest{
		SiteID: "missing", Source: "agency", StudentCount: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCapacityCheckRejectsBadKind(t *testing.T) {
	svc := NewCapacityService(&fakeSiteRepo{}, nil, nil, zap.NewNop(), 2)

	_, err := svc.Check(context.Background(), dto.CapacityCheckRequest{
		SiteID: "site-1", Source: "hospital", StudentCount: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCapacityCheckRejectsBadDate(t *testing.T) {
	svc := NewCapacityService(&fakeSiteRepo{}, nil, nil, zap.NewNop(), 2)

	_, err := svc.Check(context.Background(), dto.CapacityCheckRequest{
		SiteID: "site-1", Source: "agency", Date: "03/02/2026", StudentCount: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestListSitesRejectsInvalidKind(t *testing.T) {
	svc := NewCapacityService(&fakeSiteRepo{}, nil, nil, zap.NewNop(), 2)

	_, err := svc.ListSites(context.Background(), "hospital")
	require.Error(t, err)
}

func TestUpdateSiteMaxRecordsAudit(t *testing.T) {
	repo := &fakeSiteRepo{updated: &models.CapacitySite{ID: "site-1", MaxStudentsPerDay: intPtr(3)}}
	audit := &fakeAuditor{}
	svc := NewCapacityService(repo, audit, nil, zap.NewNop(), 2)

	site, err := svc.UpdateSiteMax(context.Background(), "site-1", dto.SiteUpdateRequest{MaxStudentsPerDay: intPtr(3)}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 3, *site.MaxStudentsPerDay)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionSiteUpdate, audit.logs[0].Action)
}

func TestUpdateSiteMaxUnknownSite(t *testing.T) {
	repo := &fakeSiteRepo{updateErr: sql.ErrNoRows}
	svc := NewCapacityService(repo, nil, nil, zap.NewNop(), 2)

	_, err := svc.UpdateSiteMax(context.Background(), "missing", dto.SiteUpdateRequest{MaxStudentsPerDay: intPtr(3)}, "admin-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUpdateSiteMaxAuditFailureIsNonFatal(t *testing.T) {
	repo := &fakeSiteRepo{updated: &models.CapacitySite{ID: "site-1"}}
	audit := &fakeAuditor{err: errors.New("audit table locked")}
	svc := NewCapacityService(repo, audit, nil, zap.NewNop(), 2)

	_, err := svc.UpdateSiteMax(context.Background(), "site-1", dto.SiteUpdateRequest{MaxStudentsPerDay: intPtr(3)}, "admin-1")
	require.NoError(t, err)
}
