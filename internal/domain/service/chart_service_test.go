package service

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/internal/testutil"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

func newChartServiceForTest(t *testing.T, db *gorm.DB) (ChartService, *dao.ChartDAO, *dao.DashboardDAO, *dao.ReportDAO) {
	t.Helper()
	log := testutil.NewTestLogger(t)
	charts, err := dao.NewChartDAO(db, log)
	require.NoError(t, err)
	dashboards, err := dao.NewDashboardDAO(db, log)
	require.NoError(t, err)
	reports, err := dao.NewReportDAO(db, log)
	require.NoError(t, err)
	return NewChartService(charts, dashboards, reports, log), charts, dashboards, reports
}

func intRef(v int) *int {
	return &v
}

func TestChartService_Get(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUsers(t, db)
	svc, _, _, _ := newChartServiceForTest(t, db)
	ctx := testutil.AdminContext()

	chart := entity.Slice{UUID: "d0000000-0000-4000-8000-000000000001", SliceName: "Found", Certified: true}
	require.NoError(t, db.Create(&chart).Error)

	byID, err := svc.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, chart.ID, byID.ID)

	byUUID, err := svc.Get(ctx, chart.UUID)
	require.NoError(t, err)
	assert.Equal(t, chart.ID, byUUID.ID)

	_, err = svc.Get(ctx, "999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestChartService_Delete(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUsers(t, db)
	svc, charts, _, _ := newChartServiceForTest(t, db)
	ctx := testutil.AdminContext()

	chart := entity.Slice{UUID: "d1000000-0000-4000-8000-000000000001", SliceName: "Doomed"}
	require.NoError(t, db.Create(&chart).Error)

	dash := entity.Dashboard{
		UUID:           "d1000000-0000-4000-8000-000000000002",
		DashboardTitle: "Hosting",
		Published:      true,
		JSONMetadata:   fmt.Sprintf(`{"timed_refresh_immune_slices": [%d]}`, chart.ID),
	}
	require.NoError(t, db.Create(&dash).Error)
	require.NoError(t, db.Model(&dash).Association("Slices").Append(&chart))

	require.NoError(t, svc.Delete(ctx, []int{chart.ID}))

	gone, err := charts.FindByID(ctx, chart.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// The dashboard's metadata no longer references the chart.
	var reloaded entity.Dashboard
	require.NoError(t, db.First(&reloaded, dash.ID).Error)
	var md map[string]any
	require.NoError(t, json.Unmarshal([]byte(reloaded.JSONMetadata), &md))
	assert.Empty(t, md["timed_refresh_immune_slices"])
}

func TestChartService_Delete_MissingChart(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUsers(t, db)
	svc, _, _, _ := newChartServiceForTest(t, db)

	err := svc.Delete(testutil.AdminContext(), []int{12345})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestChartService_Delete_BlockedByReport(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUsers(t, db)
	svc, charts, _, _ := newChartServiceForTest(t, db)
	ctx := testutil.AdminContext()

	chart := entity.Slice{UUID: "d2000000-0000-4000-8000-000000000001", SliceName: "Referenced"}
	require.NoError(t, db.Create(&chart).Error)
	report := entity.ReportSchedule{
		Type:        entity.ReportTypeReport,
		Name:        "Weekly Chart Mail",
		ChartID:     intRef(chart.ID),
		CreatedByID: intRef(1),
	}
	require.NoError(t, db.Create(&report).Error)

	err := svc.Delete(ctx, []int{chart.ID})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForeignDependency))
	assert.Contains(t, err.Error(), "Weekly Chart Mail")

	// The chart survives a blocked delete.
	still, err := charts.FindByID(ctx, chart.ID)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestChartService_Favorites(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUsers(t, db)
	svc, _, _, _ := newChartServiceForTest(t, db)
	ctx := testutil.UserContext(2)

	chart := entity.Slice{UUID: "d3000000-0000-4000-8000-000000000001", SliceName: "Starred", Certified: true}
	require.NoError(t, db.Create(&chart).Error)

	require.NoError(t, svc.AddFavorite(ctx, chart.ID))
	favorited, err := svc.FavoritedIDs(ctx, []int{chart.ID})
	require.NoError(t, err)
	assert.Equal(t, []int{chart.ID}, favorited)

	require.NoError(t, svc.RemoveFavorite(ctx, chart.ID))
	favorited, err = svc.FavoritedIDs(ctx, []int{chart.ID})
	require.NoError(t, err)
	assert.Empty(t, favorited)

	err = svc.AddFavorite(ctx, 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
