package toolcore

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/internal/testutil"
)

func TestInstanceInfoCore_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUsers(t, db)
	log := testutil.NewTestLogger(t)

	dashboards, err := dao.NewDashboardDAO(db, log)
	require.NoError(t, err)
	charts, err := dao.NewChartDAO(db, log)
	require.NoError(t, err)

	require.NoError(t, db.Create(&[]entity.Dashboard{
		{UUID: "c0000000-0000-4000-8000-000000000001", DashboardTitle: "One", Published: true},
		{UUID: "c0000000-0000-4000-8000-000000000002", DashboardTitle: "Two", Published: true},
	}).Error)
	require.NoError(t, db.Create(&entity.Slice{
		UUID: "c0000000-0000-4000-8000-000000000003", SliceName: "Only", Certified: true,
	}).Error)

	calculators := map[string]MetricCalculator{
		"charts_per_dashboard": func(_ context.Context, counts map[string]int64, _ map[string]map[string]int64, _ map[string]CountingDAO) (any, error) {
			if counts["dashboards"] == 0 {
				return nil, nil
			}
			return float64(counts["charts"]) / float64(counts["dashboards"]), nil
		},
		"broken": func(context.Context, map[string]int64, map[string]map[string]int64, map[string]CountingDAO) (any, error) {
			return nil, fmt.Errorf("calculator blew up")
		},
		"omitted": func(context.Context, map[string]int64, map[string]map[string]int64, map[string]CountingDAO) (any, error) {
			return nil, nil
		},
	}

	core := NewInstanceInfoCore(
		map[string]CountingDAO{"dashboards": dashboards, "charts": charts},
		calculators,
		map[string]int{"last_7_days": 7},
		log,
	)

	info, err := core.Run(testutil.AdminContext())
	require.NoError(t, err)

	assert.Equal(t, int64(2), info.Counts["dashboards"])
	assert.Equal(t, int64(1), info.Counts["charts"])

	require.Contains(t, info.TimeMetrics, "last_7_days")
	window := info.TimeMetrics["last_7_days"]
	// Freshly created rows fall inside every window.
	assert.Equal(t, int64(2), window["dashboards_created"])
	assert.Equal(t, int64(2), window["dashboards_changed"])
	assert.Equal(t, int64(1), window["charts_created"])

	// A failing calculator is logged and dropped; a nil result is omitted.
	assert.Equal(t, 0.5, info.Metrics["charts_per_dashboard"])
	assert.NotContains(t, info.Metrics, "broken")
	assert.NotContains(t, info.Metrics, "omitted")

	assert.False(t, info.Timestamp.IsZero())
}

func TestInstanceInfoCore_Run_EmptyInstance(t *testing.T) {
	db := testutil.NewTestDB(t)
	log := testutil.NewTestLogger(t)

	dashboards, err := dao.NewDashboardDAO(db, log)
	require.NoError(t, err)

	core := NewInstanceInfoCore(
		map[string]CountingDAO{"dashboards": dashboards},
		nil,
		map[string]int{"last_30_days": 30},
		log,
	)

	info, err := core.Run(testutil.AdminContext())
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Counts["dashboards"])
	assert.Equal(t, int64(0), info.TimeMetrics["last_30_days"]["dashboards_created"])
	assert.Empty(t, info.Metrics)
}
