package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

func TestDashboardDAO_GetByIDOrSlug(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	dashboards := seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)
	ctx := adminCtx()

	byID, err := d.GetByIDOrSlug(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, dashboards[0].ID, byID.ID)

	byUUID, err := d.GetByIDOrSlug(ctx, "20000000-0000-4000-8000-000000000002")
	require.NoError(t, err)
	assert.Equal(t, "Private Draft", byUUID.DashboardTitle)

	bySlug, err := d.GetByIDOrSlug(ctx, "world-health")
	require.NoError(t, err)
	assert.Equal(t, "World Health", bySlug.DashboardTitle)
}

func TestDashboardDAO_GetByIDOrSlug_ForbiddenVsNotFound(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	dashboards := seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	// A dashboard hidden from the actor is forbidden, not absent.
	_, err := d.GetByIDOrSlug(userCtx(2), "3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrForbidden))

	// A dashboard that does not exist at all is not found.
	_, err = d.GetByIDOrSlug(userCtx(2), "9999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// The owner sees their own unpublished dashboard.
	own, err := d.GetByIDOrSlug(userCtx(3), "3")
	require.NoError(t, err)
	assert.Equal(t, dashboards[2].ID, own.ID)
}

func TestDashboardDAO_SlugUniqueness(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	dashboards := seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)
	ctx := adminCtx()

	unique, err := d.ValidateSlugUniqueness(ctx, "world-health")
	require.NoError(t, err)
	assert.False(t, unique)

	unique, err = d.ValidateSlugUniqueness(ctx, "fresh-slug")
	require.NoError(t, err)
	assert.True(t, unique)

	// Empty slugs never collide.
	unique, err = d.ValidateSlugUniqueness(ctx, "")
	require.NoError(t, err)
	assert.True(t, unique)

	// A dashboard keeping its own slug is not a conflict.
	unique, err = d.ValidateUpdateSlugUniqueness(ctx, dashboards[0].ID, "world-health")
	require.NoError(t, err)
	assert.True(t, unique)

	unique, err = d.ValidateUpdateSlugUniqueness(ctx, dashboards[1].ID, "world-health")
	require.NoError(t, err)
	assert.False(t, unique)
}

func TestDashboardDAO_ChartsAndDatasets(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	d := newTestDashboardDAO(t, db)
	ctx := adminCtx()

	database := entity.Database{DatabaseName: "analytics", UUID: "70000000-0000-4000-8000-000000000001"}
	require.NoError(t, db.Create(&database).Error)
	dataset := entity.Dataset{
		UUID:       "70000000-0000-4000-8000-000000000002",
		Name:       "events",
		DatabaseID: database.ID,
	}
	require.NoError(t, db.Create(&dataset).Error)

	chart := entity.Slice{
		UUID:           "70000000-0000-4000-8000-000000000003",
		SliceName:      "Events Over Time",
		DatasourceID:   dataset.ID,
		DatasourceType: "table",
	}
	require.NoError(t, db.Create(&chart).Error)

	dash := entity.Dashboard{
		UUID:           "70000000-0000-4000-8000-000000000004",
		DashboardTitle: "Analytics",
		Published:      true,
	}
	require.NoError(t, db.Create(&dash).Error)
	placeChartOnDashboard(t, db, &dash, &chart)

	charts, err := d.GetChartsForDashboard(ctx, dash.ID)
	require.NoError(t, err)
	require.Len(t, charts, 1)
	assert.Equal(t, "Events Over Time", charts[0].SliceName)

	datasets, err := d.GetDatasetsForDashboard(ctx, dash.ID)
	require.NoError(t, err)
	require.Len(t, datasets, 1)
	assert.Equal(t, "events", datasets[0].Name)

	// A dashboard with no charts has no datasets.
	empty := entity.Dashboard{
		UUID:           "70000000-0000-4000-8000-000000000005",
		DashboardTitle: "Empty",
		Published:      true,
	}
	require.NoError(t, db.Create(&empty).Error)
	datasets, err = d.GetDatasetsForDashboard(ctx, empty.ID)
	require.NoError(t, err)
	assert.Empty(t, datasets)
}

func TestDashboardDAO_Favorites(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	dashboards := seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)
	ctx := userCtx(2)

	all := []*entity.Dashboard{&dashboards[0], &dashboards[1]}

	favorited, err := d.FavoritedIDs(ctx, all)
	require.NoError(t, err)
	assert.Empty(t, favorited)

	require.NoError(t, d.AddFavorite(ctx, &dashboards[0]))
	// Adding twice leaves a single favorite row.
	require.NoError(t, d.AddFavorite(ctx, &dashboards[0]))

	favorited, err = d.FavoritedIDs(ctx, all)
	require.NoError(t, err)
	assert.Equal(t, []int{dashboards[0].ID}, favorited)

	var rows int64
	require.NoError(t, db.Model(&entity.FavStar{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	// Favorites are per-actor.
	otherFavs, err := d.FavoritedIDs(userCtx(3), all)
	require.NoError(t, err)
	assert.Empty(t, otherFavs)

	require.NoError(t, d.RemoveFavorite(ctx, &dashboards[0]))
	require.NoError(t, d.RemoveFavorite(ctx, &dashboards[0]))
	favorited, err = d.FavoritedIDs(ctx, all)
	require.NoError(t, err)
	assert.Empty(t, favorited)
}

func TestDashboardDAO_FavoritesAnonymous(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	dashboards := seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)
	ctx := anonCtx()

	// Anonymous favorite operations are silent no-ops.
	require.NoError(t, d.AddFavorite(ctx, &dashboards[0]))
	favorited, err := d.FavoritedIDs(ctx, []*entity.Dashboard{&dashboards[0]})
	require.NoError(t, err)
	assert.Empty(t, favorited)

	var rows int64
	require.NoError(t, db.Model(&entity.FavStar{}).Count(&rows).Error)
	assert.Zero(t, rows)
}
