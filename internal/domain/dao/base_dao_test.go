package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

func seedDashboards(t *testing.T, db *gorm.DB) []entity.Dashboard {
	t.Helper()
	slug := "world-health"
	dashboards := []entity.Dashboard{
		{
			UUID:           "20000000-0000-4000-8000-000000000001",
			DashboardTitle: "World Health",
			Slug:           &slug,
			Published:      true,
			CreatedByID:    intPtr(2),
		},
		{
			UUID:           "20000000-0000-4000-8000-000000000002",
			DashboardTitle: "Private Draft",
			Published:      false,
			CreatedByID:    intPtr(2),
		},
		{
			UUID:           "20000000-0000-4000-8000-000000000003",
			DashboardTitle: "Someone Else's Draft",
			Published:      false,
			CreatedByID:    intPtr(3),
		},
	}
	require.NoError(t, db.Create(&dashboards).Error)
	return dashboards
}

func TestBaseDAO_New_RequiresPrimaryKey(t *testing.T) {
	db := setupTestDB(t)

	type noKey struct {
		Name string
	}
	_, err := New[noKey](db, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestBaseDAO_FindByID(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	dashboards := seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	found, err := d.FindByID(adminCtx(), dashboards[0].ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "World Health", found.DashboardTitle)

	// String ids coerce to the column type.
	found, err = d.FindByID(adminCtx(), "1")
	require.NoError(t, err)
	assert.NotNil(t, found)

	// Misses are values, not errors.
	found, err = d.FindByID(adminCtx(), 99999)
	assert.NoError(t, err)
	assert.Nil(t, found)

	// Unknown lookup columns also miss without erroring.
	found, err = d.FindByID(adminCtx(), 1, OnColumn("no_such_column"))
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestBaseDAO_FindByUUID(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	found, err := d.FindByUUID(adminCtx(), "20000000-0000-4000-8000-000000000002")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Private Draft", found.DashboardTitle)

	// A malformed uuid is a miss, not a query.
	found, err = d.FindByUUID(adminCtx(), "not-a-uuid")
	assert.NoError(t, err)
	assert.Nil(t, found)

	// An entity without a uuid column always misses.
	logDAO, err := New[entity.Log](db, zaptest.NewLogger(t))
	require.NoError(t, err)
	row, err := logDAO.FindByUUID(adminCtx(), "20000000-0000-4000-8000-000000000002")
	assert.NoError(t, err)
	assert.Nil(t, row)
}

func TestBaseDAO_FindBySlug(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	found, err := d.FindBySlug(adminCtx(), "world-health")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "World Health", found.DashboardTitle)

	found, err = d.FindBySlug(adminCtx(), "missing-slug")
	assert.NoError(t, err)
	assert.Nil(t, found)
}

func TestBaseDAO_FindByIDOrUUID(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	dashboards := seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	byID, err := d.FindByIDOrUUID(adminCtx(), "1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, dashboards[0].ID, byID.ID)

	byUUID, err := d.FindByIDOrUUID(adminCtx(), "20000000-0000-4000-8000-000000000003")
	require.NoError(t, err)
	require.NotNil(t, byUUID)
	assert.Equal(t, "Someone Else's Draft", byUUID.DashboardTitle)
}

func TestBaseDAO_FindByIDs(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	dashboards := seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	found, err := d.FindByIDs(adminCtx(), []any{dashboards[0].ID, "2"})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	// Unconvertible members stay in the IN-list and simply match nothing.
	found, err = d.FindByIDs(adminCtx(), []any{dashboards[0].ID, "not-an-id"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = d.FindByIDs(adminCtx(), []any{})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestBaseDAO_FindOneOrNone(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	one, err := d.FindOneOrNone(adminCtx(), map[string]any{"dashboard_title": "World Health"})
	require.NoError(t, err)
	assert.NotNil(t, one)

	none, err := d.FindOneOrNone(adminCtx(), map[string]any{"dashboard_title": "No Such Dashboard"})
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = d.FindOneOrNone(adminCtx(), map[string]any{"created_by_id": 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConflict))
}

func TestBaseDAO_VisibilityFilter(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	// Admins see everything.
	all, err := d.FindAll(adminCtx())
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// A regular user sees published dashboards plus their own.
	mine, err := d.FindAll(userCtx(2))
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// Another user's unpublished dashboard is invisible.
	hidden, err := d.FindByID(userCtx(2), 3)
	require.NoError(t, err)
	assert.Nil(t, hidden)

	// Anonymous callers only see published rows.
	public, err := d.FindAll(WithActor(adminCtx(), nil))
	require.NoError(t, err)
	assert.Len(t, public, 1)

	// SkipBaseFilter bypasses visibility for internal callers.
	unfiltered, err := d.FindByID(userCtx(2), 3, SkipBaseFilter())
	require.NoError(t, err)
	assert.NotNil(t, unfiltered)
}

func TestBaseDAO_CreateUpdateDelete(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	d := newTestDashboardDAO(t, db)
	ctx := adminCtx()

	dash := &entity.Dashboard{
		UUID:           "30000000-0000-4000-8000-000000000001",
		DashboardTitle: "Lifecycle",
		Published:      true,
	}
	require.NoError(t, d.Create(ctx, dash))
	assert.NotZero(t, dash.ID)

	dash.DashboardTitle = "Lifecycle v2"
	require.NoError(t, d.Update(ctx, dash))

	reloaded, err := d.FindByID(ctx, dash.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, "Lifecycle v2", reloaded.DashboardTitle)

	require.NoError(t, d.UpdateAttributes(ctx, reloaded, map[string]any{"css": ".x{}"}))
	reloaded, err = d.FindByID(ctx, dash.ID)
	require.NoError(t, err)
	assert.Equal(t, ".x{}", reloaded.CSS)
	assert.Equal(t, "Lifecycle v2", reloaded.DashboardTitle)

	require.NoError(t, d.Delete(ctx, []*entity.Dashboard{reloaded}))
	gone, err := d.FindByID(ctx, dash.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestBaseDAO_QueryAndFilterBy(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	published, err := d.FilterBy(adminCtx(), map[string]any{"published": true})
	require.NoError(t, err)
	assert.Len(t, published, 1)

	shaped, err := d.Query(adminCtx(), func(tx *gorm.DB) *gorm.DB {
		return tx.Where("dashboard_title LIKE ?", "%Draft%")
	})
	require.NoError(t, err)
	assert.Len(t, shaped, 2)
}

func TestBaseDAO_Count(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	total, err := d.Count(adminCtx(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	drafts, err := d.Count(adminCtx(), []ColumnOperatorFilter{
		{Col: "published", Opr: OpEq, Value: false},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), drafts)

	// Visibility applies to counts too.
	visible, err := d.Count(userCtx(3), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), visible)
}

func TestBaseDAO_FilterableColumnsAndOperators(t *testing.T) {
	db := setupTestDB(t)
	d, err := New[entity.Dashboard](db, zaptest.NewLogger(t),
		WithVirtualColumn[entity.Dashboard]("title_or_slug", "COALESCE(slug, dashboard_title)"))
	require.NoError(t, err)

	columns := d.FilterableColumnsAndOperators()

	require.Contains(t, columns, "dashboard_title")
	assert.Contains(t, columns["dashboard_title"], OpILike)

	require.Contains(t, columns, "published")
	assert.NotContains(t, columns["published"], OpGt)

	require.Contains(t, columns, "changed_on")
	assert.Contains(t, columns["changed_on"], OpGte)

	// Virtual columns expose the string operator set.
	require.Contains(t, columns, "title_or_slug")
	assert.Contains(t, columns["title_or_slug"], OpLike)

	// Relationships are not filterable columns.
	assert.NotContains(t, columns, "Owners")
}
