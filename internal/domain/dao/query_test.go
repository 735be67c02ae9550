package dao

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

func seedManyDashboards(t *testing.T, db *gorm.DB, n int) {
	t.Helper()
	dashboards := make([]entity.Dashboard, n)
	for i := range dashboards {
		dashboards[i] = entity.Dashboard{
			UUID:           fmt.Sprintf("40000000-0000-4000-8000-%012d", i+1),
			DashboardTitle: fmt.Sprintf("Dashboard %03d", i+1),
			Published:      true,
		}
	}
	require.NoError(t, db.Create(&dashboards).Error)
}

func TestList_Pagination(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedManyDashboards(t, db, 25)
	d := newTestDashboardDAO(t, db)

	page0, err := d.List(adminCtx(), ListOptions{PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page0.Rows, 10)
	assert.Equal(t, int64(25), page0.TotalCount)
	assert.Equal(t, 0, page0.Page)
	assert.Equal(t, 3, page0.TotalPages())
	assert.True(t, page0.HasNext())
	assert.False(t, page0.HasPrevious())

	page2, err := d.List(adminCtx(), ListOptions{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page2.Rows, 5)
	assert.False(t, page2.HasNext())
	assert.True(t, page2.HasPrevious())

	// Pages past the data are empty, never an error.
	page9, err := d.List(adminCtx(), ListOptions{Page: 9, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, page9.Rows)
	assert.Equal(t, int64(25), page9.TotalCount)
}

func TestList_DefaultPageSize(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedManyDashboards(t, db, 3)
	d := newTestDashboardDAO(t, db)

	result, err := d.List(adminCtx(), ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, result.PageSize)
	assert.Len(t, result.Rows, 3)
	assert.Equal(t, 1, result.TotalPages())
	assert.False(t, result.HasNext())
}

func TestList_Ordering(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedManyDashboards(t, db, 5)
	d := newTestDashboardDAO(t, db)

	asc, err := d.List(adminCtx(), ListOptions{OrderColumn: "dashboard_title", OrderDirection: "asc"})
	require.NoError(t, err)
	require.Len(t, asc.Rows, 5)
	assert.Equal(t, "Dashboard 001", asc.Rows[0].DashboardTitle)

	desc, err := d.List(adminCtx(), ListOptions{OrderColumn: "dashboard_title", OrderDirection: "desc"})
	require.NoError(t, err)
	assert.Equal(t, "Dashboard 005", desc.Rows[0].DashboardTitle)

	// An unknown order column is ignored rather than failing the query.
	_, err = d.List(adminCtx(), ListOptions{OrderColumn: "nope"})
	assert.NoError(t, err)
}

func TestList_Search(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedManyDashboards(t, db, 12)
	d := newTestDashboardDAO(t, db)

	result, err := d.List(adminCtx(), ListOptions{
		Search:        "board 01",
		SearchColumns: []string{"dashboard_title", "slug"},
	})
	require.NoError(t, err)
	// Dashboard 010, 011, 012.
	assert.Equal(t, int64(3), result.TotalCount)

	// Case-insensitive.
	result, err = d.List(adminCtx(), ListOptions{
		Search:        "DASHBOARD 001",
		SearchColumns: []string{"dashboard_title"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalCount)
}

func TestList_ColumnOperators(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedManyDashboards(t, db, 9)
	d := newTestDashboardDAO(t, db)

	result, err := d.List(adminCtx(), ListOptions{
		ColumnOperators: []ColumnOperatorFilter{
			{Col: "id", Opr: OpLte, Value: "4"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), result.TotalCount)

	_, err = d.List(adminCtx(), ListOptions{
		ColumnOperators: []ColumnOperatorFilter{
			{Col: "id", Opr: ColumnOperator("regex"), Value: ".*"},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrUnsupportedOperator))

	_, err = d.List(adminCtx(), ListOptions{
		ColumnOperators: []ColumnOperatorFilter{
			{Col: "no_such_column", Opr: OpEq, Value: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidFilter))

	// A valid operator applied to the wrong column type is rejected.
	_, err = d.List(adminCtx(), ListOptions{
		ColumnOperators: []ColumnOperatorFilter{
			{Col: "published", Opr: OpGt, Value: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidFilter))
}

func TestList_ScalarProjection(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedManyDashboards(t, db, 2)
	d := newTestDashboardDAO(t, db)

	result, err := d.List(adminCtx(), ListOptions{
		Columns: []string{"id", "dashboard_title"},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"id", "dashboard_title"}, result.ColumnsLoaded)
	require.NotEmpty(t, result.Rows)
	// Unselected columns stay zero-valued.
	assert.Empty(t, result.Rows[0].UUID)
	assert.NotEmpty(t, result.Rows[0].DashboardTitle)
}

func TestList_PreloadForcesFullRows(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	d := newTestDashboardDAO(t, db)
	ctx := adminCtx()

	chart := entity.Slice{UUID: "41000000-0000-4000-8000-000000000001", SliceName: "Chart A"}
	require.NoError(t, db.Create(&chart).Error)
	dash := entity.Dashboard{
		UUID:           "41000000-0000-4000-8000-000000000002",
		DashboardTitle: "With Charts",
		Published:      true,
		Slices:         []entity.Slice{chart},
	}
	require.NoError(t, db.Create(&dash).Error)

	result, err := d.List(ctx, ListOptions{
		Columns: []string{"dashboard_title", "Slices"},
	})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	// A relationship projection loads full entities.
	assert.Empty(t, result.ColumnsLoaded)
	assert.NotEmpty(t, result.Rows[0].UUID)
	require.Len(t, result.Rows[0].Slices, 1)
	assert.Equal(t, "Chart A", result.Rows[0].Slices[0].SliceName)
}

func TestList_CountPrecedesPreloads(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	d := newTestDashboardDAO(t, db)
	ctx := adminCtx()

	charts := []entity.Slice{
		{UUID: "42000000-0000-4000-8000-000000000001", SliceName: "One"},
		{UUID: "42000000-0000-4000-8000-000000000002", SliceName: "Two"},
		{UUID: "42000000-0000-4000-8000-000000000003", SliceName: "Three"},
	}
	require.NoError(t, db.Create(&charts).Error)
	dash := entity.Dashboard{
		UUID:           "42000000-0000-4000-8000-000000000010",
		DashboardTitle: "Many Charts",
		Published:      true,
		Slices:         charts,
	}
	require.NoError(t, db.Create(&dash).Error)

	result, err := d.List(ctx, ListOptions{Columns: []string{"Slices"}})
	require.NoError(t, err)
	// One dashboard with three charts is still one row.
	assert.Equal(t, int64(1), result.TotalCount)
	require.Len(t, result.Rows, 1)
	assert.Len(t, result.Rows[0].Slices, 3)
}

func TestList_CustomFilters(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedManyDashboards(t, db, 6)
	d := newTestDashboardDAO(t, db)

	result, err := d.List(adminCtx(), ListOptions{
		CustomFilters: []CustomFilter{
			CustomFilterFunc(func(tx *gorm.DB) *gorm.DB {
				return tx.Where("id > ?", 4)
			}),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCount)
}

func TestList_SkipBaseFilter(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	seedDashboards(t, db)
	d := newTestDashboardDAO(t, db)

	filtered, err := d.List(userCtx(3), ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), filtered.TotalCount)

	unfiltered, err := d.List(userCtx(3), ListOptions{SkipBaseFilter: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), unfiltered.TotalCount)
}

func TestListResult_TotalPages(t *testing.T) {
	r := &ListResult[entity.Dashboard]{TotalCount: 0, PageSize: 10}
	assert.Equal(t, 0, r.TotalPages())
	assert.False(t, r.HasNext())

	r = &ListResult[entity.Dashboard]{TotalCount: 10, PageSize: 10}
	assert.Equal(t, 1, r.TotalPages())

	r = &ListResult[entity.Dashboard]{TotalCount: 11, PageSize: 10}
	assert.Equal(t, 2, r.TotalPages())

	r = &ListResult[entity.Dashboard]{TotalCount: 11, PageSize: 0}
	assert.Equal(t, 0, r.TotalPages())
}
