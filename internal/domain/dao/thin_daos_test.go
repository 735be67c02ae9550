package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

func TestUserDAO_FindByUsername(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	d, err := NewUserDAO(db, zaptest.NewLogger(t))
	require.NoError(t, err)

	user, err := d.FindByUsername(adminCtx(), "user2")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, 2, user.ID)

	missing, err := d.FindByUsername(adminCtx(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDatabaseDAO_FindByName(t *testing.T) {
	db := setupTestDB(t)
	d, err := NewDatabaseDAO(db, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := adminCtx()

	row := entity.Database{UUID: "90000000-0000-4000-8000-000000000001", DatabaseName: "warehouse"}
	require.NoError(t, db.Create(&row).Error)

	found, err := d.FindByName(ctx, "warehouse")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, row.ID, found.ID)

	missing, err := d.FindByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDatasetDAO_FindByDatabaseID(t *testing.T) {
	db := setupTestDB(t)
	d, err := NewDatasetDAO(db, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := adminCtx()

	database := entity.Database{UUID: "91000000-0000-4000-8000-000000000001", DatabaseName: "events_db"}
	require.NoError(t, db.Create(&database).Error)
	datasets := []entity.Dataset{
		{UUID: "91000000-0000-4000-8000-000000000002", Name: "events", DatabaseID: database.ID},
		{UUID: "91000000-0000-4000-8000-000000000003", Name: "users", DatabaseID: database.ID},
		{UUID: "91000000-0000-4000-8000-000000000004", Name: "elsewhere", DatabaseID: database.ID + 1},
	}
	require.NoError(t, db.Create(&datasets).Error)

	found, err := d.FindByDatabaseID(ctx, database.ID)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestTagDAO_FindTaggedObjects(t *testing.T) {
	db := setupTestDB(t)
	d, err := NewTagDAO(db, zaptest.NewLogger(t))
	require.NoError(t, err)
	ctx := adminCtx()

	tag := entity.Tag{Name: "finance", Type: entity.TagTypeCustom}
	require.NoError(t, db.Create(&tag).Error)
	tagged := []entity.TaggedObject{
		{TagID: tag.ID, ObjectID: 1, ObjectType: "dashboard"},
		{TagID: tag.ID, ObjectID: 2, ObjectType: "chart"},
	}
	require.NoError(t, db.Create(&tagged).Error)

	found, err := d.FindByName(ctx, "finance")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, tag.ID, found.ID)

	all, err := d.FindTaggedObjects(ctx, tag.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyDashboards, err := d.FindTaggedObjects(ctx, tag.ID, "dashboard")
	require.NoError(t, err)
	require.Len(t, onlyDashboards, 1)
	assert.Equal(t, 1, onlyDashboards[0].ObjectID)
}

func TestSavedQueryDAO_Visibility(t *testing.T) {
	db := setupTestDB(t)
	seedTestUsers(t, db)
	d, err := NewSavedQueryDAO(db, zaptest.NewLogger(t))
	require.NoError(t, err)

	database := entity.Database{UUID: "92000000-0000-4000-8000-000000000001", DatabaseName: "sqllab"}
	require.NoError(t, db.Create(&database).Error)

	queries := []entity.SavedQuery{
		{UUID: "92000000-0000-4000-8000-000000000002", Label: "Mine", SQL: "SELECT 1", DatabaseID: database.ID, CreatedByID: intPtr(2)},
		{UUID: "92000000-0000-4000-8000-000000000003", Label: "Theirs", SQL: "SELECT 2", DatabaseID: database.ID, CreatedByID: intPtr(3)},
	}
	require.NoError(t, db.Create(&queries).Error)

	mine, err := d.FindByDatabaseID(userCtx(2), database.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Label)

	all, err := d.FindByDatabaseID(adminCtx(), database.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := d.FindByDatabaseID(anonCtx(), database.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
