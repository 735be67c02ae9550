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

func newTestEmbeddedDAO(t *testing.T, db *gorm.DB) *EmbeddedDashboardDAO {
	t.Helper()
	d, err := NewEmbeddedDashboardDAO(db, zaptest.NewLogger(t))
	require.NoError(t, err)
	return d
}

func TestEmbeddedDashboardDAO_CreateDisabled(t *testing.T) {
	db := setupTestDB(t)
	d := newTestEmbeddedDAO(t, db)

	err := d.Create(adminCtx(), &entity.EmbeddedDashboard{DashboardID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCreateDisabled))

	var count int64
	require.NoError(t, db.Model(&entity.EmbeddedDashboard{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEmbeddedDashboardDAO_Upsert(t *testing.T) {
	db := setupTestDB(t)
	d := newTestEmbeddedDAO(t, db)
	ctx := adminCtx()

	// No configuration yet.
	found, err := d.FindForDashboard(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, found)

	created, err := d.UpsertForDashboard(ctx, 1, "example.com")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.UUID)
	assert.Equal(t, "example.com", created.AllowedDomains)

	// Updating keeps the uuid stable so issued embed links survive.
	updated, err := d.UpsertForDashboard(ctx, 1, "example.com,other.org")
	require.NoError(t, err)
	assert.Equal(t, created.UUID, updated.UUID)
	assert.Equal(t, "example.com,other.org", updated.AllowedDomains)

	reloaded, err := d.FindForDashboard(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.Equal(t, created.UUID, reloaded.UUID)
	assert.Equal(t, "example.com,other.org", reloaded.AllowedDomains)

	var count int64
	require.NoError(t, db.Model(&entity.EmbeddedDashboard{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEmbeddedDashboardDAO_Delete(t *testing.T) {
	db := setupTestDB(t)
	d := newTestEmbeddedDAO(t, db)
	ctx := adminCtx()

	_, err := d.UpsertForDashboard(ctx, 2, "example.com")
	require.NoError(t, err)

	require.NoError(t, d.DeleteForDashboard(ctx, 2))
	found, err := d.FindForDashboard(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, found)

	// Deleting a missing configuration is a no-op.
	require.NoError(t, d.DeleteForDashboard(ctx, 2))
}
