// Package testutil provides shared test helpers: an in-memory sqlite
// database migrated with the full entity set, canned actors and seed
// rows.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// testIDCounter is used to generate unique test IDs
var testIDCounter uint64

// NewTestLogger creates a test logger
func NewTestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// NewNopLogger creates a no-op logger for benchmarks
func NewNopLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestDB opens a private in-memory sqlite database and migrates the
// full entity set. Each call gets its own database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", GenerateTestID())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	err = db.AutoMigrate(
		&entity.User{},
		&entity.Database{},
		&entity.Dataset{},
		&entity.Slice{},
		&entity.Dashboard{},
		&entity.EmbeddedDashboard{},
		&entity.ReportSchedule{},
		&entity.ReportRecipient{},
		&entity.ReportExecutionLog{},
		&entity.Log{},
		&entity.FavStar{},
		&entity.Tag{},
		&entity.TaggedObject{},
		&entity.SavedQuery{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// AdminContext returns a context carrying an admin actor.
func AdminContext() context.Context {
	return dao.WithActor(context.Background(), &dao.Actor{
		ID:       1,
		Username: "admin",
		Admin:    true,
	})
}

// UserContext returns a context carrying a regular actor with the id.
func UserContext(id int) context.Context {
	return dao.WithActor(context.Background(), &dao.Actor{
		ID:       id,
		Username: fmt.Sprintf("user%d", id),
	})
}

// AnonymousContext returns a context with no actor.
func AnonymousContext() context.Context {
	return context.Background()
}

// SeedUsers inserts the admin and two regular users the actor helpers
// reference.
func SeedUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	users := []entity.User{
		{ID: 1, Username: "admin", Email: "admin@example.com", Active: true, IsAdmin: true},
		{ID: 2, Username: "user2", Email: "user2@example.com", Active: true},
		{ID: 3, Username: "user3", Email: "user3@example.com", Active: true},
	}
	if err := db.Create(&users).Error; err != nil {
		t.Fatalf("failed to seed users: %v", err)
	}
}

// GenerateTestID generates a unique test ID using an atomic counter
func GenerateTestID() string {
	id := atomic.AddUint64(&testIDCounter, 1)
	return fmt.Sprintf("test-%d-%d", time.Now().UnixNano(), id)
}

// SkipIfShort skips the test if running in short mode
func SkipIfShort(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping in short mode")
	}
}
