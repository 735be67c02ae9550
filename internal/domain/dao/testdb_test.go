package dao

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

var testDBCounter uint64

// setupTestDB opens a private in-memory sqlite database with the full
// entity set migrated.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	id := atomic.AddUint64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:dao-test-%d-%d?mode=memory&cache=shared", time.Now().UnixNano(), id)
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

func newTestDashboardDAO(t *testing.T, db *gorm.DB) *DashboardDAO {
	t.Helper()
	d, err := NewDashboardDAO(db, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to build dashboard dao: %v", err)
	}
	return d
}

func newTestChartDAO(t *testing.T, db *gorm.DB) *ChartDAO {
	t.Helper()
	d, err := NewChartDAO(db, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to build chart dao: %v", err)
	}
	return d
}

func newTestReportDAO(t *testing.T, db *gorm.DB) *ReportDAO {
	t.Helper()
	d, err := NewReportDAO(db, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("failed to build report dao: %v", err)
	}
	return d
}

func adminCtx() context.Context {
	return WithActor(context.Background(), &Actor{ID: 1, Username: "admin", Admin: true})
}

func userCtx(id int) context.Context {
	return WithActor(context.Background(), &Actor{ID: id, Username: fmt.Sprintf("user%d", id)})
}

func anonCtx() context.Context {
	return context.Background()
}

func seedTestUsers(t *testing.T, db *gorm.DB) {
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

func intPtr(v int) *int {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}
