package dao

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// ActionCategory is the closed classification of raw audit actions.
type ActionCategory string

const (
	CategoryView             ActionCategory = "view"
	CategoryEdit             ActionCategory = "edit"
	CategoryExport           ActionCategory = "export"
	CategoryChartInteraction ActionCategory = "chart_interaction"
	CategoryOther            ActionCategory = "other"
)

// coalesceWindow is how close together two identical events must be to
// collapse into one activity entry.
const coalesceWindow = 5 * time.Minute

// actionCategories maps the well-known raw actions. Anything not listed
// falls through to the export suffix heuristic, then to "other".
var actionCategories = map[string]ActionCategory{
	"dashboard":       CategoryView,
	"explore":         CategoryView,
	"log":             CategoryView,
	"welcome":         CategoryView,
	"profile":         CategoryView,
	"save":            CategoryEdit,
	"saveas":          CategoryEdit,
	"overwrite":       CategoryEdit,
	"favstar":         CategoryEdit,
	"explore_json":    CategoryChartInteraction,
	"chart_data":      CategoryChartInteraction,
	"filter":          CategoryChartInteraction,
	"csv":             CategoryExport,
	"export_csv":      CategoryExport,
	"download_as_pdf": CategoryExport,
}

// CategorizeAction classifies a raw action name.
func CategorizeAction(action string) ActionCategory {
	if category, ok := actionCategories[action]; ok {
		return category
	}
	if strings.HasSuffix(action, "_export") || strings.HasPrefix(action, "export_") {
		return CategoryExport
	}
	return CategoryOther
}

// ActivityEntry is one coalesced run of identical audit events.
type ActivityEntry struct {
	Action      string         `json:"action"`
	Category    ActionCategory `json:"category"`
	DashboardID *int           `json:"dashboard_id,omitempty"`
	SliceID     *int           `json:"slice_id,omitempty"`
	EventCount  int            `json:"event_count"`
	FirstSeen   time.Time      `json:"first_seen"`
	LastSeen    time.Time      `json:"last_seen"`
}

// LogDAO exposes the audit log plus the recent-activity timeline reads.
type LogDAO struct {
	*BaseDAO[entity.Log]
}

// NewLogDAO creates the log DAO. Rows default to dttm ordering since logs
// carry no changed_on column.
func NewLogDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.Log]) (*LogDAO, error) {
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &LogDAO{BaseDAO: base}, nil
}

// Record appends one audit row.
func (d *LogDAO) Record(ctx context.Context, row *entity.Log) error {
	return d.DB().WithContext(ctx).Create(row).Error
}

// RecentActivity returns the user's activity newest-first, collapsing
// successive identical events within the coalescing window into single
// entries with an event count and a seen range.
func (d *LogDAO) RecentActivity(ctx context.Context, userID, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []entity.Log
	err := d.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("dttm DESC").
		// Over-fetch so coalescing still fills the requested page.
		Limit(limit * 10).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	entries := []ActivityEntry{}
	for _, row := range rows {
		if len(entries) > 0 && coalesces(&entries[len(entries)-1], &row) {
			last := &entries[len(entries)-1]
			last.EventCount++
			// Rows arrive newest-first, so each coalesced row extends
			// the start of the run backwards.
			last.FirstSeen = row.Dttm
			continue
		}
		if len(entries) == limit {
			break
		}
		entries = append(entries, ActivityEntry{
			Action:      row.Action,
			Category:    CategorizeAction(row.Action),
			DashboardID: row.DashboardID,
			SliceID:     row.SliceID,
			EventCount:  1,
			FirstSeen:   row.Dttm,
			LastSeen:    row.Dttm,
		})
	}
	return entries, nil
}

// coalesces reports whether the row belongs to the same run as the entry:
// same action and object, within the window of the run's earliest event.
func coalesces(entry *ActivityEntry, row *entity.Log) bool {
	if entry.Action != row.Action {
		return false
	}
	if !intPtrEqual(entry.DashboardID, row.DashboardID) || !intPtrEqual(entry.SliceID, row.SliceID) {
		return false
	}
	return entry.FirstSeen.Sub(row.Dttm) <= coalesceWindow
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// DeleteOlderThan removes audit rows older than the cutoff. Used by the
// retention job. Returns the number of rows deleted.
func (d *LogDAO) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res := d.DB().WithContext(ctx).
		Where("dttm < ?", before).
		Delete(&entity.Log{})
	return res.RowsAffected, res.Error
}
