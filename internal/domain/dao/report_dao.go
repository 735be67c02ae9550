package dao

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// errorNotificationMarker is the literal prefix written to the execution
// log when a failure notification goes out. Grace-period detection depends
// on this exact string.
const errorNotificationMarker = "Notification sent with error"

// ReportDAO binds the generic DAO to report schedules and adds the
// scheduling and execution-log queries.
type ReportDAO struct {
	*BaseDAO[entity.ReportSchedule]
}

// NewReportDAO creates the report DAO. Report schedules are only visible
// to admins and their creators.
func NewReportDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.ReportSchedule]) (*ReportDAO, error) {
	opts = append([]Option[entity.ReportSchedule]{
		WithBaseFilter[entity.ReportSchedule](CreatedByVisibilityFilter{Column: "created_by_id"}),
	}, opts...)
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &ReportDAO{BaseDAO: base}, nil
}

// FindByChartID returns the schedules attached to a chart.
func (d *ReportDAO) FindByChartID(ctx context.Context, chartID int) ([]*entity.ReportSchedule, error) {
	var reports []*entity.ReportSchedule
	err := d.DB().WithContext(ctx).
		Where("chart_id = ?", chartID).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// FindByChartIDs returns the schedules attached to any of the charts.
func (d *ReportDAO) FindByChartIDs(ctx context.Context, chartIDs []int) ([]*entity.ReportSchedule, error) {
	if len(chartIDs) == 0 {
		return []*entity.ReportSchedule{}, nil
	}
	var reports []*entity.ReportSchedule
	err := d.DB().WithContext(ctx).
		Where("chart_id IN ?", chartIDs).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// FindByDashboardID returns the schedules attached to a dashboard.
func (d *ReportDAO) FindByDashboardID(ctx context.Context, dashboardID int) ([]*entity.ReportSchedule, error) {
	var reports []*entity.ReportSchedule
	err := d.DB().WithContext(ctx).
		Where("dashboard_id = ?", dashboardID).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// FindByDashboardIDs returns the schedules attached to any of the
// dashboards.
func (d *ReportDAO) FindByDashboardIDs(ctx context.Context, dashboardIDs []int) ([]*entity.ReportSchedule, error) {
	if len(dashboardIDs) == 0 {
		return []*entity.ReportSchedule{}, nil
	}
	var reports []*entity.ReportSchedule
	err := d.DB().WithContext(ctx).
		Where("dashboard_id IN ?", dashboardIDs).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// FindByDatabaseID returns the schedules attached to a database.
func (d *ReportDAO) FindByDatabaseID(ctx context.Context, databaseID int) ([]*entity.ReportSchedule, error) {
	var reports []*entity.ReportSchedule
	err := d.DB().WithContext(ctx).
		Where("database_id = ?", databaseID).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// FindActive returns all active schedules with their recipients loaded,
// regardless of creator. The scheduler calls this, not a user.
func (d *ReportDAO) FindActive(ctx context.Context) ([]*entity.ReportSchedule, error) {
	var reports []*entity.ReportSchedule
	err := d.DB().WithContext(ctx).
		Where("active = ?", true).
		Preload("Recipients").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// FindByExtraMetadata returns the schedules whose extra_json contains the
// given fragment. This is a text scan over a small table, not an indexed
// lookup.
func (d *ReportDAO) FindByExtraMetadata(ctx context.Context, fragment string) ([]*entity.ReportSchedule, error) {
	var reports []*entity.ReportSchedule
	err := d.DB().WithContext(ctx).
		Where("extra_json LIKE ?", "%"+fragment+"%").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// ValidateUniqueCreationMethod reports whether the actor has no existing
// self-subscribe schedule for the chart or dashboard. alerts_reports
// schedules are exempt from the uniqueness rule.
func (d *ReportDAO) ValidateUniqueCreationMethod(ctx context.Context, chartID, dashboardID *int) (bool, error) {
	actor := ActorFromContext(ctx)
	if actor.IsAnonymous() {
		return true, nil
	}
	tx := d.DB().WithContext(ctx).
		Model(&entity.ReportSchedule{}).
		Where("created_by_id = ?", actor.ID).
		Where("creation_method <> ?", entity.CreationMethodAlertsReport)
	switch {
	case chartID != nil:
		tx = tx.Where("chart_id = ?", *chartID)
	case dashboardID != nil:
		tx = tx.Where("dashboard_id = ?", *dashboardID)
	default:
		return true, nil
	}
	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

// ValidateUpdateUniqueness reports whether no other schedule uses the
// name for the same schedule type.
func (d *ReportDAO) ValidateUpdateUniqueness(ctx context.Context, name string, typ entity.ReportScheduleType, excludeID int) (bool, error) {
	var count int64
	err := d.DB().WithContext(ctx).
		Model(&entity.ReportSchedule{}).
		Where("name = ? AND type = ? AND id <> ?", name, typ, excludeID).
		Count(&count).Error
	return count == 0, err
}

// RecipientInput is one delivery target in a create or update payload.
type RecipientInput struct {
	Type   string         `json:"type"`
	Config map[string]any `json:"recipient_config_json"`
}

// CreateWithRecipients creates a schedule and its recipient rows in one
// transaction. Recipient configs are serialized to JSON text.
func (d *ReportDAO) CreateWithRecipients(ctx context.Context, report *entity.ReportSchedule, recipients []RecipientInput) error {
	return d.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		return insertRecipients(tx, report.ID, recipients)
	})
}

// UpdateWithRecipients saves the schedule and replaces its recipient rows
// in one transaction.
func (d *ReportDAO) UpdateWithRecipients(ctx context.Context, report *entity.ReportSchedule, recipients []RecipientInput) error {
	return d.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(report).Error; err != nil {
			return err
		}
		err := tx.Where("report_schedule_id = ?", report.ID).
			Delete(&entity.ReportRecipient{}).Error
		if err != nil {
			return err
		}
		return insertRecipients(tx, report.ID, recipients)
	})
}

func insertRecipients(tx *gorm.DB, reportID int, recipients []RecipientInput) error {
	for _, r := range recipients {
		config, err := json.Marshal(r.Config)
		if err != nil {
			return err
		}
		row := entity.ReportRecipient{
			ReportScheduleID:    reportID,
			Type:                r.Type,
			RecipientConfigJSON: string(config),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

// AddExecutionLog appends one execution attempt to the schedule's log.
func (d *ReportDAO) AddExecutionLog(ctx context.Context, logRow *entity.ReportExecutionLog) error {
	return d.DB().WithContext(ctx).Create(logRow).Error
}

// FindLastSuccessLog returns the most recent successful execution, or nil
// if the schedule has never succeeded.
func (d *ReportDAO) FindLastSuccessLog(ctx context.Context, reportID int) (*entity.ReportExecutionLog, error) {
	return d.findLastLog(ctx, reportID, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("state = ?", entity.ReportStateSuccess)
	})
}

// FindLastEnteredWorkingLog returns the most recent log that entered the
// working state, or nil.
func (d *ReportDAO) FindLastEnteredWorkingLog(ctx context.Context, reportID int) (*entity.ReportExecutionLog, error) {
	return d.findLastLog(ctx, reportID, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("state = ?", entity.ReportStateWorking)
	})
}

// FindLastErrorNotification returns the most recent execution whose
// failure was actually notified, provided only errors have occurred since
// that notification. Any non-error execution after the marker resets the
// grace period and yields nil.
func (d *ReportDAO) FindLastErrorNotification(ctx context.Context, reportID int) (*entity.ReportExecutionLog, error) {
	marker, err := d.findLastLog(ctx, reportID, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("state = ?", entity.ReportStateError).
			Where("error_message = ?", errorNotificationMarker)
	})
	if err != nil || marker == nil {
		return nil, err
	}

	var nonErrors int64
	tx := d.DB().WithContext(ctx).
		Model(&entity.ReportExecutionLog{}).
		Where("report_schedule_id = ?", reportID).
		Where("state <> ?", entity.ReportStateError)
	if marker.EndDttm != nil {
		tx = tx.Where("end_dttm > ?", *marker.EndDttm)
	}
	if err := tx.Count(&nonErrors).Error; err != nil {
		return nil, err
	}
	if nonErrors > 0 {
		return nil, nil
	}
	return marker, nil
}

func (d *ReportDAO) findLastLog(ctx context.Context, reportID int, shape func(tx *gorm.DB) *gorm.DB) (*entity.ReportExecutionLog, error) {
	var logRow entity.ReportExecutionLog
	tx := d.DB().WithContext(ctx).
		Where("report_schedule_id = ?", reportID).
		Order("end_dttm DESC")
	err := shape(tx).First(&logRow).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &logRow, nil
}

// BulkDeleteLogs removes execution log rows older than the cutoff across
// all schedules. Returns the number of rows deleted.
func (d *ReportDAO) BulkDeleteLogs(ctx context.Context, before time.Time) (int64, error) {
	res := d.DB().WithContext(ctx).
		Where("end_dttm < ?", before).
		Delete(&entity.ReportExecutionLog{})
	return res.RowsAffected, res.Error
}
