package entity

import (
	"time"
)

// ReportScheduleType distinguishes alerts from plain reports
type ReportScheduleType string

const (
	ReportTypeAlert  ReportScheduleType = "Alert"
	ReportTypeReport ReportScheduleType = "Report"
)

// ReportCreationMethod records which surface created the schedule.
// Self-subscribe schedules (charts/dashboards) are unique per (actor, target).
type ReportCreationMethod string

const (
	CreationMethodCharts       ReportCreationMethod = "charts"
	CreationMethodDashboards   ReportCreationMethod = "dashboards"
	CreationMethodAlertsReport ReportCreationMethod = "alerts_reports"
)

// ReportState is the execution state recorded in the execution log
type ReportState string

const (
	ReportStateSuccess ReportState = "Success"
	ReportStateWorking ReportState = "Working"
	ReportStateError   ReportState = "Error"
	ReportStateNoop    ReportState = "Not triggered"
	ReportStateGrace   ReportState = "On Grace"
)

// ReportSchedule represents a scheduled report or alert over a chart,
// dashboard or database.
type ReportSchedule struct {
	ID             int                  `gorm:"primaryKey;autoIncrement" json:"id"`
	Type           ReportScheduleType   `gorm:"size:50;not null" json:"type"`
	Name           string               `gorm:"size:150;not null" json:"name"`
	Description    string               `gorm:"type:text" json:"description,omitempty"`
	Active         bool                 `gorm:"default:true" json:"active"`
	Crontab        string               `gorm:"size:1000" json:"crontab"`
	CreationMethod ReportCreationMethod `gorm:"column:creation_method;size:255;default:alerts_reports" json:"creation_method"`
	Timezone       string               `gorm:"size:100;default:UTC" json:"timezone"`
	ChartID        *int                 `gorm:"column:chart_id;index" json:"chart_id,omitempty"`
	DashboardID    *int                 `gorm:"column:dashboard_id;index" json:"dashboard_id,omitempty"`
	DatabaseID     *int                 `gorm:"column:database_id;index" json:"database_id,omitempty"`
	SQL            string               `gorm:"column:sql;type:text" json:"sql,omitempty"`
	ExtraJSON      string               `gorm:"column:extra_json;type:text" json:"extra_json,omitempty"`
	LastState      ReportState          `gorm:"column:last_state;size:50" json:"last_state,omitempty"`
	LastEvalDttm   *time.Time           `gorm:"column:last_eval_dttm" json:"last_eval_dttm,omitempty"`
	CreatedOn      time.Time            `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn      time.Time            `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`
	CreatedByID    *int                 `gorm:"column:created_by_id" json:"created_by_id,omitempty"`

	Chart      *Slice               `gorm:"foreignKey:ChartID" json:"chart,omitempty"`
	Dashboard  *Dashboard           `gorm:"foreignKey:DashboardID" json:"dashboard,omitempty"`
	Database   *Database            `gorm:"foreignKey:DatabaseID" json:"database,omitempty"`
	Recipients []ReportRecipient    `gorm:"foreignKey:ReportScheduleID" json:"recipients,omitempty"`
	Logs       []ReportExecutionLog `gorm:"foreignKey:ReportScheduleID" json:"-"`
}

// TableName specifies the table name for ReportSchedule
func (ReportSchedule) TableName() string {
	return "report_schedule"
}

// ReportRecipient is a delivery target for a report schedule. The
// recipient configuration is stored as JSON text.
type ReportRecipient struct {
	ID                  int       `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportScheduleID    int       `gorm:"column:report_schedule_id;index;not null" json:"report_schedule_id"`
	Type                string    `gorm:"size:50;not null" json:"type"`
	RecipientConfigJSON string    `gorm:"column:recipient_config_json;type:text" json:"recipient_config_json"`
	CreatedOn           time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
}

// TableName specifies the table name for ReportRecipient
func (ReportRecipient) TableName() string {
	return "report_recipient"
}

// ReportExecutionLog records one execution attempt of a schedule.
type ReportExecutionLog struct {
	ID               int         `gorm:"primaryKey;autoIncrement" json:"id"`
	ReportScheduleID int         `gorm:"column:report_schedule_id;index;not null" json:"report_schedule_id"`
	ScheduledDttm    time.Time   `gorm:"column:scheduled_dttm;not null" json:"scheduled_dttm"`
	StartDttm        *time.Time  `gorm:"column:start_dttm" json:"start_dttm,omitempty"`
	EndDttm          *time.Time  `gorm:"column:end_dttm" json:"end_dttm,omitempty"`
	State            ReportState `gorm:"size:50;not null" json:"state"`
	ErrorMessage     string      `gorm:"column:error_message;type:text" json:"error_message,omitempty"`
	UUID             string      `gorm:"column:uuid;size:36" json:"uuid,omitempty"`
}

// TableName specifies the table name for ReportExecutionLog
func (ReportExecutionLog) TableName() string {
	return "report_execution_log"
}
