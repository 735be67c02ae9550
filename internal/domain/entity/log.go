package entity

import (
	"time"
)

// Log is an admin-activity audit row. One row per user action.
type Log struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Action      string    `gorm:"size:512" json:"action"`
	UserID      *int      `gorm:"column:user_id;index" json:"user_id,omitempty"`
	DashboardID *int      `gorm:"column:dashboard_id" json:"dashboard_id,omitempty"`
	SliceID     *int      `gorm:"column:slice_id" json:"slice_id,omitempty"`
	JSON        string    `gorm:"column:json;type:text" json:"json,omitempty"`
	Dttm        time.Time `gorm:"column:dttm;index;autoCreateTime" json:"dttm"`
	Duration    *int      `gorm:"column:duration_ms" json:"duration_ms,omitempty"`
	Referrer    string    `gorm:"size:1024" json:"referrer,omitempty"`
}

// TableName specifies the table name for Log
func (Log) TableName() string {
	return "logs"
}

// FavStarClassName identifies the entity family a favorite row points at.
// The literal values match the historical rows on disk.
type FavStarClassName string

const (
	FavStarDashboard FavStarClassName = "Dashboard"
	FavStarSlice     FavStarClassName = "slice"
)

// FavStar is an (actor, entity) favorite marker.
type FavStar struct {
	ID        int              `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int              `gorm:"column:user_id;not null;uniqueIndex:uq_favstar" json:"user_id"`
	ClassName FavStarClassName `gorm:"column:class_name;size:50;not null;uniqueIndex:uq_favstar" json:"class_name"`
	ObjID     int              `gorm:"column:obj_id;not null;uniqueIndex:uq_favstar" json:"obj_id"`
	Dttm      time.Time        `gorm:"column:dttm;autoCreateTime" json:"dttm"`
}

// TableName specifies the table name for FavStar
func (FavStar) TableName() string {
	return "favstar"
}
