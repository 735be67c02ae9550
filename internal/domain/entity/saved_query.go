package entity

import (
	"time"
)

// SavedQuery represents a SQL snippet a user saved for later reuse.
type SavedQuery struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        string    `gorm:"column:uuid;size:36;uniqueIndex" json:"uuid"`
	Label       string    `gorm:"size:256" json:"label"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	SQL         string    `gorm:"column:sql;type:text" json:"sql"`
	DatabaseID  int       `gorm:"column:db_id;index" json:"db_id"`
	Schema      string    `gorm:"size:128" json:"schema,omitempty"`
	CreatedOn   time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn   time.Time `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`
	CreatedByID *int      `gorm:"column:user_id" json:"user_id,omitempty"`

	Database *Database `gorm:"foreignKey:DatabaseID" json:"database,omitempty"`
}

// TableName specifies the table name for SavedQuery
func (SavedQuery) TableName() string {
	return "saved_query"
}
