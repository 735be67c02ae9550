package entity

import (
	"time"
)

// Database represents a registered analytical database connection.
type Database struct {
	ID              int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID            string    `gorm:"column:uuid;size:36;uniqueIndex" json:"uuid"`
	DatabaseName    string    `gorm:"column:database_name;size:250;uniqueIndex;not null" json:"database_name"`
	ConnectionURI   string    `gorm:"column:connection_uri;size:1024" json:"-"`
	CacheTimeout    *int      `gorm:"column:cache_timeout" json:"cache_timeout,omitempty"`
	ExposeInSQLLab  bool      `gorm:"column:expose_in_sqllab;default:true" json:"expose_in_sqllab"`
	AllowDML        bool      `gorm:"column:allow_dml;default:false" json:"allow_dml"`
	AllowFileUpload bool      `gorm:"column:allow_file_upload;default:false" json:"allow_file_upload"`
	Extra           string    `gorm:"type:text" json:"extra,omitempty"`
	CreatedOn       time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn       time.Time `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`
}

// TableName specifies the table name for Database
func (Database) TableName() string {
	return "dbs"
}
