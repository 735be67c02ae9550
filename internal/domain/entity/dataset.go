package entity

import (
	"time"
)

// Dataset represents a physical or virtual table charts query against.
type Dataset struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID        string    `gorm:"column:uuid;size:36;uniqueIndex" json:"uuid"`
	Name        string    `gorm:"column:table_name;size:250;not null" json:"table_name"`
	Schema      string    `gorm:"column:table_schema;size:255" json:"schema,omitempty"`
	DatabaseID  int       `gorm:"column:database_id;index;not null" json:"database_id"`
	SQL         string    `gorm:"column:sql;type:text" json:"sql,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	IsManaged   bool      `gorm:"column:is_managed_externally;default:false" json:"is_managed_externally"`
	CreatedOn   time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn   time.Time `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`

	Database *Database `gorm:"foreignKey:DatabaseID" json:"database,omitempty"`
	Owners   []User    `gorm:"many2many:sqlatable_user" json:"owners,omitempty"`
}

// TableName specifies the table name for Dataset
func (Dataset) TableName() string {
	return "tables"
}

// IsVirtual reports whether the dataset is defined by a SQL expression
// rather than a physical table.
func (d *Dataset) IsVirtual() bool {
	return d.SQL != ""
}
