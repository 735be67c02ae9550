package entity

import (
	"time"
)

// Slice represents a chart bound to a datasource. The historical table and
// type name are kept so favorite rows and metadata references stay stable.
type Slice struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID           string    `gorm:"column:uuid;size:36;uniqueIndex" json:"uuid"`
	SliceName      string    `gorm:"column:slice_name;size:250" json:"slice_name"`
	VizType        string    `gorm:"column:viz_type;size:250" json:"viz_type"`
	DatasourceID   int       `gorm:"column:datasource_id" json:"datasource_id"`
	DatasourceType string    `gorm:"column:datasource_type;size:200" json:"datasource_type"`
	Params         string    `gorm:"type:text" json:"params,omitempty"`
	QueryContext   string    `gorm:"column:query_context;type:text" json:"query_context,omitempty"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	CacheTimeout   *int      `gorm:"column:cache_timeout" json:"cache_timeout,omitempty"`
	Certified      bool      `gorm:"default:false" json:"certified"`
	CreatedOn      time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn      time.Time `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`
	CreatedByID    *int      `gorm:"column:created_by_id" json:"created_by_id,omitempty"`

	Owners     []User      `gorm:"many2many:slice_user" json:"owners,omitempty"`
	Dashboards []Dashboard `gorm:"many2many:dashboard_slices" json:"dashboards,omitempty"`
}

// TableName specifies the table name for Slice
func (Slice) TableName() string {
	return "slices"
}

// OwnedBy reports whether the given user id appears in the owner set.
func (s *Slice) OwnedBy(userID int) bool {
	if s.CreatedByID != nil && *s.CreatedByID == userID {
		return true
	}
	for _, owner := range s.Owners {
		if owner.ID == userID {
			return true
		}
	}
	return false
}
