package entity

import (
	"time"
)

// Dashboard represents a dashboard: a titled collection of charts laid out
// by position_json, with presentation settings stored in json_metadata.
type Dashboard struct {
	ID             int       `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID           string    `gorm:"column:uuid;size:36;uniqueIndex" json:"uuid"`
	DashboardTitle string    `gorm:"column:dashboard_title;size:500" json:"dashboard_title"`
	Slug           *string   `gorm:"size:255;uniqueIndex" json:"slug,omitempty"`
	PositionJSON   string    `gorm:"column:position_json;type:text" json:"position_json,omitempty"`
	JSONMetadata   string    `gorm:"column:json_metadata;type:text" json:"json_metadata,omitempty"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	CSS            string    `gorm:"column:css;type:text" json:"css,omitempty"`
	Certified      bool      `gorm:"default:false" json:"certified"`
	Published      bool      `gorm:"default:false" json:"published"`
	CreatedOn      time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn      time.Time `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`
	CreatedByID    *int      `gorm:"column:created_by_id" json:"created_by_id,omitempty"`

	Owners []User  `gorm:"many2many:dashboard_user" json:"owners,omitempty"`
	Slices []Slice `gorm:"many2many:dashboard_slices" json:"slices,omitempty"`
}

// TableName specifies the table name for Dashboard
func (Dashboard) TableName() string {
	return "dashboards"
}

// OwnedBy reports whether the given user id appears in the owner set.
func (d *Dashboard) OwnedBy(userID int) bool {
	if d.CreatedByID != nil && *d.CreatedByID == userID {
		return true
	}
	for _, owner := range d.Owners {
		if owner.ID == userID {
			return true
		}
	}
	return false
}

// EmbeddedDashboard is a configuration for embedding a dashboard into an
// external site. Keyed by uuid; at most one row per dashboard.
type EmbeddedDashboard struct {
	UUID           string    `gorm:"column:uuid;size:36;primaryKey" json:"uuid"`
	DashboardID    int       `gorm:"column:dashboard_id;uniqueIndex;not null" json:"dashboard_id"`
	AllowedDomains string    `gorm:"column:allowed_domains;type:text" json:"allowed_domains"`
	CreatedOn      time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn      time.Time `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`
}

// TableName specifies the table name for EmbeddedDashboard
func (EmbeddedDashboard) TableName() string {
	return "embedded_dashboards"
}
