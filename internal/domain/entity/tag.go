package entity

import (
	"time"
)

// TagType classifies how a tag was attached
type TagType string

const (
	TagTypeCustom    TagType = "custom"
	TagTypeType      TagType = "type"
	TagTypeOwner     TagType = "owner"
	TagTypeFavorited TagType = "favorited_by"
)

// Tag represents a label that can be attached to dashboards, charts and
// saved queries.
type Tag struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:250;uniqueIndex;not null" json:"name"`
	Type        TagType   `gorm:"size:50" json:"type"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedOn   time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn   time.Time `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`
}

// TableName specifies the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// TaggedObject links a tag to a target entity row.
type TaggedObject struct {
	ID         int       `gorm:"primaryKey;autoIncrement" json:"id"`
	TagID      int       `gorm:"column:tag_id;index;not null" json:"tag_id"`
	ObjectID   int       `gorm:"column:object_id;not null" json:"object_id"`
	ObjectType string    `gorm:"column:object_type;size:50;not null" json:"object_type"`
	CreatedOn  time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`

	Tag *Tag `gorm:"foreignKey:TagID" json:"tag,omitempty"`
}

// TableName specifies the table name for TaggedObject
func (TaggedObject) TableName() string {
	return "tagged_objects"
}
