package entity

import (
	"strings"
	"time"
)

// User represents an actor registered with the platform.
type User struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email     string    `gorm:"uniqueIndex;size:320;not null" json:"email"`
	FirstName string    `gorm:"column:first_name;size:64" json:"first_name,omitempty"`
	LastName  string    `gorm:"column:last_name;size:64" json:"last_name,omitempty"`
	Active    bool      `gorm:"default:true" json:"active"`
	IsAdmin   bool      `gorm:"column:is_admin;default:false" json:"is_admin"`
	CreatedOn time.Time `gorm:"column:created_on;autoCreateTime" json:"created_on"`
	ChangedOn time.Time `gorm:"column:changed_on;autoUpdateTime" json:"changed_on"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// FullName returns the display name for the user.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}
