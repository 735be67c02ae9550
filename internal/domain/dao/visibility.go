package dao

import (
	"gorm.io/gorm"
)

// VisibilityFilter restricts every read to the rows the current actor may
// see. Every find/list/count path applies the DAO's filter unless the
// caller requests bypass with SkipBaseFilter.
type VisibilityFilter interface {
	Apply(actor *Actor, tx *gorm.DB) *gorm.DB
}

// VisibilityFilterFunc adapts a plain function to a VisibilityFilter.
type VisibilityFilterFunc func(actor *Actor, tx *gorm.DB) *gorm.DB

// Apply implements VisibilityFilter.
func (f VisibilityFilterFunc) Apply(actor *Actor, tx *gorm.DB) *gorm.DB {
	return f(actor, tx)
}

// DashboardVisibilityFilter lets an actor see published dashboards plus the
// ones they own. Admins see everything; anonymous actors only published.
type DashboardVisibilityFilter struct{}

// Apply implements VisibilityFilter.
func (DashboardVisibilityFilter) Apply(actor *Actor, tx *gorm.DB) *gorm.DB {
	if actor != nil && actor.Admin {
		return tx
	}
	if actor.IsAnonymous() {
		return tx.Where("dashboards.published = ?", true)
	}
	return tx.Where(
		"dashboards.published = ? OR dashboards.created_by_id = ? OR dashboards.id IN (?)",
		true,
		actor.ID,
		tx.Session(&gorm.Session{NewDB: true}).
			Table("dashboard_user").
			Select("dashboard_id").
			Where("user_id = ?", actor.ID),
	)
}

// ChartVisibilityFilter lets an actor see charts they own or created.
// Admins see everything; anonymous actors see nothing beyond certified.
type ChartVisibilityFilter struct{}

// Apply implements VisibilityFilter.
func (ChartVisibilityFilter) Apply(actor *Actor, tx *gorm.DB) *gorm.DB {
	if actor != nil && actor.Admin {
		return tx
	}
	if actor.IsAnonymous() {
		return tx.Where("slices.certified = ?", true)
	}
	return tx.Where(
		"slices.certified = ? OR slices.created_by_id = ? OR slices.id IN (?)",
		true,
		actor.ID,
		tx.Session(&gorm.Session{NewDB: true}).
			Table("slice_user").
			Select("slice_id").
			Where("user_id = ?", actor.ID),
	)
}

// CreatedByVisibilityFilter restricts rows to those created by the actor.
// Used by report schedules and saved queries. Admins bypass.
type CreatedByVisibilityFilter struct {
	// Column is the creator column, e.g. "created_by_id" or "user_id".
	Column string
}

// Apply implements VisibilityFilter.
func (f CreatedByVisibilityFilter) Apply(actor *Actor, tx *gorm.DB) *gorm.DB {
	if actor != nil && actor.Admin {
		return tx
	}
	if actor.IsAnonymous() {
		// No identity, no rows.
		return tx.Where("1 = 0")
	}
	return tx.Where(f.Column+" = ?", actor.ID)
}
