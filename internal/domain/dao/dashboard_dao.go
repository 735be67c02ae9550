package dao

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// DashboardDAO binds the generic DAO to dashboards and adds slug lookup,
// uniqueness probes, metadata management, favorites and the chart-delete
// metadata cleanup.
type DashboardDAO struct {
	*BaseDAO[entity.Dashboard]
	favorites *favoritesHelper
}

// NewDashboardDAO creates the dashboard DAO with its visibility filter.
func NewDashboardDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.Dashboard]) (*DashboardDAO, error) {
	opts = append([]Option[entity.Dashboard]{
		WithUUIDColumn[entity.Dashboard]("uuid"),
		WithSlugColumn[entity.Dashboard]("slug"),
		WithBaseFilter[entity.Dashboard](DashboardVisibilityFilter{}),
	}, opts...)
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &DashboardDAO{
		BaseDAO:   base,
		favorites: &favoritesHelper{db: db, className: entity.FavStarDashboard},
	}, nil
}

// GetByIDOrSlug resolves an integer id, uuid string or slug to a visible
// dashboard. A dashboard that exists but is hidden from the actor yields a
// forbidden error; a dashboard that does not exist yields not found.
func (d *DashboardDAO) GetByIDOrSlug(ctx context.Context, ref string) (*entity.Dashboard, error) {
	lookup := func(opts ...QueryOption) (*entity.Dashboard, error) {
		if isAllDigits(ref) {
			return d.FindByID(ctx, ref, opts...)
		}
		if dash, err := d.FindByUUID(ctx, ref, opts...); err != nil || dash != nil {
			return dash, err
		}
		return d.FindBySlug(ctx, ref, opts...)
	}

	dash, err := lookup()
	if err != nil {
		return nil, err
	}
	if dash != nil {
		return dash, nil
	}

	// Distinguish access-denied from absent.
	hidden, err := lookup(SkipBaseFilter())
	if err != nil {
		return nil, err
	}
	if hidden != nil {
		return nil, errors.ErrForbidden.WithMessage("dashboard access is forbidden")
	}
	return nil, errors.ErrNotFound.WithMessage("dashboard not found")
}

// GetChartsForDashboard returns the slices placed on the dashboard.
func (d *DashboardDAO) GetChartsForDashboard(ctx context.Context, dashboardID int) ([]*entity.Slice, error) {
	var charts []*entity.Slice
	err := d.DB().WithContext(ctx).
		Model(&entity.Slice{}).
		Joins("JOIN dashboard_slices ON dashboard_slices.slice_id = slices.id").
		Where("dashboard_slices.dashboard_id = ?", dashboardID).
		Find(&charts).Error
	if err != nil {
		return nil, err
	}
	return charts, nil
}

// GetDatasetsForDashboard returns the datasets backing the dashboard's
// charts.
func (d *DashboardDAO) GetDatasetsForDashboard(ctx context.Context, dashboardID int) ([]*entity.Dataset, error) {
	var datasets []*entity.Dataset
	err := d.DB().WithContext(ctx).
		Model(&entity.Dataset{}).
		Where("id IN (?)", d.DB().
			Table("slices").
			Select("slices.datasource_id").
			Joins("JOIN dashboard_slices ON dashboard_slices.slice_id = slices.id").
			Where("dashboard_slices.dashboard_id = ? AND slices.datasource_type = ?", dashboardID, "table"),
		).
		Find(&datasets).Error
	if err != nil {
		return nil, err
	}
	return datasets, nil
}

// GetDashboardChangedOn returns the dashboard's last-change timestamp with
// sub-second precision stripped, matching HTTP Last-Modified.
func (d *DashboardDAO) GetDashboardChangedOn(dash *entity.Dashboard) time.Time {
	return dash.ChangedOn.Truncate(time.Second)
}

// GetDashboardAndSlicesChangedOn returns the latest change across the
// dashboard and its charts.
func (d *DashboardDAO) GetDashboardAndSlicesChangedOn(ctx context.Context, dash *entity.Dashboard) (time.Time, error) {
	latest := d.GetDashboardChangedOn(dash)
	var sliceChanged *time.Time
	err := d.DB().WithContext(ctx).
		Model(&entity.Slice{}).
		Select("MAX(slices.changed_on)").
		Joins("JOIN dashboard_slices ON dashboard_slices.slice_id = slices.id").
		Where("dashboard_slices.dashboard_id = ?", dash.ID).
		Scan(&sliceChanged).Error
	if err != nil {
		return time.Time{}, err
	}
	if sliceChanged != nil && sliceChanged.Truncate(time.Second).After(latest) {
		latest = sliceChanged.Truncate(time.Second)
	}
	return latest, nil
}

// GetDashboardAndDatasetsChangedOn returns the latest change across the
// dashboard and the datasets its charts query.
func (d *DashboardDAO) GetDashboardAndDatasetsChangedOn(ctx context.Context, dash *entity.Dashboard) (time.Time, error) {
	latest := d.GetDashboardChangedOn(dash)
	var datasetChanged *time.Time
	err := d.DB().WithContext(ctx).
		Model(&entity.Dataset{}).
		Select("MAX(tables.changed_on)").
		Where("tables.id IN (?)", d.DB().
			Table("slices").
			Select("slices.datasource_id").
			Joins("JOIN dashboard_slices ON dashboard_slices.slice_id = slices.id").
			Where("dashboard_slices.dashboard_id = ? AND slices.datasource_type = ?", dash.ID, "table"),
		).
		Scan(&datasetChanged).Error
	if err != nil {
		return time.Time{}, err
	}
	if datasetChanged != nil && datasetChanged.Truncate(time.Second).After(latest) {
		latest = datasetChanged.Truncate(time.Second)
	}
	return latest, nil
}

// ValidateSlugUniqueness reports whether no dashboard uses the slug. An
// empty slug is always unique.
func (d *DashboardDAO) ValidateSlugUniqueness(ctx context.Context, slug string) (bool, error) {
	if slug == "" {
		return true, nil
	}
	var count int64
	err := d.DB().WithContext(ctx).
		Model(&entity.Dashboard{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count == 0, err
}

// ValidateUpdateSlugUniqueness reports whether the slug is free for the
// given dashboard, ignoring the dashboard's own row.
func (d *DashboardDAO) ValidateUpdateSlugUniqueness(ctx context.Context, dashboardID int, slug string) (bool, error) {
	if slug == "" {
		return true, nil
	}
	var count int64
	err := d.DB().WithContext(ctx).
		Model(&entity.Dashboard{}).
		Where("slug = ? AND id <> ?", slug, dashboardID).
		Count(&count).Error
	return count == 0, err
}

// FavoritedIDs returns the ids of the given dashboards the current actor
// has favorited.
func (d *DashboardDAO) FavoritedIDs(ctx context.Context, dashboards []*entity.Dashboard) ([]int, error) {
	ids := make([]int, len(dashboards))
	for i, dash := range dashboards {
		ids[i] = dash.ID
	}
	return d.favorites.favoritedIDs(ctx, ids)
}

// AddFavorite marks the dashboard as a favorite of the current actor.
// Idempotent.
func (d *DashboardDAO) AddFavorite(ctx context.Context, dash *entity.Dashboard) error {
	return d.favorites.add(ctx, dash.ID)
}

// RemoveFavorite removes the actor's favorite marker. Idempotent.
func (d *DashboardDAO) RemoveFavorite(ctx context.Context, dash *entity.Dashboard) error {
	return d.favorites.remove(ctx, dash.ID)
}
