package dao

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// ChartDAO binds the generic DAO to slices and adds favorites and
// ownership helpers.
type ChartDAO struct {
	*BaseDAO[entity.Slice]
	favorites *favoritesHelper
}

// NewChartDAO creates the chart DAO with its visibility filter.
func NewChartDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.Slice]) (*ChartDAO, error) {
	opts = append([]Option[entity.Slice]{
		WithUUIDColumn[entity.Slice]("uuid"),
		WithBaseFilter[entity.Slice](ChartVisibilityFilter{}),
	}, opts...)
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &ChartDAO{
		BaseDAO:   base,
		favorites: &favoritesHelper{db: db, className: entity.FavStarSlice},
	}, nil
}

// FindByDatasetID returns the charts built on a dataset.
func (d *ChartDAO) FindByDatasetID(ctx context.Context, datasetID int) ([]*entity.Slice, error) {
	var charts []*entity.Slice
	err := d.DB().WithContext(ctx).
		Where("datasource_id = ? AND datasource_type = ?", datasetID, "table").
		Find(&charts).Error
	if err != nil {
		return nil, err
	}
	return charts, nil
}

// GetDashboardsForChart returns the dashboards the chart is placed on.
func (d *ChartDAO) GetDashboardsForChart(ctx context.Context, chartID int) ([]*entity.Dashboard, error) {
	var dashboards []*entity.Dashboard
	err := d.DB().WithContext(ctx).
		Model(&entity.Dashboard{}).
		Joins("JOIN dashboard_slices ON dashboard_slices.dashboard_id = dashboards.id").
		Where("dashboard_slices.slice_id = ?", chartID).
		Find(&dashboards).Error
	if err != nil {
		return nil, err
	}
	return dashboards, nil
}

// FavoritedIDs returns the ids of the given charts the current actor has
// favorited.
func (d *ChartDAO) FavoritedIDs(ctx context.Context, charts []*entity.Slice) ([]int, error) {
	ids := make([]int, len(charts))
	for i, chart := range charts {
		ids[i] = chart.ID
	}
	return d.favorites.favoritedIDs(ctx, ids)
}

// AddFavorite marks the chart as a favorite of the current actor.
// Idempotent.
func (d *ChartDAO) AddFavorite(ctx context.Context, chart *entity.Slice) error {
	return d.favorites.add(ctx, chart.ID)
}

// RemoveFavorite removes the actor's favorite marker. Idempotent.
func (d *ChartDAO) RemoveFavorite(ctx context.Context, chart *entity.Slice) error {
	return d.favorites.remove(ctx, chart.ID)
}
