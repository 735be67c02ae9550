package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// ChartService defines the interface for chart operations
type ChartService interface {
	// Get retrieves a visible chart by id or uuid
	Get(ctx context.Context, ref string) (*entity.Slice, error)

	// List retrieves charts with filtering and pagination
	List(ctx context.Context, opts dao.ListOptions) (*dao.ListResult[entity.Slice], error)

	// Delete removes charts after dependency checks and metadata cleanup
	Delete(ctx context.Context, ids []int) error

	// AddFavorite marks a chart as a favorite of the current actor
	AddFavorite(ctx context.Context, chartID int) error

	// RemoveFavorite clears the actor's favorite marker
	RemoveFavorite(ctx context.Context, chartID int) error

	// FavoritedIDs probes which of the charts the actor has favorited
	FavoritedIDs(ctx context.Context, chartIDs []int) ([]int, error)
}

// chartService implements ChartService
type chartService struct {
	charts     *dao.ChartDAO
	dashboards *dao.DashboardDAO
	reports    *dao.ReportDAO
	log        *zap.Logger
}

// NewChartService creates a new ChartService instance
func NewChartService(charts *dao.ChartDAO, dashboards *dao.DashboardDAO, reports *dao.ReportDAO, log *zap.Logger) ChartService {
	return &chartService{
		charts:     charts,
		dashboards: dashboards,
		reports:    reports,
		log:        log,
	}
}

func (s *chartService) Get(ctx context.Context, ref string) (*entity.Slice, error) {
	chart, err := s.charts.FindByIDOrUUID(ctx, ref)
	if err != nil {
		return nil, err
	}
	if chart == nil {
		return nil, errors.ErrNotFound.WithMessage("chart not found")
	}
	return chart, nil
}

func (s *chartService) List(ctx context.Context, opts dao.ListOptions) (*dao.ListResult[entity.Slice], error) {
	return s.charts.List(ctx, opts)
}

// Delete removes the charts. Charts referenced by a report schedule block
// the whole batch; otherwise dashboard metadata is scrubbed first and the
// rows are deleted one by one so association cleanup fires per chart.
func (s *chartService) Delete(ctx context.Context, ids []int) error {
	refs := make([]any, len(ids))
	for i, id := range ids {
		refs[i] = id
	}
	charts, err := s.charts.FindByIDs(ctx, refs)
	if err != nil {
		return err
	}
	if len(charts) != len(ids) {
		return errors.ErrNotFound.WithMessage("one or more charts not found")
	}

	attached, err := s.reports.FindByChartIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(attached) > 0 {
		names := make([]string, len(attached))
		for i, report := range attached {
			names[i] = report.Name
		}
		return errors.ErrForeignDependency.WithMessage(
			fmt.Sprintf("charts are referenced by report schedules: %v", names))
	}

	cleaned, err := s.dashboards.CleanupDashboardMetadata(ctx, ids)
	if err != nil {
		return err
	}
	if cleaned > 0 {
		s.log.Info("scrubbed chart references from dashboard metadata",
			zap.Int("dashboards", cleaned),
			zap.Ints("chart_ids", ids))
	}

	return s.charts.Delete(ctx, charts)
}

func (s *chartService) AddFavorite(ctx context.Context, chartID int) error {
	chart, err := s.charts.FindByID(ctx, chartID)
	if err != nil {
		return err
	}
	if chart == nil {
		return errors.ErrNotFound.WithMessage("chart not found")
	}
	return s.charts.AddFavorite(ctx, chart)
}

func (s *chartService) RemoveFavorite(ctx context.Context, chartID int) error {
	chart, err := s.charts.FindByID(ctx, chartID)
	if err != nil {
		return err
	}
	if chart == nil {
		return errors.ErrNotFound.WithMessage("chart not found")
	}
	return s.charts.RemoveFavorite(ctx, chart)
}

func (s *chartService) FavoritedIDs(ctx context.Context, chartIDs []int) ([]int, error) {
	refs := make([]any, len(chartIDs))
	for i, id := range chartIDs {
		refs[i] = id
	}
	charts, err := s.charts.FindByIDs(ctx, refs)
	if err != nil {
		return nil, err
	}
	return s.charts.FavoritedIDs(ctx, charts)
}
