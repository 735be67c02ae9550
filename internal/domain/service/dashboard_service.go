package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// DashboardService defines the interface for dashboard operations
type DashboardService interface {
	// Get resolves an id, uuid or slug to a visible dashboard
	Get(ctx context.Context, ref string) (*entity.Dashboard, error)

	// List retrieves dashboards with filtering and pagination
	List(ctx context.Context, opts dao.ListOptions) (*dao.ListResult[entity.Dashboard], error)

	// GetCharts returns the charts placed on a dashboard
	GetCharts(ctx context.Context, ref string) ([]*entity.Slice, error)

	// GetDatasets returns the datasets backing a dashboard's charts
	GetDatasets(ctx context.Context, ref string) ([]*entity.Dataset, error)

	// GetTabs returns the TAB nodes of a dashboard's layout
	GetTabs(ctx context.Context, ref string) ([]dao.TabInfo, error)

	// Update persists metadata and layout changes
	Update(ctx context.Context, ref string, data map[string]any) (*entity.Dashboard, error)

	// Copy duplicates a dashboard, optionally cloning its charts
	Copy(ctx context.Context, ref string, params dao.CopyDashboardParams) (*entity.Dashboard, error)

	// Delete removes dashboards after dependency checks
	Delete(ctx context.Context, ids []int) error

	// SetEmbedded configures embedding for a dashboard
	SetEmbedded(ctx context.Context, ref string, allowedDomains string) (*entity.EmbeddedDashboard, error)

	// AddFavorite marks a dashboard as a favorite of the current actor
	AddFavorite(ctx context.Context, dashboardID int) error

	// RemoveFavorite clears the actor's favorite marker
	RemoveFavorite(ctx context.Context, dashboardID int) error

	// FavoritedIDs probes which of the dashboards the actor has favorited
	FavoritedIDs(ctx context.Context, dashboardIDs []int) ([]int, error)
}

// dashboardService implements DashboardService
type dashboardService struct {
	dashboards *dao.DashboardDAO
	embedded   *dao.EmbeddedDashboardDAO
	reports    *dao.ReportDAO
	log        *zap.Logger
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(dashboards *dao.DashboardDAO, embedded *dao.EmbeddedDashboardDAO, reports *dao.ReportDAO, log *zap.Logger) DashboardService {
	return &dashboardService{
		dashboards: dashboards,
		embedded:   embedded,
		reports:    reports,
		log:        log,
	}
}

func (s *dashboardService) Get(ctx context.Context, ref string) (*entity.Dashboard, error) {
	return s.dashboards.GetByIDOrSlug(ctx, ref)
}

func (s *dashboardService) List(ctx context.Context, opts dao.ListOptions) (*dao.ListResult[entity.Dashboard], error) {
	return s.dashboards.List(ctx, opts)
}

func (s *dashboardService) GetCharts(ctx context.Context, ref string) ([]*entity.Slice, error) {
	dash, err := s.dashboards.GetByIDOrSlug(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.dashboards.GetChartsForDashboard(ctx, dash.ID)
}

func (s *dashboardService) GetDatasets(ctx context.Context, ref string) ([]*entity.Dataset, error) {
	dash, err := s.dashboards.GetByIDOrSlug(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.dashboards.GetDatasetsForDashboard(ctx, dash.ID)
}

func (s *dashboardService) GetTabs(ctx context.Context, ref string) ([]dao.TabInfo, error) {
	dash, err := s.dashboards.GetByIDOrSlug(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.dashboards.GetTabsForDashboard(ctx, dash.ID)
}

func (s *dashboardService) Update(ctx context.Context, ref string, data map[string]any) (*entity.Dashboard, error) {
	dash, err := s.dashboards.GetByIDOrSlug(ctx, ref)
	if err != nil {
		return nil, err
	}

	if title, ok := data["dashboard_title"].(string); ok {
		dash.DashboardTitle = title
	}
	if slug, ok := data["slug"].(string); ok && slug != "" {
		unique, err := s.dashboards.ValidateUpdateSlugUniqueness(ctx, dash.ID, slug)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, errors.ErrConflict.WithMessage("slug is already in use")
		}
		dash.Slug = &slug
	}
	if css, ok := data["css"].(string); ok {
		dash.CSS = css
	}
	if published, ok := data["published"].(bool); ok {
		dash.Published = published
	}

	if err := s.dashboards.SetDashboardMetadata(dash, data, nil); err != nil {
		return nil, errors.ErrInvalidFilter.WithMessage(err.Error())
	}
	if err := s.dashboards.Update(ctx, dash); err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *dashboardService) Copy(ctx context.Context, ref string, params dao.CopyDashboardParams) (*entity.Dashboard, error) {
	original, err := s.dashboards.GetByIDOrSlug(ctx, ref)
	if err != nil {
		return nil, err
	}
	copied, err := s.dashboards.CopyDashboard(ctx, original, params)
	if err != nil {
		return nil, err
	}
	s.log.Info("dashboard copied",
		zap.Int("source_id", original.ID),
		zap.Int("copy_id", copied.ID),
		zap.Bool("duplicated_slices", params.DuplicateSlices))
	return copied, nil
}

// Delete removes the dashboards. Dashboards referenced by a report
// schedule block the whole batch.
func (s *dashboardService) Delete(ctx context.Context, ids []int) error {
	refs := make([]any, len(ids))
	for i, id := range ids {
		refs[i] = id
	}
	dashboards, err := s.dashboards.FindByIDs(ctx, refs)
	if err != nil {
		return err
	}
	if len(dashboards) != len(ids) {
		return errors.ErrNotFound.WithMessage("one or more dashboards not found")
	}

	attached, err := s.reports.FindByDashboardIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(attached) > 0 {
		return errors.ErrForeignDependency.WithMessage(
			"dashboards are referenced by report schedules")
	}

	for _, dash := range dashboards {
		if err := s.embedded.DeleteForDashboard(ctx, dash.ID); err != nil {
			return err
		}
	}
	return s.dashboards.Delete(ctx, dashboards)
}

func (s *dashboardService) SetEmbedded(ctx context.Context, ref string, allowedDomains string) (*entity.EmbeddedDashboard, error) {
	dash, err := s.dashboards.GetByIDOrSlug(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.embedded.UpsertForDashboard(ctx, dash.ID, allowedDomains)
}

func (s *dashboardService) AddFavorite(ctx context.Context, dashboardID int) error {
	dash, err := s.dashboards.FindByID(ctx, dashboardID)
	if err != nil {
		return err
	}
	if dash == nil {
		return errors.ErrNotFound.WithMessage("dashboard not found")
	}
	return s.dashboards.AddFavorite(ctx, dash)
}

func (s *dashboardService) RemoveFavorite(ctx context.Context, dashboardID int) error {
	dash, err := s.dashboards.FindByID(ctx, dashboardID)
	if err != nil {
		return err
	}
	if dash == nil {
		return errors.ErrNotFound.WithMessage("dashboard not found")
	}
	return s.dashboards.RemoveFavorite(ctx, dash)
}

func (s *dashboardService) FavoritedIDs(ctx context.Context, dashboardIDs []int) ([]int, error) {
	refs := make([]any, len(dashboardIDs))
	for i, id := range dashboardIDs {
		refs[i] = id
	}
	dashboards, err := s.dashboards.FindByIDs(ctx, refs)
	if err != nil {
		return nil, err
	}
	return s.dashboards.FavoritedIDs(ctx, dashboards)
}
