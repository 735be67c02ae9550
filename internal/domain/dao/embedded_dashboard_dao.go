package dao

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// EmbeddedDashboardDAO manages embedding configurations. There is at most
// one configuration per dashboard and direct creation is disabled: rows
// only come into existence through UpsertForDashboard.
type EmbeddedDashboardDAO struct {
	*BaseDAO[entity.EmbeddedDashboard]
}

// NewEmbeddedDashboardDAO creates the embedded-dashboard DAO.
func NewEmbeddedDashboardDAO(db *gorm.DB, log *zap.Logger, opts ...Option[entity.EmbeddedDashboard]) (*EmbeddedDashboardDAO, error) {
	opts = append([]Option[entity.EmbeddedDashboard]{
		WithUUIDColumn[entity.EmbeddedDashboard]("uuid"),
	}, opts...)
	base, err := New(db, log, opts...)
	if err != nil {
		return nil, err
	}
	return &EmbeddedDashboardDAO{BaseDAO: base}, nil
}

// Create always fails. Embedding configurations are created through
// UpsertForDashboard so the one-per-dashboard rule cannot be bypassed.
func (d *EmbeddedDashboardDAO) Create(ctx context.Context, item *entity.EmbeddedDashboard) error {
	return errors.ErrCreateDisabled.WithMessage("embedded dashboards are created via upsert")
}

// FindForDashboard returns the dashboard's embedding configuration, or nil
// if embedding is not configured.
func (d *EmbeddedDashboardDAO) FindForDashboard(ctx context.Context, dashboardID int) (*entity.EmbeddedDashboard, error) {
	var embedded entity.EmbeddedDashboard
	err := d.DB().WithContext(ctx).
		Where("dashboard_id = ?", dashboardID).
		First(&embedded).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &embedded, nil
}

// UpsertForDashboard creates or updates the dashboard's embedding
// configuration. The uuid is stable across updates so issued embed links
// keep working when the allowed domains change.
func (d *EmbeddedDashboardDAO) UpsertForDashboard(ctx context.Context, dashboardID int, allowedDomains string) (*entity.EmbeddedDashboard, error) {
	existing, err := d.FindForDashboard(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.AllowedDomains = allowedDomains
		err = d.DB().WithContext(ctx).
			Model(&entity.EmbeddedDashboard{}).
			Where("uuid = ?", existing.UUID).
			Update("allowed_domains", allowedDomains).Error
		if err != nil {
			return nil, err
		}
		return existing, nil
	}

	embedded := &entity.EmbeddedDashboard{
		UUID:           uuid.NewString(),
		DashboardID:    dashboardID,
		AllowedDomains: allowedDomains,
	}
	if err := d.DB().WithContext(ctx).Create(embedded).Error; err != nil {
		return nil, err
	}
	return embedded, nil
}

// DeleteForDashboard removes the dashboard's embedding configuration if
// present. Idempotent.
func (d *EmbeddedDashboardDAO) DeleteForDashboard(ctx context.Context, dashboardID int) error {
	return d.DB().WithContext(ctx).
		Where("dashboard_id = ?", dashboardID).
		Delete(&entity.EmbeddedDashboard{}).Error
}
