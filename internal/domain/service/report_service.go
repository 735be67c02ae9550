package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// ReportService defines the interface for report schedule operations
type ReportService interface {
	// Get retrieves a visible schedule by id
	Get(ctx context.Context, id int) (*entity.ReportSchedule, error)

	// List retrieves schedules with filtering and pagination
	List(ctx context.Context, opts dao.ListOptions) (*dao.ListResult[entity.ReportSchedule], error)

	// Create validates and persists a new schedule with recipients
	Create(ctx context.Context, report *entity.ReportSchedule, recipients []dao.RecipientInput) error

	// Update validates and persists schedule changes with recipients
	Update(ctx context.Context, report *entity.ReportSchedule, recipients []dao.RecipientInput) error

	// Delete removes schedules
	Delete(ctx context.Context, ids []int) error

	// PruneExecutionLogs deletes execution logs older than the cutoff
	PruneExecutionLogs(ctx context.Context, retentionDays int) (int64, error)
}

// reportService implements ReportService
type reportService struct {
	reports *dao.ReportDAO
	log     *zap.Logger
}

// NewReportService creates a new ReportService instance
func NewReportService(reports *dao.ReportDAO, log *zap.Logger) ReportService {
	return &reportService{reports: reports, log: log}
}

func (s *reportService) Get(ctx context.Context, id int) (*entity.ReportSchedule, error) {
	report, err := s.reports.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, errors.ErrNotFound.WithMessage("report schedule not found")
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, opts dao.ListOptions) (*dao.ListResult[entity.ReportSchedule], error) {
	return s.reports.List(ctx, opts)
}

func (s *reportService) Create(ctx context.Context, report *entity.ReportSchedule, recipients []dao.RecipientInput) error {
	unique, err := s.reports.ValidateUpdateUniqueness(ctx, report.Name, report.Type, 0)
	if err != nil {
		return err
	}
	if !unique {
		return errors.ErrConflict.WithMessage("a schedule with this name and type already exists")
	}

	if report.CreationMethod != entity.CreationMethodAlertsReport {
		free, err := s.reports.ValidateUniqueCreationMethod(ctx, report.ChartID, report.DashboardID)
		if err != nil {
			return err
		}
		if !free {
			return errors.ErrConflict.WithMessage("a subscription for this target already exists")
		}
	}

	if actor := dao.ActorFromContext(ctx); !actor.IsAnonymous() {
		createdBy := actor.ID
		report.CreatedByID = &createdBy
	}
	return s.reports.CreateWithRecipients(ctx, report, recipients)
}

func (s *reportService) Update(ctx context.Context, report *entity.ReportSchedule, recipients []dao.RecipientInput) error {
	unique, err := s.reports.ValidateUpdateUniqueness(ctx, report.Name, report.Type, report.ID)
	if err != nil {
		return err
	}
	if !unique {
		return errors.ErrConflict.WithMessage("a schedule with this name and type already exists")
	}
	return s.reports.UpdateWithRecipients(ctx, report, recipients)
}

func (s *reportService) Delete(ctx context.Context, ids []int) error {
	refs := make([]any, len(ids))
	for i, id := range ids {
		refs[i] = id
	}
	reports, err := s.reports.FindByIDs(ctx, refs)
	if err != nil {
		return err
	}
	if len(reports) != len(ids) {
		return errors.ErrNotFound.WithMessage("one or more report schedules not found")
	}
	return s.reports.Delete(ctx, reports)
}

// PruneExecutionLogs is called by the retention job.
func (s *reportService) PruneExecutionLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := timeNow().AddDate(0, 0, -retentionDays)
	deleted, err := s.reports.BulkDeleteLogs(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("pruned report execution logs",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", retentionDays))
	}
	return deleted, nil
}
