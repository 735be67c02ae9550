// Package jobs holds the background maintenance jobs. The only job today
// is retention: pruning old report execution logs and audit rows on a
// cron schedule, guarded by a redis lock so one replica runs it.
package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/config"
	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/service"
)

const retentionLockTTL = 10 * time.Minute

// RetentionJob prunes execution and audit logs past the retention window.
type RetentionJob struct {
	cfg     config.RetentionConfig
	reports service.ReportService
	logs    *dao.LogDAO
	redis   *redis.Client
	cron    *cron.Cron
	log     *zap.Logger
}

// NewRetentionJob creates the retention job.
func NewRetentionJob(cfg config.RetentionConfig, reports service.ReportService, logs *dao.LogDAO, redisClient *redis.Client, log *zap.Logger) *RetentionJob {
	return &RetentionJob{
		cfg:     cfg,
		reports: reports,
		logs:    logs,
		redis:   redisClient,
		cron:    cron.New(),
		log:     log,
	}
}

// Start registers the cron entry and begins scheduling. Disabled
// configuration makes Start a no-op.
func (j *RetentionJob) Start() error {
	if !j.cfg.Enabled {
		j.log.Info("retention job disabled")
		return nil
	}
	_, err := j.cron.AddFunc(j.cfg.CronSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), retentionLockTTL)
		defer cancel()
		j.RunOnce(ctx)
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	j.log.Info("retention job scheduled",
		zap.String("schedule", j.cfg.CronSchedule),
		zap.Int("retention_days", j.cfg.WorkingDays))
	return nil
}

// Stop halts scheduling and waits for an in-flight run to finish.
func (j *RetentionJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

// RunOnce executes one pruning pass under the distributed lock.
func (j *RetentionJob) RunOnce(ctx context.Context) {
	lock := NewLock(j.redis, "retention", retentionLockTTL)
	if err := lock.Acquire(ctx); err != nil {
		if errors.Is(err, ErrLockNotAcquired) {
			j.log.Debug("retention run skipped, another instance holds the lock")
		} else {
			j.log.Error("retention lock error", zap.Error(err))
		}
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			j.log.Warn("failed to release retention lock", zap.Error(err))
		}
	}()

	deleted, err := j.reports.PruneExecutionLogs(ctx, j.cfg.WorkingDays)
	if err != nil {
		j.log.Error("failed to prune report execution logs", zap.Error(err))
	}

	cutoff := time.Now().AddDate(0, 0, -j.cfg.WorkingDays)
	auditDeleted, err := j.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.log.Error("failed to prune audit logs", zap.Error(err))
	}

	j.log.Info("retention pass complete",
		zap.Int64("execution_logs_deleted", deleted),
		zap.Int64("audit_logs_deleted", auditDeleted))
}
