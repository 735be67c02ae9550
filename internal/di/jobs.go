package di

import (
	"context"

	"go.uber.org/fx"

	"github.com/vizdeck/vizdeck-go/internal/jobs"
)

// JobsModule provides the background maintenance jobs
var JobsModule = fx.Module("jobs",
	fx.Provide(jobs.NewRetentionJob),
	fx.Invoke(startRetentionJob),
)

func startRetentionJob(lc fx.Lifecycle, job *jobs.RetentionJob) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return job.Start()
		},
		OnStop: func(ctx context.Context) error {
			job.Stop()
			return nil
		},
	})
}
