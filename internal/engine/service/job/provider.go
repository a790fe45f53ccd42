package job

import (
	"context"
	"time"

	"github.com/google/wire"

	"github.com/go-arcade/oneupdate/internal/engine/conf"
	"github.com/go-arcade/oneupdate/pkg/cron"
	"github.com/go-arcade/oneupdate/pkg/log"
)

/**
 * @file: provider.go
 * @description: background cleanup jobs
 */

const (
	S3CleanupJob      = "oneupdate_s3_cleanup"
	HistoryCleanupJob = "oneupdate_history_cleanup"
)

// ProviderSet 提供后台任务相关依赖
var ProviderSet = wire.NewSet(ProvideScheduler)

// Cleaner is the upload gateway as seen by the cleanup jobs.
type Cleaner interface {
	PurgeExpiredObjects(ctx context.Context) error
	PurgeHistory(ctx context.Context, retention time.Duration, batch int, pause time.Duration) error
}

// ProvideScheduler builds the scheduler and registers the cleanup jobs. The
// scheduler is returned unstarted.
func ProvideScheduler(cfg conf.AppConfig, cleaner Cleaner) (*cron.Scheduler, error) {
	s := cron.NewScheduler(cfg.Jobs.JobTimeout)
	if !cfg.Jobs.Enabled {
		log.Infow("background jobs disabled")
		return s, nil
	}
	if err := Register(s, cfg.Jobs, cleaner); err != nil {
		return nil, err
	}
	return s, nil
}

// Register adds the hourly object purge and the history purge to s.
func Register(s *cron.Scheduler, cfg conf.JobsConf, cleaner Cleaner) error {
	if err := s.AddJob(S3CleanupJob, cfg.S3CleanupSpec, cleaner.PurgeExpiredObjects); err != nil {
		return err
	}
	return s.AddJob(HistoryCleanupJob, cfg.HistoryCleanupSpec, func(ctx context.Context) error {
		return cleaner.PurgeHistory(ctx, cfg.HistoryRetention, cfg.BatchSize, cfg.BatchPause)
	})
}
