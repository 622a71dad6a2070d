package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/pkg/logger"
	"github.com/wonny/jhlj/backend/pkg/redis"
)

// QuoteSyncJob pulls the latest daily closes after the US market settles
// ⭐ SSOT: 시세 동기화 스케줄은 이 Job에서만
type QuoteSyncJob struct {
	syncer   contracts.QuoteSyncer
	cache    *redis.Cache
	schedule string
	logger   *logger.Logger
}

// NewQuoteSyncJob creates a new quote sync job
func NewQuoteSyncJob(syncer contracts.QuoteSyncer, cache *redis.Cache, schedule string, log *logger.Logger) *QuoteSyncJob {
	if schedule == "" {
		// 22:30 UTC, comfortably after the US close
		schedule = "0 30 22 * * *"
	}
	return &QuoteSyncJob{
		syncer:   syncer,
		cache:    cache,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *QuoteSyncJob) Name() string {
	return "quote_sync"
}

// Schedule returns the cron schedule
func (j *QuoteSyncJob) Schedule() string {
	return j.schedule
}

// Run syncs the most recent daily closes
func (j *QuoteSyncJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled quote sync")

	stored, err := j.syncer.Sync(ctx)
	if err != nil {
		return fmt.Errorf("quote sync: %w", err)
	}

	if err := j.cache.Delete(ctx, redis.ReportKey()); err != nil {
		j.logger.WithError(err).Warn("Failed to invalidate report cache")
	}

	j.logger.WithField("stored", stored).Info("Scheduled quote sync completed")
	return nil
}
