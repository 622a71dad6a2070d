package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/pkg/logger"
	"github.com/wonny/jhlj/backend/pkg/redis"
)

// ScrapeJob runs a full marketplace collection cycle on an interval
// ⭐ SSOT: 주기적 수집 스케줄은 이 Job에서만
type ScrapeJob struct {
	collector contracts.Collector
	cache     *redis.Cache
	interval  time.Duration
	logger    *logger.Logger
}

// NewScrapeJob creates a new scrape job
func NewScrapeJob(col contracts.Collector, cache *redis.Cache, interval time.Duration, log *logger.Logger) *ScrapeJob {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &ScrapeJob{
		collector: col,
		cache:     cache,
		interval:  interval,
		logger:    log,
	}
}

// Name returns the job name
func (j *ScrapeJob) Name() string {
	return "scrape"
}

// Schedule returns the cron schedule
func (j *ScrapeJob) Schedule() string {
	return fmt.Sprintf("@every %s", j.interval)
}

// Run executes one collection cycle
func (j *ScrapeJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled collection cycle")

	run, err := j.collector.Run(ctx)
	if err != nil {
		return fmt.Errorf("collection cycle: %w", err)
	}

	// 새 스냅샷이 들어왔으니 리포트 캐시 무효화
	if err := j.cache.Delete(ctx, redis.ReportKey()); err != nil {
		j.logger.WithError(err).Warn("Failed to invalidate report cache")
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": run.RunID.String(),
		"found":  run.Found,
		"stored": run.Stored,
	}).Info("Scheduled collection cycle completed")

	return nil
}
