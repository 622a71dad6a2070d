package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

// MaintenanceJob prunes old collection-run audit rows
type MaintenanceJob struct {
	runs      contracts.ScrapeRunRepository
	retention time.Duration
	schedule  string
	logger    *logger.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(runs contracts.ScrapeRunRepository, retention time.Duration, schedule string, log *logger.Logger) *MaintenanceJob {
	if retention <= 0 {
		retention = 90 * 24 * time.Hour
	}
	if schedule == "" {
		// Sunday 03:00 UTC
		schedule = "0 0 3 * * 0"
	}
	return &MaintenanceJob{
		runs:      runs,
		retention: retention,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Schedule returns the cron schedule
func (j *MaintenanceJob) Schedule() string {
	return j.schedule
}

// Run prunes audit rows older than the retention window
func (j *MaintenanceJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-j.retention)

	pruned, err := j.runs.PruneBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("prune runs: %w", err)
	}

	if pruned > 0 {
		j.logger.WithFields(map[string]interface{}{
			"pruned": pruned,
			"cutoff": cutoff.Format("2006-01-02"),
		}).Info("Maintenance completed")
	}

	return nil
}
