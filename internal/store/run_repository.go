package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// ScrapeRunRepository implements contracts.ScrapeRunRepository
// ⭐ SSOT: 수집 실행 감사 기록 저장은 여기서만
type ScrapeRunRepository struct {
	pool *pgxpool.Pool
}

// NewScrapeRunRepository creates a new scrape run repository
func NewScrapeRunRepository(pool *pgxpool.Pool) *ScrapeRunRepository {
	return &ScrapeRunRepository{pool: pool}
}

// Create inserts the audit row at cycle start, before any scraping happens.
func (r *ScrapeRunRepository) Create(ctx context.Context, run *contracts.ScrapeRun) error {
	query := `
		INSERT INTO jhlj.scrape_runs (run_id, started_at, status)
		VALUES ($1, $2, $3)
	`

	if _, err := r.pool.Exec(ctx, query, run.RunID, run.StartedAt, run.Status); err != nil {
		return fmt.Errorf("insert scrape run %s: %w", run.RunID, err)
	}
	return nil
}

// Finish writes the cycle outcome onto the existing audit row.
func (r *ScrapeRunRepository) Finish(ctx context.Context, run *contracts.ScrapeRun) error {
	skipJSON, err := json.Marshal(run.SkipCounts)
	if err != nil {
		return fmt.Errorf("marshal skip counts: %w", err)
	}

	query := `
		UPDATE jhlj.scrape_runs SET
			finished_at = $2,
			found = $3,
			stored = $4,
			skipped = $5,
			skip_counts = $6,
			status = $7,
			error = $8
		WHERE run_id = $1
	`

	if _, err := r.pool.Exec(ctx, query,
		run.RunID, run.FinishedAt, run.Found, run.Stored, run.Skipped,
		skipJSON, run.Status, run.Error,
	); err != nil {
		return fmt.Errorf("update scrape run %s: %w", run.RunID, err)
	}
	return nil
}

// GetRecent retrieves the latest runs, newest first.
func (r *ScrapeRunRepository) GetRecent(ctx context.Context, limit int) ([]*contracts.ScrapeRun, error) {
	query := `
		SELECT run_id, started_at, finished_at, found, stored, skipped, skip_counts, status, error
		FROM jhlj.scrape_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []*contracts.ScrapeRun
	for rows.Next() {
		var run contracts.ScrapeRun
		var skipJSON []byte
		if err := rows.Scan(
			&run.RunID, &run.StartedAt, &run.FinishedAt,
			&run.Found, &run.Stored, &run.Skipped,
			&skipJSON, &run.Status, &run.Error,
		); err != nil {
			return nil, fmt.Errorf("scan scrape run: %w", err)
		}
		if len(skipJSON) > 0 {
			if err := json.Unmarshal(skipJSON, &run.SkipCounts); err != nil {
				return nil, fmt.Errorf("unmarshal skip counts for %s: %w", run.RunID, err)
			}
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// PruneBefore deletes finished audit rows older than the cutoff. Rows still
// marked running are kept regardless of age.
func (r *ScrapeRunRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM jhlj.scrape_runs
		WHERE started_at < $1 AND status <> $2
	`

	tag, err := r.pool.Exec(ctx, query, cutoff, contracts.RunStatusRunning)
	if err != nil {
		return 0, fmt.Errorf("prune scrape runs: %w", err)
	}
	return tag.RowsAffected(), nil
}
