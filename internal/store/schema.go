package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// InitSchema creates the jhlj schema and tables if they do not exist.
// Idempotent; safe to run on every startup.
// ⭐ SSOT: 스키마 정의는 여기서만
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS jhlj`,

		// Append-only listing snapshots. One row per (listing_id, observed_on);
		// re-observing the same listing on a later day adds a row.
		`CREATE TABLE IF NOT EXISTS jhlj.listings (
			listing_id   TEXT             NOT NULL,
			observed_on  DATE             NOT NULL,
			title        TEXT             NOT NULL DEFAULT '',
			description  TEXT             NOT NULL DEFAULT '',
			designer     TEXT             NOT NULL DEFAULT '',
			price        DOUBLE PRECISION NOT NULL,
			is_sold      BOOLEAN          NOT NULL DEFAULT FALSE,
			sold_price   DOUBLE PRECISION,
			jensen_score INTEGER          NOT NULL,
			features     JSONB            NOT NULL DEFAULT '{}'::jsonb,
			url          TEXT             NOT NULL DEFAULT '',
			scraped_at   TIMESTAMPTZ      NOT NULL,
			created_at   TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			PRIMARY KEY (listing_id, observed_on)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_observed_on ON jhlj.listings (observed_on)`,
		`CREATE INDEX IF NOT EXISTS idx_listings_score ON jhlj.listings (jensen_score DESC)`,

		// Daily closes. Later fetches for the same day overwrite.
		`CREATE TABLE IF NOT EXISTS jhlj.quotes (
			symbol     TEXT             NOT NULL,
			quote_date DATE             NOT NULL,
			close      DOUBLE PRECISION NOT NULL,
			pct_change DOUBLE PRECISION,
			created_at TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			PRIMARY KEY (symbol, quote_date)
		)`,

		// Collection-cycle audit rows.
		`CREATE TABLE IF NOT EXISTS jhlj.scrape_runs (
			run_id      UUID        PRIMARY KEY,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			found       INTEGER     NOT NULL DEFAULT 0,
			stored      INTEGER     NOT NULL DEFAULT 0,
			skipped     INTEGER     NOT NULL DEFAULT 0,
			skip_counts JSONB       NOT NULL DEFAULT '{}'::jsonb,
			status      TEXT        NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scrape_runs_started_at ON jhlj.scrape_runs (started_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
