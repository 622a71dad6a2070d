package contracts

import (
	"context"
	"time"
)

// ⭐ SSOT: Repository 인터페이스 정의는 여기서만

// ListingRepository manages the durable ScoredListing history.
// Writes are append-only and idempotent per (ID, ObservedOn): storing the
// same snapshot twice changes nothing, so re-running a scrape is safe.
type ListingRepository interface {
	SaveBatch(ctx context.Context, listings []*ScoredListing) (stored int, err error)
	GetHistory(ctx context.Context, from, to time.Time) ([]*ScoredListing, error)
	GetAll(ctx context.Context) ([]*ScoredListing, error)
	GetLatestObservedOn(ctx context.Context) (time.Time, error)
	CountAll(ctx context.Context) (int, error)
}

// QuoteRepository manages daily closes for tracked instruments.
// Upserts are idempotent per (Symbol, Date); a later fetch for the same day
// overwrites the earlier one.
type QuoteRepository interface {
	SaveBatch(ctx context.Context, quotes []*QuotePoint) (int, error)
	GetRange(ctx context.Context, symbol string, from, to time.Time) ([]*QuotePoint, error)
	GetLatest(ctx context.Context, symbol string) (*QuotePoint, error)
}

// ScrapeRunRepository records collection-cycle audit rows.
type ScrapeRunRepository interface {
	Create(ctx context.Context, run *ScrapeRun) error
	Finish(ctx context.Context, run *ScrapeRun) error
	GetRecent(ctx context.Context, limit int) ([]*ScrapeRun, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
