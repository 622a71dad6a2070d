package contracts

import (
	"context"
	"time"
)

// Collector runs one full marketplace collection cycle:
// search -> validate -> extract -> score -> store.
// ⭐ SSOT: 수집 파이프라인 인터페이스
type Collector interface {
	Run(ctx context.Context) (*ScrapeRun, error)
}

// QuoteSyncer keeps the quote series current.
// ⭐ SSOT: 시세 동기화 인터페이스
type QuoteSyncer interface {
	Sync(ctx context.Context) (int, error)
	Backfill(ctx context.Context, days int) (int, error)
}

// ReportBuilder assembles the full index payload as of a reference date.
// Implementations must be pure over (history, quotes, asOf): no hidden
// clock, no hidden state.
// ⭐ SSOT: 리포트 조립 인터페이스
type ReportBuilder interface {
	Build(ctx context.Context, asOf time.Time) (*ReportPayload, error)
}
