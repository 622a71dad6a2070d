package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/internal/external/yahoo"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

// backfillDefaultDays is how far Backfill reaches when no window is given.
const backfillDefaultDays = 90

// QuoteSync keeps the tracked symbol's daily closes current.
// ⭐ SSOT: 시세 동기화는 여기서만
type QuoteSync struct {
	client *yahoo.Client
	quotes contracts.QuoteRepository
	symbol string
	logger *logger.Logger
}

// NewQuoteSync creates a new QuoteSync instance
func NewQuoteSync(client *yahoo.Client, quotes contracts.QuoteRepository, symbol string, log *logger.Logger) *QuoteSync {
	return &QuoteSync{
		client: client,
		quotes: quotes,
		symbol: symbol,
		logger: log.WithField("module", "quotesync"),
	}
}

// Sync fetches the trailing week and upserts it, healing short gaps.
func (s *QuoteSync) Sync(ctx context.Context) (int, error) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -7)

	quotes, err := s.client.FetchDailyCloses(ctx, s.symbol, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch quotes: %w", err)
	}

	stored, err := s.quotes.SaveBatch(ctx, quotes)
	if err != nil {
		return 0, fmt.Errorf("save quotes: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol": s.symbol,
		"stored": stored,
	}).Info("Quote sync completed")
	return stored, nil
}

// Backfill loads the last N days of history (90 when days <= 0).
func (s *QuoteSync) Backfill(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		days = backfillDefaultDays
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	quotes, err := s.client.FetchDailyCloses(ctx, s.symbol, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch quotes: %w", err)
	}

	stored, err := s.quotes.SaveBatch(ctx, quotes)
	if err != nil {
		return 0, fmt.Errorf("save quotes: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol": s.symbol,
		"days":   days,
		"stored": stored,
	}).Info("Quote backfill completed")
	return stored, nil
}
