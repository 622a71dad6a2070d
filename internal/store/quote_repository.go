package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// QuoteRepository implements contracts.QuoteRepository
// ⭐ SSOT: 시세 데이터 저장은 여기서만
type QuoteRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// SaveBatch upserts daily closes. A later fetch for the same (symbol, date)
// overwrites the earlier one.
func (r *QuoteRepository) SaveBatch(ctx context.Context, quotes []*contracts.QuotePoint) (int, error) {
	if len(quotes) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO jhlj.quotes (symbol, quote_date, close, pct_change, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (symbol, quote_date) DO UPDATE SET
			close = EXCLUDED.close,
			pct_change = EXCLUDED.pct_change,
			updated_at = NOW()
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, q := range quotes {
		if _, err := tx.Exec(ctx, query, q.Symbol, q.Date, q.Close, q.PctChange); err != nil {
			return 0, fmt.Errorf("upsert quote %s %s: %w", q.Symbol, q.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return len(quotes), nil
}

// GetRange retrieves closes for a symbol within [from, to], ascending.
func (r *QuoteRepository) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]*contracts.QuotePoint, error) {
	query := `
		SELECT symbol, quote_date, close, pct_change
		FROM jhlj.quotes
		WHERE symbol = $1 AND quote_date BETWEEN $2 AND $3
		ORDER BY quote_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("query quote range: %w", err)
	}
	defer rows.Close()

	var quotes []*contracts.QuotePoint
	for rows.Next() {
		var q contracts.QuotePoint
		if err := rows.Scan(&q.Symbol, &q.Date, &q.Close, &q.PctChange); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		quotes = append(quotes, &q)
	}
	return quotes, rows.Err()
}

// GetLatest retrieves the most recent close for a symbol. Returns (nil, nil)
// when no quote is stored yet.
func (r *QuoteRepository) GetLatest(ctx context.Context, symbol string) (*contracts.QuotePoint, error) {
	query := `
		SELECT symbol, quote_date, close, pct_change
		FROM jhlj.quotes
		WHERE symbol = $1
		ORDER BY quote_date DESC
		LIMIT 1
	`

	var q contracts.QuotePoint
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&q.Symbol, &q.Date, &q.Close, &q.PctChange)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query latest quote: %w", err)
	}
	return &q, nil
}
