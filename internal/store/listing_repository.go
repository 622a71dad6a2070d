package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// ListingRepository implements contracts.ListingRepository
// ⭐ SSOT: 리스팅 스냅샷 저장은 여기서만
type ListingRepository struct {
	pool *pgxpool.Pool
}

// NewListingRepository creates a new listing repository
func NewListingRepository(pool *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{pool: pool}
}

const listingColumns = `
	listing_id, observed_on, title, description, designer,
	price, is_sold, sold_price, jensen_score, features, url, scraped_at
`

// SaveBatch inserts scored snapshots. The table is append-only per
// (listing_id, observed_on): conflicts are ignored so a re-run of the same
// scrape day stores nothing twice. Returns the number of new rows.
func (r *ListingRepository) SaveBatch(ctx context.Context, listings []*contracts.ScoredListing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO jhlj.listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (listing_id, observed_on) DO NOTHING
	`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stored := 0
	for _, l := range listings {
		featuresJSON, err := json.Marshal(l.Features)
		if err != nil {
			return 0, fmt.Errorf("marshal features for %s: %w", l.ID, err)
		}

		tag, err := tx.Exec(ctx, query,
			l.ID, l.ObservedOn, l.Title, l.Description, l.Designer,
			l.Price, l.Sold, l.SoldPrice, l.Score, featuresJSON, l.URL, l.ScrapedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("insert listing %s: %w", l.ID, err)
		}
		stored += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return stored, nil
}

// GetHistory retrieves snapshots observed within [from, to].
func (r *ListingRepository) GetHistory(ctx context.Context, from, to time.Time) ([]*contracts.ScoredListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM jhlj.listings
		WHERE observed_on BETWEEN $1 AND $2
		ORDER BY observed_on ASC, listing_id ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query listing history: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// GetAll retrieves the entire snapshot history.
func (r *ListingRepository) GetAll(ctx context.Context) ([]*contracts.ScoredListing, error) {
	query := `
		SELECT ` + listingColumns + `
		FROM jhlj.listings
		ORDER BY observed_on ASC, listing_id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query all listings: %w", err)
	}
	defer rows.Close()

	return scanListings(rows)
}

// GetLatestObservedOn returns the most recent observation date, or the zero
// time when the table is empty.
func (r *ListingRepository) GetLatestObservedOn(ctx context.Context) (time.Time, error) {
	query := `SELECT MAX(observed_on) FROM jhlj.listings`

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query).Scan(&latest); err != nil {
		return time.Time{}, fmt.Errorf("query latest observed_on: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

// CountAll returns the total snapshot count.
func (r *ListingRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jhlj.listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return count, nil
}

func scanListings(rows pgx.Rows) ([]*contracts.ScoredListing, error) {
	var listings []*contracts.ScoredListing
	for rows.Next() {
		var l contracts.ScoredListing
		var featuresJSON []byte
		if err := rows.Scan(
			&l.ID, &l.ObservedOn, &l.Title, &l.Description, &l.Designer,
			&l.Price, &l.Sold, &l.SoldPrice, &l.Score, &featuresJSON, &l.URL, &l.ScrapedAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		if err := json.Unmarshal(featuresJSON, &l.Features); err != nil {
			return nil, fmt.Errorf("unmarshal features for %s: %w", l.ID, err)
		}
		listings = append(listings, &l)
	}
	return listings, rows.Err()
}
