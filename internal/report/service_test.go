package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

// In-memory repositories, enough behavior for service composition tests.

type fakeListingRepo struct {
	rows []*contracts.ScoredListing
}

func (f *fakeListingRepo) SaveBatch(ctx context.Context, listings []*contracts.ScoredListing) (int, error) {
	f.rows = append(f.rows, listings...)
	return len(listings), nil
}

func (f *fakeListingRepo) GetHistory(ctx context.Context, from, to time.Time) ([]*contracts.ScoredListing, error) {
	var out []*contracts.ScoredListing
	for _, l := range f.rows {
		if !l.ObservedOn.Before(from) && !l.ObservedOn.After(to) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeListingRepo) GetAll(ctx context.Context) ([]*contracts.ScoredListing, error) {
	return f.rows, nil
}

func (f *fakeListingRepo) GetLatestObservedOn(ctx context.Context) (time.Time, error) {
	var latest time.Time
	for _, l := range f.rows {
		if l.ObservedOn.After(latest) {
			latest = l.ObservedOn
		}
	}
	return latest, nil
}

func (f *fakeListingRepo) CountAll(ctx context.Context) (int, error) {
	return len(f.rows), nil
}

type fakeQuoteRepo struct {
	rows []*contracts.QuotePoint
}

func (f *fakeQuoteRepo) SaveBatch(ctx context.Context, quotes []*contracts.QuotePoint) (int, error) {
	f.rows = append(f.rows, quotes...)
	return len(quotes), nil
}

func (f *fakeQuoteRepo) GetRange(ctx context.Context, symbol string, from, to time.Time) ([]*contracts.QuotePoint, error) {
	var out []*contracts.QuotePoint
	for _, q := range f.rows {
		if q.Symbol == symbol && !q.Date.Before(from) && !q.Date.After(to) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuoteRepo) GetLatest(ctx context.Context, symbol string) (*contracts.QuotePoint, error) {
	var latest *contracts.QuotePoint
	for _, q := range f.rows {
		if q.Symbol != symbol {
			continue
		}
		if latest == nil || q.Date.After(latest.Date) {
			latest = q
		}
	}
	return latest, nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{
		Env:       "test",
		LogLevel:  "error", // Reduce log noise
		LogFormat: "json",
	})
}

// seedWeek fills seven consecutive days with one listing observation and one
// close each, both strictly increasing so the series correlate perfectly.
func seedWeek(listings *fakeListingRepo, quotes *fakeQuoteRepo) {
	ids := []string{"a", "b", "c"}
	scores := map[string]int{"a": 17, "b": 5, "c": 2}
	for i := 0; i < 7; i++ {
		id := ids[i%3]
		l := snap(id, scores[id], day(i))
		l.Price = 200 + 10*float64(i)
		listings.rows = append(listings.rows, l)
		quotes.rows = append(quotes.rows, &contracts.QuotePoint{
			Symbol: "NVDA",
			Date:   day(i),
			Close:  100 + 5*float64(i),
		})
	}
}

func TestServiceBuild(t *testing.T) {
	listings := &fakeListingRepo{}
	quotes := &fakeQuoteRepo{}
	seedWeek(listings, quotes)

	svc := NewService(listings, quotes, Options{TopN: 2}, testLogger())
	payload, err := svc.Build(context.Background(), day(6))
	require.NoError(t, err)

	assert.Equal(t, "JHLJ", payload.Ticker)
	assert.Equal(t, contracts.ReportStatusLive, payload.Status)
	assert.Equal(t, "2025-03-07", payload.LastUpdated)
	assert.Equal(t, "$130.00", payload.QuoteDisplay)

	require.Len(t, payload.AltDataMetrics, 6)
	avgPrice := payload.AltDataMetrics[0]
	assert.Equal(t, "Avg Jacket Price", avgPrice.Name)
	assert.True(t, avgPrice.Highlighted)
	require.NotNil(t, avgPrice.Trailing7)
	assert.InDelta(t, 230, *avgPrice.Trailing7, 1e-9)
	assert.Nil(t, avgPrice.PoP7) // no prior window yet

	// Two perfectly linear series: same-day correlation wins the lead scan.
	require.NotNil(t, payload.Correlation)
	assert.Equal(t, contracts.CorrelationOK, payload.Correlation.Status)
	assert.Equal(t, 0, payload.Correlation.LeadDays)
	require.NotNil(t, payload.Correlation.R)
	assert.InDelta(t, 1.0, *payload.Correlation.R, 1e-9)
	assert.NotNil(t, payload.Correlation.Insights)

	require.Len(t, payload.TopListings, 2)
	assert.Equal(t, "a", payload.TopListings[0].ID)
	assert.Equal(t, "b", payload.TopListings[1].ID)

	require.NotEmpty(t, payload.DailyHistory)
	assert.Equal(t, "2025-03-07", payload.DailyHistory[0].DateStr)
}

func TestServiceBuildEmptyStore(t *testing.T) {
	svc := NewService(&fakeListingRepo{}, &fakeQuoteRepo{}, Options{}, testLogger())

	payload, err := svc.Build(context.Background(), day(0))
	require.NoError(t, err)

	assert.Equal(t, contracts.ReportStatusNoData, payload.Status)
	assert.Equal(t, "N/A", payload.LastUpdated)
	assert.Equal(t, "N/A", payload.QuoteDisplay)
	assert.Empty(t, payload.TopListings)
	require.NotNil(t, payload.Correlation)
	assert.Equal(t, contracts.CorrelationInsufficientData, payload.Correlation.Status)

	// Every metric cell reads no-data, never zero.
	for _, row := range payload.AltDataMetrics {
		assert.Nil(t, row.Trailing7, row.Name)
		assert.Nil(t, row.Trailing28, row.Name)
		assert.Nil(t, row.Trailing91, row.Name)
	}
}

func TestServiceCorrelationExplicitLead(t *testing.T) {
	listings := &fakeListingRepo{}
	quotes := &fakeQuoteRepo{}
	seedWeek(listings, quotes)

	svc := NewService(listings, quotes, Options{}, testLogger())

	res, err := svc.Correlation(context.Background(), day(6), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, res.LeadDays)
	assert.Equal(t, contracts.CorrelationOK, res.Status)
	// Listing day d pairs quote day d+2: five overlapping days remain.
	assert.Equal(t, 5, res.Pairs)
}

func TestServiceExportCSV(t *testing.T) {
	listings := &fakeListingRepo{}
	quotes := &fakeQuoteRepo{}
	seedWeek(listings, quotes)

	svc := NewService(listings, quotes, Options{}, testLogger())

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, "JENSEN HUANG LEATHER JACKET INDEX - DATA EXPORT")
	assert.Contains(t, out, "=== DAILY INDEX DATA ===")
	assert.Contains(t, out, "=== INDIVIDUAL LISTINGS ===")
	assert.Contains(t, out, "=== SUMMARY STATISTICS ===")
}
