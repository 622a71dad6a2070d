package index

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

func metricByName(rows []contracts.MetricRow, name string) contracts.MetricRow {
	for _, r := range rows {
		if r.Name == name {
			return r
		}
	}
	return contracts.MetricRow{}
}

func TestMetricRows_EmptyWindowIsNoData(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	// history exists, but far before the reference date
	history := []*contracts.ScoredListing{
		mkListing(0, "a", 100, 3, false, nil),
	}
	daily := BuildDaily(history, nil)

	rows := a.MetricRows(daily, day(300))
	price := metricByName(rows, "Avg Jacket Price")
	assert.Nil(t, price.Trailing7, "empty window must be no-data, never 0")
	assert.Nil(t, price.Trailing28)
	assert.Nil(t, price.Trailing91)
	assert.Nil(t, price.PoP7)
}

func TestMetricRows_UnobservedDaysExcludedFromMean(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	// observations on three of seven days; quote rows fill the others
	history := []*contracts.ScoredListing{
		mkListing(4, "a", 10, 0, false, nil),
		mkListing(5, "b", 20, 0, false, nil),
		mkListing(6, "c", 30, 0, false, nil),
	}
	quotes := []*contracts.QuotePoint{
		mkQuote(0, 900, nil), mkQuote(1, 901, nil), mkQuote(2, 902, nil), mkQuote(3, 903, nil),
	}
	daily := BuildDaily(history, quotes)

	rows := a.MetricRows(daily, day(6))
	price := metricByName(rows, "Avg Jacket Price")
	require.NotNil(t, price.Trailing7)
	assert.InDelta(t, 20, *price.Trailing7, 1e-9, "mean over observed days only, not 60/7")

	listings := metricByName(rows, "Daily Listings")
	require.NotNil(t, listings.Trailing7)
	assert.InDelta(t, 1, *listings.Trailing7, 1e-9, "quote-only days are unobserved, not zero-listing")
}

func TestMetricRows_SoldZeroIsARealValue(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	// observed days with nothing sold: the mean is a true 0, not no-data
	history := []*contracts.ScoredListing{
		mkListing(5, "a", 100, 0, false, nil),
		mkListing(6, "b", 100, 0, false, nil),
	}
	daily := BuildDaily(history, nil)

	rows := a.MetricRows(daily, day(6))
	sold := metricByName(rows, "Items Sold")
	require.NotNil(t, sold.Trailing7)
	assert.Equal(t, 0.0, *sold.Trailing7)
}

func TestMetricRows_PeriodOverPeriod(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	// prior window averages 100, current averages 110 -> +10%
	var history []*contracts.ScoredListing
	for i := 0; i < 7; i++ {
		history = append(history, mkListing(i, "p", 100, 0, false, nil))
		history = append(history, mkListing(7+i, "c", 110, 0, false, nil))
	}
	daily := BuildDaily(history, nil)

	rows := a.MetricRows(daily, day(13))
	price := metricByName(rows, "Avg Jacket Price")
	require.NotNil(t, price.PoP7)
	assert.InDelta(t, 10.0, *price.PoP7, 1e-9)
}

func TestMetricRows_ZeroPriorIsNoData(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	// prior week observed but nothing sold: sold PoP divides by zero -> no data
	var history []*contracts.ScoredListing
	for i := 0; i < 7; i++ {
		history = append(history, mkListing(i, "p", 100, 0, false, nil))
		history = append(history, mkListing(7+i, "c", 100, 0, true, nil))
	}
	daily := BuildDaily(history, nil)

	rows := a.MetricRows(daily, day(13))
	sold := metricByName(rows, "Items Sold")
	require.NotNil(t, sold.Trailing7)
	assert.Equal(t, 1.0, *sold.Trailing7)
	assert.Nil(t, sold.PoP7, "zero-valued prior must report no data, never Infinity")
}

func TestMetricRows_MissingPriorIsNoData(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	// history only covers the current window
	var history []*contracts.ScoredListing
	for i := 7; i < 14; i++ {
		history = append(history, mkListing(i, "c", 100, 0, false, nil))
	}
	daily := BuildDaily(history, nil)

	rows := a.MetricRows(daily, day(13))
	price := metricByName(rows, "Avg Jacket Price")
	require.NotNil(t, price.Trailing7)
	assert.Nil(t, price.PoP7)
}

func TestMetricRows_TableShape(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	rows := a.MetricRows(nil, day(0))
	require.Len(t, rows, 6)
	assert.Equal(t, "Avg Jacket Price", rows[0].Name)
	assert.True(t, rows[0].Highlighted)
	assert.Equal(t, "Jensen Score (Avg)", rows[1].Name)
	assert.Equal(t, "Daily Listings", rows[2].Name)
	assert.Equal(t, "Items Sold", rows[3].Name)
	assert.Equal(t, "Price / NVDA Ratio", rows[4].Name)
	assert.Equal(t, "NVDA Correlation (7d)", rows[5].Name)
}

func TestMetricRows_Deterministic(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	var history []*contracts.ScoredListing
	var quotes []*contracts.QuotePoint
	for i := 0; i < 30; i++ {
		history = append(history, mkListing(i, "x", float64(100+i%9*13), i%21-4, i%3 == 0, nil))
		quotes = append(quotes, mkQuote(i, float64(880+i), fptr(float64(i%5)-2)))
	}
	daily := BuildDaily(history, quotes)

	first := a.MetricRows(daily, day(29))
	second := a.MetricRows(daily, day(29))
	require.Equal(t, first, second)
}

func TestWeeklyRows_AlignmentExamples(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	// week 1: price 100, close 100 -> week 2: price 103.49 (+3.49%), close 104.40 (+4.40%)
	var history []*contracts.ScoredListing
	var quotes []*contracts.QuotePoint
	for i := 0; i < 7; i++ {
		history = append(history, mkListing(i, "p", 100, 5, false, nil))
		history = append(history, mkListing(7+i, "c", 103.49, 5, false, nil))
		quotes = append(quotes, mkQuote(i, 100, nil))
		quotes = append(quotes, mkQuote(7+i, 104.40, nil))
	}
	daily := BuildDaily(history, quotes)

	rows := a.WeeklyRows(daily, day(13), 2)
	require.Len(t, rows, 2)

	last := rows[1]
	require.NotNil(t, last.Jacket)
	require.NotNil(t, last.NVDA)
	assert.InDelta(t, 3.49, *last.Jacket, 1e-9)
	assert.InDelta(t, 4.40, *last.NVDA, 1e-9)
	assert.Equal(t, contracts.SignalAligned, last.Signal)
}

func TestWeeklyRows_DivergedExample(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	// jacket +2.18%, quote -0.5% -> DIVERGED
	var history []*contracts.ScoredListing
	var quotes []*contracts.QuotePoint
	for i := 0; i < 7; i++ {
		history = append(history, mkListing(i, "p", 100, 5, false, nil))
		history = append(history, mkListing(7+i, "c", 102.18, 5, false, nil))
		quotes = append(quotes, mkQuote(i, 200, nil))
		quotes = append(quotes, mkQuote(7+i, 199, nil))
	}
	daily := BuildDaily(history, quotes)

	rows := a.WeeklyRows(daily, day(13), 2)
	require.Len(t, rows, 2)

	last := rows[1]
	require.NotNil(t, last.Jacket)
	require.NotNil(t, last.NVDA)
	assert.InDelta(t, 2.18, *last.Jacket, 1e-9)
	assert.InDelta(t, -0.5, *last.NVDA, 1e-9)
	assert.Equal(t, contracts.SignalDiverged, last.Signal)
}

func TestAlignmentSignal_ZeroBucket(t *testing.T) {
	tests := []struct {
		name   string
		jacket *float64
		quote  *float64
		want   string
	}{
		{"both positive", fptr(3.49), fptr(4.40), contracts.SignalAligned},
		{"both negative", fptr(-1.2), fptr(-0.4), contracts.SignalAligned},
		{"opposite signs", fptr(2.18), fptr(-0.5), contracts.SignalDiverged},
		{"zero never aligns with nonzero", fptr(0), fptr(2.0), contracts.SignalDiverged},
		{"nonzero never aligns with zero", fptr(-2.0), fptr(0), contracts.SignalDiverged},
		{"two flat weeks align", fptr(0), fptr(0), contracts.SignalAligned},
		{"missing jacket side", nil, fptr(1.0), contracts.SignalNoData},
		{"missing quote side", fptr(1.0), nil, contracts.SignalNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := alignmentSignal(tt.jacket, tt.quote); got != tt.want {
				t.Errorf("alignmentSignal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestWeeklyRows_SkipsEmptyWeeks(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	history := []*contracts.ScoredListing{
		mkListing(0, "a", 100, 5, false, nil),
	}
	daily := BuildDaily(history, nil)

	// 12 requested weeks, data in only one
	rows := a.WeeklyRows(daily, day(6), 12)
	require.Len(t, rows, 1)
	assert.Equal(t, day(6).Format("2006-01-02"), rows[0].Week)
	assert.Equal(t, contracts.SignalNoData, rows[0].Signal)
	require.NotNil(t, rows[0].Volume)
	assert.Equal(t, 1, *rows[0].Volume)
}

func TestWeeklyRows_WeekEndingDates(t *testing.T) {
	a := NewAggregator(zerolog.Nop())

	var history []*contracts.ScoredListing
	for i := 0; i < 21; i++ {
		history = append(history, mkListing(i, "x", 100, 0, false, nil))
	}
	daily := BuildDaily(history, nil)

	rows := a.WeeklyRows(daily, day(20), 3)
	require.Len(t, rows, 3)
	assert.Equal(t, day(6).Format("2006-01-02"), rows[0].Week)
	assert.Equal(t, day(13).Format("2006-01-02"), rows[1].Week)
	assert.Equal(t, day(20).Format("2006-01-02"), rows[2].Week)
}
