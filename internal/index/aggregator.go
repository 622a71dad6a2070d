package index

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// Trailing window lengths in days, in payload order.
const (
	WindowLong  = 91
	WindowMid   = 28
	WindowShort = 7
)

// metricDef is one row definition of the alt-data table: where the per-day
// value comes from and how it is rendered.
type metricDef struct {
	name        string
	highlighted bool
	decimals    int
	value       func(*contracts.DailyStat) *float64
}

// ⭐ SSOT: 지수 메트릭 정의 테이블
var metricDefs = []metricDef{
	{"Avg Jacket Price", true, 2, func(d *contracts.DailyStat) *float64 { return d.AvgPrice }},
	{"Jensen Score (Avg)", false, 2, func(d *contracts.DailyStat) *float64 { return d.AvgScore }},
	{"Daily Listings", false, 0, listingCountValue},
	{"Items Sold", false, 0, soldCountValue},
	{"Price / NVDA Ratio", false, 2, func(d *contracts.DailyStat) *float64 { return d.PriceToQuote }},
	{"NVDA Correlation (7d)", false, 2, func(d *contracts.DailyStat) *float64 { return d.RollingCorr }},
}

// listingCountValue treats a day without scraped listings as unobserved,
// not as zero.
func listingCountValue(d *contracts.DailyStat) *float64 {
	if d.TotalListings == 0 {
		return nil
	}
	v := float64(d.TotalListings)
	return &v
}

// soldCountValue is defined on observed days only; zero sold on an observed
// day is a real zero.
func soldCountValue(d *contracts.DailyStat) *float64 {
	if d.TotalListings == 0 {
		return nil
	}
	v := float64(d.SoldCount)
	return &v
}

// Aggregator computes trailing-window means, period-over-period deltas and
// weekly chart rows over the daily view. Pure over its inputs: the reference
// date is always passed in, never taken from the clock.
// ⭐ SSOT: 트레일링/주간 집계는 여기서만
type Aggregator struct {
	log zerolog.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(log zerolog.Logger) *Aggregator {
	return &Aggregator{
		log: log.With().Str("component", "index.aggregator").Logger(),
	}
}

// MetricRows builds the full alt-data metric table as of a reference date.
// Windows with no observed days yield nil cells, never zero.
func (a *Aggregator) MetricRows(daily []*contracts.DailyStat, asOf time.Time) []contracts.MetricRow {
	asOf = DateOnly(asOf)

	rows := make([]contracts.MetricRow, 0, len(metricDefs))
	for _, def := range metricDefs {
		row := contracts.MetricRow{Name: def.name, Highlighted: def.highlighted}
		row.Trailing91 = roundPtr(trailingMean(daily, asOf, WindowLong, def.value), def.decimals)
		row.Trailing28 = roundPtr(trailingMean(daily, asOf, WindowMid, def.value), def.decimals)
		row.Trailing7 = roundPtr(trailingMean(daily, asOf, WindowShort, def.value), def.decimals)
		row.PoP91 = roundPtr(periodOverPeriod(daily, asOf, WindowLong, def.value), 2)
		row.PoP28 = roundPtr(periodOverPeriod(daily, asOf, WindowMid, def.value), 2)
		row.PoP7 = roundPtr(periodOverPeriod(daily, asOf, WindowShort, def.value), 2)
		rows = append(rows, row)
	}

	a.log.Debug().
		Time("as_of", asOf).
		Int("daily_rows", len(daily)).
		Int("metric_rows", len(rows)).
		Msg("metric table built")

	return rows
}

// WeeklyRows builds up to `weeks` week-ending rows, oldest first, ending at
// the week that closes on asOf. Weeks with no data on either side are
// dropped; weeks missing one side carry a NO DATA signal.
func (a *Aggregator) WeeklyRows(daily []*contracts.DailyStat, asOf time.Time, weeks int) []contracts.WeeklyRow {
	asOf = DateOnly(asOf)

	rows := make([]contracts.WeeklyRow, 0, weeks)
	for k := weeks - 1; k >= 0; k-- {
		end := asOf.AddDate(0, 0, -7*k)
		cur := collectWeek(daily, end)
		if cur.listingDays == 0 && cur.quoteDays == 0 {
			continue
		}
		prev := collectWeek(daily, end.AddDate(0, 0, -7))

		jacket := pctChange(prev.avgPrice(), cur.avgPrice())
		quote := pctChange(prev.avgClose(), cur.avgClose())

		row := contracts.WeeklyRow{
			Week:   end.Format("2006-01-02"),
			Jacket: roundPtr(jacket, 2),
			NVDA:   roundPtr(quote, 2),
			Jensen: roundPtr(cur.avgScore(), 2),
			Signal: alignmentSignal(jacket, quote),
		}
		if cur.listingDays > 0 {
			volume := cur.volume
			sold := cur.sold
			row.Volume = &volume
			row.Sold = &sold
		}
		rows = append(rows, row)
	}

	return rows
}

// alignmentSignal compares the signs of the two weekly changes. Zero is its
// own sign bucket: a flat week never aligns with a moving one, but two flat
// weeks align with each other.
func alignmentSignal(jacket, quote *float64) string {
	if jacket == nil || quote == nil {
		return contracts.SignalNoData
	}
	if sign(*jacket) == sign(*quote) {
		return contracts.SignalAligned
	}
	return contracts.SignalDiverged
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// trailingMean is the arithmetic mean of the per-day values over the
// inclusive window [end-days+1, end]. Days without a value are excluded from
// the denominator; an empty window returns nil.
func trailingMean(daily []*contracts.DailyStat, end time.Time, days int, value func(*contracts.DailyStat) *float64) *float64 {
	start := end.AddDate(0, 0, -(days - 1))

	var vals []float64
	for _, d := range daily {
		if d.Date.Before(start) || d.Date.After(end) {
			continue
		}
		if v := value(d); v != nil {
			vals = append(vals, *v)
		}
	}
	return mean(vals)
}

// periodOverPeriod compares the trailing mean with the immediately
// preceding, non-overlapping window of the same length. A missing or
// zero-valued prior yields nil, never NaN or Infinity.
func periodOverPeriod(daily []*contracts.DailyStat, asOf time.Time, days int, value func(*contracts.DailyStat) *float64) *float64 {
	curr := trailingMean(daily, asOf, days, value)
	prior := trailingMean(daily, asOf.AddDate(0, 0, -days), days, value)
	return pctChange(prior, curr)
}

// pctChange is (curr-prior)/prior*100 with nil propagation and a zero-prior
// guard.
func pctChange(prior, curr *float64) *float64 {
	if curr == nil || prior == nil || *prior == 0 {
		return nil
	}
	pct := (*curr - *prior) / *prior * 100
	return &pct
}

// weekStats accumulates one calendar week of the daily view.
type weekStats struct {
	prices      []float64
	closes      []float64
	scores      []float64
	volume      int
	sold        int
	listingDays int
	quoteDays   int
}

func collectWeek(daily []*contracts.DailyStat, end time.Time) weekStats {
	start := end.AddDate(0, 0, -6)

	var w weekStats
	for _, d := range daily {
		if d.Date.Before(start) || d.Date.After(end) {
			continue
		}
		if d.TotalListings > 0 {
			w.listingDays++
			w.volume += d.TotalListings
			w.sold += d.SoldCount
		}
		if d.AvgPrice != nil {
			w.prices = append(w.prices, *d.AvgPrice)
		}
		if d.AvgScore != nil {
			w.scores = append(w.scores, *d.AvgScore)
		}
		if d.QuoteClose != nil {
			w.quoteDays++
			w.closes = append(w.closes, *d.QuoteClose)
		}
	}
	return w
}

func (w weekStats) avgPrice() *float64 { return mean(w.prices) }
func (w weekStats) avgClose() *float64 { return mean(w.closes) }
func (w weekStats) avgScore() *float64 { return mean(w.scores) }

func roundPtr(v *float64, decimals int) *float64 {
	if v == nil {
		return nil
	}
	pow := math.Pow(10, float64(decimals))
	r := math.Round(*v*pow) / pow
	return &r
}
