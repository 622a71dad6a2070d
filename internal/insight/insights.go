package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

const (
	// bigMovePct is the daily quote move treated as an event for the
	// pre-move insight.
	bigMovePct = 3.0
	// jensenCodedScore is the band floor for a direct-subject-grade listing.
	jensenCodedScore = 10
	// minInsightSample is the smallest sub-sample an insight may cite.
	minInsightSample = 3
	// minBrandPairs is the smallest joined sample for a per-brand coefficient.
	minBrandPairs = 5
	// nextDayLookahead caps how far ahead the next trading day may be.
	nextDayLookahead = 5
)

// BuildInsights derives the templated insight strings from narrower slices
// of the same joined data the correlator saw. Every figure is computed; an
// insight whose sub-sample is below the minimum is omitted, never invented.
// Order is fixed for deterministic output.
func (c *Correlator) BuildInsights(history []*contracts.ScoredListing, daily []*contracts.DailyStat) []string {
	insights := []string{}

	if s := c.asymmetricZipInsight(history, daily); s != "" {
		insights = append(insights, s)
	}
	if s := c.blackLeatherPreMoveInsight(history, daily); s != "" {
		insights = append(insights, s)
	}
	if s := c.brandInsight(history, daily); s != "" {
		insights = append(insights, s)
	}
	if s := c.highScoreInsight(history, daily); s != "" {
		insights = append(insights, s)
	}

	c.log.Debug().Int("insights", len(insights)).Msg("insights built")
	return insights
}

// asymmetricZipInsight: average next-session quote change after days that
// had at least one asymmetric-zip listing.
func (c *Correlator) asymmetricZipInsight(history []*contracts.ScoredListing, daily []*contracts.DailyStat) string {
	dates := datesWhere(history, func(l *contracts.ScoredListing) bool {
		return l.Features.AsymmetricZip
	})

	var moves []float64
	for _, d := range dates {
		if pct := nextQuotePct(daily, d); pct != nil {
			moves = append(moves, *pct)
		}
	}
	if len(moves) < minInsightSample {
		return ""
	}

	avg := avgOf(moves)
	return fmt.Sprintf(
		"Asymmetric-zip listing days precede an average %+.1f%% next-session NVDA move (n=%d)",
		avg, len(moves))
}

// blackLeatherPreMoveInsight: black-leather share of listings in the week
// before a 3%+ daily quote move, against the all-time baseline share.
func (c *Correlator) blackLeatherPreMoveInsight(history []*contracts.ScoredListing, daily []*contracts.DailyStat) string {
	var baseBlack, baseTotal int
	for _, l := range history {
		baseTotal++
		if l.Features.BlackLeather {
			baseBlack++
		}
	}
	if baseTotal == 0 || baseBlack == 0 {
		return ""
	}
	baseShare := float64(baseBlack) / float64(baseTotal)

	var preBlack, preTotal, events int
	for _, d := range daily {
		if d.QuotePct == nil || math.Abs(*d.QuotePct) < bigMovePct {
			continue
		}
		events++
		weekStart := d.Date.AddDate(0, 0, -7)
		for _, l := range history {
			on := dateOnly(l.ObservedOn)
			if on.Before(weekStart) || !on.Before(d.Date) {
				continue
			}
			preTotal++
			if l.Features.BlackLeather {
				preBlack++
			}
		}
	}
	if events < minInsightSample || preTotal == 0 {
		return ""
	}

	preShare := float64(preBlack) / float64(preTotal)
	lift := (preShare - baseShare) / baseShare * 100
	return fmt.Sprintf(
		"Black-leather share runs %+.0f%% vs baseline in the week before 3%%+ NVDA moves (n=%d)",
		lift, events)
}

// brandInsight: the designer whose daily average price tracks the quote
// series most tightly.
func (c *Correlator) brandInsight(history []*contracts.ScoredListing, daily []*contracts.DailyStat) string {
	closeByDate := make(map[time.Time]float64)
	for _, d := range daily {
		if d.QuoteClose != nil {
			closeByDate[d.Date] = *d.QuoteClose
		}
	}

	// 브랜드별 일별 평균가
	type dayKey struct {
		designer string
		date     time.Time
	}
	sums := make(map[dayKey]float64)
	counts := make(map[dayKey]int)
	for _, l := range history {
		if l.Designer == "" || l.Designer == "Unknown" {
			continue
		}
		k := dayKey{l.Designer, dateOnly(l.ObservedOn)}
		sums[k] += l.Price
		counts[k]++
	}

	series := make(map[string]map[time.Time]float64)
	for k, sum := range sums {
		if series[k.designer] == nil {
			series[k.designer] = make(map[time.Time]float64)
		}
		series[k.designer][k.date] = sum / float64(counts[k])
	}

	designers := make([]string, 0, len(series))
	for d := range series {
		designers = append(designers, d)
	}
	sort.Strings(designers)

	bestR := 0.0
	bestName := ""
	bestN := 0
	for _, name := range designers {
		var xs, ys []float64
		dates := make([]time.Time, 0, len(series[name]))
		for d := range series[name] {
			dates = append(dates, d)
		}
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
		for _, d := range dates {
			if close, ok := closeByDate[d]; ok {
				xs = append(xs, series[name][d])
				ys = append(ys, close)
			}
		}
		if len(xs) < minBrandPairs {
			continue
		}
		if r, ok := Pearson(xs, ys); ok && math.Abs(r) > math.Abs(bestR) {
			bestR, bestName, bestN = r, name, len(xs)
		}
	}
	if bestName == "" {
		return ""
	}

	return fmt.Sprintf("%s is the most NVDA-correlated brand (r=%.2f, n=%d)", bestName, bestR, bestN)
}

// highScoreInsight: how often a day with a Jensen-coded (10+) listing was
// followed by a positive quote session.
func (c *Correlator) highScoreInsight(history []*contracts.ScoredListing, daily []*contracts.DailyStat) string {
	dates := datesWhere(history, func(l *contracts.ScoredListing) bool {
		return l.Score >= jensenCodedScore
	})

	var n, positive int
	for _, d := range dates {
		pct := nextQuotePct(daily, d)
		if pct == nil {
			continue
		}
		n++
		if *pct > 0 {
			positive++
		}
	}
	if n < minInsightSample {
		return ""
	}

	share := float64(positive) / float64(n) * 100
	return fmt.Sprintf(
		"Jensen-coded (10+) listing days were followed by a positive NVDA session %.0f%% of the time (n=%d)",
		share, n)
}

// datesWhere returns the sorted distinct observation dates of listings
// matching the predicate.
func datesWhere(history []*contracts.ScoredListing, match func(*contracts.ScoredListing) bool) []time.Time {
	seen := make(map[time.Time]bool)
	for _, l := range history {
		if match(l) {
			seen[dateOnly(l.ObservedOn)] = true
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// nextQuotePct finds the first quote change strictly after the date, within
// the lookahead cap (weekends and holidays leave gaps).
func nextQuotePct(daily []*contracts.DailyStat, after time.Time) *float64 {
	limit := after.AddDate(0, 0, nextDayLookahead)
	for _, d := range daily {
		if !d.Date.After(after) || d.Date.After(limit) {
			continue
		}
		if d.QuotePct != nil {
			return d.QuotePct
		}
	}
	return nil
}

func avgOf(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
