package index

import (
	"sort"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/internal/insight"
)

// rollingCorrWindow is the span of the per-day listing/quote correlation.
const rollingCorrWindow = 7

// BuildDaily joins the listing history with the quote series into per-day
// index rows, ordered by date ascending. The result is a recomputed view:
// calling it twice over the same inputs yields identical rows.
// Days that appear in neither input do not produce a row.
func BuildDaily(history []*contracts.ScoredListing, quotes []*contracts.QuotePoint) []*contracts.DailyStat {
	byDay := make(map[time.Time]*contracts.DailyStat)

	row := func(d time.Time) *contracts.DailyStat {
		key := DateOnly(d)
		if s, ok := byDay[key]; ok {
			return s
		}
		s := &contracts.DailyStat{Date: key, DateStr: key.Format("2006-01-02")}
		byDay[key] = s
		return s
	}

	// 리스팅 → 일별 그룹
	prices := make(map[time.Time][]float64)
	soldPrices := make(map[time.Time][]float64)
	scores := make(map[time.Time][]float64)
	for _, l := range history {
		s := row(l.ObservedOn)
		s.TotalListings++
		key := s.Date
		prices[key] = append(prices[key], l.Price)
		scores[key] = append(scores[key], float64(l.Score))
		if l.Sold {
			s.SoldCount++
			if l.SoldPrice != nil {
				soldPrices[key] = append(soldPrices[key], *l.SoldPrice)
			}
		}
	}

	for key, vals := range prices {
		s := byDay[key]
		s.AvgPrice = mean(vals)
		s.MedianPrice = median(vals)
	}
	for key, vals := range soldPrices {
		byDay[key].AvgSoldPrice = mean(vals)
	}
	for key, vals := range scores {
		byDay[key].AvgScore = mean(vals)
	}

	for _, q := range quotes {
		s := row(q.Date)
		close := q.Close
		s.QuoteClose = &close
		s.QuotePct = q.PctChange
	}

	daily := make([]*contracts.DailyStat, 0, len(byDay))
	for _, s := range byDay {
		daily = append(daily, s)
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })

	// 가격/종가 비율과 롤링 상관은 조인된 날에만 존재
	for _, s := range daily {
		if s.AvgPrice != nil && s.QuoteClose != nil && *s.QuoteClose != 0 {
			ratio := *s.AvgPrice / *s.QuoteClose
			s.PriceToQuote = &ratio
		}
	}
	fillRollingCorr(daily)

	return daily
}

// fillRollingCorr computes, per day, the Pearson correlation between avg
// listing price and quote close over the trailing 7 calendar days. Days with
// fewer than 3 joined samples in the window carry no value.
func fillRollingCorr(daily []*contracts.DailyStat) {
	for i, s := range daily {
		start := s.Date.AddDate(0, 0, -(rollingCorrWindow - 1))
		var xs, ys []float64
		for j := i; j >= 0; j-- {
			d := daily[j]
			if d.Date.Before(start) {
				break
			}
			if d.AvgPrice != nil && d.QuoteClose != nil {
				xs = append(xs, *d.AvgPrice)
				ys = append(ys, *d.QuoteClose)
			}
		}
		if len(xs) < 3 {
			continue
		}
		if r, ok := insight.Pearson(xs, ys); ok {
			v := r
			s.RollingCorr = &v
		}
	}
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func mean(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	m := sum / float64(len(vals))
	return &m
}

func median(vals []float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 0 {
		m = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		m = sorted[mid]
	}
	return &m
}
