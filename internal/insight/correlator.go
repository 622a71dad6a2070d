package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// minPairs is the statistical minimum paired-sample size. Below it the
// correlator reports insufficient data instead of a coefficient.
const minPairs = 3

// Correlator computes the lead-lag relation between the jacket series and
// the quote series. Pure over its inputs; results are recomputed per call.
// ⭐ SSOT: 상관계수 계산은 여기서만
type Correlator struct {
	log zerolog.Logger
}

// NewCorrelator creates a correlator.
func NewCorrelator(log zerolog.Logger) *Correlator {
	return &Correlator{
		log: log.With().Str("component", "insight.correlator").Logger(),
	}
}

// Correlate pairs the two daily series by date after shifting the listing
// series forward by leadDays (listing value at d pairs with the quote at
// d+leadDays), then computes Pearson r, r² and a two-tailed p-value.
// Dates present in only one series are dropped, never imputed.
func (c *Correlator) Correlate(listings, quotes []contracts.DatedValue, leadDays int) *contracts.CorrelationResult {
	res := &contracts.CorrelationResult{
		Status:      contracts.CorrelationOK,
		LeadDays:    leadDays,
		Methodology: "Date-aligned lead-lag Pearson correlation with two-tailed t-test",
		Disclaimer:  "This is not financial advice. This is fashion advice.",
		Insights:    []string{},
	}

	xs, ys := pairWithLead(listings, quotes, leadDays)
	res.Pairs = len(xs)

	if len(xs) < minPairs {
		res.Status = contracts.CorrelationInsufficientData
		res.Headline = "Not Enough Paired Data Yet"
		c.log.Warn().
			Int("pairs", len(xs)).
			Int("lead_days", leadDays).
			Msg("not enough paired samples for correlation")
		return res
	}

	r, ok := Pearson(xs, ys)
	if !ok {
		// 분산 0: 계수 자체가 정의되지 않음
		res.Status = contracts.CorrelationUndefined
		res.Headline = "Correlation Undefined For This Window"
		c.log.Warn().
			Int("pairs", len(xs)).
			Int("lead_days", leadDays).
			Msg("correlation undefined: zero variance in a paired series")
		return res
	}

	r2 := r * r
	p := StudentTPValue(r, len(xs))

	res.R = roundTo(r, 4)
	res.RSquared = roundTo(r2, 4)
	res.PValue = roundTo(p, 6)
	res.Headline = headline(r, leadDays)

	c.log.Debug().
		Int("pairs", len(xs)).
		Int("lead_days", leadDays).
		Float64("r", r).
		Float64("p_value", p).
		Msg("correlation computed")

	return res
}

// BestLead scans lead offsets 0..maxLead and returns the result with the
// largest |r| among defined ones. Ties keep the smallest lead. When no lead
// yields a defined coefficient, the lead-0 result carries the explicit
// status.
func (c *Correlator) BestLead(listings, quotes []contracts.DatedValue, maxLead int) *contracts.CorrelationResult {
	var best *contracts.CorrelationResult
	for lead := 0; lead <= maxLead; lead++ {
		res := c.Correlate(listings, quotes, lead)
		if res.Status != contracts.CorrelationOK {
			continue
		}
		if best == nil || math.Abs(*res.R) > math.Abs(*best.R) {
			best = res
		}
	}
	if best == nil {
		return c.Correlate(listings, quotes, 0)
	}
	return best
}

func headline(r float64, leadDays int) string {
	if leadDays > 0 {
		return fmt.Sprintf("Jacket Prices Lead NVDA by %d Day(s) (r=%.2f)", leadDays, r)
	}
	return fmt.Sprintf("Jacket Prices vs NVDA, Same Day (r=%.2f)", r)
}

// pairWithLead inner-joins the series by calendar date. Listings are sorted
// first so the pair order, and therefore the result, is deterministic.
func pairWithLead(listings, quotes []contracts.DatedValue, leadDays int) (xs, ys []float64) {
	quoteByDate := make(map[time.Time]float64, len(quotes))
	for _, q := range quotes {
		quoteByDate[dateOnly(q.Date)] = q.Value
	}

	sorted := make([]contracts.DatedValue, len(listings))
	copy(sorted, listings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	for _, l := range sorted {
		target := dateOnly(l.Date).AddDate(0, 0, leadDays)
		if v, ok := quoteByDate[target]; ok {
			xs = append(xs, l.Value)
			ys = append(ys, v)
		}
	}
	return xs, ys
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func roundTo(v float64, decimals int) *float64 {
	pow := math.Pow(10, float64(decimals))
	r := math.Round(v*pow) / pow
	return &r
}
