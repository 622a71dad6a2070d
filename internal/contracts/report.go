package contracts

import "time"

// Report freshness states. StatusLive means metrics were computed from real
// stored history; StatusNoData means the store is still empty.
const (
	ReportStatusLive   = "live"
	ReportStatusNoData = "no_data"
)

// Weekly alignment signal between the jacket series and the quote series.
// Zero is its own sign bucket: a flat week never aligns with a moving one.
const (
	SignalAligned  = "ALIGNED"
	SignalDiverged = "DIVERGED"
	SignalNoData   = "NO DATA"
)

// MetricRow is one row of the alt-data metric table: trailing means for the
// 91/28/7-day windows plus period-over-period deltas. Nil means "no data"
// for that window and marshals to JSON null, never 0.
type MetricRow struct {
	Name        string   `json:"name"`
	Trailing91  *float64 `json:"trailing91"`
	Trailing28  *float64 `json:"trailing28"`
	Trailing7   *float64 `json:"trailing7"`
	PoP91       *float64 `json:"pop91"`
	PoP28       *float64 `json:"pop28"`
	PoP7        *float64 `json:"pop7"`
	Highlighted bool     `json:"highlighted,omitempty"`
}

// WeeklyRow is one week-ending row of the time-series chart.
type WeeklyRow struct {
	Week   string   `json:"week"` // 주 마감일, YYYY-MM-DD
	Jacket *float64 `json:"jacket"`
	NVDA   *float64 `json:"nvda"`
	Jensen *float64 `json:"jensen"`
	Volume *int     `json:"volume"`
	Sold   *int     `json:"sold"`
	Signal string   `json:"signal"`
}

// DailyStat is the per-day rollup of stored listings joined with the quote
// series. It is a recomputed view over history, never a source of truth.
// ⭐ SSOT: 일별 지수 뷰 타입 (저장 안 함)
type DailyStat struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"` // YYYY-MM-DD
	AvgPrice      *float64  `json:"avg_price"`
	MedianPrice   *float64  `json:"median_price"`
	AvgSoldPrice  *float64  `json:"avg_sold_price"`
	TotalListings int       `json:"total_listings"`
	SoldCount     int       `json:"sold_count"`
	AvgScore      *float64  `json:"avg_jensen_score"`
	QuoteClose    *float64  `json:"nvda_close"`
	QuotePct      *float64  `json:"nvda_pct_change"`
	PriceToQuote  *float64  `json:"price_to_quote"`   // 평균가 / 종가
	RollingCorr   *float64  `json:"rolling_corr_7d"`  // 최근 7일 가격-종가 상관
}

// ReportPayload is the full index document served to the dashboard.
type ReportPayload struct {
	Ticker         string             `json:"ticker"`
	Name           string             `json:"name"`
	Status         string             `json:"status"`
	LastUpdated    string             `json:"last_updated"` // YYYY-MM-DD, 데이터 없으면 "N/A"
	QuoteDisplay   string             `json:"nvda_display"`
	AltDataMetrics []MetricRow        `json:"alt_data_metrics"`
	WeeklyData     []WeeklyRow        `json:"weekly_data"`
	TopListings    []*ScoredListing   `json:"top_listings"`
	DailyHistory   []*DailyStat       `json:"daily_history"`
	Correlation    *CorrelationResult `json:"correlation"`
	GeneratedAt    time.Time          `json:"generated_at"`
}
