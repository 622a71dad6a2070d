package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/jhlj/backend/internal/contracts"
)

// Index metadata served with every payload.
const (
	Ticker    = "JHLJ"
	IndexName = "Jensen Huang Leather Jacket Index"
)

// maxDailyHistory caps the daily rows shipped to the dashboard.
const maxDailyHistory = 730

// Inputs carries everything Assemble composes. GeneratedAt is passed in so
// the assembler itself never touches the clock.
type Inputs struct {
	Metrics      []contracts.MetricRow
	Weekly       []contracts.WeeklyRow
	Daily        []*contracts.DailyStat
	Correlation  *contracts.CorrelationResult
	History      []*contracts.ScoredListing
	AsOf         time.Time
	QuoteDisplay string
	GeneratedAt  time.Time
}

// Assembler composes the final index payload: metric table, weekly rows,
// top listings and metadata. Selection and ordering only, no computation.
// ⭐ SSOT: 리포트 페이로드 조립은 여기서만
type Assembler struct {
	topN int
	log  zerolog.Logger
}

// NewAssembler creates an assembler that keeps the topN best listings.
func NewAssembler(topN int, log zerolog.Logger) *Assembler {
	return &Assembler{
		topN: topN,
		log:  log.With().Str("component", "report.assembler").Logger(),
	}
}

// Assemble builds the payload. The freshness status distinguishes metrics
// computed from real stored history from an empty store; explicit no-data
// states in the inputs pass through untouched.
func (a *Assembler) Assemble(in Inputs) *contracts.ReportPayload {
	payload := &contracts.ReportPayload{
		Ticker:         Ticker,
		Name:           IndexName,
		Status:         contracts.ReportStatusNoData,
		LastUpdated:    "N/A",
		QuoteDisplay:   in.QuoteDisplay,
		AltDataMetrics: in.Metrics,
		WeeklyData:     in.Weekly,
		TopListings:    a.topListings(in.History),
		DailyHistory:   recentFirst(in.Daily),
		Correlation:    in.Correlation,
		GeneratedAt:    in.GeneratedAt,
	}

	for _, d := range in.Daily {
		if d.TotalListings > 0 {
			payload.Status = contracts.ReportStatusLive
		}
	}
	if len(in.Daily) > 0 {
		payload.LastUpdated = in.Daily[len(in.Daily)-1].DateStr
	}

	a.log.Debug().
		Str("status", payload.Status).
		Int("top_listings", len(payload.TopListings)).
		Int("daily_rows", len(payload.DailyHistory)).
		Msg("payload assembled")

	return payload
}

// topListings keeps the most recent snapshot of each listing, then orders
// by score descending with deterministic tie-breaks: most recent
// observation first, then ascending ID.
func (a *Assembler) topListings(history []*contracts.ScoredListing) []*contracts.ScoredListing {
	top := latestSnapshots(history)
	if len(top) > a.topN {
		top = top[:a.topN]
	}
	return top
}

// latestSnapshots collapses the append-only history to one row per listing
// (the newest observation) and sorts by score desc, observation desc, ID asc.
func latestSnapshots(history []*contracts.ScoredListing) []*contracts.ScoredListing {
	latest := make(map[string]*contracts.ScoredListing, len(history))
	for _, l := range history {
		prev, ok := latest[l.ID]
		if !ok || l.ObservedOn.After(prev.ObservedOn) {
			latest[l.ID] = l
		}
	}

	out := make([]*contracts.ScoredListing, 0, len(latest))
	for _, l := range latest {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if !out[i].ObservedOn.Equal(out[j].ObservedOn) {
			return out[i].ObservedOn.After(out[j].ObservedOn)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// recentFirst reverses the ascending daily view for the dashboard, capped
// at two years of rows.
func recentFirst(daily []*contracts.DailyStat) []*contracts.DailyStat {
	out := make([]*contracts.DailyStat, 0, len(daily))
	for i := len(daily) - 1; i >= 0 && len(out) < maxDailyHistory; i-- {
		out = append(out, daily[i])
	}
	return out
}

// QuoteDisplay renders the header string for the latest close, e.g.
// "$178.45 ▲ 1.23%".
func QuoteDisplay(q *contracts.QuotePoint) string {
	if q == nil {
		return "N/A"
	}
	if q.PctChange == nil {
		return fmt.Sprintf("$%.2f", q.Close)
	}
	arrow := "▲"
	if *q.PctChange < 0 {
		arrow = "▼"
	}
	pct := *q.PctChange
	if pct < 0 {
		pct = -pct
	}
	return fmt.Sprintf("$%.2f %s %.2f%%", q.Close, arrow, pct)
}
