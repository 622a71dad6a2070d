package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/internal/index"
	"github.com/wonny/jhlj/backend/internal/insight"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

// historyYears bounds how far back quotes are loaded for a build.
const historyYears = 2

// Options tunes the report build.
type Options struct {
	Symbol  string // tracked instrument, e.g. "NVDA"
	TopN    int    // listings kept in the payload
	MaxLead int    // lead-lag scan bound in days
	Weeks   int    // weekly breakdown rows
}

func (o Options) withDefaults() Options {
	if o.Symbol == "" {
		o.Symbol = "NVDA"
	}
	if o.TopN <= 0 {
		o.TopN = 20
	}
	if o.MaxLead <= 0 {
		o.MaxLead = 5
	}
	if o.Weeks <= 0 {
		o.Weeks = 12
	}
	return o
}

// Service builds the full index report from stored history. It implements
// contracts.ReportBuilder and is the single composition point between the
// store, the aggregator and the correlator.
type Service struct {
	listings contracts.ListingRepository
	quotes   contracts.QuoteRepository
	agg      *index.Aggregator
	corr     *insight.Correlator
	asm      *Assembler
	opts     Options
	log      *logger.Logger
}

// NewService wires a report service against the given repositories.
func NewService(listings contracts.ListingRepository, quotes contracts.QuoteRepository, opts Options, log *logger.Logger) *Service {
	opts = opts.withDefaults()
	zlog := log.Zerolog()
	return &Service{
		listings: listings,
		quotes:   quotes,
		agg:      index.NewAggregator(zlog),
		corr:     insight.NewCorrelator(zlog),
		asm:      NewAssembler(opts.TopN, zlog),
		opts:     opts,
		log:      log.WithField("component", "report"),
	}
}

// Build assembles the index payload as of the given day. Missing history
// surfaces as explicit no-data states in the payload, never as an error.
func (s *Service) Build(ctx context.Context, asOf time.Time) (*contracts.ReportPayload, error) {
	asOf = index.DateOnly(asOf)

	history, err := s.listings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}

	from := asOf.AddDate(-historyYears, 0, 0)
	quotes, err := s.quotes.GetRange(ctx, s.opts.Symbol, from, asOf)
	if err != nil {
		return nil, fmt.Errorf("load quotes: %w", err)
	}

	daily := index.BuildDaily(history, quotes)

	corr := s.corr.BestLead(listingSeries(daily), quoteSeries(daily), s.opts.MaxLead)
	corr.Insights = s.corr.BuildInsights(history, daily)

	latest, err := s.quotes.GetLatest(ctx, s.opts.Symbol)
	if err != nil {
		return nil, fmt.Errorf("load latest quote: %w", err)
	}

	payload := s.asm.Assemble(Inputs{
		Metrics:      s.agg.MetricRows(daily, asOf),
		Weekly:       s.agg.WeeklyRows(daily, asOf, s.opts.Weeks),
		Daily:        daily,
		Correlation:  corr,
		History:      history,
		AsOf:         asOf,
		QuoteDisplay: QuoteDisplay(latest),
		GeneratedAt:  time.Now().UTC(),
	})

	s.log.WithFields(map[string]interface{}{
		"as_of":     asOf.Format("2006-01-02"),
		"snapshots": len(history),
		"quotes":    len(quotes),
		"status":    payload.Status,
	}).Info("report built")

	return payload, nil
}

// Correlation computes the lead-lag result for one explicit lead, with
// insights attached. Serves the correlation endpoint.
func (s *Service) Correlation(ctx context.Context, asOf time.Time, leadDays int) (*contracts.CorrelationResult, error) {
	asOf = index.DateOnly(asOf)

	history, err := s.listings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	quotes, err := s.quotes.GetRange(ctx, s.opts.Symbol, asOf.AddDate(-historyYears, 0, 0), asOf)
	if err != nil {
		return nil, fmt.Errorf("load quotes: %w", err)
	}

	daily := index.BuildDaily(history, quotes)
	res := s.corr.Correlate(listingSeries(daily), quoteSeries(daily), leadDays)
	res.Insights = s.corr.BuildInsights(history, daily)
	return res, nil
}

// ExportCSV streams the full data export to w.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	history, err := s.listings.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load listings: %w", err)
	}
	now := time.Now().UTC()
	quotes, err := s.quotes.GetRange(ctx, s.opts.Symbol, now.AddDate(-historyYears, 0, 0), now)
	if err != nil {
		return fmt.Errorf("load quotes: %w", err)
	}

	daily := index.BuildDaily(history, quotes)
	return writeExport(w, daily, latestSnapshots(history), now)
}

// listingSeries extracts the average-price-by-day series for correlation.
func listingSeries(daily []*contracts.DailyStat) []contracts.DatedValue {
	out := make([]contracts.DatedValue, 0, len(daily))
	for _, d := range daily {
		if d.AvgPrice != nil {
			out = append(out, contracts.DatedValue{Date: d.Date, Value: *d.AvgPrice})
		}
	}
	return out
}

// quoteSeries extracts the close-by-day series for correlation.
func quoteSeries(daily []*contracts.DailyStat) []contracts.DatedValue {
	out := make([]contracts.DatedValue, 0, len(daily))
	for _, d := range daily {
		if d.QuoteClose != nil {
			out = append(out, contracts.DatedValue{Date: d.Date, Value: *d.QuoteClose})
		}
	}
	return out
}
