package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/internal/report"
	"github.com/wonny/jhlj/backend/internal/store"
	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/database"
	"github.com/wonny/jhlj/backend/pkg/logger"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "인덱스 리포트 출력",
	Long: `저장된 스냅샷으로 인덱스 리포트를 만들어 출력합니다.

표시 정보:
- 인덱스 상태와 최근 갱신일
- 트레일링 지표 (91/28/7일)
- 주별 가죽자켓-NVDA 정렬
- 상관계수 요약

Example:
  go run ./cmd/jhlj report
  go run ./cmd/jhlj report --json`,
	RunE: runReport,
}

var (
	reportJSON bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	// Flags
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "JSON으로 출력")
}

func runReport(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	// 4. Create report service
	listingRepo := store.NewListingRepository(db.Pool)
	quoteRepo := store.NewQuoteRepository(db.Pool)

	svc := report.NewService(listingRepo, quoteRepo, report.Options{
		Symbol:  cfg.Index.Symbol,
		TopN:    cfg.Index.TopN,
		MaxLead: cfg.Index.MaxLeadDays,
		Weeks:   cfg.Index.Weeks,
	}, log)

	// 5. Build
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payload, err := svc.Build(ctx, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if reportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}

	printReport(payload)
	return nil
}

func printReport(p *contracts.ReportPayload) {
	PrintDoubleSeparator()
	fmt.Printf("  %s (%s)\n", p.Name, p.Ticker)
	PrintDoubleSeparator()
	PrintKeyValue("Status", p.Status, 12)
	PrintKeyValue("Last update", p.LastUpdated, 12)
	PrintKeyValue("NVDA", p.QuoteDisplay, 12)
	fmt.Println()

	if p.Status == contracts.ReportStatusNoData {
		PrintWarning("No stored snapshots yet. Run: go run ./cmd/jhlj scrape")
		return
	}

	// Trailing metrics
	fmt.Println("📊 Trailing Metrics")
	widths := []int{24, 10, 10, 10}
	PrintTableHeader([]string{"Metric", "91d", "28d", "7d"}, widths)
	for _, row := range p.AltDataMetrics {
		PrintTableRow([]string{
			row.Name,
			fmtMetric(row.Trailing91),
			fmtMetric(row.Trailing28),
			fmtMetric(row.Trailing7),
		}, widths)
	}
	fmt.Println()

	// Weekly alignment
	if len(p.WeeklyData) > 0 {
		fmt.Println("📈 Weekly Alignment")
		weekWidths := []int{12, 10, 10, 10}
		PrintTableHeader([]string{"Week", "Jacket", "NVDA", "Signal"}, weekWidths)
		for _, row := range p.WeeklyData {
			PrintTableRow([]string{
				row.Week,
				fmtMetric(row.Jacket),
				fmtMetric(row.NVDA),
				row.Signal,
			}, weekWidths)
		}
		fmt.Println()
	}

	// Correlation
	if c := p.Correlation; c != nil {
		fmt.Println("🔗 Correlation")
		PrintSeparator()
		if c.Headline != "" {
			fmt.Printf("  %s\n", c.Headline)
		}
		PrintKeyValue("Status", string(c.Status), 12)
		PrintKeyValue("Lead days", fmt.Sprintf("%d", c.LeadDays), 12)
		PrintKeyValue("Pairs", fmt.Sprintf("%d", c.Pairs), 12)
		if c.R != nil {
			PrintKeyValue("r", fmt.Sprintf("%.4f", *c.R), 12)
		}
		if c.PValue != nil {
			PrintKeyValue("p-value", fmt.Sprintf("%.4f", *c.PValue), 12)
		}
		for _, insight := range c.Insights {
			fmt.Printf("   • %s\n", insight)
		}
		fmt.Println()
	}

	// Top listings
	if len(p.TopListings) > 0 {
		fmt.Println("🧥 Top Jensen-Coded Listings")
		PrintSeparator()
		limit := len(p.TopListings)
		if limit > 5 {
			limit = 5
		}
		for _, l := range p.TopListings[:limit] {
			fmt.Printf("  [%2d] $%-8.0f %-14s %s\n", l.Score, l.Price, l.Designer, truncate(l.Title, 44))
		}
	}
}

func fmtMetric(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", *v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
