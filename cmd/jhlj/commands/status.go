package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jhlj/backend/internal/store"
	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/database"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "저장소 및 수집 현황 조회",
	Long: `저장소 스냅샷 수와 최근 수집 사이클을 표시합니다.

표시 정보:
- 저장된 매물 스냅샷 수와 최근 관측일
- 추적 종목의 최신 종가
- 최근 수집 사이클 이력

Example:
  go run ./cmd/jhlj status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== JHLJ Status ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	listingRepo := store.NewListingRepository(db.Pool)
	quoteRepo := store.NewQuoteRepository(db.Pool)
	runRepo := store.NewScrapeRunRepository(db.Pool)

	// 3. Store snapshot
	fmt.Println("\n📊 Store")
	PrintSeparator()

	count, err := listingRepo.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("count listings: %w", err)
	}
	PrintKeyValue("Snapshots", fmt.Sprintf("%d", count), 14)

	latestDay, err := listingRepo.GetLatestObservedOn(ctx)
	if err != nil {
		return fmt.Errorf("latest observation: %w", err)
	}
	if latestDay.IsZero() {
		PrintKeyValue("Last observed", "never", 14)
	} else {
		PrintKeyValue("Last observed", latestDay.Format("2006-01-02"), 14)
	}

	quote, err := quoteRepo.GetLatest(ctx, cfg.Index.Symbol)
	if err != nil {
		return fmt.Errorf("latest quote: %w", err)
	}
	if quote == nil {
		PrintKeyValue(cfg.Index.Symbol, "no quotes stored", 14)
	} else {
		display := fmt.Sprintf("$%.2f (%s)", quote.Close, quote.Date.Format("2006-01-02"))
		if quote.PctChange != nil {
			display = fmt.Sprintf("$%.2f (%+.2f%%, %s)", quote.Close, *quote.PctChange, quote.Date.Format("2006-01-02"))
		}
		PrintKeyValue(cfg.Index.Symbol, display, 14)
	}

	// 4. Recent collection cycles
	runs, err := runRepo.GetRecent(ctx, 5)
	if err != nil {
		return fmt.Errorf("recent runs: %w", err)
	}

	fmt.Println("\n📈 Recent Collection Cycles")
	PrintSeparator()

	if len(runs) == 0 {
		fmt.Println("   (none yet)")
		return nil
	}

	widths := []int{21, 11, 7, 7, 8, 9}
	PrintTableHeader([]string{"Started", "Status", "Found", "Stored", "Skipped", "Duration"}, widths)
	for _, run := range runs {
		duration := "-"
		if run.FinishedAt != nil {
			duration = fmt.Sprintf("%.1fs", run.Duration().Seconds())
		}
		PrintTableRow([]string{
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Status,
			fmt.Sprintf("%d", run.Found),
			fmt.Sprintf("%d", run.Stored),
			fmt.Sprintf("%d", run.Skipped),
			duration,
		}, widths)
	}

	return nil
}
