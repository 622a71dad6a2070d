package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jhlj/backend/internal/collector"
	"github.com/wonny/jhlj/backend/internal/external/grailed"
	"github.com/wonny/jhlj/backend/internal/store"
	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/database"
	"github.com/wonny/jhlj/backend/pkg/httputil"
	"github.com/wonny/jhlj/backend/pkg/logger"
	"github.com/wonny/jhlj/backend/pkg/redis"
)

// scrapeTimeout bounds one CLI collection cycle.
const scrapeTimeout = 15 * time.Minute

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "수집 사이클 1회 실행",
	Long: `Grailed 검색 로테이션을 돌아 가죽자켓 매물을 수집합니다.

이 명령어는:
- 검색 쿼리 로테이션 실행 (판매중/판매완료 각각)
- 설명이 빈 매물의 상세 페이지 보강
- Jensen-coded 점수 계산 후 스냅샷 저장
- scrape_runs에 감사 기록 남김

Example:
  go run ./cmd/jhlj scrape
  go run ./cmd/jhlj scrape --workers 8`,
	RunE: runScrapeOnce,
}

var (
	scrapeWorkers int
)

func init() {
	rootCmd.AddCommand(scrapeCmd)

	// Flags
	scrapeCmd.Flags().IntVar(&scrapeWorkers, "workers", 0, "검색 워커 수 (기본값: GRAILED_WORKERS)")
}

func runScrapeOnce(cmd *cobra.Command, args []string) error {
	fmt.Println("=== JHLJ Collection Cycle ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if scrapeWorkers > 0 {
		cfg.Grailed.Workers = scrapeWorkers
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database and ensure schema
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), scrapeTimeout)
	defer cancel()

	if err := store.InitSchema(ctx, db.Pool); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	// 4. Connect to Redis for the shared rate-limit budget
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "jhlj")
	limiter := redis.NewRateLimiter(redisClient, "jhlj")

	// 5. Create marketplace client
	grailedHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.GrailedRateLimit)
	grailedClient := grailed.NewClient(&cfg.Grailed, grailedHTTP, log)

	// 6. Create repositories and collector
	listingRepo := store.NewListingRepository(db.Pool)
	runRepo := store.NewScrapeRunRepository(db.Pool)

	col := collector.NewCollector(grailedClient, listingRepo, runRepo, collector.Config{
		Workers: cfg.Grailed.Workers,
	}, log)

	fmt.Printf("\nQueries: %d (x2 for sold rotation)\n", len(grailed.SearchQueries))
	fmt.Printf("Workers: %d\n\n", cfg.Grailed.Workers)

	// 7. Run one cycle
	run, err := col.Run(ctx)
	if err != nil {
		return fmt.Errorf("collection cycle: %w", err)
	}

	// 8. Invalidate the cached report
	if err := cache.Delete(ctx, redis.ReportKey()); err != nil {
		log.WithError(err).Warn("Failed to invalidate report cache")
	}

	PrintSeparator()
	PrintSuccess(fmt.Sprintf("Collection cycle %s completed in %.1fs", run.RunID.String()[:8], run.Duration().Seconds()))
	fmt.Println()
	PrintKeyValue("Found", fmt.Sprintf("%d", run.Found), 10)
	PrintKeyValue("Stored", fmt.Sprintf("%d", run.Stored), 10)
	PrintKeyValue("Skipped", fmt.Sprintf("%d", run.Skipped), 10)

	if len(run.SkipCounts) > 0 {
		fmt.Println("\nSkip reasons:")
		for reason, count := range run.SkipCounts {
			fmt.Printf("   • %s: %d\n", reason, count)
		}
	}

	return nil
}
