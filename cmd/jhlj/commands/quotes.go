package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jhlj/backend/internal/collector"
	"github.com/wonny/jhlj/backend/internal/external/yahoo"
	"github.com/wonny/jhlj/backend/internal/store"
	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/database"
	"github.com/wonny/jhlj/backend/pkg/httputil"
	"github.com/wonny/jhlj/backend/pkg/logger"
	"github.com/wonny/jhlj/backend/pkg/redis"
)

// quotesCmd represents the quotes command
var quotesCmd = &cobra.Command{
	Use:   "quotes",
	Short: "시세 데이터 관리",
	Long: `Yahoo Finance에서 추적 종목의 일별 종가를 동기화합니다.

Subcommands:
  sync      - 최근 거래일 종가 동기화
  backfill  - 과거 종가 백필

Example:
  go run ./cmd/jhlj quotes sync
  go run ./cmd/jhlj quotes backfill --days 365`,
}

// quotesSyncCmd represents the sync subcommand
var quotesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "최근 거래일 종가 동기화",
	Long: `최근 1주 범위를 조회해 마지막 거래일들의 종가를 저장합니다.

Example:
  go run ./cmd/jhlj quotes sync`,
	RunE: runQuotesSync,
}

// quotesBackfillCmd represents the backfill subcommand
var quotesBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "과거 종가 백필",
	Long: `지정한 일수만큼 과거 종가를 한 번에 적재합니다.

Example:
  go run ./cmd/jhlj quotes backfill
  go run ./cmd/jhlj quotes backfill --days 365`,
	RunE: runQuotesBackfill,
}

var (
	backfillDays int
)

func init() {
	rootCmd.AddCommand(quotesCmd)
	quotesCmd.AddCommand(quotesSyncCmd)
	quotesCmd.AddCommand(quotesBackfillCmd)

	// Flags
	quotesBackfillCmd.Flags().IntVar(&backfillDays, "days", 90, "백필 범위 (일)")
}

func runQuotesSync(cmd *cobra.Command, args []string) error {
	fmt.Println("=== JHLJ Quote Sync ===")

	sync, cache, cleanup, err := initQuoteSync()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	stored, err := sync.Sync(ctx)
	if err != nil {
		return fmt.Errorf("quote sync: %w", err)
	}

	if err := cache.Delete(ctx, redis.ReportKey()); err != nil {
		fmt.Println("(cache invalidation failed)")
	}

	PrintSuccess(fmt.Sprintf("Synced %d daily closes", stored))
	return nil
}

func runQuotesBackfill(cmd *cobra.Command, args []string) error {
	fmt.Println("=== JHLJ Quote Backfill ===")
	fmt.Printf("Window: %d days\n\n", backfillDays)

	sync, cache, cleanup, err := initQuoteSync()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stored, err := sync.Backfill(ctx, backfillDays)
	if err != nil {
		return fmt.Errorf("quote backfill: %w", err)
	}

	if err := cache.Delete(ctx, redis.ReportKey()); err != nil {
		fmt.Println("(cache invalidation failed)")
	}

	PrintSuccess(fmt.Sprintf("Backfilled %d daily closes", stored))
	return nil
}

// initQuoteSync wires the quote sync against the database and Yahoo client.
// The returned cleanup closes both connections.
func initQuoteSync() (*collector.QuoteSync, *redis.Cache, func(), error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database and ensure schema
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.InitSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("init schema: %w", err)
	}

	// 4. Connect to Redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cache := redis.NewCache(redisClient, "jhlj")
	limiter := redis.NewRateLimiter(redisClient, "jhlj")

	// 5. Create Yahoo client and quote sync
	yahooHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.YahooRateLimit)
	yahooClient := yahoo.NewClient(&cfg.Yahoo, yahooHTTP, log)

	quoteRepo := store.NewQuoteRepository(db.Pool)
	sync := collector.NewQuoteSync(yahooClient, quoteRepo, cfg.Index.Symbol, log)

	cleanup := func() {
		redisClient.Close()
		db.Close()
	}
	return sync, cache, cleanup, nil
}
