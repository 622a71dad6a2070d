package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jhlj/backend/internal/collector"
	"github.com/wonny/jhlj/backend/internal/contracts"
	"github.com/wonny/jhlj/backend/internal/external/grailed"
	"github.com/wonny/jhlj/backend/internal/external/yahoo"
	"github.com/wonny/jhlj/backend/internal/scheduler"
	"github.com/wonny/jhlj/backend/internal/scheduler/jobs"
	"github.com/wonny/jhlj/backend/internal/store"
	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/database"
	"github.com/wonny/jhlj/backend/pkg/httputil"
	"github.com/wonny/jhlj/backend/pkg/logger"
	"github.com/wonny/jhlj/backend/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

이 명령어는:
- 스케줄러 데몬 시작
- 등록된 작업 조회
- 작업 실행 이력 조회

Subcommands:
  start   - 스케줄러 시작
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/jhlj scheduler start
  go run ./cmd/jhlj scheduler list
  go run ./cmd/jhlj scheduler run scrape`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

등록되는 작업:
- scrape: SCRAPE_INTERVAL마다 (기본 6시간, 전체 수집 사이클)
- quote_sync: 매일 22:30 UTC (미 장 마감 후 종가 동기화)
- maintenance: 일요일 03:00 UTC (오래된 수집 이력 정리)

저장소가 비어 있으면 시작 직후 첫 수집을 바로 실행합니다.
스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showJobStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== JHLJ Scheduler ===")

	sched, listingRepo, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	// Start scheduler
	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	// 저장소가 비어 있으면 스케줄을 기다리지 않고 바로 수집
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	count, err := listingRepo.CountAll(ctx)
	cancel()
	if err == nil && count == 0 {
		fmt.Println("\nStore is empty, kicking off the first collection cycle now")
		if err := sched.RunJob("scrape"); err != nil {
			fmt.Printf("Failed to start initial collection: %v\n", err)
		}
	}

	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, _, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	fmt.Printf("Running job: %s\n", jobName)

	sched, _, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	if err := sched.RunJob(jobName); err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	// RunJob is asynchronous; give the one-shot invocation room to finish.
	fmt.Println("Job started, waiting for completion...")
	deadline := time.Now().Add(scrapeTimeout)
	for time.Now().Before(deadline) {
		history, err := sched.GetJobHistory(jobName)
		if err != nil {
			return err
		}
		if len(history.Results) > 0 {
			result := history.Results[len(history.Results)-1]
			if result.Success {
				PrintSuccess(fmt.Sprintf("Job %s completed in %.1fs", jobName, result.Duration.Seconds()))
				return nil
			}
			return fmt.Errorf("job %s failed: %s", jobName, result.Error)
		}
		time.Sleep(500 * time.Millisecond)
	}

	return fmt.Errorf("job %s did not finish within %s", jobName, scrapeTimeout)
}

func showJobStatus(cmd *cobra.Command, args []string) error {
	sched, _, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for jobName, stat := range stats {
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s\n", stat.LastFailure.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}

// initScheduler wires the scheduler with the collection, quote sync and
// maintenance jobs. The listing repository is returned so the caller can
// decide whether an immediate first collection is needed.
func initScheduler() (*scheduler.Scheduler, contracts.ListingRepository, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to database and ensure schema
	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.InitSchema(ctx, db.Pool); err != nil {
		return nil, nil, fmt.Errorf("init schema: %w", err)
	}

	// 4. Connect to Redis
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	cache := redis.NewCache(redisClient, "jhlj")
	limiter := redis.NewRateLimiter(redisClient, "jhlj")

	// 5. Create external API clients
	grailedHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.GrailedRateLimit)
	yahooHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.YahooRateLimit)

	grailedClient := grailed.NewClient(&cfg.Grailed, grailedHTTP, log)
	yahooClient := yahoo.NewClient(&cfg.Yahoo, yahooHTTP, log)

	// 6. Create repositories
	listingRepo := store.NewListingRepository(db.Pool)
	quoteRepo := store.NewQuoteRepository(db.Pool)
	runRepo := store.NewScrapeRunRepository(db.Pool)

	// 7. Create collector and quote sync
	col := collector.NewCollector(grailedClient, listingRepo, runRepo, collector.Config{
		Workers: cfg.Grailed.Workers,
	}, log)
	quoteSync := collector.NewQuoteSync(yahooClient, quoteRepo, cfg.Index.Symbol, log)

	// 8. Create scheduler
	sched := scheduler.New(log)

	// 9. Register jobs
	sched.AddJob(jobs.NewScrapeJob(col, cache, cfg.Scheduler.ScrapeInterval, log))
	sched.AddJob(jobs.NewQuoteSyncJob(quoteSync, cache, cfg.Scheduler.QuoteSyncCron, log))
	sched.AddJob(jobs.NewMaintenanceJob(runRepo, cfg.Scheduler.RunRetention, cfg.Scheduler.MaintenanceCron, log))

	return sched, listingRepo, nil
}
