package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jhlj/backend/internal/api"
	"github.com/wonny/jhlj/backend/internal/api/handlers"
	"github.com/wonny/jhlj/backend/internal/collector"
	"github.com/wonny/jhlj/backend/internal/external/grailed"
	"github.com/wonny/jhlj/backend/internal/external/yahoo"
	"github.com/wonny/jhlj/backend/internal/report"
	"github.com/wonny/jhlj/backend/internal/store"
	"github.com/wonny/jhlj/backend/pkg/config"
	"github.com/wonny/jhlj/backend/pkg/database"
	"github.com/wonny/jhlj/backend/pkg/httputil"
	"github.com/wonny/jhlj/backend/pkg/logger"
	"github.com/wonny/jhlj/backend/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- HTTP API 서버 시작
- 인덱스 리포트 및 상관계수 조회 제공
- 수집 트리거와 CSV 내보내기 제공
- WebSocket으로 인덱스 갱신 이벤트 전파

Endpoints:
  GET  /health               - Health check
  GET  /api/index            - 인덱스 리포트
  GET  /api/correlation      - 상관계수 상세
  GET  /api/export           - CSV 내보내기
  GET  /api/runs             - 수집 이력 조회
  POST /api/scrape           - 수집 사이클 트리거
  POST /api/quotes/backfill  - 시세 백필
  GET  /ws                   - 인덱스 갱신 이벤트

Example:
  go run ./cmd/jhlj api
  go run ./cmd/jhlj api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본값: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== JHLJ API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database and ensure schema
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelInit()
	if err := store.InitSchema(initCtx, db.Pool); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	log.Info("Connected to database")

	// 4. Connect to Redis (cache + rate limits; optional)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	cache := redis.NewCache(redisClient, "jhlj")
	limiter := redis.NewRateLimiter(redisClient, "jhlj")

	// 5. Create HTTP clients, one rate-limit budget per upstream
	grailedHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.GrailedRateLimit)
	yahooHTTP := httputil.New(cfg, log).WithRateLimiter(limiter, redis.YahooRateLimit)

	// 6. Create external API clients
	grailedClient := grailed.NewClient(&cfg.Grailed, grailedHTTP, log)
	yahooClient := yahoo.NewClient(&cfg.Yahoo, yahooHTTP, log)

	// 7. Create repositories
	listingRepo := store.NewListingRepository(db.Pool)
	quoteRepo := store.NewQuoteRepository(db.Pool)
	runRepo := store.NewScrapeRunRepository(db.Pool)

	// 8. Create collector and quote sync
	col := collector.NewCollector(grailedClient, listingRepo, runRepo, collector.Config{
		Workers: cfg.Grailed.Workers,
	}, log)
	quoteSync := collector.NewQuoteSync(yahooClient, quoteRepo, cfg.Index.Symbol, log)

	// 9. Create report service
	svc := report.NewService(listingRepo, quoteRepo, report.Options{
		Symbol:  cfg.Index.Symbol,
		TopN:    cfg.Index.TopN,
		MaxLead: cfg.Index.MaxLeadDays,
		Weeks:   cfg.Index.Weeks,
	}, log)

	// 10. Create WebSocket hub and hook it to the collector
	hub := api.NewHub(log)
	col.SetNotifier(hub)

	// 11. Create handlers
	indexHandler := handlers.NewIndexHandler(svc, cache, cfg.Index.CacheTTL, log)
	adminHandler := handlers.NewAdminHandler(col, quoteSync, runRepo, cache, log)

	// 12. Create router and server
	router := api.NewRouter(indexHandler, adminHandler, hub, db, log)
	server := api.New(cfg, log, router)

	// 13. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/index")
	fmt.Println("  GET  /api/correlation")
	fmt.Println("  GET  /api/export")
	fmt.Println("  GET  /api/runs")
	fmt.Println("  POST /api/scrape")
	fmt.Println("  POST /api/quotes/backfill")
	fmt.Println("  GET  /ws")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
