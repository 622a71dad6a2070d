package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External APIs
	Grailed GrailedConfig
	Yahoo   YahooConfig

	// Index build
	Index IndexConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// GrailedConfig holds marketplace scraper configuration
type GrailedConfig struct {
	BaseURL    string
	UserAgent  string
	RatePerSec float64 // 요청 속도 상한 (req/s)
	Burst      int
	Workers    int // 상세 페이지 동시 수집 워커 수
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string
	UserAgent string
}

// IndexConfig holds report build configuration
type IndexConfig struct {
	Symbol      string // tracked ticker, e.g. NVDA
	TopN        int    // listings kept in the payload
	MaxLeadDays int    // lead-lag scan bound
	Weeks       int    // weekly breakdown rows
	CacheTTL    time.Duration
}

// SchedulerConfig holds background job cadence. Cron specs carry a
// seconds field and are evaluated in UTC.
type SchedulerConfig struct {
	ScrapeInterval  time.Duration // marketplace collection cycle
	QuoteSyncCron   string        // daily close sync
	MaintenanceCron string        // audit-row pruning
	RunRetention    time.Duration // scrape_runs kept this long
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "5001"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "jhlj"),
			User:            getEnv("DB_USER", "jhlj"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// External APIs
		Grailed: GrailedConfig{
			BaseURL:    getEnv("GRAILED_BASE_URL", "https://www.grailed.com"),
			UserAgent:  getEnv("GRAILED_USER_AGENT", defaultUserAgent),
			RatePerSec: getEnvAsFloat("GRAILED_RATE_PER_SEC", 0.5),
			Burst:      getEnvAsInt("GRAILED_BURST", 1),
			Workers:    getEnvAsInt("GRAILED_WORKERS", 4),
		},

		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			UserAgent: getEnv("YAHOO_USER_AGENT", defaultUserAgent),
		},

		// Index build
		Index: IndexConfig{
			Symbol:      getEnv("INDEX_SYMBOL", "NVDA"),
			TopN:        getEnvAsInt("INDEX_TOP_N", 20),
			MaxLeadDays: getEnvAsInt("INDEX_MAX_LEAD_DAYS", 5),
			Weeks:       getEnvAsInt("INDEX_WEEKS", 12),
			CacheTTL:    getEnvAsDuration("INDEX_CACHE_TTL", "5m"),
		},

		// Scheduler
		Scheduler: SchedulerConfig{
			ScrapeInterval:  getEnvAsDuration("SCRAPE_INTERVAL", "6h"),
			QuoteSyncCron:   getEnv("QUOTE_SYNC_CRON", "0 30 22 * * *"),
			MaintenanceCron: getEnv("MAINTENANCE_CRON", "0 0 3 * * 0"),
			RunRetention:    getEnvAsDuration("RUN_RETENTION", "2160h"), // 90 days
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// validate checks if required configuration values are set
func (c *Config) validate() error {
	// Database URL is required
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Index.TopN <= 0 {
		return fmt.Errorf("INDEX_TOP_N must be positive")
	}
	if c.Index.MaxLeadDays < 0 {
		return fmt.Errorf("INDEX_MAX_LEAD_DAYS must not be negative")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
