// Package cli holds the start-up steps every command shares.
package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"csgo-market-data/internal/config"
	"csgo-market-data/internal/database"
	"csgo-market-data/internal/ingest"
	"csgo-market-data/internal/services/sales"
	"csgo-market-data/internal/services/steamdt"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// LoadConfig reads .env (if present) and the environment, then validates.
func LoadConfig() *config.Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ 配置错误: %v", err)
	}
	return cfg
}

// OpenDatabase connects with dbURL when given, otherwise with the configured URL.
func OpenDatabase(cfg *config.Config, dbURL string) *gorm.DB {
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	db, err := database.Initialize(cfg.DBDriver, dbURL)
	if err != nil {
		log.Fatalf("❌ 数据库连接失败: %v", err)
	}
	return db
}

// SignalContext is cancelled on SIGINT/SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// NewPacer allows one upstream request per delay. A non-positive delay disables pacing.
func NewPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

func SteamDTClient(cfg *config.Config) *steamdt.Client {
	return steamdt.NewClient(steamdt.Config{
		APIKey:     cfg.SteamDTAPIKey,
		OpenAPIURL: cfg.SteamDTOpenAPI,
		WebAPIURL:  cfg.SteamDTWebAPI,
		Timeout:    cfg.RequestTimeout,
	})
}

func SalesScraper(cfg *config.Config) *sales.Scraper {
	return sales.NewScraper(cfg.SteamDTSite, steamdt.DefaultUserAgent, cfg.RequestTimeout)
}

// FinishRun logs the outcome of an orchestrated run and returns the process exit
// code. Per-entity failures are reported but not fatal; only an aborted run
// (mode undetermined, cancelled) exits non-zero.
func FinishRun(label string, summary ingest.Summary, total int, err error) int {
	if err != nil {
		log.Printf("❌ %s中止 (%s): 新增 %d 条, 失败 %d/%d: %v", label, summary.Mode, summary.Inserted, summary.Failed, total, err)
		return 1
	}
	if summary.Failed > 0 {
		log.Printf("⚠️  %s完成 (%s): 新增 %d 条, 失败 %d/%d", label, summary.Mode, summary.Inserted, summary.Failed, total)
		return 0
	}
	log.Printf("🎉 %s完成 (%s): 新增 %d 条", label, summary.Mode, summary.Inserted)
	return 0
}
