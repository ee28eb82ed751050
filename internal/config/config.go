package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultInception is 2024-12-30 00:00 UTC+8, the earliest day SteamDT serves klines for.
const DefaultInception int64 = 1735488000

type Config struct {
	DBDriver    string `validate:"oneof=sqlite mysql"`
	DatabaseURL string `validate:"required"`

	// SteamDT
	SteamDTAPIKey  string
	SteamDTOpenAPI string `validate:"required,url"`
	SteamDTWebAPI  string `validate:"required,url"`
	SteamDTSite    string `validate:"required,url"`

	// 输入文件
	WatchlistFile      string `validate:"required"`
	ItemsCacheFile     string `validate:"required"`
	MarketHashNameFile string

	FetchDelay     time.Duration `validate:"gte=0"`
	RequestTimeout time.Duration `validate:"gt=0"`
	KlineInception int64         `validate:"gt=0"`
	DedupStrategy  string        `validate:"oneof=row batch"`

	// 查询 API 缓存，留空则不启用 Redis
	RedisAddr string
	CacheTTL  time.Duration `validate:"gte=0"`

	Port        string `validate:"required,numeric"`
	Environment string `validate:"oneof=development production test"`
}

var validate = validator.New()

func Load() *Config {
	return &Config{
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DatabaseURL: getEnv("DATABASE_URL", "steamdt.db"),

		SteamDTAPIKey:  getEnv("STEAMDT_API_KEY", ""),
		SteamDTOpenAPI: getEnv("STEAMDT_OPEN_API", "https://open.steamdt.com"),
		SteamDTWebAPI:  getEnv("STEAMDT_WEB_API", "https://api.steamdt.com"),
		SteamDTSite:    getEnv("STEAMDT_SITE", "https://steamdt.com"),

		WatchlistFile:      getEnv("WATCHLIST_FILE", "items.txt"),
		ItemsCacheFile:     getEnv("ITEMS_CACHE_FILE", "all_items_cache.json"),
		MarketHashNameFile: getEnv("MARKET_HASH_NAME_FILE", "market_hash_names.txt"),

		FetchDelay:     getDuration("FETCH_DELAY", 3*time.Second),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 30*time.Second),
		KlineInception: getInt64("KLINE_INCEPTION", DefaultInception),
		DedupStrategy:  getEnv("DEDUP_STRATEGY", "row"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		CacheTTL:  getDuration("CACHE_TTL", 5*time.Minute),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s%s (got %v)", fe.Field(), fe.Tag(), param(fe), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// RequireAPIKey is for entry points that call the open API.
func (c *Config) RequireAPIKey() error {
	if c.SteamDTAPIKey == "" {
		return errors.New("STEAMDT_API_KEY is not set")
	}
	return nil
}

func param(fe validator.FieldError) string {
	if fe.Param() == "" {
		return ""
	}
	return "=" + fe.Param()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration accepts Go durations ("3s") or plain seconds ("3").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	log.Printf("⚠️  %s=%q 无法解析，使用默认值 %s", key, raw, defaultValue)
	return defaultValue
}

func getInt64(key string, defaultValue int64) int64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Printf("⚠️  %s=%q 无法解析，使用默认值 %d", key, raw, defaultValue)
		return defaultValue
	}
	return v
}
