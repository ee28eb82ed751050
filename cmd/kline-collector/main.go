package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"csgo-market-data/internal/api"
	"csgo-market-data/internal/catalog"
	"csgo-market-data/internal/cli"
	"csgo-market-data/internal/config"
	"csgo-market-data/internal/ingest"
	"csgo-market-data/internal/services/steamdt"
	"csgo-market-data/internal/store"

	"gorm.io/gorm"
)

var (
	dbURL     = flag.String("db", "", "数据库连接字符串（默认 DATABASE_URL）")
	watchlist = flag.String("watchlist", "", "饰品清单文件（默认 WATCHLIST_FILE）")
	strategy  = flag.String("dedup", "", "去重策略 row|batch（默认 DEDUP_STRATEGY）")
	delay     = flag.Duration("delay", -1, "请求间隔（默认 FETCH_DELAY）")
)

func main() {
	flag.Parse()
	cfg := cli.LoadConfig()
	if *watchlist != "" {
		cfg.WatchlistFile = *watchlist
	}
	if *strategy != "" {
		cfg.DedupStrategy = *strategy
	}
	if *delay >= 0 {
		cfg.FetchDelay = *delay
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	names, err := catalog.LoadWatchlist(cfg.WatchlistFile)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if len(names) == 0 {
		log.Println("⚠️  饰品清单为空，无事可做")
		return
	}
	log.Printf("📋 从 %s 读取到 %d 个饰品", cfg.WatchlistFile, len(names))

	client := cli.SteamDTClient(cfg)
	mapping, err := loadMapping(ctx, cfg, client)
	if err != nil {
		log.Fatalf("❌ 无法加载typeVal映射: %v", err)
	}

	dedup, err := ingest.NewDeduplicator(cfg.DedupStrategy)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	db := cli.OpenDatabase(cfg, *dbURL)
	orch := ingest.NewOrchestrator(ingest.Pipeline{
		Series:       store.NewKlineSeries(db),
		Fetcher:      steamdt.KlineFetcher{Client: client},
		Build:        ingest.BuildKline,
		Resolver:     mapping,
		Dedup:        dedup,
		Pacer:        cli.NewPacer(cfg.FetchDelay),
		Inception:    cfg.KlineInception,
		DropTrailing: true,
	})

	summary, err := orch.Run(ctx, names)
	invalidateCache(cfg, db, summary)
	if code := cli.FinishRun("K线采集", summary, len(names), err); code != 0 {
		os.Exit(code)
	}
}

// loadMapping refreshes the item cache when an API key is configured,
// otherwise it relies on an existing cache file.
func loadMapping(ctx context.Context, cfg *config.Config, client *steamdt.Client) (catalog.Mapping, error) {
	cache := catalog.Cache{ItemsPath: cfg.ItemsCacheFile, NamesPath: cfg.MarketHashNameFile}
	if cfg.RequireAPIKey() != nil {
		return cache.LoadMapping()
	}
	items, _, err := cache.EnsureFresh(ctx, client, time.Now())
	if err != nil {
		log.Printf("⚠️  物品列表刷新失败，尝试使用本地缓存: %v", err)
		return cache.LoadMapping()
	}
	return catalog.BuildMapping(items, catalog.C5Platform), nil
}

// invalidateCache drops cached API dumps of items that received new rows.
func invalidateCache(cfg *config.Config, db *gorm.DB, summary ingest.Summary) {
	if cfg.RedisAddr == "" || summary.Inserted == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := api.NewRedisClient(ctx, cfg.RedisAddr)
	if err != nil {
		log.Printf("⚠️  %v", err)
		return
	}
	defer rdb.Close()

	var updated []string
	for _, r := range summary.Results {
		if r.Inserted > 0 {
			updated = append(updated, r.Key)
		}
	}
	api.NewCachingKlineStore(rdb, cfg.CacheTTL, store.NewKlineReader(db)).Invalidate(ctx, updated...)
}
