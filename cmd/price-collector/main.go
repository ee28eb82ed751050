package main

import (
	"flag"
	"log"
	"os"

	"csgo-market-data/internal/catalog"
	"csgo-market-data/internal/cli"
	"csgo-market-data/internal/ingest"
	"csgo-market-data/internal/store"
)

var (
	dbURL       = flag.String("db", "", "数据库连接字符串（默认 DATABASE_URL）")
	watchlist   = flag.String("watchlist", "", "饰品清单文件（默认 WATCHLIST_FILE）")
	askPlatform = flag.String("ask", "YOUPIN", "卖价来源平台")
	bidPlatform = flag.String("bid", "BUFF", "买价来源平台")
	noVolume    = flag.Bool("no-volume", false, "不抓取今日成交量")
)

func main() {
	flag.Parse()
	cfg := cli.LoadConfig()
	if *watchlist != "" {
		cfg.WatchlistFile = *watchlist
	}
	if err := cfg.RequireAPIKey(); err != nil {
		log.Fatalf("🛑 %v", err)
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

	db := cli.OpenDatabase(cfg, *dbURL)
	collector := &ingest.PriceCollector{
		Prices:      cli.SteamDTClient(cfg),
		Snapshots:   store.NewSnapshotStore(db),
		Pacer:       cli.NewPacer(cfg.FetchDelay),
		AskPlatform: *askPlatform,
		BidPlatform: *bidPlatform,
	}
	if !*noVolume {
		collector.Volumes = cli.SalesScraper(cfg)
	}

	summary, err := collector.Run(ctx, names)
	if err != nil {
		log.Printf("❌ 价格采集失败: %v", err)
		os.Exit(1)
	}
	log.Printf("🎉 价格采集完成: 保存 %d/%d", summary.Saved, summary.Requested)
}
