package main

import (
	"flag"
	"log"
	"time"

	"csgo-market-data/internal/catalog"
	"csgo-market-data/internal/cli"
	"csgo-market-data/internal/services/steamdt"
)

var (
	force     = flag.Bool("force", false, "忽略今日缓存，强制重新获取物品列表")
	cacheFile = flag.String("cache", "", "物品缓存文件（默认 ITEMS_CACHE_FILE）")
)

func main() {
	flag.Parse()
	cfg := cli.LoadConfig()
	if err := cfg.RequireAPIKey(); err != nil {
		log.Fatalf("🛑 %v", err)
	}

	ctx, cancel := cli.SignalContext()
	defer cancel()

	cache := catalog.Cache{ItemsPath: cfg.ItemsCacheFile, NamesPath: cfg.MarketHashNameFile}
	if *cacheFile != "" {
		cache.ItemsPath = *cacheFile
	}
	client := cli.SteamDTClient(cfg)

	log.Println("========== 任务：获取所有物品列表 ==========")
	var (
		items []steamdt.Item
		err   error
	)
	if *force {
		items, err = cache.Refresh(ctx, client)
	} else {
		items, _, err = cache.EnsureFresh(ctx, client, time.Now())
	}
	if err != nil {
		log.Fatalf("❌ 物品列表同步失败: %v", err)
	}

	mapping := catalog.BuildMapping(items, catalog.C5Platform)
	log.Printf("🎉 任务执行完毕: %d 条物品，其中 %d 条有C5 typeVal", len(items), len(mapping))
}
