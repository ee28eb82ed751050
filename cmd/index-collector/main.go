package main

import (
	"flag"
	"log"
	"os"

	"csgo-market-data/internal/cli"
	"csgo-market-data/internal/ingest"
	"csgo-market-data/internal/models"
	"csgo-market-data/internal/services/steamdt"
	"csgo-market-data/internal/store"
)

var (
	dbURL     = flag.String("db", "", "数据库连接字符串（默认 DATABASE_URL）")
	skipAlign = flag.Bool("skip-realign", false, "跳过已有数据的时间戳对齐")
)

func main() {
	flag.Parse()
	cfg := cli.LoadConfig()

	ctx, cancel := cli.SignalContext()
	defer cancel()

	dedup, err := ingest.NewDeduplicator(cfg.DedupStrategy)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	db := cli.OpenDatabase(cfg, *dbURL)
	if !*skipAlign {
		updated, err := store.NewIndexReader(db).Realign(ctx)
		if err != nil {
			log.Printf("⚠️  时间戳对齐失败: %v", err)
		} else if updated > 0 {
			log.Printf("✅ 已将 %d 条大盘指数记录对齐到北京时间零点", updated)
		}
	}

	orch := ingest.NewOrchestrator(ingest.Pipeline{
		Series:    store.NewIndexSeries(db),
		Fetcher:   steamdt.IndexFetcher{Client: cli.SteamDTClient(cfg)},
		Build:     ingest.BuildIndex,
		Dedup:     dedup,
		Pacer:     cli.NewPacer(cfg.FetchDelay),
		Inception: cfg.KlineInception,
	})

	keys := []string{models.MarketIndexKey}
	summary, err := orch.Run(ctx, keys)
	if code := cli.FinishRun("大盘指数采集", summary, len(keys), err); code != 0 {
		os.Exit(code)
	}
}
