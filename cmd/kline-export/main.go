package main

import (
	"flag"
	"log"

	"csgo-market-data/internal/catalog"
	"csgo-market-data/internal/cli"
	"csgo-market-data/internal/export"
	"csgo-market-data/internal/store"
)

var (
	dbURL     = flag.String("db", "", "数据库连接字符串（默认 DATABASE_URL）")
	out       = flag.String("out", "klines.xlsx", "导出文件路径")
	withIndex = flag.Bool("index", true, "同时导出大盘指数")
)

func main() {
	flag.Parse()
	cfg := cli.LoadConfig()

	ctx, cancel := cli.SignalContext()
	defer cancel()

	names, err := catalog.LoadWatchlist(cfg.WatchlistFile)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	db := cli.OpenDatabase(cfg, *dbURL)
	reader := store.NewKlineReader(db)
	wb := export.NewWorkbook()

	for _, n := range names {
		rows, err := reader.Dump(ctx, n)
		if err != nil {
			log.Printf("❌ %s: %v", n, err)
			continue
		}
		if len(rows) == 0 {
			log.Printf("⚠️  %s: 无K线数据，跳过", n)
			continue
		}
		sheet, err := wb.AddKlines(export.Sheet{Name: n, Rows: rows})
		if err != nil {
			log.Printf("❌ %s: %v", n, err)
			continue
		}
		log.Printf("✅ %s → %s (%d 条)", n, sheet, len(rows))
	}

	if *withIndex {
		points, err := store.NewIndexReader(db).Dump(ctx)
		if err != nil {
			log.Printf("❌ 大盘指数: %v", err)
		} else if len(points) > 0 {
			if _, err := wb.AddIndex(points); err != nil {
				log.Printf("❌ 大盘指数: %v", err)
			}
		}
	}

	if err := wb.SaveAs(*out); err != nil {
		log.Fatalf("❌ 导出失败: %v", err)
	}
	log.Printf("🎉 已导出到 %s", *out)
}
