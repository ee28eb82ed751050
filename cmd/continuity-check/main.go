package main

import (
	"context"
	"flag"
	"log"
	"os"

	"csgo-market-data/internal/anchor"
	"csgo-market-data/internal/catalog"
	"csgo-market-data/internal/cli"
	"csgo-market-data/internal/continuity"
	"csgo-market-data/internal/store"
)

var (
	dbURL     = flag.String("db", "", "数据库连接字符串（默认 DATABASE_URL）")
	name      = flag.String("name", "", "只检查一个饰品（默认检查整个清单）")
	withIndex = flag.Bool("index", true, "同时检查大盘指数")
)

func main() {
	flag.Parse()
	cfg := cli.LoadConfig()

	ctx, cancel := cli.SignalContext()
	defer cancel()

	names := []string{*name}
	if *name == "" {
		var err error
		names, err = catalog.LoadWatchlist(cfg.WatchlistFile)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
	}

	db := cli.OpenDatabase(cfg, *dbURL)
	reader := store.NewKlineReader(db)

	broken := 0
	for _, n := range names {
		ts, err := reader.Timestamps(ctx, n)
		if err != nil {
			log.Printf("❌ %s: %v", n, err)
			broken++
			continue
		}
		if !report(n, continuity.Check(ts)) {
			broken++
		}
	}

	if *withIndex {
		if !checkIndex(ctx, store.NewIndexReader(db)) {
			broken++
		}
	}

	if broken > 0 {
		log.Printf("⚠️  %d 个序列不连续", broken)
		os.Exit(1)
	}
	log.Println("✅ 所有序列连续")
}

func checkIndex(ctx context.Context, r *store.IndexReader) bool {
	points, err := r.Dump(ctx)
	if err != nil {
		log.Printf("❌ 大盘指数: %v", err)
		return false
	}
	ts := make([]int64, 0, len(points))
	for _, p := range points {
		ts = append(ts, p.Timestamp)
	}
	return report("大盘指数", continuity.Check(ts))
}

func report(label string, r continuity.Report) bool {
	if r.Present == 0 {
		log.Printf("⚠️  %s: 无数据", label)
		return true
	}
	if r.Continuous() {
		log.Printf("✅ %s: %d 天连续 (%s ~ %s)", label, r.Present, day(r.First), day(r.Last))
		return true
	}
	log.Printf("❌ %s: %d/%d 天 (%s ~ %s)", label, r.Present, r.Expected, day(r.First), day(r.Last))
	for _, g := range r.Gaps {
		log.Printf("    缺失 %d 天: %s 之后, %s 之前", g.Missing, day(g.After), day(g.Before))
	}
	for _, ts := range r.Misaligned {
		log.Printf("    未对齐时间戳: %d", ts)
	}
	return false
}

func day(ts int64) string {
	return anchor.Date(ts)
}
