package catalog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"csgo-market-data/internal/anchor"
	"csgo-market-data/internal/services/steamdt"
)

// C5Platform is the platformList entry whose itemId is the kline typeVal.
const C5Platform = "C5"

// ItemLister is satisfied by *steamdt.Client.
type ItemLister interface {
	ListItems(ctx context.Context) ([]steamdt.Item, error)
}

// Cache is the on-disk item list plus its plain-text name index.
type Cache struct {
	ItemsPath string
	NamesPath string
}

func (c Cache) Load() ([]steamdt.Item, error) {
	data, err := os.ReadFile(c.ItemsPath)
	if err != nil {
		return nil, fmt.Errorf("read item cache: %w", err)
	}
	var items []steamdt.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse item cache %s: %w", c.ItemsPath, err)
	}
	return items, nil
}

func (c Cache) Save(items []steamdt.Item) error {
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.ItemsPath, data, 0o644); err != nil {
		return fmt.Errorf("write item cache: %w", err)
	}
	if c.NamesPath == "" {
		return nil
	}

	f, err := os.Create(c.NamesPath)
	if err != nil {
		return fmt.Errorf("write name index: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, item := range items {
		if item.MarketHashName == "" {
			continue
		}
		fmt.Fprintln(w, item.MarketHashName)
	}
	return w.Flush()
}

// FreshOn reports whether the cache file was written on the same calendar day
// (UTC+8) as now.
func (c Cache) FreshOn(now time.Time) bool {
	info, err := os.Stat(c.ItemsPath)
	if err != nil {
		return false
	}
	return anchor.Of(info.ModTime()).Equal(anchor.Of(now))
}

// EnsureFresh refreshes the cache from upstream at most once per day and
// returns the cached items. refreshed is false when today's file was reused.
func (c Cache) EnsureFresh(ctx context.Context, lister ItemLister, now time.Time) (items []steamdt.Item, refreshed bool, err error) {
	if c.FreshOn(now) {
		items, err = c.Load()
		if err == nil {
			log.Printf("[Catalog] ✔️  侦测到今日缓存 %s，共 %d 条物品，跳过API调用", c.ItemsPath, len(items))
			return items, false, nil
		}
		log.Printf("[Catalog] ⚠️  读取缓存文件时出错: %v，将重新从 API 获取", err)
	}

	log.Printf("[Catalog] ℹ️  本地无今日缓存，正在从 API 获取所有物品列表...")
	items, err = c.Refresh(ctx, lister)
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// Refresh always fetches the item list and rewrites the cache.
func (c Cache) Refresh(ctx context.Context, lister ItemLister) ([]steamdt.Item, error) {
	items, err := lister.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if err := c.Save(items); err != nil {
		return nil, err
	}
	log.Printf("[Catalog] ✅ 获取到 %d 条物品信息，已保存到 %s", len(items), c.ItemsPath)
	return items, nil
}

// Mapping resolves market hash names to upstream typeVal ids.
type Mapping map[string]string

// Resolve implements ingest.Resolver.
func (m Mapping) Resolve(marketHashName string) (string, bool) {
	v, ok := m[marketHashName]
	return v, ok && v != ""
}

// BuildMapping picks each item's itemId on the given platform.
func BuildMapping(items []steamdt.Item, platform string) Mapping {
	m := make(Mapping, len(items))
	for _, item := range items {
		for _, p := range item.PlatformList {
			if p.Name == platform && p.ItemID != "" {
				m[item.MarketHashName] = string(p.ItemID)
				break
			}
		}
	}
	return m
}

// LoadMapping reads the cache file and builds the C5 mapping.
func (c Cache) LoadMapping() (Mapping, error) {
	items, err := c.Load()
	if err != nil {
		return nil, err
	}
	m := BuildMapping(items, C5Platform)
	log.Printf("[Catalog] ✅ 已加载 %d 个物品的C5平台typeVal映射", len(m))
	return m, nil
}
