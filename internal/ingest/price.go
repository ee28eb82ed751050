package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"csgo-market-data/internal/anchor"
	"csgo-market-data/internal/models"
)

const (
	// MixedPlatform labels a snapshot merged from two sources.
	MixedPlatform = "MIXED"
	// VolumePlaceholder is stored when the sales volume could not be scraped.
	VolumePlaceholder = "未能获取"
)

// Quote is one platform's bid/ask state for an item.
type Quote struct {
	Platform       string
	PlatformItemID string
	SellPrice      float64
	SellCount      int
	BiddingPrice   float64
	BiddingCount   int
	UpdateTime     int64
}

// MergedQuote combines the ask side of one source with the bid side of another.
type MergedQuote struct {
	Platform       string
	PlatformItemID string
	SellPrice      float64
	SellCount      int
	BiddingPrice   float64
	BiddingCount   int
	ObservedAt     int64 // seconds, later of the two update times
	Adjusted       bool  // bid was clamped below ask
}

// Reconcile merges ask and bid into one consistent pair. Both prices must be
// positive; a crossed book is repaired by setting bid = ask - 1.
func Reconcile(ask, bid Quote) (MergedQuote, error) {
	if ask.SellPrice <= 0 || bid.BiddingPrice <= 0 {
		return MergedQuote{}, fmt.Errorf("%w: sell=%.2f bid=%.2f", ErrReconciliationRejected, ask.SellPrice, bid.BiddingPrice)
	}

	m := MergedQuote{
		Platform:       MixedPlatform,
		PlatformItemID: ask.PlatformItemID,
		SellPrice:      ask.SellPrice,
		SellCount:      ask.SellCount,
		BiddingPrice:   bid.BiddingPrice,
		BiddingCount:   bid.BiddingCount,
		ObservedAt:     anchor.ToSeconds(max(ask.UpdateTime, bid.UpdateTime)),
	}
	if m.BiddingPrice >= m.SellPrice {
		m.BiddingPrice = m.SellPrice - 1
		m.Adjusted = true
	}
	return m, nil
}

// ItemQuotes is the batch-price answer for one item.
type ItemQuotes struct {
	MarketHashName string
	Quotes         []Quote
}

// PriceSource fetches per-platform quotes for a batch of items.
type PriceSource interface {
	BatchPrices(ctx context.Context, marketHashNames []string) ([]ItemQuotes, error)
}

// VolumeSource returns the display string of today's sales volume.
type VolumeSource interface {
	SalesVolume(ctx context.Context, marketHashName string) (string, error)
}

// SnapshotWriter appends price snapshots.
type SnapshotWriter interface {
	Append(ctx context.Context, snapshots []models.PriceSnapshot) error
}

// PriceSummary aggregates one price run.
type PriceSummary struct {
	Requested int
	Returned  int
	Saved     int
	Rejected  int
	Missing   int
	// NonPositiveBid counts saved snapshots whose clamped bid (ask - 1) fell to
	// zero or below, which happens for items quoted under 1.
	NonPositiveBid int
}

// PriceCollector merges the ask of AskPlatform with the bid of BidPlatform
// for every watched item and appends one snapshot per item.
type PriceCollector struct {
	Prices      PriceSource
	Volumes     VolumeSource // optional
	Snapshots   SnapshotWriter
	Pacer       Pacer
	AskPlatform string
	BidPlatform string
	Now         func() time.Time
}

// Run fetches, reconciles and stores. Only the batch fetch failing aborts it.
func (c *PriceCollector) Run(ctx context.Context, names []string) (PriceSummary, error) {
	summary := PriceSummary{Requested: len(names)}
	if len(names) == 0 {
		return summary, nil
	}

	log.Printf("[价格采集] ℹ️  准备为 %d 个饰品批量查询价格...", len(names))
	items, err := c.Prices.BatchPrices(ctx, names)
	if err != nil {
		return summary, fmt.Errorf("batch price: %w", err)
	}
	if len(items) == 0 {
		return summary, ErrDataAbsent
	}
	summary.Returned = len(items)

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	captured := now().Unix()

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name := item.MarketHashName

		merged, err := c.merge(item)
		if err != nil {
			if isMissing(err) {
				summary.Missing++
			} else {
				summary.Rejected++
			}
			log.Printf("[价格采集] ❌ %s: %v", name, err)
			continue
		}
		if merged.Adjusted {
			log.Printf("[价格采集] ⚠️  %s: 求购价调整为 %.2f", name, merged.BiddingPrice)
			if merged.BiddingPrice <= 0 {
				summary.NonPositiveBid++
				log.Printf("[价格采集] ⚠️  %s: 卖价 %.2f 低于 1，调整后求购价 %.2f 不为正", name, merged.SellPrice, merged.BiddingPrice)
			}
		}

		snapshot := models.PriceSnapshot{
			MarketHashName: name,
			Timestamp:      captured,
			Platform:       merged.Platform,
			SellPrice:      merged.SellPrice,
			SellCount:      merged.SellCount,
			BiddingPrice:   merged.BiddingPrice,
			BiddingCount:   merged.BiddingCount,
			ObservedAt:     merged.ObservedAt,
			SalesVolume:    c.salesVolume(ctx, name),
		}
		if err := c.Snapshots.Append(ctx, []models.PriceSnapshot{snapshot}); err != nil {
			log.Printf("[价格采集] ❌ %s: %v", name, err)
			continue
		}
		summary.Saved++
		log.Printf("[价格采集] ✅ %s: %s卖价 %.2f + %s买价 %.2f | 成交 %s",
			name, c.AskPlatform, merged.SellPrice, c.BidPlatform, merged.BiddingPrice, snapshot.SalesVolume)
	}

	log.Printf("[价格采集] 完成: 请求 %d, 返回 %d, 保存 %d, 无效 %d, 缺少平台 %d",
		summary.Requested, summary.Returned, summary.Saved, summary.Rejected, summary.Missing)
	return summary, nil
}

func (c *PriceCollector) merge(item ItemQuotes) (MergedQuote, error) {
	var ask, bid *Quote
	for i := range item.Quotes {
		q := &item.Quotes[i]
		switch q.Platform {
		case c.AskPlatform:
			ask = q
		case c.BidPlatform:
			bid = q
		}
	}
	if ask == nil || bid == nil {
		return MergedQuote{}, fmt.Errorf("%w: need %s and %s", ErrMissingSource, c.AskPlatform, c.BidPlatform)
	}
	return Reconcile(*ask, *bid)
}

func (c *PriceCollector) salesVolume(ctx context.Context, name string) string {
	if c.Volumes == nil {
		return VolumePlaceholder
	}
	if c.Pacer != nil {
		if err := c.Pacer.Wait(ctx); err != nil {
			return VolumePlaceholder
		}
	}
	v, err := c.Volumes.SalesVolume(ctx, name)
	if err != nil || v == "" {
		log.Printf("[价格采集] ⚠️  %s 成交量获取失败: %v", name, err)
		return VolumePlaceholder
	}
	return v
}

func isMissing(err error) bool {
	return errors.Is(err, ErrMissingSource)
}
