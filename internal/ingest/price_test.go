package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"csgo-market-data/internal/models"
	"csgo-market-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name         string
		ask          Quote
		bid          Quote
		wantErr      error
		wantBid      float64
		wantAdjusted bool
	}{
		{name: "crossed book at equal prices", ask: Quote{SellPrice: 100}, bid: Quote{BiddingPrice: 100}, wantBid: 99, wantAdjusted: true},
		{name: "bid above ask", ask: Quote{SellPrice: 100}, bid: Quote{BiddingPrice: 130}, wantBid: 99, wantAdjusted: true},
		{name: "crossed book under 1 goes negative", ask: Quote{SellPrice: 0.5}, bid: Quote{BiddingPrice: 0.8}, wantBid: -0.5, wantAdjusted: true},
		{name: "normal spread untouched", ask: Quote{SellPrice: 100}, bid: Quote{BiddingPrice: 50}, wantBid: 50},
		{name: "zero ask rejected", ask: Quote{SellPrice: 0}, bid: Quote{BiddingPrice: 50}, wantErr: ErrReconciliationRejected},
		{name: "zero bid rejected", ask: Quote{SellPrice: 100}, bid: Quote{BiddingPrice: 0}, wantErr: ErrReconciliationRejected},
		{name: "negative price rejected", ask: Quote{SellPrice: -1}, bid: Quote{BiddingPrice: 5}, wantErr: ErrReconciliationRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.ask, tt.bid)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBid, got.BiddingPrice)
			assert.Equal(t, tt.wantAdjusted, got.Adjusted)
			assert.Equal(t, tt.ask.SellPrice, got.SellPrice)
		})
	}
}

func TestReconcileMergesSides(t *testing.T) {
	ask := Quote{Platform: "YOUPIN", PlatformItemID: "yp-1", SellPrice: 120, SellCount: 40, BiddingPrice: 90, BiddingCount: 7, UpdateTime: 1735500000}
	bid := Quote{Platform: "BUFF", SellPrice: 118, SellCount: 300, BiddingPrice: 110, BiddingCount: 55, UpdateTime: 1735500100000}

	got, err := Reconcile(ask, bid)
	require.NoError(t, err)

	assert.Equal(t, MergedQuote{
		Platform:       MixedPlatform,
		PlatformItemID: "yp-1",
		SellPrice:      120,
		SellCount:      40,
		BiddingPrice:   110,
		BiddingCount:   55,
		ObservedAt:     1735500100,
	}, got)
}

type fakePrices struct {
	items []ItemQuotes
	err   error
	names []string
}

func (f *fakePrices) BatchPrices(ctx context.Context, names []string) ([]ItemQuotes, error) {
	f.names = names
	return f.items, f.err
}

type fakeVolumes map[string]string

func (f fakeVolumes) SalesVolume(ctx context.Context, name string) (string, error) {
	v, ok := f[name]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func TestPriceCollector_Run(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	snapshots := store.NewSnapshotStore(db)
	now := time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC)

	prices := &fakePrices{items: []ItemQuotes{
		{MarketHashName: "AK", Quotes: []Quote{
			{Platform: "BUFF", SellPrice: 101, BiddingPrice: 100, BiddingCount: 3, UpdateTime: 1738390000},
			{Platform: "YOUPIN", SellPrice: 100, SellCount: 12, BiddingPrice: 95, BiddingCount: 9, UpdateTime: 1738390200},
		}},
		{MarketHashName: "M4", Quotes: []Quote{
			{Platform: "YOUPIN", SellPrice: 0, SellCount: 0},
			{Platform: "BUFF", BiddingPrice: 10},
		}},
		{MarketHashName: "AWP", Quotes: []Quote{
			{Platform: "YOUPIN", SellPrice: 50},
		}},
		{MarketHashName: "USP", Quotes: []Quote{
			{Platform: "YOUPIN", SellPrice: 30, SellCount: 2},
			{Platform: "BUFF", BiddingPrice: 20, BiddingCount: 1},
		}},
	}}
	c := &PriceCollector{
		Prices:      prices,
		Volumes:     fakeVolumes{"AK": "1,024"},
		Snapshots:   snapshots,
		Pacer:       &countingPacer{},
		AskPlatform: "YOUPIN",
		BidPlatform: "BUFF",
		Now:         func() time.Time { return now },
	}

	summary, err := c.Run(ctx, []string{"AK", "M4", "AWP", "USP"})
	require.NoError(t, err)

	assert.Equal(t, PriceSummary{Requested: 4, Returned: 4, Saved: 2, Rejected: 1, Missing: 1}, summary)
	assert.Equal(t, []string{"AK", "M4", "AWP", "USP"}, prices.names)

	ak, err := snapshots.Recent(ctx, "AK", 0)
	require.NoError(t, err)
	require.Len(t, ak, 1)
	assert.Equal(t, models.PriceSnapshot{
		ID:             ak[0].ID,
		MarketHashName: "AK",
		Timestamp:      now.Unix(),
		Platform:       MixedPlatform,
		SellPrice:      100,
		SellCount:      12,
		BiddingPrice:   99,
		BiddingCount:   3,
		ObservedAt:     1738390200,
		SalesVolume:    "1,024",
	}, ak[0])

	usp, err := snapshots.Recent(ctx, "USP", 0)
	require.NoError(t, err)
	require.Len(t, usp, 1)
	assert.Equal(t, VolumePlaceholder, usp[0].SalesVolume)

	m4, err := snapshots.Recent(ctx, "M4", 0)
	require.NoError(t, err)
	assert.Empty(t, m4)
}

func TestPriceCollector_SubUnitCrossedBook(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	snapshots := store.NewSnapshotStore(db)
	c := &PriceCollector{
		Prices: &fakePrices{items: []ItemQuotes{
			{MarketHashName: "Sticker", Quotes: []Quote{
				{Platform: "YOUPIN", SellPrice: 0.5, SellCount: 300},
				{Platform: "BUFF", BiddingPrice: 0.8, BiddingCount: 40},
			}},
			{MarketHashName: "Case", Quotes: []Quote{
				{Platform: "YOUPIN", SellPrice: 5},
				{Platform: "BUFF", BiddingPrice: 6},
			}},
		}},
		Snapshots:   snapshots,
		AskPlatform: "YOUPIN",
		BidPlatform: "BUFF",
	}

	summary, err := c.Run(ctx, []string{"Sticker", "Case"})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Saved)
	assert.Equal(t, 1, summary.NonPositiveBid)

	rows, err := snapshots.Recent(ctx, "Sticker", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, -0.5, rows[0].BiddingPrice)
	assert.Less(t, rows[0].BiddingPrice, rows[0].SellPrice)
}

func TestPriceCollector_BatchFailure(t *testing.T) {
	db := setupTestDB(t)
	c := &PriceCollector{
		Prices:      &fakePrices{err: errors.New("timeout")},
		Snapshots:   store.NewSnapshotStore(db),
		AskPlatform: "YOUPIN",
		BidPlatform: "BUFF",
	}

	_, err := c.Run(context.Background(), []string{"AK"})
	assert.Error(t, err)
}

func TestPriceCollector_EmptyAnswer(t *testing.T) {
	db := setupTestDB(t)
	c := &PriceCollector{
		Prices:      &fakePrices{},
		Snapshots:   store.NewSnapshotStore(db),
		AskPlatform: "YOUPIN",
		BidPlatform: "BUFF",
	}

	_, err := c.Run(context.Background(), []string{"AK"})
	assert.ErrorIs(t, err, ErrDataAbsent)
}

func TestPriceCollector_EmptyWatchlist(t *testing.T) {
	prices := &fakePrices{}
	c := &PriceCollector{Prices: prices, AskPlatform: "YOUPIN", BidPlatform: "BUFF"}

	summary, err := c.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, PriceSummary{}, summary)
	assert.Nil(t, prices.names)
}
