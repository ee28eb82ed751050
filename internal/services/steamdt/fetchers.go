package steamdt

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"csgo-market-data/internal/ingest"
)

// KlineFetcher adapts Client.Kline to ingest.Fetcher.
type KlineFetcher struct {
	Client *Client
}

func (f KlineFetcher) Fetch(ctx context.Context, ref string, bound ingest.FetchBound) ([]ingest.Sample, error) {
	rows, err := f.Client.Kline(ctx, ref, bound.MaxTime)
	if err != nil {
		return nil, err
	}
	return parseRows(rows, 6, 4, "kline "+ref), nil
}

// IndexFetcher adapts Client.IndexChart to ingest.Fetcher. The ref is ignored.
type IndexFetcher struct {
	Client *Client
}

func (f IndexFetcher) Fetch(ctx context.Context, _ string, bound ingest.FetchBound) ([]ingest.Sample, error) {
	rows, err := f.Client.IndexChart(ctx, bound.MaxTime)
	if err != nil {
		return nil, err
	}
	return parseRows(rows, 1, 1, "index"), nil
}

// BatchPrices implements ingest.PriceSource.
func (c *Client) BatchPrices(ctx context.Context, marketHashNames []string) ([]ingest.ItemQuotes, error) {
	items, err := c.PriceBatch(ctx, marketHashNames)
	if err != nil {
		return nil, err
	}
	out := make([]ingest.ItemQuotes, 0, len(items))
	for _, item := range items {
		iq := ingest.ItemQuotes{MarketHashName: item.MarketHashName}
		for _, p := range item.DataList {
			iq.Quotes = append(iq.Quotes, ingest.Quote{
				Platform:       p.Platform,
				PlatformItemID: string(p.PlatformItemID),
				SellPrice:      float64(p.SellPrice),
				SellCount:      int(p.SellCount),
				BiddingPrice:   float64(p.BiddingPrice),
				BiddingCount:   int(p.BiddingCount),
				UpdateTime:     int64(p.UpdateTime),
			})
		}
		out = append(out, iq)
	}
	return out, nil
}

// parseRows converts [ts, v1..vN] rows into samples. The first required values
// must be present; the rest default to 0. A row whose timestamp cannot be read
// is dropped; a row with bad values is kept with Err set so it still takes its
// place in the series (the live trailing row is often incomplete).
func parseRows(rows [][]json.RawMessage, values, required int, label string) []ingest.Sample {
	samples := make([]ingest.Sample, 0, len(rows))
	for i, row := range rows {
		s, err := parseRow(row, values, required)
		if err != nil {
			log.Printf("[SteamDT] ⚠️  %s 第 %d 行数据无效: %v", label, i, err)
			continue
		}
		samples = append(samples, s)
	}
	return samples
}

func parseRow(row []json.RawMessage, values, required int) (ingest.Sample, error) {
	if len(row) == 0 {
		return ingest.Sample{}, fmt.Errorf("empty row")
	}
	ts, err := decodeTimestamp(row[0])
	if err != nil {
		return ingest.Sample{}, err
	}
	s := ingest.Sample{Timestamp: ts, Values: make([]float64, values)}
	if len(row) < required+1 {
		s.Err = fmt.Errorf("row has %d fields", len(row))
		return s, nil
	}
	for i := 0; i < values; i++ {
		if i+1 >= len(row) {
			break
		}
		v, present, err := decodeNumber(row[i+1])
		if err != nil {
			s.Err = fmt.Errorf("field %d: %w", i+1, err)
			return s, nil
		}
		if !present && i < required {
			s.Err = fmt.Errorf("field %d is empty", i+1)
			return s, nil
		}
		s.Values[i] = v
	}
	return s, nil
}
