package ingest

import (
	"context"
	"fmt"
	"log"

	"csgo-market-data/internal/models"
)

// Series is the storage surface ingestion needs from an anchored table.
type Series interface {
	Name() string
	Count(ctx context.Context) (int64, error)
	LatestAnchor(ctx context.Context, key string) (int64, bool, error)
	Exists(ctx context.Context, key string, anchor int64) (bool, error)
	ExistingAnchors(ctx context.Context, key string, anchors []int64) (map[int64]bool, error)
	Insert(ctx context.Context, row models.AnchoredRow) error
}

// Deduplicator inserts the rows of one entity that are not stored yet and
// returns how many were inserted. A failed single-row insert is logged and
// skipped; a failed lookup aborts the entity.
type Deduplicator interface {
	InsertNew(ctx context.Context, series Series, key string, rows []models.AnchoredRow) (int, error)
}

// RowByRow checks each row with its own existence query before inserting it.
type RowByRow struct{}

func (RowByRow) InsertNew(ctx context.Context, series Series, key string, rows []models.AnchoredRow) (int, error) {
	inserted := 0
	for _, row := range rows {
		exists, err := series.Exists(ctx, key, row.AnchorTimestamp())
		if err != nil {
			return inserted, err
		}
		if exists {
			continue
		}
		if err := series.Insert(ctx, row); err != nil {
			log.Printf("[%s] ❌ %v", series.Name(), err)
			continue
		}
		inserted++
	}
	return inserted, nil
}

// BatchDiff loads the stored anchors of the whole batch in one query and
// inserts the complement. Duplicates inside the batch are inserted once.
type BatchDiff struct{}

func (BatchDiff) InsertNew(ctx context.Context, series Series, key string, rows []models.AnchoredRow) (int, error) {
	anchors := make([]int64, 0, len(rows))
	for _, row := range rows {
		anchors = append(anchors, row.AnchorTimestamp())
	}
	seen, err := series.ExistingAnchors(ctx, key, anchors)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, row := range rows {
		a := row.AnchorTimestamp()
		if seen[a] {
			continue
		}
		seen[a] = true
		if err := series.Insert(ctx, row); err != nil {
			log.Printf("[%s] ❌ %v", series.Name(), err)
			continue
		}
		inserted++
	}
	return inserted, nil
}

// NewDeduplicator maps a strategy name ("row" or "batch") to an implementation.
func NewDeduplicator(strategy string) (Deduplicator, error) {
	switch strategy {
	case "", "row":
		return RowByRow{}, nil
	case "batch":
		return BatchDiff{}, nil
	default:
		return nil, fmt.Errorf("unknown dedup strategy %q", strategy)
	}
}
