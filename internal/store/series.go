// Package store holds the gorm-backed row series: kline_data, market_index
// and price_history.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"csgo-market-data/internal/models"

	"gorm.io/gorm"
)

// Series is an anchored time series table. keyColumn is empty for tables that
// hold a single entity (the market index).
type Series struct {
	db           *gorm.DB
	name         string
	model        interface{}
	keyColumn    string
	anchorColumn string
}

// NewKlineSeries returns the kline_data series keyed by market_hash_name.
func NewKlineSeries(db *gorm.DB) *Series {
	return &Series{
		db:           db,
		name:         "kline",
		model:        &models.KlineRecord{},
		keyColumn:    "market_hash_name",
		anchorColumn: "timestamp",
	}
}

// NewIndexSeries returns the market_index series.
func NewIndexSeries(db *gorm.DB) *Series {
	return &Series{
		db:           db,
		name:         "market_index",
		model:        &models.MarketIndexPoint{},
		anchorColumn: "timestamp",
	}
}

func (s *Series) Name() string { return s.name }

func (s *Series) scope(ctx context.Context, key string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(s.model)
	if s.keyColumn != "" {
		q = q.Where(s.keyColumn+" = ?", key)
	}
	return q
}

// Count returns the number of rows across all entities.
func (s *Series) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(s.model).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.name, err)
	}
	return n, nil
}

// LatestAnchor returns the greatest stored anchor for key, ok=false when the
// entity has no rows.
func (s *Series) LatestAnchor(ctx context.Context, key string) (int64, bool, error) {
	var latest sql.NullInt64
	err := s.scope(ctx, key).Select("MAX(" + s.anchorColumn + ")").Scan(&latest).Error
	if err != nil {
		return 0, false, fmt.Errorf("latest anchor of %s/%s: %w", s.name, key, err)
	}
	if !latest.Valid {
		return 0, false, nil
	}
	return latest.Int64, true, nil
}

// Exists reports whether a row with (key, anchor) is stored.
func (s *Series) Exists(ctx context.Context, key string, anchor int64) (bool, error) {
	var n int64
	err := s.scope(ctx, key).Where(s.anchorColumn+" = ?", anchor).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("exists %s/%s@%d: %w", s.name, key, anchor, err)
	}
	return n > 0, nil
}

// ExistingAnchors returns which of anchors are already stored for key.
func (s *Series) ExistingAnchors(ctx context.Context, key string, anchors []int64) (map[int64]bool, error) {
	found := make(map[int64]bool, len(anchors))
	if len(anchors) == 0 {
		return found, nil
	}
	var stored []int64
	err := s.scope(ctx, key).Where(s.anchorColumn+" IN ?", anchors).Pluck(s.anchorColumn, &stored).Error
	if err != nil {
		return nil, fmt.Errorf("existing anchors of %s/%s: %w", s.name, key, err)
	}
	for _, a := range stored {
		found[a] = true
	}
	return found, nil
}

// Insert writes a single row. Each insert is its own statement.
func (s *Series) Insert(ctx context.Context, row models.AnchoredRow) error {
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("insert %s/%s@%d: %w", s.name, row.EntityKey(), row.AnchorTimestamp(), err)
	}
	return nil
}
