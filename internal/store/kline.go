package store

import (
	"context"

	"csgo-market-data/internal/models"

	"gorm.io/gorm"
)

// KlineReader reads stored candles.
type KlineReader struct {
	db *gorm.DB
}

func NewKlineReader(db *gorm.DB) *KlineReader {
	return &KlineReader{db: db}
}

// Dump returns every candle of an item ordered by timestamp ascending.
func (r *KlineReader) Dump(ctx context.Context, marketHashName string) ([]models.KlineRecord, error) {
	var rows []models.KlineRecord
	err := r.db.WithContext(ctx).
		Where("market_hash_name = ?", marketHashName).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Timestamps returns the stored anchors of an item in ascending order.
func (r *KlineReader) Timestamps(ctx context.Context, marketHashName string) ([]int64, error) {
	var ts []int64
	err := r.db.WithContext(ctx).Model(&models.KlineRecord{}).
		Where("market_hash_name = ?", marketHashName).
		Order("timestamp ASC").
		Pluck("timestamp", &ts).Error
	if err != nil {
		return nil, err
	}
	return ts, nil
}
