package store

import (
	"context"
	"fmt"
	"log"

	"csgo-market-data/internal/anchor"
	"csgo-market-data/internal/models"

	"gorm.io/gorm"
)

// IndexReader reads and maintains market_index rows.
type IndexReader struct {
	db *gorm.DB
}

func NewIndexReader(db *gorm.DB) *IndexReader {
	return &IndexReader{db: db}
}

// Dump returns the whole index series ordered by timestamp ascending.
func (r *IndexReader) Dump(ctx context.Context) ([]models.MarketIndexPoint, error) {
	var rows []models.MarketIndexPoint
	if err := r.db.WithContext(ctx).Order("timestamp ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Realign moves stored points that are not on an anchor to their anchor.
// A point whose anchor is already taken is left untouched and logged.
func (r *IndexReader) Realign(ctx context.Context) (int, error) {
	var rows []models.MarketIndexPoint
	if err := r.db.WithContext(ctx).Order("timestamp ASC").Find(&rows).Error; err != nil {
		return 0, fmt.Errorf("load market_index: %w", err)
	}

	updated := 0
	for _, row := range rows {
		aligned := anchor.Unix(row.Timestamp, anchor.Seconds)
		if aligned == row.Timestamp {
			continue
		}
		var taken int64
		if err := r.db.WithContext(ctx).Model(&models.MarketIndexPoint{}).
			Where("timestamp = ?", aligned).Count(&taken).Error; err != nil {
			return updated, fmt.Errorf("check anchor %d: %w", aligned, err)
		}
		if taken > 0 {
			log.Printf("[大盘指数] ⚠️  记录 %d 的对齐时间戳 %d 已存在，跳过", row.ID, aligned)
			continue
		}
		if err := r.db.WithContext(ctx).Model(&models.MarketIndexPoint{}).
			Where("id = ?", row.ID).Update("timestamp", aligned).Error; err != nil {
			log.Printf("[大盘指数] ❌ 更新记录 %d 失败: %v", row.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}
