package store

import (
	"context"
	"fmt"

	"csgo-market-data/internal/models"

	"gorm.io/gorm"
)

// SnapshotStore is the append-only price_history log.
type SnapshotStore struct {
	db *gorm.DB
}

func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Append inserts snapshots in one batch statement.
func (s *SnapshotStore) Append(ctx context.Context, snapshots []models.PriceSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&snapshots).Error; err != nil {
		return fmt.Errorf("insert price_history: %w", err)
	}
	return nil
}

// Recent returns the latest snapshots of an item, newest first. limit <= 0 means all.
func (s *SnapshotStore) Recent(ctx context.Context, marketHashName string, limit int) ([]models.PriceSnapshot, error) {
	var rows []models.PriceSnapshot
	q := s.db.WithContext(ctx).
		Where("market_hash_name = ?", marketHashName).
		Order("timestamp DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
