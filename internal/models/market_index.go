package models

import "time"

// MarketIndexKey is the entity key of the single market-wide index series.
const MarketIndexKey = "market"

// MarketIndexPoint is one daily value of the market index (大盘指数).
type MarketIndexPoint struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	IndexValue float64   `json:"index_value" gorm:"not null"`
	Timestamp  int64     `json:"timestamp" gorm:"not null;uniqueIndex:idx_index_timestamp"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MarketIndexPoint) TableName() string {
	return "market_index"
}

func (p *MarketIndexPoint) EntityKey() string      { return MarketIndexKey }
func (p *MarketIndexPoint) AnchorTimestamp() int64 { return p.Timestamp }
