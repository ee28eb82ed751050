package models

import "time"

// AnchoredRow is a row of a daily series keyed by (entity, anchor timestamp).
type AnchoredRow interface {
	EntityKey() string
	AnchorTimestamp() int64
}

// KlineRecord stores one closed daily candle for an item.
// Timestamp is the 00:00 UTC+8 anchor in unix seconds.
type KlineRecord struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	MarketHashName string    `json:"market_hash_name" gorm:"size:255;not null;uniqueIndex:idx_market_timestamp,priority:1"`
	TypeVal        string    `json:"type_val" gorm:"size:64;not null;index:idx_type_val"`
	Timestamp      int64     `json:"timestamp" gorm:"not null;uniqueIndex:idx_market_timestamp,priority:2"`
	OpenPrice      float64   `json:"open_price" gorm:"not null"`
	ClosePrice     float64   `json:"close_price" gorm:"not null"`
	HighPrice      float64   `json:"high_price" gorm:"not null"`
	LowPrice       float64   `json:"low_price" gorm:"not null"`
	Volume         float64   `json:"volume" gorm:"not null;default:0"`
	Turnover       float64   `json:"turnover" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
}

func (KlineRecord) TableName() string {
	return "kline_data"
}

func (k *KlineRecord) EntityKey() string      { return k.MarketHashName }
func (k *KlineRecord) AnchorTimestamp() int64 { return k.Timestamp }
