package models

// PriceSnapshot is an append-only bid/ask observation for an item.
// Timestamp is the wall-clock capture time in unix seconds and is not anchored.
type PriceSnapshot struct {
	ID             uint    `json:"id" gorm:"primaryKey"`
	MarketHashName string  `json:"market_hash_name" gorm:"size:255;not null;index:idx_name_time,priority:1"`
	Timestamp      int64   `json:"timestamp" gorm:"not null;index:idx_name_time,priority:2"`
	Platform       string  `json:"platform" gorm:"size:32;not null"`
	SellPrice      float64 `json:"sell_price"`
	SellCount      int     `json:"sell_count"`
	BiddingPrice   float64 `json:"bidding_price"`
	BiddingCount   int     `json:"bidding_count"`
	ObservedAt     int64   `json:"observed_at"`  // 两个平台中较晚的 updateTime
	SalesVolume    string  `json:"sales_volume"` // 今日成交量（网页抓取，原样保存）
}

func (PriceSnapshot) TableName() string {
	return "price_history"
}
