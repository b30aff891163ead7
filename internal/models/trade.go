package models

import (
	"time"

	"gorm.io/gorm"
)

// Trade represents an executed BUY or SELL. Live trades are persisted and get
// their ID from the database; backtest trades keep a zero ID.
type Trade struct {
	gorm.Model
	Timestamp     time.Time   `json:"timestamp"`
	Type          Signal      `json:"type"`
	Price         float64     `json:"price"`
	Quantity      float64     `json:"quantity"`
	BalanceBefore float64     `json:"balance_before"`
	BalanceAfter  float64     `json:"balance_after"`
	ProfitLossPct *float64    `json:"profit_loss_pct,omitempty"` // SELL trades only
	Strategy      string      `json:"strategy"`
	MarketCycle   MarketCycle `json:"market_cycle"`
	Reason        string      `json:"reason"`
}
