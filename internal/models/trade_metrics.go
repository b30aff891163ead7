package models

// TradeMetrics aggregates performance figures over a trade ledger. P&L fields
// cover SELL trades only, since BUYs carry no realized profit.
type TradeMetrics struct {
	TotalTrades            int     `json:"total_trades"`
	BuyTrades              int     `json:"buy_trades"`
	SellTrades             int     `json:"sell_trades"`
	ProfitableTrades       int     `json:"profitable_trades"`
	LosingTrades           int     `json:"losing_trades"`
	WinRate                float64 `json:"win_rate"`
	TotalProfitLoss        float64 `json:"total_profit_loss"`
	AverageProfitLoss      float64 `json:"average_profit_loss"`
	BestTrade              float64 `json:"best_trade"`
	WorstTrade             float64 `json:"worst_trade"`
	TotalVolume            float64 `json:"total_volume"`
	MostUsedStrategy       string  `json:"most_used_strategy"`
	MostProfitableStrategy string  `json:"most_profitable_strategy"`
}
