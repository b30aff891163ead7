package models

// BacktestResult is the outcome of replaying a strategy over historical data.
// Profit figures are derived, never stored.
type BacktestResult struct {
	InitialBalance     float64           `json:"initial_balance"`
	FinalBalance       float64           `json:"final_balance"`
	BuyTrades          int               `json:"buy_trades"`
	SellTrades         int               `json:"sell_trades"`
	Days               int               `json:"days"`
	Strategy           string            `json:"strategy"`
	StrategyParameters map[string]string `json:"strategy_parameters"`
	Trades             []Trade           `json:"trades"`
}

// ProfitLoss returns the absolute cash delta of the backtest.
func (r *BacktestResult) ProfitLoss() float64 {
	return r.FinalBalance - r.InitialBalance
}

// ProfitLossPct returns the percentage return on the initial balance.
func (r *BacktestResult) ProfitLossPct() float64 {
	return ((r.FinalBalance - r.InitialBalance) / r.InitialBalance) * 100
}

// TotalTrades returns the number of executed trades.
func (r *BacktestResult) TotalTrades() int {
	return r.BuyTrades + r.SellTrades
}
