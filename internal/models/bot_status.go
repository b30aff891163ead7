package models

// BotStatus is a read-only snapshot of the engine state.
type BotStatus struct {
	UUID        string      `json:"uuid"`
	Running     bool        `json:"running"`
	Balance     float64     `json:"balance"`
	Holdings    float64     `json:"holdings"`
	LastPrice   float64     `json:"last_price"`
	TotalValue  float64     `json:"total_value"`
	MarketCycle MarketCycle `json:"market_cycle"`
	Strategy    string      `json:"strategy"`
	StartTime   string      `json:"start_time"`
}
