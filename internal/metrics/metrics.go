package metrics

import (
	"btc-trade-bot-go/internal/models"
)

// Compute derives aggregate performance metrics from a trade ledger. Purely
// derived, recomputed on demand; P&L figures cover SELL trades only, since a
// BUY carries no realized profit.
func Compute(trades []models.Trade) models.TradeMetrics {
	if len(trades) == 0 {
		return emptyMetrics()
	}

	var sells []models.Trade
	buyCount := 0
	var totalVolume float64

	for _, t := range trades {
		totalVolume += t.Price * t.Quantity
		switch {
		case t.Type == models.SignalBuy:
			buyCount++
		case t.Type == models.SignalSell && t.ProfitLossPct != nil:
			sells = append(sells, t)
		}
	}

	profitable := 0
	losing := 0
	var totalPnl float64
	bestTrade := 0.0
	worstTrade := 0.0

	for i, t := range sells {
		pnl := *t.ProfitLossPct
		totalPnl += pnl
		if pnl > 0 {
			profitable++
		} else if pnl < 0 {
			losing++
		}
		if i == 0 || pnl > bestTrade {
			bestTrade = pnl
		}
		if i == 0 || pnl < worstTrade {
			worstTrade = pnl
		}
	}

	winRate := 0.0
	avgPnl := 0.0
	if len(sells) > 0 {
		winRate = float64(profitable) * 100.0 / float64(len(sells))
		avgPnl = totalPnl / float64(len(sells))
	}

	return models.TradeMetrics{
		TotalTrades:            len(trades),
		BuyTrades:              buyCount,
		SellTrades:             len(sells),
		ProfitableTrades:       profitable,
		LosingTrades:           losing,
		WinRate:                winRate,
		TotalProfitLoss:        totalPnl,
		AverageProfitLoss:      avgPnl,
		BestTrade:              bestTrade,
		WorstTrade:             worstTrade,
		TotalVolume:            totalVolume,
		MostUsedStrategy:       mostUsedStrategy(trades),
		MostProfitableStrategy: mostProfitableStrategy(sells),
	}
}

// mostUsedStrategy returns the strategy with the most trades in the ledger.
func mostUsedStrategy(trades []models.Trade) string {
	counts := make(map[string]int)
	for _, t := range trades {
		counts[t.Strategy]++
	}

	best := "N/A"
	bestCount := 0
	for name, count := range counts {
		if count > bestCount {
			best = name
			bestCount = count
		}
	}
	return best
}

// mostProfitableStrategy returns the strategy with the highest summed SELL
// profit percentage.
func mostProfitableStrategy(sells []models.Trade) string {
	if len(sells) == 0 {
		return "N/A"
	}

	totals := make(map[string]float64)
	for _, t := range sells {
		totals[t.Strategy] += *t.ProfitLossPct
	}

	best := "N/A"
	first := true
	var bestTotal float64
	for name, total := range totals {
		if first || total > bestTotal {
			best = name
			bestTotal = total
			first = false
		}
	}
	return best
}

func emptyMetrics() models.TradeMetrics {
	return models.TradeMetrics{
		MostUsedStrategy:       "N/A",
		MostProfitableStrategy: "N/A",
	}
}
