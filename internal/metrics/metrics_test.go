package metrics

import (
	"testing"

	"btc-trade-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
)

func pnl(v float64) *float64 {
	return &v
}

func TestCompute_EmptyLedger(t *testing.T) {
	m := Compute(nil)

	assert.Equal(t, 0, m.TotalTrades)
	assert.Equal(t, 0.0, m.WinRate)
	assert.Equal(t, "N/A", m.MostUsedStrategy)
	assert.Equal(t, "N/A", m.MostProfitableStrategy)
}

func TestCompute_BuysOnlyHaveNoWinRate(t *testing.T) {
	trades := []models.Trade{
		{Type: models.SignalBuy, Price: 100, Quantity: 10, Strategy: "sma"},
		{Type: models.SignalBuy, Price: 105, Quantity: 9.5, Strategy: "sma"},
	}

	m := Compute(trades)

	assert.Equal(t, 2, m.TotalTrades)
	assert.Equal(t, 2, m.BuyTrades)
	assert.Equal(t, 0, m.SellTrades)
	assert.Equal(t, 0.0, m.WinRate)
	assert.Equal(t, "sma", m.MostUsedStrategy)
	assert.Equal(t, "N/A", m.MostProfitableStrategy)
}

func TestCompute_WinRateAndExtremes(t *testing.T) {
	trades := []models.Trade{
		{Type: models.SignalBuy, Price: 100, Quantity: 10, Strategy: "sma"},
		{Type: models.SignalSell, Price: 110, Quantity: 10, Strategy: "sma", ProfitLossPct: pnl(10)},
		{Type: models.SignalBuy, Price: 110, Quantity: 10, Strategy: "sma"},
		{Type: models.SignalSell, Price: 99, Quantity: 10, Strategy: "sma", ProfitLossPct: pnl(-10)},
		{Type: models.SignalBuy, Price: 99, Quantity: 10, Strategy: "macd"},
		{Type: models.SignalSell, Price: 104, Quantity: 10, Strategy: "macd", ProfitLossPct: pnl(5)},
	}

	m := Compute(trades)

	assert.Equal(t, 6, m.TotalTrades)
	assert.Equal(t, 3, m.BuyTrades)
	assert.Equal(t, 3, m.SellTrades)
	assert.Equal(t, 2, m.ProfitableTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 66.67, m.WinRate, 0.01)
	assert.InDelta(t, 5.0, m.TotalProfitLoss, 1e-9)
	assert.InDelta(t, 5.0/3.0, m.AverageProfitLoss, 1e-9)
	assert.Equal(t, 10.0, m.BestTrade)
	assert.Equal(t, -10.0, m.WorstTrade)
	assert.Equal(t, "sma", m.MostUsedStrategy)
	// sma nets 0%, macd nets +5%.
	assert.Equal(t, "macd", m.MostProfitableStrategy)
}

func TestCompute_ExtremesSeededFromFirstSell(t *testing.T) {
	// A single losing sell must be both best and worst, not clamped at zero.
	trades := []models.Trade{
		{Type: models.SignalSell, Price: 90, Quantity: 10, Strategy: "sma", ProfitLossPct: pnl(-10)},
	}

	m := Compute(trades)

	assert.Equal(t, -10.0, m.BestTrade)
	assert.Equal(t, -10.0, m.WorstTrade)
	assert.Equal(t, 0.0, m.WinRate)
}

func TestCompute_SellWithoutPnlIsExcluded(t *testing.T) {
	trades := []models.Trade{
		{Type: models.SignalSell, Price: 100, Quantity: 10, Strategy: "sma"},
	}

	m := Compute(trades)

	assert.Equal(t, 1, m.TotalTrades)
	assert.Equal(t, 0, m.SellTrades)
	assert.Equal(t, 1000.0, m.TotalVolume)
}
