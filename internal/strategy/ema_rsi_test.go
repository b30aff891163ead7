package strategy

import (
	"testing"

	"btc-trade-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNewEmaRsi_Validation(t *testing.T) {
	_, err := NewEmaRsi(1, 14, 30, 70)
	assert.Error(t, err)

	_, err = NewEmaRsi(12, 0, 30, 70)
	assert.Error(t, err)

	_, err = NewEmaRsi(12, 14, 70, 30)
	assert.Error(t, err)

	_, err = NewEmaRsi(12, 14, 30, 70)
	assert.NoError(t, err)
}

func TestEmaRsi_NeverTradesOnFlatPrices(t *testing.T) {
	s, err := NewEmaRsi(5, 3, 30, 70)
	assert.NoError(t, err)

	for i := 0; i < 20; i++ {
		assert.Equal(t, models.SignalHold, s.Analyze(100))
	}

	ema, ok := s.Ema()
	assert.True(t, ok)
	assert.InDelta(t, 100.0, ema, 1e-9)

	// A flat window is neutral, not overbought.
	assert.Equal(t, 50.0, s.rsi())
}

func TestEmaRsi_NeverBuysIntoPureRally(t *testing.T) {
	s, err := NewEmaRsi(5, 3, 30, 70)
	assert.NoError(t, err)

	// A loss-free window drives the RSI to 100, which blocks the BUY even
	// though the price sits above the EMA.
	for price := 100.0; price <= 130; price++ {
		assert.Equal(t, models.SignalHold, s.Analyze(price))
	}
}

func TestEmaRsi_BuysOnOversoldRebound(t *testing.T) {
	s, err := NewEmaRsi(5, 3, 60, 80)
	assert.NoError(t, err)

	prices := []float64{100, 100, 100, 100, 100, 90, 80, 70}
	for _, price := range prices {
		assert.Equal(t, models.SignalHold, s.Analyze(price))
	}

	// The rebound puts the price back above the decayed EMA while the RSI
	// is still below the oversold band.
	assert.Equal(t, models.SignalBuy, s.Analyze(95))
}

func TestEmaRsi_SellsOnOverboughtDip(t *testing.T) {
	s, err := NewEmaRsi(5, 3, 20, 50)
	assert.NoError(t, err)

	prices := []float64{100, 100, 100, 100, 100, 110, 120, 130}
	for _, price := range prices {
		s.Analyze(price)
	}

	assert.Equal(t, models.SignalSell, s.Analyze(115))
}

func TestEmaRsi_Parameters(t *testing.T) {
	s, err := NewEmaRsi(12, 14, 30, 70)
	assert.NoError(t, err)

	params := s.Parameters()
	assert.Equal(t, "12", params["ema_period"])
	assert.Equal(t, "14", params["rsi_period"])
	assert.Equal(t, "30", params["rsi_oversold"])
	assert.Equal(t, "70", params["rsi_overbought"])
	assert.Equal(t, "ema-rsi", s.Name())
}
