package strategy

import (
	"testing"

	"btc-trade-bot-go/internal/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// fixedStrategy always votes the same signal.
type fixedStrategy struct {
	signal models.Signal
}

func (f *fixedStrategy) Name() string                        { return "fixed" }
func (f *fixedStrategy) Analyze(price float64) models.Signal { return f.signal }
func (f *fixedStrategy) Parameters() map[string]string       { return nil }

func weighted(signal models.Signal, weight float64) WeightedStrategy {
	return WeightedStrategy{Strategy: &fixedStrategy{signal: signal}, Weight: weight, Name: "fixed"}
}

func TestNewComposite_Validation(t *testing.T) {
	logger := zap.NewNop()

	_, err := NewComposite(nil, 0.5, -0.5, logger)
	assert.Error(t, err)

	_, err = NewComposite([]WeightedStrategy{weighted(models.SignalHold, 100)}, -0.5, 0.5, logger)
	assert.Error(t, err)

	// Weights not summing to 100 is logged, not fatal.
	c, err := NewComposite([]WeightedStrategy{weighted(models.SignalHold, 40)}, 0.5, -0.5, logger)
	assert.NoError(t, err)
	assert.NotNil(t, c)
}

func TestComposite_WeightedVoting(t *testing.T) {
	testCases := []struct {
		name       string
		strategies []WeightedStrategy
		expected   models.Signal
	}{
		{
			name: "Opposing equal votes cancel out",
			strategies: []WeightedStrategy{
				weighted(models.SignalBuy, 50),
				weighted(models.SignalSell, 50),
			},
			expected: models.SignalHold,
		},
		{
			name: "Weak buy majority stays below threshold",
			strategies: []WeightedStrategy{
				weighted(models.SignalBuy, 60),
				weighted(models.SignalSell, 40),
			},
			expected: models.SignalHold,
		},
		{
			name: "Unanimous buy",
			strategies: []WeightedStrategy{
				weighted(models.SignalBuy, 70),
				weighted(models.SignalBuy, 30),
			},
			expected: models.SignalBuy,
		},
		{
			name: "Buy vote exactly at threshold",
			strategies: []WeightedStrategy{
				weighted(models.SignalBuy, 50),
				weighted(models.SignalHold, 50),
			},
			expected: models.SignalBuy,
		},
		{
			name: "Sell vote exactly at threshold",
			strategies: []WeightedStrategy{
				weighted(models.SignalSell, 50),
				weighted(models.SignalHold, 50),
			},
			expected: models.SignalSell,
		},
		{
			name: "Holds drown out a single buy",
			strategies: []WeightedStrategy{
				weighted(models.SignalBuy, 20),
				weighted(models.SignalHold, 40),
				weighted(models.SignalHold, 40),
			},
			expected: models.SignalHold,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewComposite(tc.strategies, 0.5, -0.5, zap.NewNop())
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, c.Analyze(100))
		})
	}
}

func TestComposite_Parameters(t *testing.T) {
	c, err := NewComposite([]WeightedStrategy{
		{Strategy: &fixedStrategy{signal: models.SignalHold}, Weight: 60, Name: "sma"},
		{Strategy: &fixedStrategy{signal: models.SignalHold}, Weight: 40, Name: "macd"},
	}, 0.5, -0.5, zap.NewNop())
	assert.NoError(t, err)

	params := c.Parameters()
	assert.Equal(t, "sma,macd", params["strategies"])
	assert.Equal(t, "60,40", params["weights"])
	assert.Equal(t, "composite", c.Name())
}
