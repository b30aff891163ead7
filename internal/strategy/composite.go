package strategy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"btc-trade-bot-go/internal/models"
	"go.uber.org/zap"
)

// WeightedStrategy pairs a sub-strategy with its voting weight (percent).
type WeightedStrategy struct {
	Strategy Strategy
	Weight   float64
	Name     string
}

// Composite aggregates weighted votes from multiple sub-strategies.
// Each sub-signal maps to a score (BUY=+1, HOLD=0, SELL=-1) scaled by its
// weight/100; the summed score is compared against the buy/sell thresholds.
// Evaluation order of the sub-strategies does not affect the result.
type Composite struct {
	strategies    []WeightedStrategy
	buyThreshold  float64
	sellThreshold float64
	logger        *zap.Logger
}

// NewComposite creates a weighted-voting composite strategy. Weights are
// expected to sum to 100; a mismatch is logged but not fatal.
func NewComposite(strategies []WeightedStrategy, buyThreshold, sellThreshold float64, logger *zap.Logger) (*Composite, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("composite strategy requires at least one sub-strategy")
	}
	if buyThreshold <= sellThreshold {
		return nil, fmt.Errorf("composite buy threshold (%v) must be above sell threshold (%v)",
			buyThreshold, sellThreshold)
	}

	var totalWeight float64
	for _, ws := range strategies {
		totalWeight += ws.Weight
	}
	if math.Abs(totalWeight-100.0) > 0.01 {
		logger.Warn("Composite strategy weights do not sum to 100",
			zap.Float64("total_weight", totalWeight))
	}

	return &Composite{
		strategies:    strategies,
		buyThreshold:  buyThreshold,
		sellThreshold: sellThreshold,
		logger:        logger,
	}, nil
}

func (s *Composite) Name() string {
	return "composite"
}

func (s *Composite) Analyze(price float64) models.Signal {
	var weightedScore float64

	for _, ws := range s.strategies {
		signal := ws.Strategy.Analyze(price)
		contribution := signalScore(signal) * (ws.Weight / 100.0)
		weightedScore += contribution

		s.logger.Debug("Composite sub-strategy vote",
			zap.String("strategy", ws.Name),
			zap.Float64("weight", ws.Weight),
			zap.String("signal", string(signal)),
			zap.Float64("contribution", contribution))
	}

	final := models.SignalHold
	if weightedScore >= s.buyThreshold {
		final = models.SignalBuy
	} else if weightedScore <= s.sellThreshold {
		final = models.SignalSell
	}

	s.logger.Debug("Composite decision",
		zap.Float64("weighted_score", weightedScore),
		zap.String("signal", string(final)))

	return final
}

func (s *Composite) Parameters() map[string]string {
	names := make([]string, 0, len(s.strategies))
	weights := make([]string, 0, len(s.strategies))
	for _, ws := range s.strategies {
		names = append(names, ws.Name)
		weights = append(weights, strconv.FormatFloat(ws.Weight, 'f', -1, 64))
	}
	return map[string]string{
		"strategies":     strings.Join(names, ","),
		"weights":        strings.Join(weights, ","),
		"buy_threshold":  strconv.FormatFloat(s.buyThreshold, 'f', -1, 64),
		"sell_threshold": strconv.FormatFloat(s.sellThreshold, 'f', -1, 64),
	}
}

func signalScore(signal models.Signal) float64 {
	switch signal {
	case models.SignalBuy:
		return 1.0
	case models.SignalSell:
		return -1.0
	default:
		return 0.0
	}
}
